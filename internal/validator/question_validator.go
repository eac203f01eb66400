package validator

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
)

// Rule names reported on invalid question payloads.
const (
	RuleRequired          = "required"
	RuleQuestionType      = "question_type"
	RuleQuestionCategory  = "question_category"
	RuleQuestionLevel     = "question_level"
	RuleMCQOptionCount    = "mcq_option_count"
	RuleMCQSingleCorrect  = "mcq_single_correct"
	RuleMCQOptionText     = "mcq_option_text_required"
	RuleMCQOptionUnique   = "mcq_option_unique"
	RuleInputCorrect      = "input_correct_required"
	RuleAnswerText        = "answer_text_required"
	RuleAnswerIDRequired  = "answer_id_required"
	RuleAnswerIDDuplicate = "answer_id_unique"
	RuleAnswerIDUnknown   = "answer_id_unknown"
)

// MCQOptionCount is the number of options every MCQ question carries.
const MCQOptionCount = 4

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// Field is a named raw value checked by ValidateRequired.
type Field struct {
	Name  string
	Value string
}

// ValidateRequired reports the first blank field.
func (v *QuestionValidator) ValidateRequired(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return apperrors.NewValidationErrorWithRule(f.Name, f.Name+" is required", RuleRequired, f.Value)
		}
	}
	return nil
}

// ParseClassification turns raw type/category/level strings into their enums.
func (v *QuestionValidator) ParseClassification(rawType, rawCategory, rawLevel string) (models.QuestionType, models.QuestionCategory, models.QuestionLevel, error) {
	qType, err := models.ParseQuestionType(rawType)
	if err != nil {
		return "", "", "", apperrors.NewValidationErrorWithRule("type", "type must be one of MCQ, Input", RuleQuestionType, rawType)
	}
	category, err := models.ParseQuestionCategory(rawCategory)
	if err != nil {
		return "", "", "", apperrors.NewValidationErrorWithRule("category", "unknown question category", RuleQuestionCategory, rawCategory)
	}
	level, err := models.ParseQuestionLevel(rawLevel)
	if err != nil {
		return "", "", "", apperrors.NewValidationErrorWithRule("level", "unknown question level", RuleQuestionLevel, rawLevel)
	}
	return qType, category, level, nil
}

// ValidateMCQOptions enforces the four-option, single-correct MCQ shape.
func (v *QuestionValidator) ValidateMCQOptions(answers []models.AnswerPayload) error {
	if len(answers) != MCQOptionCount {
		return apperrors.NewValidationErrorWithRule("answers", "MCQ questions must have exactly 4 answer options", RuleMCQOptionCount, len(answers))
	}

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return apperrors.NewValidationErrorWithRule("answers", "MCQ must have exactly one correct answer", RuleMCQSingleCorrect, correct)
	}

	seen := make(map[string]bool, len(answers))
	for i, a := range answers {
		text := models.NormalizeText(a.Text)
		if text == "" {
			return apperrors.NewValidationErrorWithRule("answers", "each MCQ answer must have non-empty text", RuleMCQOptionText, i)
		}
		if seen[text] {
			return apperrors.NewValidationErrorWithRule("answers", "MCQ answer options must be unique", RuleMCQOptionUnique, a.Text)
		}
		seen[text] = true
	}

	return nil
}

// ValidateInputAnswers requires at least one correct answer on an Input question,
// and text on every correct answer.
func (v *QuestionValidator) ValidateInputAnswers(answers []models.AnswerPayload) error {
	correct := 0
	for i, a := range answers {
		if !a.IsCorrect {
			continue
		}
		if models.NormalizeText(a.Text) == "" {
			return apperrors.NewValidationErrorWithRule("answers", "each correct answer must have non-empty text", RuleAnswerText, i)
		}
		correct++
	}
	if correct > 0 {
		return nil
	}
	return apperrors.NewValidationErrorWithRule("answers", "Input questions must have at least 1 correct answer", RuleInputCorrect, len(answers))
}

// ValidateAnswerIDs requires every answer of an update to name the option it replaces.
func (v *QuestionValidator) ValidateAnswerIDs(answers []models.AnswerPayload) error {
	seen := make(map[string]bool, len(answers))
	for i, a := range answers {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return apperrors.NewValidationErrorWithRule("answers", "each answer must have a valid id for update", RuleAnswerIDRequired, i)
		}
		if seen[id] {
			return apperrors.NewValidationErrorWithRule("answers", "answer ids must be unique", RuleAnswerIDDuplicate, id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateKnownAnswerIDs requires every update answer to name an option the
// stored question already has; updates never mint option ids.
func (v *QuestionValidator) ValidateKnownAnswerIDs(current *models.Question, answers []models.AnswerPayload) error {
	for i, a := range answers {
		id := strings.TrimSpace(a.ID)
		if current.FindAnswer(id) == nil {
			return apperrors.NewValidationErrorWithRule("answers",
				fmt.Sprintf("answer %s is not an option of question %s", id, current.ID), RuleAnswerIDUnknown, i)
		}
	}
	return nil
}

// ValidateAnswers applies the per-type invariants shared by add and update.
func (v *QuestionValidator) ValidateAnswers(qType models.QuestionType, collection models.Collection, answers []models.AnswerPayload) error {
	switch qType {
	case models.QuestionTypeMCQ:
		return v.ValidateMCQOptions(answers)
	case models.QuestionTypeInput:
		if collection == models.CollectionFinal {
			return v.ValidateInputAnswers(answers)
		}
	}
	return nil
}
