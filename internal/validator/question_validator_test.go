package validator

import (
	"testing"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcqOptions(texts []string, correct int) []models.AnswerPayload {
	out := make([]models.AnswerPayload, len(texts))
	for i, t := range texts {
		out[i] = models.AnswerPayload{Text: t, IsCorrect: i == correct}
	}
	return out
}

func requireRule(t *testing.T, err error, rule string) {
	t.Helper()
	require.Error(t, err)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, rule, ve.Rule)
}

func TestValidateMCQOptions(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name    string
		answers []models.AnswerPayload
		rule    string
	}{
		{name: "valid", answers: mcqOptions([]string{"3", "4", "5", "6"}, 1)},
		{name: "three options", answers: mcqOptions([]string{"3", "4", "5"}, 1), rule: RuleMCQOptionCount},
		{name: "five options", answers: mcqOptions([]string{"3", "4", "5", "6", "7"}, 1), rule: RuleMCQOptionCount},
		{name: "no options", answers: nil, rule: RuleMCQOptionCount},
		{name: "no correct", answers: mcqOptions([]string{"3", "4", "5", "6"}, -1), rule: RuleMCQSingleCorrect},
		{
			name: "two correct",
			answers: []models.AnswerPayload{
				{Text: "3", IsCorrect: true}, {Text: "4", IsCorrect: true}, {Text: "5"}, {Text: "6"},
			},
			rule: RuleMCQSingleCorrect,
		},
		{name: "blank option", answers: mcqOptions([]string{"3", "  ", "5", "6"}, 0), rule: RuleMCQOptionText},
		{name: "case-insensitive duplicate", answers: mcqOptions([]string{"Paris", "paris ", "Rome", "Oslo"}, 0), rule: RuleMCQOptionUnique},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateMCQOptions(tc.answers)
			if tc.rule == "" {
				assert.NoError(t, err)
				return
			}
			requireRule(t, err, tc.rule)
		})
	}
}

func TestValidateAnswers_InputOnlyCheckedForFinal(t *testing.T) {
	v := NewQuestionValidator()
	noneCorrect := []models.AnswerPayload{{Text: "blue"}, {Text: "red"}}

	assert.NoError(t, v.ValidateAnswers(models.QuestionTypeInput, models.CollectionDraft, noneCorrect))
	requireRule(t, v.ValidateAnswers(models.QuestionTypeInput, models.CollectionFinal, noneCorrect), RuleInputCorrect)
	requireRule(t, v.ValidateAnswers(models.QuestionTypeInput, models.CollectionFinal, nil), RuleInputCorrect)

	oneCorrect := []models.AnswerPayload{{Text: "blue", IsCorrect: true}, {Text: "red"}}
	assert.NoError(t, v.ValidateAnswers(models.QuestionTypeInput, models.CollectionFinal, oneCorrect))

	blankCorrect := []models.AnswerPayload{{Text: "  ", IsCorrect: true}}
	requireRule(t, v.ValidateAnswers(models.QuestionTypeInput, models.CollectionFinal, blankCorrect), RuleAnswerText)
}

func TestValidateAnswerIDs(t *testing.T) {
	v := NewQuestionValidator()

	assert.NoError(t, v.ValidateAnswerIDs([]models.AnswerPayload{{ID: "a1"}, {ID: "a2"}}))
	requireRule(t, v.ValidateAnswerIDs([]models.AnswerPayload{{ID: "a1"}, {ID: " "}}), RuleAnswerIDRequired)
	requireRule(t, v.ValidateAnswerIDs([]models.AnswerPayload{{ID: "a1"}, {ID: "a1"}}), RuleAnswerIDDuplicate)
}

func TestValidateKnownAnswerIDs(t *testing.T) {
	v := NewQuestionValidator()
	stored := &models.Question{ID: "q1", Answers: []models.AnswerOption{{ID: "a1"}, {ID: "a2"}}}

	assert.NoError(t, v.ValidateKnownAnswerIDs(stored, []models.AnswerPayload{{ID: " a2"}, {ID: "a1"}}))
	requireRule(t, v.ValidateKnownAnswerIDs(stored, []models.AnswerPayload{{ID: "a1"}, {ID: "a9"}}), RuleAnswerIDUnknown)
	requireRule(t, v.ValidateKnownAnswerIDs(&models.Question{ID: "q2"}, []models.AnswerPayload{{ID: "a1"}}), RuleAnswerIDUnknown)
}

func TestParseClassification(t *testing.T) {
	v := NewQuestionValidator()

	qType, category, level, err := v.ParseClassification("mcq", "math", "BEGINNER")
	require.NoError(t, err)
	assert.Equal(t, models.QuestionTypeMCQ, qType)
	assert.Equal(t, models.CategoryMath, category)
	assert.Equal(t, models.LevelBeginner, level)

	_, _, _, err = v.ParseClassification("essay", "Math", "Beginner")
	requireRule(t, err, RuleQuestionType)

	_, _, _, err = v.ParseClassification("Input", "Physics", "Beginner")
	requireRule(t, err, RuleQuestionCategory)

	_, _, _, err = v.ParseClassification("Input", "Math", "Expert")
	requireRule(t, err, RuleQuestionLevel)
}

func TestValidateRequired(t *testing.T) {
	v := NewQuestionValidator()

	assert.NoError(t, v.ValidateRequired(Field{"text", "What?"}, Field{"level", "Beginner"}))
	requireRule(t, v.ValidateRequired(Field{"text", "What?"}, Field{"category", "   "}), RuleRequired)
}

func TestStructValidatorCustomTags(t *testing.T) {
	type request struct {
		Type     string `json:"type" validate:"question_type"`
		Category string `json:"category" validate:"question_category"`
		Level    string `json:"level" validate:"question_level"`
		Role     string `json:"role" validate:"admin_role"`
		Name     string `json:"userName" validate:"not_blank"`
	}

	v := New()
	assert.NoError(t, v.Validate(request{Type: "input", Category: "History", Level: "advanced", Role: "ADMIN", Name: "root"}))

	err := v.Validate(request{Type: "essay", Category: "History", Level: "advanced", Role: "OWNER", Name: " "})
	require.Error(t, err)
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 3)
	assert.Equal(t, "type", errs[0].Field)
	assert.Equal(t, "role", errs[1].Field)
	assert.Equal(t, "userName", errs[2].Field)
}
