package models

import (
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionTypeMCQ   QuestionType = "MCQ"
	QuestionTypeInput QuestionType = "Input"
)

type QuestionCategory string

const (
	CategoryVocabulary QuestionCategory = "Vocabulary"
	CategoryLiterature QuestionCategory = "Literature"
	CategoryGrammar    QuestionCategory = "Grammar"
	CategoryCulture    QuestionCategory = "Culture"
	CategoryHistory    QuestionCategory = "History"
	CategoryMath       QuestionCategory = "Math"
)

type QuestionLevel string

const (
	LevelBeginner     QuestionLevel = "Beginner"
	LevelIntermediate QuestionLevel = "Intermediate"
	LevelAdvanced     QuestionLevel = "Advanced"
)

var (
	questionTypes      = []QuestionType{QuestionTypeMCQ, QuestionTypeInput}
	questionCategories = []QuestionCategory{CategoryVocabulary, CategoryLiterature, CategoryGrammar, CategoryCulture, CategoryHistory, CategoryMath}
	questionLevels     = []QuestionLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}
)

// Collection selects which question collection an operation targets.
type Collection string

const (
	CollectionDraft Collection = "draft"
	CollectionFinal Collection = "final"
)

func ParseCollection(s string) (Collection, error) {
	switch Collection(strings.ToLower(strings.TrimSpace(s))) {
	case CollectionDraft:
		return CollectionDraft, nil
	case CollectionFinal:
		return CollectionFinal, nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Question is the stored shape for both the draft and the finalized collections.
type Question struct {
	ID            string           `json:"id" bson:"_id"`
	Text          string           `json:"text" bson:"text"`
	Type          QuestionType     `json:"type" bson:"type"`
	Category      QuestionCategory `json:"category" bson:"category"`
	Level         QuestionLevel    `json:"level" bson:"level"`
	TimesSkipped  int64            `json:"timesSkipped" bson:"timesSkipped"`
	TimesAnswered int64            `json:"timesAnswered" bson:"timesAnswered"`
	Answers       []AnswerOption   `json:"answers" bson:"answers"`
	CreatedAt     time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt" bson:"updatedAt"`
}

type AnswerOption struct {
	ID            string   `json:"id" bson:"_id"`
	Text          string   `json:"text" bson:"text"`
	IsCorrect     bool     `json:"isCorrect" bson:"isCorrect"`
	ResponseCount int64    `json:"responseCount" bson:"responseCount"`
	Rank          *int     `json:"rank,omitempty" bson:"rank,omitempty"`
	Score         *float64 `json:"score,omitempty" bson:"score,omitempty"`
}

// SurveyQuestion is what survey takers see: no correctness, tallies or
// timestamps. Input questions carry no answers at all.
type SurveyQuestion struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Type     QuestionType     `json:"type"`
	Category QuestionCategory `json:"category"`
	Level    QuestionLevel    `json:"level"`
	Answers  []SurveyOption   `json:"answers,omitempty"`
}

type SurveyOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func NewSurveyQuestion(q *Question) *SurveyQuestion {
	sq := &SurveyQuestion{
		ID:       q.ID,
		Text:     q.Text,
		Type:     q.Type,
		Category: q.Category,
		Level:    q.Level,
	}
	if q.Type != QuestionTypeMCQ {
		return sq
	}
	sq.Answers = make([]SurveyOption, 0, len(q.Answers))
	for _, a := range q.Answers {
		sq.Answers = append(sq.Answers, SurveyOption{ID: a.ID, Text: a.Text})
	}
	return sq
}

// DuplicateKey is the tuple no two records of a collection may share.
type DuplicateKey struct {
	Text     string
	Type     QuestionType
	Category QuestionCategory
	Level    QuestionLevel
}

func (q *Question) DuplicateKey() DuplicateKey {
	return DuplicateKey{Text: q.Text, Type: q.Type, Category: q.Category, Level: q.Level}
}

// FindAnswer returns the option with the given id, or nil.
func (q *Question) FindAnswer(id string) *AnswerOption {
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return &q.Answers[i]
		}
	}
	return nil
}

// NormalizeText is the canonical form of question and answer text: trimmed and lowercased.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseQuestionType maps arbitrarily-cased input onto the canonical type.
func ParseQuestionType(s string) (QuestionType, error) {
	for _, t := range questionTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

func ParseQuestionCategory(s string) (QuestionCategory, error) {
	for _, c := range questionCategories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown question category %q", s)
}

func ParseQuestionLevel(s string) (QuestionLevel, error) {
	for _, l := range questionLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown question level %q", s)
}

func QuestionTypes() []QuestionType          { return append([]QuestionType(nil), questionTypes...) }
func QuestionCategories() []QuestionCategory { return append([]QuestionCategory(nil), questionCategories...) }
func QuestionLevels() []QuestionLevel        { return append([]QuestionLevel(nil), questionLevels...) }
