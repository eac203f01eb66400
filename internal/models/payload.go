package models

// AnswerPayload is an answer option as submitted by admins on add and update.
type AnswerPayload struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	IsCorrect     bool     `json:"isCorrect"`
	ResponseCount *int64   `json:"responseCount,omitempty" validate:"omitempty,min=0"`
	Rank          *int     `json:"rank,omitempty" validate:"omitempty,min=1"`
	Score         *float64 `json:"score,omitempty" validate:"omitempty,min=0"`
}

// QuestionRef identifies a question in survey submissions and deletes.
type QuestionRef struct {
	ID string `json:"id"`
}

// AnswerSubmission is a survey taker's free-text answer.
type AnswerSubmission struct {
	Text string `json:"text"`
}
