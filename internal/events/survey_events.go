package events

import (
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the kinds of survey domain events
type EventType string

const (
	// Question events
	EventQuestionsAdded   EventType = "questions.added"
	EventQuestionsUpdated EventType = "questions.updated"
	EventQuestionsDeleted EventType = "questions.deleted"

	// Tally events
	EventTallyRecorded EventType = "tally.recorded"
	EventAnswersRanked EventType = "answers.ranked"
)

const (
	eventSource  = "survey-service"
	eventVersion = "1.0"
)

// SurveyEvent is the envelope for every event published by the service
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Payloads

type QuestionsChangedEvent struct {
	Collection  models.Collection `json:"collection"`
	QuestionIDs []string          `json:"questionIds"`
	Count       int               `json:"count"`
}

type TallyRecordedEvent struct {
	QuestionIDs []string `json:"questionIds"`
	Answered    int      `json:"answered"`
	Skipped     int      `json:"skipped"`
	Matched     int64    `json:"matched"`
	Modified    int64    `json:"modified"`
}

type AnswersRankedEvent struct {
	Collection    models.Collection `json:"collection"`
	QuestionIDs   []string          `json:"questionIds"`
	AnswersRanked int               `json:"answersRanked"`
	AnswersScored int               `json:"answersScored"`
}

// Event factory functions

func NewQuestionsChangedEvent(eventType EventType, collection models.Collection, ids []string) *SurveyEvent {
	return newSurveyEvent(eventType, QuestionsChangedEvent{
		Collection:  collection,
		QuestionIDs: ids,
		Count:       len(ids),
	})
}

func NewTallyRecordedEvent(ids []string, answered, skipped int, matched, modified int64) *SurveyEvent {
	return newSurveyEvent(EventTallyRecorded, TallyRecordedEvent{
		QuestionIDs: ids,
		Answered:    answered,
		Skipped:     skipped,
		Matched:     matched,
		Modified:    modified,
	})
}

func NewAnswersRankedEvent(collection models.Collection, ids []string, ranked, scored int) *SurveyEvent {
	return newSurveyEvent(EventAnswersRanked, AnswersRankedEvent{
		Collection:    collection,
		QuestionIDs:   ids,
		AnswersRanked: ranked,
		AnswersScored: scored,
	})
}

func newSurveyEvent(eventType EventType, data interface{}) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func GenerateEventID() string {
	return uuid.NewString()
}
