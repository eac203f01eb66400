package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditQuestionsAdded   AuditEventType = "questions_added"
	AuditQuestionsUpdated AuditEventType = "questions_updated"
	AuditQuestionsDeleted AuditEventType = "questions_deleted"
	AuditAnswersTallied   AuditEventType = "answers_tallied"
	AuditAnswersRanked    AuditEventType = "answers_ranked"
	AuditAdminCreated     AuditEventType = "admin_created"
	AuditAdminUpdated     AuditEventType = "admin_updated"
	AuditAdminDeleted     AuditEventType = "admin_deleted"
	AuditAdminLogin       AuditEventType = "admin_login"
)

func (t AuditEventType) Valid() bool {
	switch t {
	case AuditQuestionsAdded, AuditQuestionsUpdated, AuditQuestionsDeleted, AuditAnswersTallied, AuditAnswersRanked,
		AuditAdminCreated, AuditAdminUpdated, AuditAdminDeleted, AuditAdminLogin:
		return true
	}
	return false
}

type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;index;size:50"`

	// Actor; empty for anonymous survey submissions
	AdminID   *uint  `json:"admin_id" gorm:"index"`
	AdminName string `json:"admin_name" gorm:"size:100"`

	Collection Collection     `json:"collection" gorm:"size:20;index"`
	TargetIDs  datatypes.JSON `json:"target_ids" gorm:"type:jsonb"`

	Description string         `json:"description" gorm:"not null;type:text"`
	Changes     datatypes.JSON `json:"changes" gorm:"type:jsonb"`

	RequestID *string `json:"request_id" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
