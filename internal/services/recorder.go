package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"gorm.io/datatypes"
)

// Mutation describes a committed change for the audit trail and event stream.
type Mutation struct {
	AuditType   models.AuditEventType
	Collection  models.Collection
	TargetIDs   []string
	Description string
	Changes     interface{}
	Event       *events.SurveyEvent
}

// MutationRecorder writes audit rows and publishes events after a successful
// mutation. Failures are logged and never returned to the caller.
type MutationRecorder struct {
	audit     repositories.AuditRepository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewMutationRecorder(audit repositories.AuditRepository, publisher events.EventPublisher, logger *slog.Logger) *MutationRecorder {
	return &MutationRecorder{
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

func (r *MutationRecorder) Record(ctx context.Context, m Mutation) {
	if r == nil {
		return
	}

	if r.audit != nil {
		if err := r.audit.Create(ctx, r.auditLog(ctx, m)); err != nil {
			r.logger.WarnContext(ctx, "Failed to write audit log",
				"event_type", m.AuditType,
				"error", err)
		}
	}

	if r.publisher != nil && m.Event != nil {
		if actor, ok := ActorFromContext(ctx); ok {
			m.Event.Metadata = map[string]interface{}{"admin_id": actor.ID}
		}
		if err := r.publisher.PublishSurveyEvent(ctx, m.Event); err != nil {
			r.logger.WarnContext(ctx, "Failed to publish survey event",
				"event_type", m.Event.Type,
				"error", err)
		}
	}
}

func (r *MutationRecorder) auditLog(ctx context.Context, m Mutation) *models.AuditLog {
	log := &models.AuditLog{
		EventType:   m.AuditType,
		Collection:  m.Collection,
		Description: m.Description,
	}

	if actor, ok := ActorFromContext(ctx); ok {
		id := actor.ID
		log.AdminID = &id
		log.AdminName = actor.UserName
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		log.RequestID = &requestID
	}
	if len(m.TargetIDs) > 0 {
		if raw, err := json.Marshal(m.TargetIDs); err == nil {
			log.TargetIDs = datatypes.JSON(raw)
		}
	}
	if m.Changes != nil {
		if raw, err := json.Marshal(m.Changes); err == nil {
			log.Changes = datatypes.JSON(raw)
		}
	}
	return log
}
