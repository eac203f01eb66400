package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
)

// AuditQuery holds the raw audit trail filters from a request.
type AuditQuery struct {
	EventType  string
	Collection string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 500
)

type AuditPage struct {
	Logs   []*models.AuditLog `json:"logs"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// AuditService reads the trail written by MutationRecorder.
type AuditService interface {
	List(ctx context.Context, query AuditQuery) (*AuditPage, error)
}

type auditService struct {
	repo   repositories.AuditRepository
	logger *ServiceLogger
}

func NewAuditService(repo repositories.AuditRepository, logger *slog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: NewServiceLogger(logger, LogConfig{Service: "survey-service", Component: "audit"}),
	}
}

func (s *auditService) List(ctx context.Context, query AuditQuery) (page *AuditPage, err error) {
	op := s.logger.WithOperation(ctx, "list_audit_logs", "audit_log")
	defer func() {
		var count int
		if page != nil {
			count = len(page.Logs)
		}
		op.LogResult(count, err)
	}()

	switch {
	case query.Limit <= 0:
		query.Limit = defaultAuditPageSize
	case query.Limit > maxAuditPageSize:
		query.Limit = maxAuditPageSize
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	filters := repositories.AuditFilters{Limit: query.Limit, Offset: query.Offset}
	if query.EventType != "" {
		eventType := models.AuditEventType(query.EventType)
		if !eventType.Valid() {
			return nil, invalidInputf("unknown audit event type %q", query.EventType)
		}
		filters.EventType = &eventType
	}
	if query.Collection != "" {
		collection, err := models.ParseCollection(query.Collection)
		if err != nil {
			return nil, invalidInput(NewValidationError("collection", err.Error(), query.Collection))
		}
		filters.Collection = &collection
	}
	if query.DateFrom != nil && query.DateTo != nil && query.DateTo.Before(*query.DateFrom) {
		return nil, invalidInputf("dateTo must not be before dateFrom")
	}
	filters.DateFrom, filters.DateTo = query.DateFrom, query.DateTo

	logs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, internal("failed to list audit logs", err)
	}

	return &AuditPage{Logs: logs, Total: total, Limit: query.Limit, Offset: query.Offset}, nil
}
