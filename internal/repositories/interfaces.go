package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Types []models.QuestionType `json:"types"`
	// HideAnswerDetails drops correctness and tallies from returned options.
	HideAnswerDetails bool `json:"hide_answer_details"`
}

type AuditFilters struct {
	EventType  *models.AuditEventType `json:"event_type"`
	Collection *models.Collection     `json:"collection"`
	DateFrom   *time.Time             `json:"date_from"`
	DateTo     *time.Time             `json:"date_to"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// AdminRepository interface for admin account persistence
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByUserName(ctx context.Context, userName string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
	DeleteByUserName(ctx context.Context, userName string) (int64, error)
	ExistsByUserName(ctx context.Context, userName string, excludeID *uint) (bool, error)
	SetRefreshToken(ctx context.Context, id uint, token *string) error
	Count(ctx context.Context) (int64, error)
}

// AuditRepository interface for the mutation audit trail
type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filters AuditFilters) ([]*models.AuditLog, int64, error)
}
