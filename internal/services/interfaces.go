package services

import (
	"context"

	"github.com/SAP-F-2025/survey-service/internal/models"
)

// QuestionService reconciles admin question batches against one collection.
type QuestionService interface {
	AddQuestions(ctx context.Context, collection models.Collection, items []QuestionInput) ([]*models.Question, error)
	UpdateQuestions(ctx context.Context, collection models.Collection, items []QuestionUpdateInput) ([]*models.Question, error)
	DeleteQuestions(ctx context.Context, collection models.Collection, items []models.QuestionRef) (*DeleteResult, error)

	ListForAdmin(ctx context.Context, collection models.Collection) ([]*models.Question, error)
	ListForUser(ctx context.Context, collection models.Collection, types []models.QuestionType) ([]*models.SurveyQuestion, error)
}

// RankingService ranks the correct answers of every question by popularity.
type RankingService interface {
	RankCollection(ctx context.Context, collection models.Collection) (*RankingResult, error)
}

// AnswerService tallies survey submissions onto draft questions.
type AnswerService interface {
	AddAnswers(ctx context.Context, questions []models.QuestionRef, answers []models.AnswerSubmission) error
}

type AdminService interface {
	Create(ctx context.Context, req *CreateAdminRequest) (*models.Admin, error)
	Get(ctx context.Context, userName string) (*models.Admin, error)
	Update(ctx context.Context, userName string, req *UpdateAdminRequest) (*models.Admin, error)
	Delete(ctx context.Context, userName string) error

	Login(ctx context.Context, userName, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, adminID uint) error
	EnsureBootstrapAdmin(ctx context.Context, userName, password string) error
}

// ===== REQUEST / RESPONSE TYPES =====

// QuestionInput is one raw question of an add batch.
type QuestionInput struct {
	Text     string                 `json:"text"`
	Type     string                 `json:"type"`
	Category string                 `json:"category"`
	Level    string                 `json:"level"`
	Answers  []models.AnswerPayload `json:"answers" validate:"dive"`

	// Carried into the finalized collection when promoting a draft question.
	TimesSkipped  *int64 `json:"timesSkipped,omitempty" validate:"omitempty,min=0"`
	TimesAnswered *int64 `json:"timesAnswered,omitempty" validate:"omitempty,min=0"`
}

// QuestionUpdateInput replaces every field of the question with the given id.
// A nil Answers leaves the stored options untouched.
type QuestionUpdateInput struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Type     string                 `json:"type"`
	Category string                 `json:"category"`
	Level    string                 `json:"level"`
	Answers  []models.AnswerPayload `json:"answers" validate:"dive"`
}

type DeleteResult struct {
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}

type RankingResult struct {
	TotalQuestions int   `json:"totalQuestions"`
	ProcessedCount int   `json:"processedCount"`
	SkippedCount   int   `json:"skippedCount"`
	UpdatedCount   int64 `json:"updatedCount"`
	FailedCount    int64 `json:"failedCount"`
	AnswersRanked  int   `json:"answersRanked"`
	AnswersScored  int   `json:"answersScored"`
}

type CreateAdminRequest struct {
	UserName string           `json:"userName" validate:"required,not_blank,max=100"`
	Password string           `json:"password" validate:"required,min=8,max=72"`
	Role     models.AdminRole `json:"role" validate:"required,admin_role"`
}

type UpdateAdminRequest struct {
	UserName *string           `json:"userName,omitempty" validate:"omitempty,not_blank,max=100"`
	Password *string           `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Role     *models.AdminRole `json:"role,omitempty" validate:"omitempty,admin_role"`
}

type LoginResult struct {
	Admin        *models.Admin `json:"admin"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}
