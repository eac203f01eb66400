package repositories

import (
	"context"

	"github.com/SAP-F-2025/survey-service/internal/models"
)

// QuestionRepository interface for one question collection (draft or finalized)
type QuestionRepository interface {
	// Bulk operations
	InsertMany(ctx context.Context, questions []*models.Question) ([]*models.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)
	// ReplaceMany writes every replacement in one ordered bulk write and
	// returns the stored records in input order.
	ReplaceMany(ctx context.Context, questions []*models.Question) ([]*models.Question, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, error)

	// Validation and checks
	FindDuplicate(ctx context.Context, key models.DuplicateKey, excludeID string) (*models.Question, error)

	// Response tallying; ops are applied in order
	ApplyTally(ctx context.Context, ops []TallyOp) (*TallyResult, error)

	// Ranking; sets rank and score on the named options only
	ApplyRankings(ctx context.Context, rankings []QuestionRanking) (*WriteResult, error)

	EnsureIndexes(ctx context.Context) error
}

// QuestionRepositories resolves the repository for a caller-selected collection.
type QuestionRepositories interface {
	For(collection models.Collection) QuestionRepository
}

type TallyOpKind int

const (
	// TallySkip increments timesSkipped.
	TallySkip TallyOpKind = iota
	// TallyIncrement bumps an existing option whose text equals Text.
	TallyIncrement
	// TallyAppend pushes a new option when no option has Text.
	TallyAppend
)

func (k TallyOpKind) String() string {
	switch k {
	case TallySkip:
		return "skip"
	case TallyIncrement:
		return "increment"
	case TallyAppend:
		return "append"
	}
	return "unknown"
}

// TallyOp is one conditional update of a tally batch.
type TallyOp struct {
	Kind       TallyOpKind
	QuestionID string
	Text       string
	// AnswerID is the id given to the option created by a TallyAppend.
	AnswerID string
}

type TallyResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// OptionRanking is the computed rank and score of one answer option.
type OptionRanking struct {
	AnswerID string
	Rank     int
	Score    float64
}

type QuestionRanking struct {
	QuestionID string
	Options    []OptionRanking
}

type WriteResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}
