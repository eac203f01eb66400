package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/cache"
	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/google/uuid"
)

type answerService struct {
	repos    repositories.QuestionRepositories
	cache    cache.CacheService
	recorder *MutationRecorder
	logger   *ServiceLogger
	newID    func() string
}

func NewAnswerService(
	repos repositories.QuestionRepositories,
	cacheService cache.CacheService,
	recorder *MutationRecorder,
	logger *slog.Logger,
) AnswerService {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	return &answerService{
		repos:    repos,
		cache:    cacheService,
		recorder: recorder,
		logger:   NewServiceLogger(logger, LogConfig{Service: "survey-service", Component: "answers"}),
		newID:    uuid.NewString,
	}
}

// AddAnswers tallies answers[i] against questions[i] on the draft collection.
// A missing answers[i] counts as a skip. Unknown question ids match nothing
// and are not an error.
func (s *answerService) AddAnswers(ctx context.Context, questions []models.QuestionRef, answers []models.AnswerSubmission) (err error) {
	var ops []repositories.TallyOp
	op := s.logger.WithOperation(ctx, "add_answers", string(models.CollectionDraft))
	defer func() { op.LogResult(len(ops), err) }()

	if len(questions) == 0 {
		return invalidInputf("questions must be a non-empty list")
	}
	if len(answers) > len(questions) {
		return invalidInputf("received %d answers for %d questions", len(answers), len(questions))
	}

	ops, err = buildTallyOps(questions, answers, s.newID)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return invalidInputf("no answers to record")
	}

	result, err := s.repos.For(models.CollectionDraft).ApplyTally(ctx, ops)
	if err != nil {
		return internal("failed to record answers", err)
	}

	answered, skipped := countTally(ops)
	ids := tallyQuestionIDs(ops)

	invalidateAdminList(ctx, s.cache, s.logger, models.CollectionDraft)
	s.recorder.Record(ctx, Mutation{
		AuditType:   models.AuditAnswersTallied,
		Collection:  models.CollectionDraft,
		TargetIDs:   ids,
		Description: fmt.Sprintf("tallied %d answer(s) and %d skip(s)", answered, skipped),
		Changes:     result,
		Event:       events.NewTallyRecordedEvent(ids, answered, skipped, result.Matched, result.Modified),
	})

	return nil
}

// buildTallyOps turns each pair into a skip op, or an increment op followed by
// its append twin. The twins have mutually exclusive filters, so exactly one
// of them applies.
func buildTallyOps(questions []models.QuestionRef, answers []models.AnswerSubmission, newID func() string) ([]repositories.TallyOp, error) {
	ops := make([]repositories.TallyOp, 0, 2*len(questions))

	for i, q := range questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return nil, invalidInputf("item %d: question id is required", i)
		}

		var text string
		if i < len(answers) {
			text = models.NormalizeText(answers[i].Text)
		}

		if text == "" {
			ops = append(ops, repositories.TallyOp{Kind: repositories.TallySkip, QuestionID: id})
			continue
		}

		ops = append(ops,
			repositories.TallyOp{Kind: repositories.TallyIncrement, QuestionID: id, Text: text},
			repositories.TallyOp{Kind: repositories.TallyAppend, QuestionID: id, Text: text, AnswerID: newID()},
		)
	}

	return ops, nil
}

func countTally(ops []repositories.TallyOp) (answered, skipped int) {
	for _, op := range ops {
		switch op.Kind {
		case repositories.TallySkip:
			skipped++
		case repositories.TallyIncrement:
			answered++
		}
	}
	return answered, skipped
}

func tallyQuestionIDs(ops []repositories.TallyOp) []string {
	seen := make(map[string]bool, len(ops))
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		if !seen[op.QuestionID] {
			seen[op.QuestionID] = true
			ids = append(ids, op.QuestionID)
		}
	}
	return ids
}
