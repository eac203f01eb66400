package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/cache"
	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/SAP-F-2025/survey-service/internal/validator"
	"github.com/google/uuid"
)

const adminListCacheKeyPrefix = "questions:admin:"

func adminListCacheKey(collection models.Collection) string {
	return adminListCacheKeyPrefix + string(collection)
}

type questionService struct {
	repos     repositories.QuestionRepositories
	cache     cache.CacheService
	cacheTTL  time.Duration
	recorder  *MutationRecorder
	validator *validator.Validator
	logger    *ServiceLogger
	newID     func() string
}

func NewQuestionService(
	repos repositories.QuestionRepositories,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	recorder *MutationRecorder,
	validator *validator.Validator,
	logger *slog.Logger,
) QuestionService {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	return &questionService{
		repos:     repos,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		recorder:  recorder,
		validator: validator,
		logger:    NewServiceLogger(logger, LogConfig{Service: "survey-service", Component: "questions"}),
		newID:     uuid.NewString,
	}
}

// ===== ADD =====

func (s *questionService) AddQuestions(ctx context.Context, collection models.Collection, items []QuestionInput) (inserted []*models.Question, err error) {
	op := s.logger.WithOperation(ctx, "add_questions", string(collection))
	defer func() { op.LogResult(len(inserted), err) }()

	if len(items) == 0 {
		return nil, invalidInputf("questions must be a non-empty list")
	}

	// Every item is validated before the first read or write.
	candidates := make([]*models.Question, 0, len(items))
	for i := range items {
		q, buildErr := s.buildQuestion(collection, &items[i])
		if buildErr != nil {
			return nil, invalidInputAt(i, buildErr)
		}
		candidates = append(candidates, q)
	}

	repo := s.repos.For(collection)
	survivors, err := s.dropDuplicates(ctx, repo, candidates)
	if err != nil {
		return nil, err
	}
	if len(survivors) == 0 {
		return nil, newServiceError(KindAllDuplicates, "questions provided are duplicates including all the fields", nil)
	}

	inserted, err = repo.InsertMany(ctx, survivors)
	if err != nil {
		return nil, internal("failed to insert questions", err)
	}
	// Every survivor lost an insert race to an identical concurrent add.
	if len(inserted) == 0 {
		return nil, newServiceError(KindAllDuplicates, "questions provided are duplicates including all the fields", nil)
	}

	ids := questionIDs(inserted)
	s.afterMutation(ctx, collection, Mutation{
		AuditType:   models.AuditQuestionsAdded,
		Collection:  collection,
		TargetIDs:   ids,
		Description: fmt.Sprintf("added %d of %d question(s)", len(inserted), len(items)),
		Event:       events.NewQuestionsChangedEvent(events.EventQuestionsAdded, collection, ids),
	})

	return inserted, nil
}

func (s *questionService) buildQuestion(collection models.Collection, in *QuestionInput) (*models.Question, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	qv := s.validator.Question()
	if err := qv.ValidateRequired(
		validator.Field{Name: "text", Value: in.Text},
		validator.Field{Name: "type", Value: in.Type},
		validator.Field{Name: "category", Value: in.Category},
		validator.Field{Name: "level", Value: in.Level},
	); err != nil {
		return nil, err
	}

	qType, category, level, err := qv.ParseClassification(in.Type, in.Category, in.Level)
	if err != nil {
		return nil, err
	}
	if err := qv.ValidateAnswers(qType, collection, in.Answers); err != nil {
		return nil, err
	}

	q := &models.Question{
		ID:       s.newID(),
		Text:     models.NormalizeText(in.Text),
		Type:     qType,
		Category: category,
		Level:    level,
		Answers:  s.buildAnswers(collection, qType, in.Answers),
	}

	if collection == models.CollectionFinal {
		q.TimesSkipped = derefInt64(in.TimesSkipped)
		q.TimesAnswered = derefInt64(in.TimesAnswered)
	}

	return q, nil
}

// buildAnswers assigns fresh ids. Draft MCQ options start untallied and draft
// Input questions carry none; finalized Input keeps only its correct answers.
func (s *questionService) buildAnswers(collection models.Collection, qType models.QuestionType, payloads []models.AnswerPayload) []models.AnswerOption {
	answers := make([]models.AnswerOption, 0, len(payloads))

	if collection == models.CollectionDraft {
		if qType != models.QuestionTypeMCQ {
			return answers
		}
		for _, p := range payloads {
			answers = append(answers, models.AnswerOption{
				ID:        s.newID(),
				Text:      models.NormalizeText(p.Text),
				IsCorrect: p.IsCorrect,
			})
		}
		return answers
	}

	for _, p := range payloads {
		if qType == models.QuestionTypeInput && !p.IsCorrect {
			continue
		}
		answers = append(answers, models.AnswerOption{
			ID:            s.newID(),
			Text:          models.NormalizeText(p.Text),
			IsCorrect:     p.IsCorrect,
			ResponseCount: derefInt64(p.ResponseCount),
			Rank:          p.Rank,
			Score:         p.Score,
		})
	}
	return answers
}

// dropDuplicates skips candidates whose key already exists in the collection
// or was claimed by an earlier candidate of the same batch.
func (s *questionService) dropDuplicates(ctx context.Context, repo repositories.QuestionRepository, candidates []*models.Question) ([]*models.Question, error) {
	seen := make(map[models.DuplicateKey]bool, len(candidates))
	survivors := make([]*models.Question, 0, len(candidates))

	for _, q := range candidates {
		key := q.DuplicateKey()
		if seen[key] {
			s.logger.Debug(ctx, "Skipping duplicate within batch", "text", q.Text)
			continue
		}
		seen[key] = true

		existing, err := repo.FindDuplicate(ctx, key, "")
		if err != nil {
			return nil, internal("failed to check for duplicate questions", err)
		}
		if existing != nil {
			s.logger.Debug(ctx, "Skipping existing question", "text", q.Text, "existing_id", existing.ID)
			continue
		}
		survivors = append(survivors, q)
	}

	return survivors, nil
}

// ===== UPDATE =====

type plannedUpdate struct {
	input    *QuestionUpdateInput
	qType    models.QuestionType
	category models.QuestionCategory
	level    models.QuestionLevel
}

func (s *questionService) UpdateQuestions(ctx context.Context, collection models.Collection, items []QuestionUpdateInput) (updated []*models.Question, err error) {
	op := s.logger.WithOperation(ctx, "update_questions", string(collection))
	defer func() { op.LogResult(len(updated), err) }()

	if len(items) == 0 {
		return nil, invalidInputf("questions must be a non-empty list")
	}

	plans, err := s.planUpdates(items, collection)
	if err != nil {
		return nil, err
	}

	repo := s.repos.For(collection)

	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.input.ID
	}
	existing, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internal("failed to load questions for update", err)
	}
	byID := make(map[string]*models.Question, len(existing))
	for _, q := range existing {
		byID[q.ID] = q
	}

	replacements := make([]*models.Question, len(plans))
	claimed := make(map[models.DuplicateKey]string, len(plans))
	for i, p := range plans {
		current, ok := byID[p.input.ID]
		if !ok {
			return nil, notFoundf("item %d: question %s not found", i, p.input.ID)
		}

		next, err := s.applyUpdate(collection, current, p)
		if err != nil {
			return nil, invalidInputAt(i, err)
		}

		key := next.DuplicateKey()
		if other, taken := claimed[key]; taken {
			return nil, conflictf("item %d: question %s claims the same text, type, category and level as question %s", i, next.ID, other)
		}
		claimed[key] = next.ID

		dup, err := repo.FindDuplicate(ctx, key, next.ID)
		if err != nil {
			return nil, internal("failed to check for duplicate questions", err)
		}
		if dup != nil {
			return nil, conflictf("item %d: question %s already has the same text, type, category and level", i, dup.ID)
		}

		replacements[i] = next
	}

	updated, err = repo.ReplaceMany(ctx, replacements)
	if err != nil {
		switch {
		case repositories.IsNotFoundError(err):
			return nil, notFoundf("a question was deleted before it could be updated: %v", err)
		case repositories.IsDuplicateKeyError(err):
			return nil, conflictf("another question already has the same text, type, category and level: %v", err)
		}
		return nil, internal("failed to update questions", err)
	}

	s.afterMutation(ctx, collection, Mutation{
		AuditType:   models.AuditQuestionsUpdated,
		Collection:  collection,
		TargetIDs:   ids,
		Description: fmt.Sprintf("updated %d question(s)", len(updated)),
		Changes:     items,
		Event:       events.NewQuestionsChangedEvent(events.EventQuestionsUpdated, collection, ids),
	})

	return updated, nil
}

// planUpdates runs the checks that need no stored state.
func (s *questionService) planUpdates(items []QuestionUpdateInput, collection models.Collection) ([]plannedUpdate, error) {
	qv := s.validator.Question()
	plans := make([]plannedUpdate, 0, len(items))
	seenIDs := make(map[string]int, len(items))

	for i := range items {
		in := &items[i]
		in.ID = strings.TrimSpace(in.ID)

		if err := s.validator.Validate(in); err != nil {
			return nil, invalidInputAt(i, err)
		}
		if err := qv.ValidateRequired(
			validator.Field{Name: "id", Value: in.ID},
			validator.Field{Name: "text", Value: in.Text},
			validator.Field{Name: "type", Value: in.Type},
			validator.Field{Name: "category", Value: in.Category},
			validator.Field{Name: "level", Value: in.Level},
		); err != nil {
			return nil, invalidInputAt(i, err)
		}
		if first, dup := seenIDs[in.ID]; dup {
			return nil, invalidInputf("item %d: question %s is already updated by item %d", i, in.ID, first)
		}
		seenIDs[in.ID] = i

		qType, category, level, err := qv.ParseClassification(in.Type, in.Category, in.Level)
		if err != nil {
			return nil, invalidInputAt(i, err)
		}

		if in.Answers != nil {
			if err := qv.ValidateAnswerIDs(in.Answers); err != nil {
				return nil, invalidInputAt(i, err)
			}
			if err := qv.ValidateAnswers(qType, collection, in.Answers); err != nil {
				return nil, invalidInputAt(i, err)
			}
		}

		plans = append(plans, plannedUpdate{input: in, qType: qType, category: category, level: level})
	}

	return plans, nil
}

// applyUpdate builds the replacement record. Supplied answers replace the
// stored ones wholesale and must each name a stored option; omitted answers
// are kept but must still satisfy the (possibly changed) type.
func (s *questionService) applyUpdate(collection models.Collection, current *models.Question, p plannedUpdate) (*models.Question, error) {
	next := *current
	next.Text = models.NormalizeText(p.input.Text)
	next.Type = p.qType
	next.Category = p.category
	next.Level = p.level

	if p.input.Answers == nil {
		if err := s.validator.Question().ValidateAnswers(p.qType, collection, answerPayloads(current.Answers)); err != nil {
			return nil, err
		}
		next.Answers = append([]models.AnswerOption(nil), current.Answers...)
		return &next, nil
	}

	if err := s.validator.Question().ValidateKnownAnswerIDs(current, p.input.Answers); err != nil {
		return nil, err
	}

	next.Answers = make([]models.AnswerOption, 0, len(p.input.Answers))
	for _, a := range p.input.Answers {
		option := models.AnswerOption{
			ID:        strings.TrimSpace(a.ID),
			Text:      models.NormalizeText(a.Text),
			IsCorrect: a.IsCorrect,
			Rank:      a.Rank,
			Score:     a.Score,
		}

		previous := current.FindAnswer(option.ID)
		option.ResponseCount = previous.ResponseCount
		if a.ResponseCount != nil {
			option.ResponseCount = *a.ResponseCount
		}
		if option.Rank == nil {
			option.Rank = previous.Rank
		}
		if option.Score == nil {
			option.Score = previous.Score
		}

		next.Answers = append(next.Answers, option)
	}

	return &next, nil
}

// ===== DELETE =====

func (s *questionService) DeleteQuestions(ctx context.Context, collection models.Collection, items []models.QuestionRef) (result *DeleteResult, err error) {
	op := s.logger.WithOperation(ctx, "delete_questions", string(collection))
	defer func() {
		var count int
		if result != nil {
			count = int(result.DeletedCount)
		}
		op.LogResult(count, err)
	}()

	ids := validQuestionIDs(items)
	if len(ids) == 0 {
		return nil, invalidInputf("no valid question ids provided")
	}

	deleted, err := s.repos.For(collection).DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, internal("failed to delete questions", err)
	}

	if deleted == 0 {
		return &DeleteResult{DeletedCount: 0, Message: "no questions matched the given ids"},
			notFoundf("no questions found for the given ids")
	}

	s.afterMutation(ctx, collection, Mutation{
		AuditType:   models.AuditQuestionsDeleted,
		Collection:  collection,
		TargetIDs:   ids,
		Description: fmt.Sprintf("deleted %d of %d requested question(s)", deleted, len(ids)),
		Event:       events.NewQuestionsChangedEvent(events.EventQuestionsDeleted, collection, ids),
	})

	return &DeleteResult{
		DeletedCount: deleted,
		Message:      fmt.Sprintf("%d question(s) deleted successfully.", deleted),
	}, nil
}

// validQuestionIDs trims, drops blanks and de-duplicates while keeping order.
func validQuestionIDs(items []models.QuestionRef) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// ===== READS =====

func (s *questionService) ListForAdmin(ctx context.Context, collection models.Collection) (questions []*models.Question, err error) {
	op := s.logger.WithOperation(ctx, "list_questions_admin", string(collection))
	defer func() { op.LogResult(len(questions), err) }()

	key := adminListCacheKey(collection)
	if err := s.cache.Get(ctx, key, &questions); err == nil {
		return questions, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn(ctx, "Question cache read failed", "key", key, "error", err)
	}

	questions, err = s.repos.For(collection).List(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, internal("failed to retrieve questions", err)
	}

	if err := s.cache.Set(ctx, key, questions, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "Question cache write failed", "key", key, "error", err)
	}
	return questions, nil
}

func (s *questionService) ListForUser(ctx context.Context, collection models.Collection, types []models.QuestionType) (survey []*models.SurveyQuestion, err error) {
	op := s.logger.WithOperation(ctx, "list_questions_user", string(collection))
	defer func() { op.LogResult(len(survey), err) }()

	if len(types) == 0 {
		types = models.QuestionTypes()
	}

	questions, err := s.repos.For(collection).List(ctx, repositories.QuestionFilters{
		Types:             types,
		HideAnswerDetails: true,
	})
	if err != nil {
		return nil, internal("failed to retrieve questions", err)
	}

	survey = make([]*models.SurveyQuestion, 0, len(questions))
	for _, q := range questions {
		survey = append(survey, models.NewSurveyQuestion(q))
	}
	return survey, nil
}

// ===== HELPERS =====

func (s *questionService) afterMutation(ctx context.Context, collection models.Collection, m Mutation) {
	invalidateAdminList(ctx, s.cache, s.logger, collection)
	s.recorder.Record(ctx, m)
}

func invalidateAdminList(ctx context.Context, c cache.CacheService, logger *ServiceLogger, collection models.Collection) {
	key := adminListCacheKey(collection)
	if err := c.Delete(ctx, key); err != nil {
		logger.Warn(ctx, "Question cache invalidation failed", "key", key, "error", err)
	}
}

func questionIDs(questions []*models.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func answerPayloads(options []models.AnswerOption) []models.AnswerPayload {
	payloads := make([]models.AnswerPayload, len(options))
	for i, o := range options {
		payloads[i] = models.AnswerPayload{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return payloads
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
