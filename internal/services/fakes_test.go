package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/cache"
	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/SAP-F-2025/survey-service/internal/validator"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryQuestionRepo stores questions in memory and evaluates tally ops with
// the same match rules the Mongo filters use.
type memoryQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*models.Question
	order     []string
	clock     time.Time

	// failures injected by tests
	insertErr     error
	listErr       error
	rankErr       error
	listCalls     int
	beforeReplace func()
}

func newMemoryQuestionRepo() *memoryQuestionRepo {
	return &memoryQuestionRepo{
		questions: make(map[string]*models.Question),
		clock:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func cloneQuestion(q *models.Question) *models.Question {
	c := *q
	c.Answers = append([]models.AnswerOption{}, q.Answers...)
	return &c
}

func (r *memoryQuestionRepo) seed(q *models.Question) *models.Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	q.CreatedAt, q.UpdatedAt = r.clock, r.clock
	if q.Answers == nil {
		q.Answers = []models.AnswerOption{}
	}
	r.questions[q.ID] = cloneQuestion(q)
	r.order = append(r.order, q.ID)
	return q
}

func (r *memoryQuestionRepo) get(id string) *models.Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.questions[id]; ok {
		return cloneQuestion(q)
	}
	return nil
}

func (r *memoryQuestionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.questions)
}

func (r *memoryQuestionRepo) holdsKey(key models.DuplicateKey, excludeID string) *models.Question {
	for _, id := range r.order {
		q, ok := r.questions[id]
		if ok && id != excludeID && q.DuplicateKey() == key {
			return q
		}
	}
	return nil
}

func (r *memoryQuestionRepo) InsertMany(ctx context.Context, questions []*models.Question) ([]*models.Question, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	inserted := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		r.mu.Lock()
		taken := r.holdsKey(q.DuplicateKey(), "") != nil
		r.mu.Unlock()
		if taken {
			continue
		}
		inserted = append(inserted, r.seed(q))
	}
	return inserted, nil
}

func (r *memoryQuestionRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*models.Question
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			found = append(found, cloneQuestion(q))
		}
	}
	return found, nil
}

// ReplaceMany applies replacements in order and stops at the first failure,
// like an ordered bulk write.
func (r *memoryQuestionRepo) ReplaceMany(ctx context.Context, questions []*models.Question) ([]*models.Question, error) {
	if r.beforeReplace != nil {
		r.beforeReplace()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]*models.Question, 0, len(questions))
	for _, question := range questions {
		current, ok := r.questions[question.ID]
		if !ok {
			return nil, fmt.Errorf("question %s: %w", question.ID, repositories.ErrRecordNotFound)
		}
		if r.holdsKey(question.DuplicateKey(), question.ID) != nil {
			return nil, fmt.Errorf("question %s: %w", question.ID, repositories.ErrDuplicateKey)
		}
		next := cloneQuestion(question)
		next.TimesAnswered, next.TimesSkipped = current.TimesAnswered, current.TimesSkipped
		next.CreatedAt = current.CreatedAt
		r.questions[question.ID] = next
		stored = append(stored, cloneQuestion(next))
	}
	return stored, nil
}

func (r *memoryQuestionRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := r.questions[id]; ok {
			delete(r.questions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryQuestionRepo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}

	wanted := make(map[models.QuestionType]bool)
	for _, t := range filters.Types {
		wanted[t] = true
	}

	var list []*models.Question
	for _, id := range r.order {
		q, ok := r.questions[id]
		if !ok || (len(wanted) > 0 && !wanted[q.Type]) {
			continue
		}
		c := cloneQuestion(q)
		if filters.HideAnswerDetails {
			if c.Type == models.QuestionTypeInput {
				c.Answers = nil
			}
			for i := range c.Answers {
				c.Answers[i] = models.AnswerOption{ID: c.Answers[i].ID, Text: c.Answers[i].Text}
			}
		}
		list = append(list, c)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *memoryQuestionRepo) FindDuplicate(ctx context.Context, key models.DuplicateKey, excludeID string) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q := r.holdsKey(key, excludeID); q != nil {
		return cloneQuestion(q), nil
	}
	return nil, nil
}

func (r *memoryQuestionRepo) ApplyTally(ctx context.Context, ops []repositories.TallyOp) (*repositories.TallyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &repositories.TallyResult{}
	for _, op := range ops {
		q, ok := r.questions[op.QuestionID]
		if !ok {
			continue
		}

		match := -1
		for i, a := range q.Answers {
			if a.Text == op.Text {
				match = i
				break
			}
		}

		switch op.Kind {
		case repositories.TallySkip:
			q.TimesSkipped++
		case repositories.TallyIncrement:
			if match < 0 {
				continue
			}
			q.TimesAnswered++
			q.Answers[match].ResponseCount++
		case repositories.TallyAppend:
			if match >= 0 {
				continue
			}
			q.TimesAnswered++
			q.Answers = append(q.Answers, models.AnswerOption{ID: op.AnswerID, Text: op.Text, ResponseCount: 1})
		default:
			return nil, fmt.Errorf("unknown tally op %v", op.Kind)
		}
		result.Matched++
		result.Modified++
	}
	return result, nil
}

func (r *memoryQuestionRepo) ApplyRankings(ctx context.Context, rankings []repositories.QuestionRanking) (*repositories.WriteResult, error) {
	if r.rankErr != nil {
		return nil, r.rankErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &repositories.WriteResult{}
	for _, qr := range rankings {
		q, ok := r.questions[qr.QuestionID]
		if !ok {
			continue
		}
		result.Matched++
		for _, o := range qr.Options {
			if a := q.FindAnswer(o.AnswerID); a != nil {
				rank, score := o.Rank, o.Score
				a.Rank, a.Score = &rank, &score
			}
		}
		result.Modified++
	}
	return result, nil
}

func (r *memoryQuestionRepo) EnsureIndexes(ctx context.Context) error { return nil }

type memoryQuestionRepos struct {
	draft *memoryQuestionRepo
	final *memoryQuestionRepo
}

func newMemoryQuestionRepos() *memoryQuestionRepos {
	return &memoryQuestionRepos{draft: newMemoryQuestionRepo(), final: newMemoryQuestionRepo()}
}

func (r *memoryQuestionRepos) For(collection models.Collection) repositories.QuestionRepository {
	if collection == models.CollectionFinal {
		return r.final
	}
	return r.draft
}

// MockCache is a testify mock of cache.CacheService
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var _ cache.CacheService = (*MockCache)(nil)

// MockAuditRepository is a testify mock of repositories.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

// MockAdminRepository is a testify mock of repositories.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByUserName(ctx context.Context, userName string) (*models.Admin, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) DeleteByUserName(ctx context.Context, userName string) (int64, error) {
	args := m.Called(ctx, userName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepository) ExistsByUserName(ctx context.Context, userName string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, userName, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) SetRefreshToken(ctx context.Context, id uint, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// questionFixture wires a question service over in-memory collections.
type questionFixture struct {
	repos     *memoryQuestionRepos
	publisher *events.MockEventPublisher
	service   QuestionService
}

func newQuestionFixture() *questionFixture {
	repos := newMemoryQuestionRepos()
	publisher := events.NewMockEventPublisher(testLogger())
	recorder := NewMutationRecorder(nil, publisher, testLogger())
	return &questionFixture{
		repos:     repos,
		publisher: publisher,
		service:   NewQuestionService(repos, nil, time.Minute, recorder, validator.New(), testLogger()),
	}
}
