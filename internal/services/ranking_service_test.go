package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rankOf(a models.AnswerOption) (int, float64) {
	if a.Rank == nil || a.Score == nil {
		return -1, -1
	}
	return *a.Rank, *a.Score
}

func TestRankAnswers(t *testing.T) {
	scoring := []float64{100, 80, 60}

	t.Run("orders correct answers by popularity", func(t *testing.T) {
		answers := []models.AnswerOption{
			{ID: "a", IsCorrect: true, ResponseCount: 2},
			{ID: "b", IsCorrect: true, ResponseCount: 7},
			{ID: "c", IsCorrect: true, ResponseCount: 4},
		}

		ranked, rankedCount, scoredCount := RankAnswers(answers, scoring)

		require.Len(t, ranked, 3)
		assert.Equal(t, []string{"b", "c", "a"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
		for i, want := range []float64{100, 80, 60} {
			rank, score := rankOf(ranked[i])
			assert.Equal(t, i+1, rank)
			assert.Equal(t, want, score)
		}
		assert.Equal(t, 3, rankedCount)
		assert.Equal(t, 3, scoredCount)

		// input left untouched
		assert.Nil(t, answers[0].Rank)
	})

	t.Run("ties keep stored order", func(t *testing.T) {
		ranked, _, _ := RankAnswers([]models.AnswerOption{
			{ID: "first", IsCorrect: true, ResponseCount: 3},
			{ID: "second", IsCorrect: true, ResponseCount: 3},
		}, scoring)

		assert.Equal(t, "first", ranked[0].ID)
		assert.Equal(t, "second", ranked[1].ID)
	})

	t.Run("incorrect answers get rank and score zero", func(t *testing.T) {
		ranked, rankedCount, scoredCount := RankAnswers([]models.AnswerOption{
			{ID: "wrong", ResponseCount: 50},
			{ID: "right", IsCorrect: true, ResponseCount: 1},
		}, scoring)

		require.Len(t, ranked, 2)
		assert.Equal(t, "right", ranked[0].ID)
		assert.Equal(t, "wrong", ranked[1].ID)
		rank, score := rankOf(ranked[1])
		assert.Equal(t, 0, rank)
		assert.Equal(t, 0.0, score)
		assert.Equal(t, 1, rankedCount)
		assert.Equal(t, 1, scoredCount)
	})

	t.Run("ranks past the scoring table score zero", func(t *testing.T) {
		ranked, rankedCount, scoredCount := RankAnswers([]models.AnswerOption{
			{ID: "a", IsCorrect: true, ResponseCount: 4},
			{ID: "b", IsCorrect: true, ResponseCount: 3},
			{ID: "c", IsCorrect: true, ResponseCount: 2},
			{ID: "d", IsCorrect: true, ResponseCount: 1},
		}, scoring)

		rank, score := rankOf(ranked[3])
		assert.Equal(t, 4, rank)
		assert.Equal(t, 0.0, score)
		assert.Equal(t, 4, rankedCount)
		assert.Equal(t, 3, scoredCount)
	})
}

func TestRankingService_RankCollection(t *testing.T) {
	ctx := context.Background()

	type rankingFixture struct {
		repos     *memoryQuestionRepos
		publisher *events.MockEventPublisher
		service   RankingService
	}

	newFixture := func(scoring []float64) *rankingFixture {
		repos := newMemoryQuestionRepos()
		publisher := events.NewMockEventPublisher(testLogger())
		recorder := NewMutationRecorder(nil, publisher, testLogger())
		return &rankingFixture{
			repos:     repos,
			publisher: publisher,
			service:   NewRankingService(repos, nil, scoring, recorder, testLogger()),
		}
	}

	seed := func(f *rankingFixture) {
		f.repos.final.seed(&models.Question{
			ID:   "ranked",
			Text: "name a prime",
			Type: models.QuestionTypeMCQ,
			Answers: []models.AnswerOption{
				{ID: "r1", Text: "2", IsCorrect: true, ResponseCount: 3},
				{ID: "r2", Text: "4", ResponseCount: 10},
				{ID: "r3", Text: "7", IsCorrect: true, ResponseCount: 8},
			},
		})
		f.repos.final.seed(&models.Question{
			ID:   "no-correct",
			Text: "favourite colour",
			Type: models.QuestionTypeMCQ,
			Answers: []models.AnswerOption{
				{ID: "n1", Text: "red", ResponseCount: 4},
			},
		})
		f.repos.final.seed(&models.Question{ID: "empty", Text: "describe yourself", Type: models.QuestionTypeInput})
	}

	t.Run("ranks correct answers and skips the rest", func(t *testing.T) {
		f := newFixture(nil)
		seed(f)

		result, err := f.service.RankCollection(ctx, models.CollectionFinal)
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalQuestions)
		assert.Equal(t, 1, result.ProcessedCount)
		assert.Equal(t, 2, result.SkippedCount)
		assert.Equal(t, int64(1), result.UpdatedCount)
		assert.Zero(t, result.FailedCount)
		assert.Equal(t, 2, result.AnswersRanked)
		assert.Equal(t, 2, result.AnswersScored)

		q := f.repos.final.get("ranked")
		rank, score := rankOf(*q.FindAnswer("r3"))
		assert.Equal(t, 1, rank)
		assert.Equal(t, 100.0, score)
		rank, score = rankOf(*q.FindAnswer("r1"))
		assert.Equal(t, 2, rank)
		assert.Equal(t, 80.0, score)
		rank, score = rankOf(*q.FindAnswer("r2"))
		assert.Equal(t, 0, rank)
		assert.Equal(t, 0.0, score)

		// skipped questions are never written
		assert.Nil(t, f.repos.final.get("no-correct").Answers[0].Rank)
		// stored order is kept
		assert.Equal(t, "r1", q.Answers[0].ID)
	})

	t.Run("uses the configured scoring values", func(t *testing.T) {
		f := newFixture([]float64{10})
		seed(f)

		result, err := f.service.RankCollection(ctx, models.CollectionFinal)
		require.NoError(t, err)
		assert.Equal(t, 1, result.AnswersScored)

		_, score := rankOf(*f.repos.final.get("ranked").FindAnswer("r1"))
		assert.Equal(t, 0.0, score)
	})

	t.Run("records the ranking event", func(t *testing.T) {
		f := newFixture(nil)
		seed(f)

		_, err := f.service.RankCollection(ctx, models.CollectionFinal)
		require.NoError(t, err)

		published := f.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAnswersRanked, published[0].Type)
		data, ok := published[0].Data.(events.AnswersRankedEvent)
		require.True(t, ok)
		assert.Equal(t, models.CollectionFinal, data.Collection)
		assert.Equal(t, []string{"ranked"}, data.QuestionIDs)
		assert.Equal(t, 2, data.AnswersRanked)
	})

	t.Run("invalidates the admin list cache", func(t *testing.T) {
		repos := newMemoryQuestionRepos()
		repos.draft.seed(&models.Question{
			ID:      "q1",
			Text:    "pick one",
			Type:    models.QuestionTypeMCQ,
			Answers: []models.AnswerOption{{ID: "a1", IsCorrect: true}},
		})
		cacheMock := new(MockCache)
		cacheMock.On("Delete", mock.Anything, adminListCacheKey(models.CollectionDraft)).Return(nil)

		service := NewRankingService(repos, cacheMock, nil, NewMutationRecorder(nil, nil, testLogger()), testLogger())
		_, err := service.RankCollection(ctx, models.CollectionDraft)
		require.NoError(t, err)

		cacheMock.AssertExpectations(t)
	})

	t.Run("empty collection writes nothing", func(t *testing.T) {
		f := newFixture(nil)

		result, err := f.service.RankCollection(ctx, models.CollectionDraft)
		require.NoError(t, err)

		assert.Equal(t, &RankingResult{}, result)
		assert.Empty(t, f.publisher.GetPublishedEvents())
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		f := newFixture(nil)
		seed(f)
		f.repos.final.rankErr = errors.New("bulk write failed")

		_, err := f.service.RankCollection(ctx, models.CollectionFinal)

		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
		assert.Empty(t, f.publisher.GetPublishedEvents())
	})
}
