package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SAP-F-2025/survey-service/internal/cache"
	"github.com/SAP-F-2025/survey-service/internal/events"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
)

// DefaultScoringValues scores the five most popular correct answers.
var DefaultScoringValues = []float64{100, 80, 60, 40, 20}

type rankingService struct {
	repos    repositories.QuestionRepositories
	cache    cache.CacheService
	scoring  []float64
	recorder *MutationRecorder
	logger   *ServiceLogger
}

func NewRankingService(
	repos repositories.QuestionRepositories,
	cacheService cache.CacheService,
	scoring []float64,
	recorder *MutationRecorder,
	logger *slog.Logger,
) RankingService {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	if len(scoring) == 0 {
		scoring = DefaultScoringValues
	}
	return &rankingService{
		repos:    repos,
		cache:    cacheService,
		scoring:  append([]float64(nil), scoring...),
		recorder: recorder,
		logger:   NewServiceLogger(logger, LogConfig{Service: "survey-service", Component: "ranking"}),
	}
}

// RankCollection ranks the correct answers of every question in collection.
// Questions without a correct answer are skipped and left untouched.
func (s *rankingService) RankCollection(ctx context.Context, collection models.Collection) (result *RankingResult, err error) {
	op := s.logger.WithOperation(ctx, "rank_answers", string(collection))
	defer func() {
		var count int
		if result != nil {
			count = result.ProcessedCount
		}
		op.LogResult(count, err)
	}()

	repo := s.repos.For(collection)
	questions, err := repo.List(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, internal("failed to load questions for ranking", err)
	}

	result = &RankingResult{TotalQuestions: len(questions)}
	rankings := make([]repositories.QuestionRanking, 0, len(questions))
	for _, q := range questions {
		if !hasCorrectAnswer(q.Answers) {
			result.SkippedCount++
			continue
		}

		ranked, rankedCount, scoredCount := RankAnswers(q.Answers, s.scoring)
		result.ProcessedCount++
		result.AnswersRanked += rankedCount
		result.AnswersScored += scoredCount

		qr := repositories.QuestionRanking{QuestionID: q.ID, Options: make([]repositories.OptionRanking, 0, len(ranked))}
		for _, a := range ranked {
			qr.Options = append(qr.Options, repositories.OptionRanking{AnswerID: a.ID, Rank: *a.Rank, Score: *a.Score})
		}
		rankings = append(rankings, qr)
	}

	if len(rankings) == 0 {
		return result, nil
	}

	written, err := repo.ApplyRankings(ctx, rankings)
	if err != nil {
		return nil, internal("failed to store rankings", err)
	}
	result.UpdatedCount = written.Modified
	result.FailedCount = int64(len(rankings)) - written.Matched

	ids := make([]string, len(rankings))
	for i, r := range rankings {
		ids[i] = r.QuestionID
	}

	invalidateAdminList(ctx, s.cache, s.logger, collection)
	s.recorder.Record(ctx, Mutation{
		AuditType:   models.AuditAnswersRanked,
		Collection:  collection,
		TargetIDs:   ids,
		Description: fmt.Sprintf("ranked %d answer(s) across %d question(s)", result.AnswersRanked, result.ProcessedCount),
		Changes:     result,
		Event:       events.NewAnswersRankedEvent(collection, ids, result.AnswersRanked, result.AnswersScored),
	})

	return result, nil
}

// RankAnswers orders correct answers by responseCount, most popular first,
// and gives them rank i+1 with scoring[i] (0 past the table). Incorrect
// answers follow with rank 0 and score 0. Ties keep their stored order.
func RankAnswers(answers []models.AnswerOption, scoring []float64) (ranked []models.AnswerOption, rankedCount, scoredCount int) {
	correct := make([]models.AnswerOption, 0, len(answers))
	incorrect := make([]models.AnswerOption, 0, len(answers))
	for _, a := range answers {
		if a.IsCorrect {
			correct = append(correct, a)
		} else {
			incorrect = append(incorrect, a)
		}
	}

	sort.SliceStable(correct, func(i, j int) bool {
		return correct[i].ResponseCount > correct[j].ResponseCount
	})

	for i := range correct {
		rank := i + 1
		var score float64
		if i < len(scoring) {
			score = scoring[i]
		}
		correct[i].Rank, correct[i].Score = &rank, &score
		rankedCount++
		if score > 0 {
			scoredCount++
		}
	}
	for i := range incorrect {
		rank, score := 0, 0.0
		incorrect[i].Rank, incorrect[i].Score = &rank, &score
	}

	return append(correct, incorrect...), rankedCount, scoredCount
}

func hasCorrectAnswer(answers []models.AnswerOption) bool {
	for _, a := range answers {
		if a.IsCorrect {
			return true
		}
	}
	return false
}
