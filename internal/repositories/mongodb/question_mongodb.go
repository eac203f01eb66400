package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	DraftCollectionName = "questions"
	FinalCollectionName = "final_questions"

	duplicateKeyIndexName = "uniq_text_type_category_level"
	duplicateKeyErrorCode = 11000
)

type questionRepositories struct {
	draft *QuestionMongoDB
	final *QuestionMongoDB
}

// NewQuestionRepositories binds the draft and finalized collections of db.
func NewQuestionRepositories(db *mongo.Database) repositories.QuestionRepositories {
	return &questionRepositories{
		draft: NewQuestionMongoDB(db.Collection(DraftCollectionName)),
		final: NewQuestionMongoDB(db.Collection(FinalCollectionName)),
	}
}

func (r *questionRepositories) For(collection models.Collection) repositories.QuestionRepository {
	if collection == models.CollectionFinal {
		return r.final
	}
	return r.draft
}

type QuestionMongoDB struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewQuestionMongoDB(coll *mongo.Collection) *QuestionMongoDB {
	return &QuestionMongoDB{coll: coll, now: time.Now}
}

// ===== INDEXES =====

// EnsureIndexes creates the unique (text, type, category, level) index that backs duplicate detection.
func (r *QuestionMongoDB) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{
			{Key: "text", Value: 1},
			{Key: "type", Value: 1},
			{Key: "category", Value: 1},
			{Key: "level", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName(duplicateKeyIndexName),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create duplicate key index on %s: %w", r.coll.Name(), err)
	}

	createdAt := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	if _, err := r.coll.Indexes().CreateOne(ctx, createdAt); err != nil {
		return fmt.Errorf("failed to create createdAt index on %s: %w", r.coll.Name(), err)
	}
	return nil
}

// ===== BULK OPERATIONS =====

// InsertMany inserts questions unordered. Documents rejected by the unique
// index lost a race against a concurrent insert and are left out of the result.
func (r *QuestionMongoDB) InsertMany(ctx context.Context, questions []*models.Question) ([]*models.Question, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	now := r.now().UTC()
	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		q.CreatedAt = now
		q.UpdatedAt = now
		if q.Answers == nil {
			q.Answers = []models.AnswerOption{}
		}
		docs[i] = q
	}

	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted, err := survivingInserts(questions, err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert questions: %w", err)
	}
	return inserted, nil
}

// survivingInserts drops the documents that failed only on the unique index.
func survivingInserts(questions []*models.Question, err error) ([]*models.Question, error) {
	if err == nil {
		return questions, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return nil, err
	}

	rejected := make(map[int]bool, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyErrorCode {
			return nil, err
		}
		rejected[we.Index] = true
	}

	inserted := make([]*models.Question, 0, len(questions)-len(rejected))
	for i, q := range questions {
		if !rejected[i] {
			inserted = append(inserted, q)
		}
	}
	return inserted, nil
}

func (r *QuestionMongoDB) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}

	var questions []*models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

// ReplaceMany overwrites the mutable fields of existing questions in one
// ordered bulk write. The write stops at the first failure; replacements ahead
// of it stay applied.
func (r *QuestionMongoDB) ReplaceMany(ctx context.Context, questions []*models.Question) ([]*models.Question, error) {
	if len(questions) == 0 {
		return []*models.Question{}, nil
	}

	result, err := r.coll.BulkWrite(ctx, replaceWriteModels(questions, r.now().UTC()), options.BulkWrite().SetOrdered(true))
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 && bwe.WriteErrors[0].Code == duplicateKeyErrorCode {
			failed := questions[bwe.WriteErrors[0].Index]
			return nil, fmt.Errorf("question %s: %w", failed.ID, repositories.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to update questions: %w", err)
	}
	if result.MatchedCount < int64(len(questions)) {
		return nil, fmt.Errorf("%d of %d questions vanished before update: %w",
			int64(len(questions))-result.MatchedCount, len(questions), repositories.ErrRecordNotFound)
	}

	stored, err := r.GetByIDs(ctx, questionIDs(questions))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Question, len(stored))
	for _, q := range stored {
		byID[q.ID] = q
	}

	ordered := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		current, ok := byID[q.ID]
		if !ok {
			return nil, fmt.Errorf("question %s: %w", q.ID, repositories.ErrRecordNotFound)
		}
		ordered = append(ordered, current)
	}
	return ordered, nil
}

func replaceWriteModels(questions []*models.Question, now time.Time) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(questions))
	for _, q := range questions {
		answers := q.Answers
		if answers == nil {
			answers = []models.AnswerOption{}
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: q.ID}}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{
				{Key: "text", Value: q.Text},
				{Key: "type", Value: q.Type},
				{Key: "category", Value: q.Category},
				{Key: "level", Value: q.Level},
				{Key: "answers", Value: answers},
				{Key: "updatedAt", Value: now},
			}}}))
	}
	return writes
}

func questionIDs(questions []*models.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func (r *QuestionMongoDB) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete questions: %w", err)
	}
	return result.DeletedCount, nil
}

// ===== QUERY OPERATIONS =====

// List returns questions newest first. With HideAnswerDetails, Input questions
// come back without answers and MCQ options carry only id and text.
func (r *QuestionMongoDB) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	if !filters.HideAnswerDetails {
		return r.find(ctx, typeFilter(filters.Types), nil)
	}

	types := filters.Types
	if len(types) == 0 {
		types = models.QuestionTypes()
	}

	var all []*models.Question
	for _, t := range types {
		questions, err := r.find(ctx, typeFilter([]models.QuestionType{t}), surveyProjection(t))
		if err != nil {
			return nil, err
		}
		all = append(all, questions...)
	}
	return all, nil
}

func (r *QuestionMongoDB) find(ctx context.Context, filter bson.D, projection bson.D) ([]*models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := []*models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

func typeFilter(types []models.QuestionType) bson.D {
	if len(types) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "type", Value: bson.D{{Key: "$in", Value: types}}}}
}

func surveyProjection(t models.QuestionType) bson.D {
	if t == models.QuestionTypeInput {
		return bson.D{{Key: "answers", Value: 0}}
	}
	return bson.D{
		{Key: "answers.isCorrect", Value: 0},
		{Key: "answers.responseCount", Value: 0},
		{Key: "answers.rank", Value: 0},
		{Key: "answers.score", Value: 0},
	}
}

// ===== VALIDATION AND CHECKS =====

func (r *QuestionMongoDB) FindDuplicate(ctx context.Context, key models.DuplicateKey, excludeID string) (*models.Question, error) {
	var existing models.Question
	err := r.coll.FindOne(ctx, duplicateFilter(key, excludeID)).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check for duplicate question: %w", err)
	}
	return &existing, nil
}

func duplicateFilter(key models.DuplicateKey, excludeID string) bson.D {
	filter := bson.D{
		{Key: "text", Value: key.Text},
		{Key: "type", Value: key.Type},
		{Key: "category", Value: key.Category},
		{Key: "level", Value: key.Level},
	}
	if excludeID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}
	return filter
}

// ===== TALLY =====

// ApplyTally submits every op in one ordered bulk write. Ordering keeps each
// increment op ahead of its append twin, so a text seen twice in one batch
// lands on a single option.
func (r *QuestionMongoDB) ApplyTally(ctx context.Context, ops []repositories.TallyOp) (*repositories.TallyResult, error) {
	if len(ops) == 0 {
		return &repositories.TallyResult{}, nil
	}

	result, err := r.coll.BulkWrite(ctx, tallyWriteModels(ops), options.BulkWrite().SetOrdered(true))
	if err != nil {
		return nil, fmt.Errorf("failed to apply tally: %w", err)
	}
	return &repositories.TallyResult{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
	}, nil
}

// ===== RANKING =====

// ApplyRankings sets rank and score through array filters on option ids, so
// tallies landing between the read and this write are kept.
func (r *QuestionMongoDB) ApplyRankings(ctx context.Context, rankings []repositories.QuestionRanking) (*repositories.WriteResult, error) {
	writes := rankingWriteModels(rankings, r.now().UTC())
	if len(writes) == 0 {
		return &repositories.WriteResult{}, nil
	}

	result, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to apply rankings: %w", err)
	}
	return &repositories.WriteResult{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
	}, nil
}

func rankingWriteModels(rankings []repositories.QuestionRanking, now time.Time) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(rankings))
	for _, qr := range rankings {
		if len(qr.Options) == 0 {
			continue
		}

		set := make(bson.D, 0, 2*len(qr.Options)+1)
		filters := make([]interface{}, 0, len(qr.Options))
		for i, o := range qr.Options {
			ident := fmt.Sprintf("o%d", i)
			set = append(set,
				bson.E{Key: "answers.$[" + ident + "].rank", Value: o.Rank},
				bson.E{Key: "answers.$[" + ident + "].score", Value: o.Score},
			)
			filters = append(filters, bson.D{{Key: ident + "._id", Value: o.AnswerID}})
		}
		set = append(set, bson.E{Key: "updatedAt", Value: now})

		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "_id", Value: qr.QuestionID}}).
			SetUpdate(bson.D{{Key: "$set", Value: set}}).
			SetArrayFilters(filters))
	}
	return writes
}
