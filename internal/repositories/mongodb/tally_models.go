package mongodb

import (
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func tallyWriteModels(ops []repositories.TallyOp) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(tallyFilter(op)).
			SetUpdate(tallyUpdate(op)))
	}
	return writes
}

func tallyFilter(op repositories.TallyOp) bson.D {
	filter := bson.D{{Key: "_id", Value: op.QuestionID}}
	switch op.Kind {
	case repositories.TallyIncrement:
		filter = append(filter, bson.E{Key: "answers.text", Value: op.Text})
	case repositories.TallyAppend:
		filter = append(filter, bson.E{Key: "answers.text", Value: bson.D{{Key: "$ne", Value: op.Text}}})
	}
	return filter
}

func tallyUpdate(op repositories.TallyOp) bson.D {
	touch := bson.E{Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}}

	switch op.Kind {
	case repositories.TallyIncrement:
		return bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "timesAnswered", Value: 1},
				{Key: "answers.$.responseCount", Value: 1},
			}},
			touch,
		}
	case repositories.TallyAppend:
		return bson.D{
			{Key: "$inc", Value: bson.D{{Key: "timesAnswered", Value: 1}}},
			{Key: "$push", Value: bson.D{{Key: "answers", Value: bson.D{
				{Key: "_id", Value: op.AnswerID},
				{Key: "text", Value: op.Text},
				{Key: "isCorrect", Value: false},
				{Key: "responseCount", Value: 1},
			}}}},
			touch,
		}
	default:
		return bson.D{
			{Key: "$inc", Value: bson.D{{Key: "timesSkipped", Value: 1}}},
			touch,
		}
	}
}
