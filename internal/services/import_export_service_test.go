package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newImportExportFixture() (*questionFixture, ImportExportService) {
	f := newQuestionFixture()
	return f, NewImportExportService(f.repos, f.service, testLogger())
}

func seedTallied(f *questionFixture) {
	f.repos.draft.seed(&models.Question{
		ID:       "q1",
		Text:     "what is 2+2?",
		Type:     models.QuestionTypeMCQ,
		Category: models.CategoryMath,
		Level:    models.LevelBeginner,
		Answers: []models.AnswerOption{
			{ID: "a1", Text: "3", ResponseCount: 2},
			{ID: "a2", Text: "4", IsCorrect: true, ResponseCount: 8},
			{ID: "a3", Text: "5"},
			{ID: "a4", Text: "22", ResponseCount: 1},
		},
		TimesAnswered: 11,
		TimesSkipped:  4,
	})
	f.repos.draft.seed(&models.Question{
		ID:       "q2",
		Text:     "capital of france?",
		Type:     models.QuestionTypeInput,
		Category: models.CategoryCulture,
		Level:    models.LevelAdvanced,
		Answers: []models.AnswerOption{
			{ID: "b1", Text: "paris", ResponseCount: 6},
			{ID: "b2", Text: "lyon", ResponseCount: 1},
		},
		TimesAnswered: 7,
	})
}

func TestImportExport_CSVRoundTripPromotesDrafts(t *testing.T) {
	ctx := context.Background()
	f, service := newImportExportFixture()
	seedTallied(f)

	exported, err := service.ExportQuestionsToCSV(ctx, models.CollectionDraft)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	assert.Equal(t, strings.Join(exportHeaders, ","), lines[0])
	// two question rows plus six answer rows
	assert.Len(t, lines, 9)

	// Input questions need a correct answer before they can be finalized.
	edited := strings.Replace(string(exported), "b1,paris,false,6", "b1,paris,true,6", 1)

	result, err := service.ImportQuestionsFromFile(ctx, models.CollectionFinal, strings.NewReader(edited), "drafts.csv")
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalRows)
	assert.Equal(t, 2, result.ParsedCount)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Zero(t, result.DuplicateCount)

	final, err := f.repos.final.List(ctx, repositories.QuestionFilters{})
	require.NoError(t, err)
	require.Len(t, final, 2)

	byText := make(map[string]*models.Question)
	for _, q := range final {
		byText[q.Text] = q
	}

	mcq := byText["what is 2+2?"]
	require.NotNil(t, mcq)
	assert.Equal(t, int64(11), mcq.TimesAnswered)
	assert.Equal(t, int64(4), mcq.TimesSkipped)
	require.Len(t, mcq.Answers, 4)
	assert.Equal(t, int64(8), mcq.Answers[1].ResponseCount)

	input := byText["capital of france?"]
	require.NotNil(t, input)
	require.Len(t, input.Answers, 1)
	assert.Equal(t, "paris", input.Answers[0].Text)
	assert.Equal(t, int64(6), input.Answers[0].ResponseCount)

	t.Run("importing again reports all duplicates", func(t *testing.T) {
		_, err := service.ImportQuestionsFromCSV(ctx, models.CollectionFinal, strings.NewReader(edited))
		assert.Equal(t, KindAllDuplicates, KindOf(err))
	})
}

func TestImportExport_ExcelRoundTrip(t *testing.T) {
	ctx := context.Background()
	f, service := newImportExportFixture()
	seedTallied(f)

	exported, err := service.ExportQuestionsToExcel(ctx, models.CollectionDraft)
	require.NoError(t, err)

	workbook, err := excelize.OpenReader(bytes.NewReader(exported))
	require.NoError(t, err)
	rows, err := workbook.GetRows(exportSheetName)
	require.NoError(t, err)
	require.NoError(t, workbook.Close())
	assert.Equal(t, exportHeaders, rows[0])

	// A fresh store has none of the tuples yet.
	g, other := newImportExportFixture()
	result, err := other.ImportQuestionsFromFile(ctx, models.CollectionDraft, bytes.NewReader(exported), "questions.XLSX")
	require.NoError(t, err)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Equal(t, 2, g.repos.draft.count())
}

func TestImportExport_RejectsBadFiles(t *testing.T) {
	ctx := context.Background()
	_, service := newImportExportFixture()

	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{name: "unsupported extension", filename: "questions.json", content: "[]"},
		{name: "header only", filename: "questions.csv", content: "text,type,category,level\n"},
		{name: "missing column", filename: "questions.csv", content: "text,type,category\nq,MCQ,Math\n"},
		{name: "answer before question", filename: "questions.csv", content: "text,type,category,level,answer\n,,,,orphan\n"},
		{name: "bad count", filename: "questions.csv", content: "text,type,category,level,timesAnswered\nq,Input,Math,Beginner,-1\n"},
		{name: "bad correctness flag", filename: "questions.csv", content: "text,type,category,level,answer,isCorrect\nq,Input,Math,Beginner,,\n,,,,x,maybe\n"},
		{name: "broken workbook", filename: "questions.xlsx", content: "not a zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ImportQuestionsFromFile(ctx, models.CollectionDraft, strings.NewReader(tt.content), tt.filename)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err))
		})
	}
}

func TestRowsToQuestionInputs(t *testing.T) {
	rows := [][]string{
		{"Text", "Type", "Category", "Level", "Answer", "IsCorrect", "ResponseCount"},
		{"Q one", "Input", "History", "Beginner"},
		{"", "", "", "", "1066", "true", "3"},
		{"", "", "", "", "", "", ""},
		{"Q two", "MCQ", "Math", "Advanced"},
	}

	items, err := rowsToQuestionInputs(rows)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Len(t, items[0].Answers, 1)
	assert.Equal(t, "1066", items[0].Answers[0].Text)
	assert.True(t, items[0].Answers[0].IsCorrect)
	require.NotNil(t, items[0].Answers[0].ResponseCount)
	assert.Equal(t, int64(3), *items[0].Answers[0].ResponseCount)
	assert.Nil(t, items[0].TimesAnswered)
	assert.Empty(t, items[1].Answers)
}
