package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ImportExportService moves questions in and out of spreadsheets. The export
// layout is also the import layout, so an exported draft collection can be
// edited and imported into the finalized one.
type ImportExportService interface {
	ExportQuestionsToExcel(ctx context.Context, collection models.Collection) ([]byte, error)
	ExportQuestionsToCSV(ctx context.Context, collection models.Collection) ([]byte, error)

	ImportQuestionsFromFile(ctx context.Context, collection models.Collection, reader io.Reader, filename string) (*ImportResult, error)
	ImportQuestionsFromCSV(ctx context.Context, collection models.Collection, reader io.Reader) (*ImportResult, error)
	ImportQuestionsFromExcel(ctx context.Context, collection models.Collection, reader io.Reader) (*ImportResult, error)
}

type ImportResult struct {
	TotalRows      int                `json:"totalRows"`
	ParsedCount    int                `json:"parsedCount"`
	InsertedCount  int                `json:"insertedCount"`
	DuplicateCount int                `json:"duplicateCount"`
	Questions      []*models.Question `json:"questions,omitempty"`
}

const exportSheetName = "Questions"

// Column layout: a question row fills the question columns, each following
// answer row fills only the answer columns.
var exportHeaders = []string{
	"id", "text", "type", "category", "level", "timesAnswered", "timesSkipped",
	"answerId", "answer", "isCorrect", "responseCount",
}

type importExportService struct {
	repos     repositories.QuestionRepositories
	questions QuestionService
	logger    *slog.Logger
}

func NewImportExportService(repos repositories.QuestionRepositories, questions QuestionService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		repos:     repos,
		questions: questions,
		logger:    logger,
	}
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, collection models.Collection) ([]byte, error) {
	rows, err := s.exportRows(ctx, collection)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write Excel row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported questions", "collection", collection, "format", "xlsx", "rows", len(rows)-1)
	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsToCSV(ctx context.Context, collection models.Collection) ([]byte, error) {
	rows, err := s.exportRows(ctx, collection)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}

	s.logger.Info("Exported questions", "collection", collection, "format", "csv", "rows", len(rows)-1)
	return buf.Bytes(), nil
}

func (s *importExportService) exportRows(ctx context.Context, collection models.Collection) ([][]string, error) {
	questions, err := s.repos.For(collection).List(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, internal("failed to load questions for export", err)
	}
	return questionsToRows(questions), nil
}

func questionsToRows(questions []*models.Question) [][]string {
	rows := [][]string{exportHeaders}
	for _, q := range questions {
		rows = append(rows, []string{
			q.ID, q.Text, string(q.Type), string(q.Category), string(q.Level),
			strconv.FormatInt(q.TimesAnswered, 10), strconv.FormatInt(q.TimesSkipped, 10),
			"", "", "", "",
		})
		for _, a := range q.Answers {
			rows = append(rows, []string{
				"", "", "", "", "", "", "",
				a.ID, a.Text, strconv.FormatBool(a.IsCorrect), strconv.FormatInt(a.ResponseCount, 10),
			})
		}
	}
	return rows
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, collection models.Collection, reader io.Reader, filename string) (*ImportResult, error) {
	s.logger.Info("Starting file import", "filename", filename, "collection", collection)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, collection, reader)
	case ".xlsx":
		return s.ImportQuestionsFromExcel(ctx, collection, reader)
	default:
		return nil, invalidInput(NewValidationError("file", "unsupported file format", ext))
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, collection models.Collection, reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, invalidInput(NewValidationError("file", "failed to read CSV: "+err.Error(), nil))
	}
	return s.importRows(ctx, collection, records)
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, collection models.Collection, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, invalidInput(NewValidationError("file", "failed to open Excel file", nil))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalidInput(NewValidationError("file", "Excel file has no sheets", nil))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, internal("failed to read Excel rows", err)
	}
	return s.importRows(ctx, collection, rows)
}

func (s *importExportService) importRows(ctx context.Context, collection models.Collection, rows [][]string) (*ImportResult, error) {
	items, err := rowsToQuestionInputs(rows)
	if err != nil {
		return nil, invalidInput(err)
	}

	inserted, err := s.questions.AddQuestions(ctx, collection, items)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		TotalRows:      len(rows) - 1,
		ParsedCount:    len(items),
		InsertedCount:  len(inserted),
		DuplicateCount: len(items) - len(inserted),
		Questions:      inserted,
	}

	s.logger.Info("Import completed",
		"collection", collection,
		"total_rows", result.TotalRows,
		"inserted", result.InsertedCount,
		"duplicates", result.DuplicateCount)

	return result, nil
}

// rowsToQuestionInputs parses the export layout. Rows with a type start a new
// question; rows with only answer columns attach to the question above.
func rowsToQuestionInputs(rows [][]string) ([]QuestionInput, error) {
	if len(rows) < 2 {
		return nil, NewValidationError("file", "file must have a header row and at least one data row", len(rows))
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"text", "type", "category", "level"} {
		if _, ok := columns[strings.ToLower(required)]; !ok {
			return nil, NewValidationError("headers", "missing required column: "+required, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var items []QuestionInput
	for n, row := range rows[1:] {
		rowNumber := n + 2

		if cell(row, "type") != "" {
			item := QuestionInput{
				Text:     cell(row, "text"),
				Type:     cell(row, "type"),
				Category: cell(row, "category"),
				Level:    cell(row, "level"),
			}
			var err error
			if item.TimesAnswered, err = optionalCount(cell(row, "timesAnswered"), rowNumber); err != nil {
				return nil, err
			}
			if item.TimesSkipped, err = optionalCount(cell(row, "timesSkipped"), rowNumber); err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}

		answer := cell(row, "answer")
		if answer == "" {
			continue
		}
		if len(items) == 0 {
			return nil, NewValidationError("rows", fmt.Sprintf("row %d: answer appears before any question", rowNumber), answer)
		}

		payload := models.AnswerPayload{Text: answer}
		if raw := cell(row, "isCorrect"); raw != "" {
			correct, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, NewValidationError("isCorrect", fmt.Sprintf("row %d: isCorrect must be true or false", rowNumber), raw)
			}
			payload.IsCorrect = correct
		}
		count, err := optionalCount(cell(row, "responseCount"), rowNumber)
		if err != nil {
			return nil, err
		}
		payload.ResponseCount = count

		last := &items[len(items)-1]
		last.Answers = append(last.Answers, payload)
	}

	if len(items) == 0 {
		return nil, NewValidationError("rows", "no questions found in file", nil)
	}
	return items, nil
}

func optionalCount(raw string, rowNumber int) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, NewValidationError("count", fmt.Sprintf("row %d: counts must be non-negative integers", rowNumber), raw)
	}
	return &n, nil
}
