package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

type AddQuestionsRequest struct {
	Questions []services.QuestionInput `json:"questions"`
}

type UpdateQuestionsRequest struct {
	Questions []services.QuestionUpdateInput `json:"questions"`
}

type DeleteQuestionsRequest struct {
	Questions []models.QuestionRef `json:"questions"`
}

type QuestionHandler struct {
	BaseHandler
	questionService     services.QuestionService
	importExportService services.ImportExportService
	rankingService      services.RankingService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExportService services.ImportExportService,
	rankingService services.RankingService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:         NewBaseHandler(logger),
		questionService:     questionService,
		importExportService: importExportService,
		rankingService:      rankingService,
	}
}

// ListQuestions returns every question of a collection with all fields
// @Router /admin/questions/{collection} [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	questions, err := h.questionService.ListForAdmin(c.Request.Context(), collection)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questions retrieved successfully", questions)
}

// AddQuestions inserts a batch, silently skipping duplicates
// @Router /admin/questions/{collection} [post]
func (h *QuestionHandler) AddQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Adding questions", "collection", collection, "count", len(req.Questions))

	inserted, err := h.questionService.AddQuestions(c.Request.Context(), collection, req.Questions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Questions added successfully", inserted)
}

// UpdateQuestions replaces a batch of questions by id
// @Router /admin/questions/{collection} [put]
func (h *QuestionHandler) UpdateQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	var req UpdateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Updating questions", "collection", collection, "count", len(req.Questions))

	updated, err := h.questionService.UpdateQuestions(c.Request.Context(), collection, req.Questions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questions updated successfully", updated)
}

// DeleteQuestions removes questions by id
// @Router /admin/questions/{collection} [delete]
func (h *QuestionHandler) DeleteQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	var req DeleteQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Deleting questions", "collection", collection, "count", len(req.Questions))

	result, err := h.questionService.DeleteQuestions(c.Request.Context(), collection, req.Questions)
	if err != nil {
		if result != nil {
			h.handleServiceErrorWithDetails(c, err, result)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result.Message, result)
}

// RankQuestions ranks and scores the correct answers of every question
// @Router /admin/questions/{collection}/rank [post]
func (h *QuestionHandler) RankQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	h.LogRequest(c, "Ranking answers", "collection", collection)

	result, err := h.rankingService.RankCollection(c.Request.Context(), collection)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answers ranked successfully", result)
}

// ExportQuestions downloads a collection as xlsx (default) or csv
// @Router /admin/questions/{collection}/export [get]
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = h.importExportService.ExportQuestionsToExcel(c.Request.Context(), collection)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		data, err = h.importExportService.ExportQuestionsToCSV(c.Request.Context(), collection)
		contentType = "text/csv"
	default:
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported export format", nil, format)
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("questions-%s-%s.%s", collection, time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ImportQuestions adds the questions of an uploaded csv or xlsx file
// @Router /admin/questions/{collection}/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	collection, ok := ParseCollectionParam(c, "collection")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "A file upload named \"file\" is required", err)
		return
	}
	if header.Size > maxImportSize {
		h.RespondWithError(c, http.StatusBadRequest, "File too large", nil, header.Size)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing questions", "collection", collection, "filename", header.Filename)

	result, err := h.importExportService.ImportQuestionsFromFile(c.Request.Context(), collection, file, header.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Questions imported successfully", result)
}
