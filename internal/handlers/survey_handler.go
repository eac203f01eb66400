package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmitAnswersRequest struct {
	Questions []models.QuestionRef      `json:"questions"`
	Answers   []models.AnswerSubmission `json:"answers"`
}

// SurveyHandler serves survey takers.
type SurveyHandler struct {
	BaseHandler
	questionService services.QuestionService
	answerService   services.AnswerService
}

func NewSurveyHandler(questionService services.QuestionService, answerService services.AnswerService, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		answerService:   answerService,
	}
}

// GetQuestions lists draft questions without correctness or tallies
// @Router /survey/questions [get]
func (h *SurveyHandler) GetQuestions(c *gin.Context) {
	types, ok := ParseQuestionTypes(c, "types")
	if !ok {
		return
	}

	questions, err := h.questionService.ListForUser(c.Request.Context(), models.CollectionDraft, types)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questions retrieved successfully", questions)
}

// SubmitAnswers tallies one survey submission
// @Router /survey/answers [post]
func (h *SurveyHandler) SubmitAnswers(c *gin.Context) {
	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	if err := h.answerService.AddAnswers(c.Request.Context(), req.Questions, req.Answers); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Answers recorded successfully", nil)
}
