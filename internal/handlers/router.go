package handlers

import (
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	questionHandler *QuestionHandler
	surveyHandler   *SurveyHandler
	adminHandler    *AdminHandler
	auditHandler    *AuditHandler
	tokens          *services.TokenManager
	apiKey          string
	logger          utils.Logger
}

// ServiceSet groups the services the HTTP layer talks to.
type ServiceSet struct {
	Questions    services.QuestionService
	Answers      services.AnswerService
	Admins       services.AdminService
	ImportExport services.ImportExportService
	Audit        services.AuditService
	Ranking      services.RankingService
	Tokens       *services.TokenManager
}

func NewHandlerManager(svc ServiceSet, apiKey string, cookies CookieConfig, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(svc.Questions, svc.ImportExport, svc.Ranking, logger),
		surveyHandler:   NewSurveyHandler(svc.Questions, svc.Answers, logger),
		adminHandler:    NewAdminHandler(svc.Admins, cookies, logger),
		auditHandler:    NewAuditHandler(svc.Audit, logger),
		tokens:          svc.Tokens,
		apiKey:          apiKey,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(RequestIDMiddleware(), utils.ContextLogger(hm.logger), utils.LoggerMiddleware(hm.logger), gin.Recovery())

	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", APIKeyMiddleware(hm.apiKey))
	{
		survey := v1.Group("/survey")
		{
			survey.GET("/questions", hm.surveyHandler.GetQuestions)
			survey.POST("/answers", hm.surveyHandler.SubmitAnswers)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/login", hm.adminHandler.Login)
			admin.POST("/refresh", hm.adminHandler.Refresh)

			authed := admin.Group("", AuthMiddleware(hm.tokens))
			authed.POST("/logout", hm.adminHandler.Logout)

			restricted := authed.Group("", RequireAdmin())
			{
				questions := restricted.Group("/questions/:collection")
				questions.GET("", hm.questionHandler.ListQuestions)
				questions.POST("", hm.questionHandler.AddQuestions)
				questions.PUT("", hm.questionHandler.UpdateQuestions)
				questions.DELETE("", hm.questionHandler.DeleteQuestions)
				questions.GET("/export", hm.questionHandler.ExportQuestions)
				questions.POST("/import", hm.questionHandler.ImportQuestions)
				questions.POST("/rank", hm.questionHandler.RankQuestions)

				admins := restricted.Group("/admins")
				admins.POST("", hm.adminHandler.CreateAdmin)
				admins.GET("/:userName", hm.adminHandler.GetAdmin)
				admins.PUT("/:userName", hm.adminHandler.UpdateAdmin)
				admins.DELETE("/:userName", hm.adminHandler.DeleteAdmin)

				restricted.GET("/audit-logs", hm.auditHandler.ListAuditLogs)
			}
		}
	}
}
