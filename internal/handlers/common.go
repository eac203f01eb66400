package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	logger := utils.GetLoggerFromContext(c, h.logger)
	if actor, ok := services.ActorFromContext(c.Request.Context()); ok {
		logger = logger.With("admin_id", actor.ID)
	}
	return logger
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Info(message, additionalFields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// statusForKind maps service error kinds onto HTTP status codes.
var statusForKind = map[services.ErrorKind]int{
	services.KindInvalidInput:  http.StatusBadRequest,
	services.KindAllDuplicates: http.StatusConflict,
	services.KindConflict:      http.StatusConflict,
	services.KindNotFound:      http.StatusNotFound,
	services.KindUnauthorized:  http.StatusUnauthorized,
	services.KindForbidden:     http.StatusForbidden,
	services.KindInternal:      http.StatusInternalServerError,
}

// handleServiceError renders err with the status of its kind. Internal
// failures never leak their cause.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	h.handleServiceErrorWithDetails(c, err, nil)
}

// handleServiceErrorWithDetails uses partial as the details of a non-internal
// error that carries no validation details of its own.
func (h *BaseHandler) handleServiceErrorWithDetails(c *gin.Context, err error, partial interface{}) {
	kind := services.KindOf(err)
	status, ok := statusForKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		h.RespondWithError(c, status, "Internal server error", err)
		return
	}

	var details interface{}
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		details = ve
	}
	var ves services.ValidationErrors
	if errors.As(err, &ves) {
		details = ves
	}
	if details == nil {
		details = partial
	}

	resp := ErrorResponse{Message: services.MessageOf(err), Details: details, Code: string(kind)}
	h.LogWarn(c, resp.Message, "status_code", status, "kind", kind)
	c.AbortWithStatusJSON(status, resp)
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "survey-service",
	})
}
