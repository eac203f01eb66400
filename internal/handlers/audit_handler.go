package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ListAuditLogsQuery struct {
	EventType  string     `form:"eventType"`
	Collection string     `form:"collection"`
	DateFrom   *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo     *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit      int        `form:"limit" binding:"omitempty,min=0"`
	Offset     int        `form:"offset" binding:"omitempty,min=0"`
}

type AuditHandler struct {
	BaseHandler
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(logger),
		auditService: auditService,
	}
}

// ListAuditLogs pages through the mutation trail, newest first
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var q ListAuditLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	page, err := h.auditService.List(c.Request.Context(), services.AuditQuery{
		EventType:  q.EventType,
		Collection: q.Collection,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Audit logs retrieved successfully", page)
}
