package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseCollectionParam reads the draft/final collection selector from the path.
func ParseCollectionParam(c *gin.Context, param string) (models.Collection, bool) {
	collection, err := models.ParseCollection(c.Param(param))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return "", false
	}
	return collection, true
}

// ParseQuestionTypes reads a comma separated list such as "Input,MCQ".
func ParseQuestionTypes(c *gin.Context, param string) ([]models.QuestionType, bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return nil, true
	}

	var types []models.QuestionType
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		qType, err := models.ParseQuestionType(part)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid " + param,
				Details: err.Error(),
			})
			return nil, false
		}
		types = append(types, qType)
	}
	return types, true
}
