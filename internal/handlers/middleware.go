package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
	apiKeyHeader       = "x-api-key"
	requestIDHeader    = "X-Request-ID"

	adminIDKey   = "admin_id"
	adminRoleKey = "admin_role"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or assigns a fresh one,
// and carries it into the request context for audit rows.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(utils.RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// APIKeyMiddleware rejects requests without the shared x-api-key. An empty
// key disables the check.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		provided := c.GetHeader(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or missing API key",
				Code:    string(services.KindUnauthorized),
			})
			return
		}
		c.Next()
	}
}

// AuthMiddleware accepts an access token from the accessToken cookie or an
// Authorization: Bearer header and attaches the admin to the request.
func AuthMiddleware(tokens *services.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(accessTokenCookie)
		if token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
				Code:    string(services.KindUnauthorized),
			})
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired access token",
				Code:    string(services.KindUnauthorized),
			})
			return
		}

		c.Set(adminIDKey, claims.AdminID)
		c.Set(adminRoleKey, claims.Role)
		c.Request = c.Request.WithContext(services.WithActor(c.Request.Context(), services.Actor{
			ID:       claims.AdminID,
			UserName: claims.UserName,
		}))
		c.Next()
	}
}

// RequireAdmin only lets ADMIN accounts through. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(adminRoleKey)
		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden - insufficient permissions",
				Code:    string(services.KindForbidden),
			})
			return
		}
		c.Next()
	}
}
