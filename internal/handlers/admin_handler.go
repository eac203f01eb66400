package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// CookieConfig controls the session cookies set on login and refresh.
type CookieConfig struct {
	Secure     bool
	AccessTTL  int
	RefreshTTL int
}

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	cookies      CookieConfig
}

func NewAdminHandler(adminService services.AdminService, cookies CookieConfig, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		cookies:      cookies,
	}
}

// ===== SESSIONS =====

// Login
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	result, err := h.adminService.Login(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	h.RespondWithSuccess(c, http.StatusOK, "Logged in successfully", result)
}

// Refresh rotates the session using the refreshToken cookie or body field
// @Router /admin/refresh [post]
func (h *AdminHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		h.RespondWithError(c, http.StatusUnauthorized, "Refresh token is required", nil)
		return
	}

	result, err := h.adminService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	h.RespondWithSuccess(c, http.StatusOK, "Session refreshed", result)
}

// Logout
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	actor, ok := services.ActorFromContext(c.Request.Context())
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	if err := h.adminService.Logout(c.Request.Context(), actor.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	h.RespondWithSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AdminHandler) setSessionCookies(c *gin.Context, result *services.LoginResult) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, result.AccessToken, h.cookies.AccessTTL, "/", "", h.cookies.Secure, true)
	c.SetCookie(refreshTokenCookie, result.RefreshToken, h.cookies.RefreshTTL, "/", "", h.cookies.Secure, true)
}

// ===== ACCOUNTS =====

// CreateAdmin
// @Router /admin/admins [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req services.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	admin, err := h.adminService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "New admin created successfully", admin)
}

// GetAdmin
// @Router /admin/admins/{userName} [get]
func (h *AdminHandler) GetAdmin(c *gin.Context) {
	userName := ParseStringIDParam(c, "userName")
	if userName == "" {
		return
	}

	admin, err := h.adminService.Get(c.Request.Context(), userName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Admin found successfully", admin)
}

// UpdateAdmin
// @Router /admin/admins/{userName} [put]
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	userName := ParseStringIDParam(c, "userName")
	if userName == "" {
		return
	}

	var req services.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	admin, err := h.adminService.Update(c.Request.Context(), userName, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Admin updated successfully", admin)
}

// DeleteAdmin
// @Router /admin/admins/{userName} [delete]
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	userName := ParseStringIDParam(c, "userName")
	if userName == "" {
		return
	}

	if err := h.adminService.Delete(c.Request.Context(), userName); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Admin deleted successfully", nil)
}
