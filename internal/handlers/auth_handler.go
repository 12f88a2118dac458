package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.UserService
}

func NewAuthHandler(service services.UserService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Signup registers a local account, optionally with a profile image
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := bindBody(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	image, err := readImage(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Signing up", "email", req.Email)
	response, err := h.service.Register(c.Request.Context(), &req, image)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	response, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ForgotPassword starts a reset. The token only travels by the notifier.
// @Router /auth/forgot [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.service.RequestPasswordReset(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Check your email for the reset link."})
}

// @Router /auth/reset/{token} [patch]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	response, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Router /auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := bindBody(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	image, err := readImage(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Updating profile")
	user, err := h.service.UpdateProfile(c.Request.Context(), h.principal(c), &req, image)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account and everything it reviewed
// @Router /auth/{userId} [delete]
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("userId")
	h.LogRequest(c, "Deleting user", "target_user_id", userID)

	if err := h.service.Delete(c.Request.Context(), h.principal(c), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
