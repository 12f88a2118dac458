package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags users
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	response, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUser returns a public profile, with reviews when include=reviews
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), c.Param("id"), includes(c, "reviews"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
