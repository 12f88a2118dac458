package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	service services.ReviewService
}

func NewReviewHandler(service services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// @Router /reviews/{id} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// @Router /reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	review, err := h.service.Update(c.Request.Context(), h.principal(c), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	h.LogRequest(c, "Deleting review", "review_id", c.Param("id"))

	if err := h.service.Delete(c.Request.Context(), h.principal(c), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
