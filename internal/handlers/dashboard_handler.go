package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	period, _ := strconv.Atoi(c.Query("period"))

	stats, err := h.service.GetDashboardStats(c.Request.Context(), h.principal(c), period)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Router /dashboard/rating-distribution [get]
func (h *DashboardHandler) GetRatingDistribution(c *gin.Context) {
	distribution, err := h.service.GetRatingDistribution(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, distribution)
}

// @Router /dashboard/top-courses [get]
func (h *DashboardHandler) GetTopCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	courses, err := h.service.GetTopCourses(c.Request.Context(), h.principal(c), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// @Router /dashboard/disciplines [get]
func (h *DashboardHandler) GetDisciplinePerformance(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.service.GetDisciplinePerformance(c.Request.Context(), h.principal(c), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
