package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CourseHandler struct {
	BaseHandler
	service      services.CourseService
	reviews      services.ReviewService
	importExport services.ImportExportService
}

func NewCourseHandler(service services.CourseService, reviews services.ReviewService, importExport services.ImportExportService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:  NewBaseHandler(logger),
		service:      service,
		reviews:      reviews,
		importExport: importExport,
	}
}

// ListCourses searches the catalog
// @Param name query string false "Keywords, any word matches"
// @Param cost[gte] query number false "Range filter, also gt, lt, lte, eq, in"
// @Param sortBy query string false "createdAt, name, cost or averageRating"
// @Param direction query string false "asc or desc"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	response, err := h.service.List(c.Request.Context(), listParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Router /courses/{slug} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"), includes(c, "reviews"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Router /courses/{slug} [patch]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	course, err := h.service.Update(c.Request.Context(), h.principal(c), c.Param("slug"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Router /courses/{slug} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	h.LogRequest(c, "Deleting course", "slug", c.Param("slug"))

	if err := h.service.Delete(c.Request.Context(), h.principal(c), c.Param("slug")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== REVIEWS OF A COURSE =====

// @Router /courses/{slug}/reviews [get]
func (h *CourseHandler) ListReviews(c *gin.Context) {
	response, err := h.reviews.ListByCourse(c.Request.Context(), c.Param("slug"), listParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Router /courses/{slug}/reviews [post]
func (h *CourseHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), h.principal(c), c.Param("slug"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ===== SPREADSHEETS =====

// @Router /courses/export [get]
func (h *CourseHandler) ExportCourses(c *gin.Context) {
	h.LogRequest(c, "Exporting courses")

	data, err := h.importExport.ExportCourses(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("courses-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ImportCourses accepts the workbook as a multipart "file" field
// @Router /courses/import [post]
func (h *CourseHandler) ImportCourses(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.badRequest(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Importing courses", "filename", header.Filename, "bytes", len(data))
	result, err := h.importExport.ImportCatalog(c.Request.Context(), h.principal(c), data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
