package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type DisciplineHandler struct {
	BaseHandler
	service services.DisciplineService
	courses services.CourseService
}

func NewDisciplineHandler(service services.DisciplineService, courses services.CourseService, logger utils.Logger) *DisciplineHandler {
	return &DisciplineHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		courses:     courses,
	}
}

// ===== CORE CRUD ENDPOINTS =====

// @Router /disciplines [post]
func (h *DisciplineHandler) CreateDiscipline(c *gin.Context) {
	var req services.CreateDisciplineRequest
	if err := bindBody(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	image, err := readImage(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Creating discipline", "name", req.Name)
	discipline, err := h.service.Create(c.Request.Context(), h.principal(c), &req, image)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, discipline)
}

// @Router /disciplines/{slug} [patch]
func (h *DisciplineHandler) UpdateDiscipline(c *gin.Context) {
	var req services.UpdateDisciplineRequest
	if err := bindBody(c, &req); err != nil {
		h.badRequest(c, err)
		return
	}
	image, err := readImage(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	discipline, err := h.service.Update(c.Request.Context(), h.principal(c), c.Param("slug"), &req, image)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, discipline)
}

// DeleteDiscipline cascades to the discipline's courses and their reviews
// @Router /disciplines/{slug} [delete]
func (h *DisciplineHandler) DeleteDiscipline(c *gin.Context) {
	h.LogRequest(c, "Deleting discipline", "slug", c.Param("slug"))

	if err := h.service.Delete(c.Request.Context(), h.principal(c), c.Param("slug")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Router /disciplines/{slug} [get]
func (h *DisciplineHandler) GetDiscipline(c *gin.Context) {
	discipline, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"), includes(c, "courses"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, discipline)
}

// @Router /disciplines [get]
func (h *DisciplineHandler) ListDisciplines(c *gin.Context) {
	disciplines, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": disciplines, "total": len(disciplines)})
}

// ===== NESTED COURSE ENDPOINTS =====

// @Router /disciplines/{slug}/courses [get]
func (h *DisciplineHandler) ListCourses(c *gin.Context) {
	response, err := h.courses.ListByDiscipline(c.Request.Context(), c.Param("slug"), listParams(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Router /disciplines/{slug}/courses [post]
func (h *DisciplineHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.LogRequest(c, "Creating course", "discipline_slug", c.Param("slug"), "name", req.Name)
	course, err := h.courses.Create(c.Request.Context(), h.principal(c), c.Param("slug"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}
