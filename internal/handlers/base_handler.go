package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

// ErrorResponse is the body of every non 2xx response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, append(args, "path", c.FullPath())...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	utils.GetLogger(c, h.logger).Error(msg, "error", err, "path", c.FullPath())
}

// handleServiceError maps the service error taxonomy onto status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: validationErrors.Error(),
			Details: validationErrors,
		})
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: notFound.Message})
		return
	}

	var unauthorized *services.UnauthorizedError
	if errors.As(err, &unauthorized) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: unauthorized.Message})
		return
	}

	// uniqueness violations are reported as bad input
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: conflict.Message,
			Details: map[string]string{"field": conflict.Field},
		})
		return
	}

	h.LogError(c, err, "Unexpected service error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: "Something went wrong, please try again later.",
	})
}

func (h *BaseHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Invalid request payload",
		Details: err.Error(),
	})
}

// principal returns the authenticated user, nil on public routes
func (h *BaseHandler) principal(c *gin.Context) *models.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return user
}

// listParams reads name, sortBy, direction, page, limit and every
// field[op]=value range filter from the query string
func listParams(c *gin.Context) query.Params {
	params := query.Params{
		Name:      c.Query("name"),
		SortBy:    c.Query("sortBy"),
		Direction: c.Query("direction"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		Ranges:    make(map[string]map[string]string),
	}

	for key, values := range c.Request.URL.Query() {
		open := strings.IndexByte(key, '[')
		if open <= 0 || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		field, op := key[:open], key[open+1:len(key)-1]
		if op == "" {
			continue
		}
		if params.Ranges[field] == nil {
			params.Ranges[field] = make(map[string]string)
		}
		params.Ranges[field][op] = values[0]
	}
	return params
}

// readImage returns the optional "image" multipart file
func readImage(c *gin.Context) (*services.ImageUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &services.ImageUpload{Filename: header.Filename, Data: data}, nil
}

// bindBody binds JSON bodies and multipart/urlencoded forms alike
func bindBody(c *gin.Context, dest interface{}) error {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.ShouldBind(dest)
	}
	return c.ShouldBindJSON(dest)
}

func includes(c *gin.Context, relation string) bool {
	for _, v := range strings.Split(c.Query("include"), ",") {
		if strings.TrimSpace(v) == relation {
			return true
		}
	}
	return false
}
