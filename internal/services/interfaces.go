package services

import (
	"context"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type SignupRequest = validator.SignupRequest
type LoginRequest = validator.LoginRequest
type ForgotPasswordRequest = validator.ForgotPasswordRequest
type ResetPasswordRequest = validator.ResetPasswordRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type CreateDisciplineRequest = validator.DisciplineCreateRequest
type UpdateDisciplineRequest = validator.DisciplineUpdateRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateReviewRequest = validator.ReviewCreateRequest
type UpdateReviewRequest = validator.ReviewUpdateRequest

// ImageUpload is an uploaded image as received by the transport
type ImageUpload struct {
	Filename string
	Data     []byte
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ListResponse is the paginated envelope of every listing
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type UserListRequest struct {
	Query string `form:"q"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

// ImportResult summarizes a spreadsheet import
type ImportResult struct {
	DisciplinesCreated int           `json:"disciplines_created"`
	CoursesCreated     int           `json:"courses_created"`
	Skipped            int           `json:"skipped"`
	Errors             []ImportError `json:"errors,omitempty"`
}

type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	// Account lifecycle
	Register(ctx context.Context, req *SignupRequest, image *ImageUpload) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	// RequestPasswordReset returns the raw token; transports must not echo it
	RequestPasswordReset(ctx context.Context, req *ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (*AuthResponse, error)

	// Token verification for the auth middleware
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// Profiles
	GetProfile(ctx context.Context, principal *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, principal *models.User, req *UpdateProfileRequest, image *ImageUpload) (*models.User, error)
	Delete(ctx context.Context, principal *models.User, userID string) error

	// Directory
	GetByID(ctx context.Context, id string, includeReviews bool) (*models.User, error)
	List(ctx context.Context, req UserListRequest) (*ListResponse[*models.User], error)
}

type DisciplineService interface {
	Create(ctx context.Context, principal *models.User, req *CreateDisciplineRequest, image *ImageUpload) (*models.Discipline, error)
	Update(ctx context.Context, principal *models.User, slug string, req *UpdateDisciplineRequest, image *ImageUpload) (*models.Discipline, error)
	Delete(ctx context.Context, principal *models.User, slug string) error
	GetBySlug(ctx context.Context, slug string, includeCourses bool) (*models.Discipline, error)
	List(ctx context.Context) ([]*models.Discipline, error)
}

type CourseService interface {
	Create(ctx context.Context, principal *models.User, disciplineSlug string, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, principal *models.User, slug string, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, principal *models.User, slug string) error
	GetBySlug(ctx context.Context, slug string, includeReviews bool) (*models.Course, error)
	List(ctx context.Context, params query.Params) (*ListResponse[*models.Course], error)
	ListByDiscipline(ctx context.Context, disciplineSlug string, params query.Params) (*ListResponse[*models.Course], error)
}

type ReviewService interface {
	Create(ctx context.Context, principal *models.User, courseSlug string, req *CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, principal *models.User, id string, req *UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, principal *models.User, id string) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByCourse(ctx context.Context, courseSlug string, params query.Params) (*ListResponse[*models.Review], error)
}

type ImportExportService interface {
	ExportCourses(ctx context.Context, principal *models.User) ([]byte, error)
	ImportCatalog(ctx context.Context, principal *models.User, data []byte) (*ImportResult, error)
}

// ServiceManager interface for managing all services
type ServiceManager interface {
	User() UserService
	Discipline() DisciplineService
	Course() CourseService
	Review() ReviewService
	ImportExport() ImportExportService
	Dashboard() DashboardService
	Cascade() *CascadeManager

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
