package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
)

// ===== SHARED FILTER STRUCTS =====

// A zero Limit means no limit; bulk cascades rely on that.

type DisciplineFilters struct {
	Name    *string  `json:"name"`
	OwnerID *string  `json:"owner_id"`
	IDs     []string `json:"ids"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

type CourseFilters struct {
	DisciplineID *string  `json:"discipline_id"`
	OwnerID      *string  `json:"owner_id"`
	IDs          []string `json:"ids"`
	Limit        int      `json:"limit"`
	Offset       int      `json:"offset"`
}

// RatingSummary is the raw input of a course's average rating
type RatingSummary struct {
	Count int64 `json:"count"`
	Sum   int64 `json:"sum"`
}

// ===== ENTITY REPOSITORIES =====

type DisciplineRepository interface {
	Create(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Discipline, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Discipline, error)
	GetBySlugWithCourses(ctx context.Context, tx *gorm.DB, slug string) (*models.Discipline, error)
	List(ctx context.Context, tx *gorm.DB, filters DisciplineFilters) ([]*models.Discipline, int64, error)
	ListAll(ctx context.Context) ([]*models.Discipline, error) // cached
	Update(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error
	Delete(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error

	// Uniqueness checks, excludeID skips the record being updated
	ExistsByName(ctx context.Context, tx *gorm.DB, name, excludeID string) (bool, error)
	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug, excludeID string) (bool, error)

	InvalidateCache(ctx context.Context, slugs ...string)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error)
	GetBySlugWithReviews(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)

	// Search applies a listing plan. The plan's page is clamped to the last
	// page holding results before the page is fetched.
	Search(ctx context.Context, tx *gorm.DB, plan *query.Plan, disciplineID string) ([]*models.Course, int64, error)

	// Update writes name, slug, tokens and cost; the rating is owned by UpdateAverageRating
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	UpdateAverageRating(ctx context.Context, tx *gorm.DB, course *models.Course, rating *float64) error
	Delete(ctx context.Context, tx *gorm.DB, course *models.Course) error

	ExistsByName(ctx context.Context, tx *gorm.DB, name, excludeID string) (bool, error)
	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug, excludeID string) (bool, error)

	InvalidateCache(ctx context.Context, slugs ...string)
}

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Review, error)
	ExistsByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, review *models.Review) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Listing; ListByUser hides reviews whose course no longer exists
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, plan *query.Plan) ([]*models.Review, int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Review, error)

	// Cascade support
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error)
	DeleteOrphans(ctx context.Context, tx *gorm.DB) (int64, error)

	// Aggregation support
	RatingSummary(ctx context.Context, tx *gorm.DB, courseID string) (*RatingSummary, error)
	CountByCourses(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error)
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err wraps gorm's record-not-found
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique constraint violation; requires TranslateError on the gorm config
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
