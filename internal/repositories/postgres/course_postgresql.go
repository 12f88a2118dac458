package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/cache"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

type courseRepository struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &courseRepository{db: db, cache: cacheManager}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *courseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Discipline", "Reviews").Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	db := getDB(r.db, tx)
	var course models.Course
	if err := db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, handleDBError(err, "get course by id")
	}
	return &course, nil
}

// GetBySlug reads through the cache when called outside a transaction.
// Cached copies lack NameTokens, so writes must load inside their transaction.
func (r *courseRepository) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error) {
	if tx != nil {
		return r.getBySlugFromDB(ctx, tx, slug)
	}

	var course models.Course
	err := r.cache.Course.CacheOrExecute(ctx, cache.CourseKey(slug), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return r.getBySlugFromDB(ctx, nil, slug)
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) getBySlugFromDB(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error) {
	db := getDB(r.db, tx)
	var course models.Course
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&course).Error; err != nil {
		return nil, handleDBError(err, "get course by slug")
	}
	return &course, nil
}

func (r *courseRepository) GetBySlugWithReviews(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error) {
	db := getDB(r.db, tx)
	var course models.Course
	if err := db.WithContext(ctx).
		Preload("Discipline").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id ASC")
		}).
		Preload("Reviews.User", selectPublicUser).
		Where("slug = ?", slug).
		First(&course).Error; err != nil {
		return nil, handleDBError(err, "get course with reviews")
	}
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).
		Model(course).
		Select("name", "slug", "name_tokens", "cost", "updated_at").
		Updates(course).Error; err != nil {
		return handleDBError(err, "update course")
	}
	r.InvalidateCache(ctx, course.Slug)
	return nil
}

func (r *courseRepository) UpdateAverageRating(ctx context.Context, tx *gorm.DB, course *models.Course, rating *float64) error {
	db := getDB(r.db, tx)

	var value interface{} = gorm.Expr("NULL")
	if rating != nil {
		value = *rating
	}
	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", course.ID).
		Update("average_rating", value).Error; err != nil {
		return handleDBError(err, "update course average rating")
	}

	course.AverageRating = rating
	r.InvalidateCache(ctx, course.Slug)
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Where("id = ?", course.ID).Delete(&models.Course{}).Error; err != nil {
		return handleDBError(err, "delete course")
	}
	r.InvalidateCache(ctx, course.Slug)
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *courseRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := getDB(r.db, tx)
	var courses []*models.Course
	var total int64

	q := db.WithContext(ctx).Model(&models.Course{})
	if filters.DisciplineID != nil {
		q = q.Where("discipline_id = ?", *filters.DisciplineID)
	}
	if filters.OwnerID != nil {
		q = q.Where("user_id = ?", *filters.OwnerID)
	}
	if len(filters.IDs) > 0 {
		q = q.Where("id IN ?", filters.IDs)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	q = applyPagination(q.Preload("Discipline").Order("name ASC, id ASC"), filters.Limit, filters.Offset)
	if err := q.Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}
	return courses, total, nil
}

func (r *courseRepository) Search(ctx context.Context, tx *gorm.DB, plan *query.Plan, disciplineID string) ([]*models.Course, int64, error) {
	db := getDB(r.db, tx)
	scoped := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&models.Course{})
		if disciplineID != "" {
			q = q.Where("discipline_id = ?", disciplineID)
		}
		q = applyKeywords(q, "name_tokens", plan.Keywords)
		return applyRangeFilters(q, plan.Filters)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	plan.Clamp(total)
	courses := make([]*models.Course, 0, plan.Limit)
	if total == 0 {
		return courses, 0, nil
	}

	if err := scoped().
		Order(plan.Sort.OrderClause()).
		Offset(plan.Skip()).
		Limit(plan.Limit).
		Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "search courses")
	}
	return courses, total, nil
}

// ===== VALIDATION OPERATIONS =====

func (r *courseRepository) ExistsByName(ctx context.Context, tx *gorm.DB, name, excludeID string) (bool, error) {
	exists, err := existsBy(ctx, getDB(r.db, tx), &models.Course{}, "name", name, excludeID)
	if err != nil {
		return false, handleDBError(err, "check course name")
	}
	return exists, nil
}

func (r *courseRepository) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug, excludeID string) (bool, error) {
	exists, err := existsBy(ctx, getDB(r.db, tx), &models.Course{}, "slug", slug, excludeID)
	if err != nil {
		return false, handleDBError(err, "check course slug")
	}
	return exists, nil
}

func (r *courseRepository) InvalidateCache(ctx context.Context, slugs ...string) {
	cache.InvalidateCourseCache(ctx, r.cache, slugs...)
}
