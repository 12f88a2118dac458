package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/cache"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

type disciplineRepository struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewDisciplinePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DisciplineRepository {
	return &disciplineRepository{db: db, cache: cacheManager}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *disciplineRepository) Create(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Courses").Create(discipline).Error; err != nil {
		return handleDBError(err, "create discipline")
	}
	cache.SafeDelete(ctx, r.cache.Stats, cache.DisciplineListKey)
	return nil
}

func (r *disciplineRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Discipline, error) {
	db := getDB(r.db, tx)
	var discipline models.Discipline
	if err := db.WithContext(ctx).Where("id = ?", id).First(&discipline).Error; err != nil {
		return nil, handleDBError(err, "get discipline by id")
	}
	return &discipline, nil
}

// GetBySlug reads through the cache when called outside a transaction
func (r *disciplineRepository) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Discipline, error) {
	if tx != nil {
		return r.getBySlugFromDB(ctx, tx, slug)
	}

	var discipline models.Discipline
	err := r.cache.Discipline.CacheOrExecute(ctx, cache.DisciplineKey(slug), &discipline, cache.DisciplineCacheConfig.TTL, func() (interface{}, error) {
		return r.getBySlugFromDB(ctx, nil, slug)
	})
	if err != nil {
		return nil, err
	}
	return &discipline, nil
}

func (r *disciplineRepository) getBySlugFromDB(ctx context.Context, tx *gorm.DB, slug string) (*models.Discipline, error) {
	db := getDB(r.db, tx)
	var discipline models.Discipline
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&discipline).Error; err != nil {
		return nil, handleDBError(err, "get discipline by slug")
	}
	return &discipline, nil
}

func (r *disciplineRepository) GetBySlugWithCourses(ctx context.Context, tx *gorm.DB, slug string) (*models.Discipline, error) {
	db := getDB(r.db, tx)
	var discipline models.Discipline
	if err := db.WithContext(ctx).
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			return db.Order("average_rating DESC NULLS LAST, id ASC")
		}).
		Where("slug = ?", slug).
		First(&discipline).Error; err != nil {
		return nil, handleDBError(err, "get discipline with courses")
	}
	return &discipline, nil
}

func (r *disciplineRepository) Update(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Courses").Save(discipline).Error; err != nil {
		return handleDBError(err, "update discipline")
	}
	r.InvalidateCache(ctx, discipline.Slug)
	return nil
}

func (r *disciplineRepository) Delete(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Where("id = ?", discipline.ID).Delete(&models.Discipline{}).Error; err != nil {
		return handleDBError(err, "delete discipline")
	}
	r.InvalidateCache(ctx, discipline.Slug)
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *disciplineRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.DisciplineFilters) ([]*models.Discipline, int64, error) {
	db := getDB(r.db, tx)
	var disciplines []*models.Discipline
	var total int64

	q := db.WithContext(ctx).Model(&models.Discipline{})
	if filters.Name != nil {
		q = q.Where("name = ?", *filters.Name)
	}
	if filters.OwnerID != nil {
		q = q.Where("user_id = ?", *filters.OwnerID)
	}
	if len(filters.IDs) > 0 {
		q = q.Where("id IN ?", filters.IDs)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count disciplines")
	}

	q = applyPagination(q.Order("name ASC, id ASC"), filters.Limit, filters.Offset)
	if err := q.Find(&disciplines).Error; err != nil {
		return nil, 0, handleDBError(err, "list disciplines")
	}
	return disciplines, total, nil
}

// ListAll returns every discipline by name, served from the cache when possible
func (r *disciplineRepository) ListAll(ctx context.Context) ([]*models.Discipline, error) {
	var disciplines []*models.Discipline
	err := r.cache.Stats.CacheOrExecute(ctx, cache.DisciplineListKey, &disciplines, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		list, _, err := r.List(ctx, nil, repositories.DisciplineFilters{})
		return list, err
	})
	if err != nil {
		return nil, err
	}
	if disciplines == nil {
		disciplines = []*models.Discipline{}
	}
	return disciplines, nil
}

// ===== VALIDATION OPERATIONS =====

func (r *disciplineRepository) ExistsByName(ctx context.Context, tx *gorm.DB, name, excludeID string) (bool, error) {
	exists, err := existsBy(ctx, getDB(r.db, tx), &models.Discipline{}, "name", name, excludeID)
	if err != nil {
		return false, handleDBError(err, "check discipline name")
	}
	return exists, nil
}

func (r *disciplineRepository) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug, excludeID string) (bool, error) {
	exists, err := existsBy(ctx, getDB(r.db, tx), &models.Discipline{}, "slug", slug, excludeID)
	if err != nil {
		return false, handleDBError(err, "check discipline slug")
	}
	return exists, nil
}

func (r *disciplineRepository) InvalidateCache(ctx context.Context, slugs ...string) {
	cache.InvalidateDisciplineCache(ctx, r.cache, slugs...)
}
