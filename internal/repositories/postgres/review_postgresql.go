package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &reviewRepository{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *reviewRepository) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("User", "Course").Create(review).Error; err != nil {
		return handleDBError(err, "create review")
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Review, error) {
	db := getDB(r.db, tx)
	var review models.Review
	if err := db.WithContext(ctx).
		Preload("User", selectPublicUser).
		Where("id = ?", id).
		First(&review).Error; err != nil {
		return nil, handleDBError(err, "get review by id")
	}
	return &review, nil
}

func (r *reviewRepository) ExistsByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error) {
	db := getDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check existing review")
	}
	return count > 0, nil
}

func (r *reviewRepository) Update(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).
		Model(review).
		Select("comment", "rating", "updated_at").
		Updates(review).Error; err != nil {
		return handleDBError(err, "update review")
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return handleDBError(err, "delete review")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *reviewRepository) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, plan *query.Plan) ([]*models.Review, int64, error) {
	db := getDB(r.db, tx)
	scoped := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&models.Review{}).Where("course_id = ?", courseID)
		return applyRangeFilters(q, plan.Filters)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count course reviews")
	}

	plan.Clamp(total)
	reviews := make([]*models.Review, 0, plan.Limit)
	if total == 0 {
		return reviews, 0, nil
	}

	if err := scoped().
		Preload("User", selectPublicUser).
		Order(plan.Sort.OrderClause()).
		Offset(plan.Skip()).
		Limit(plan.Limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, handleDBError(err, "list course reviews")
	}
	return reviews, total, nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Review, error) {
	db := getDB(r.db, tx)
	var reviews []*models.Review
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Select("reviews.*").
		Joins("INNER JOIN courses ON courses.id = reviews.course_id").
		Where("reviews.user_id = ?", userID).
		Preload("Course").
		Order("reviews.created_at DESC, reviews.id ASC").
		Find(&reviews).Error; err != nil {
		return nil, handleDBError(err, "list user reviews")
	}
	return reviews, nil
}

// ===== CASCADE OPERATIONS =====

func (r *reviewRepository) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) (int64, error) {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Where("course_id = ?", courseID).Delete(&models.Review{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete course reviews")
	}
	return result.RowsAffected, nil
}

// DeleteByUser removes a user's reviews and returns the distinct courses they touched
func (r *reviewRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error) {
	db := getDB(r.db, tx)

	var courseIDs []string
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("course_id", &courseIDs).Error; err != nil {
		return nil, handleDBError(err, "collect user review courses")
	}

	if err := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Review{}).Error; err != nil {
		return nil, handleDBError(err, "delete user reviews")
	}
	return courseIDs, nil
}

// DeleteOrphans removes reviews whose course no longer exists
func (r *reviewRepository) DeleteOrphans(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Where("course_id NOT IN (?)", db.Model(&models.Course{}).Select("id")).
		Delete(&models.Review{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete orphaned reviews")
	}
	return result.RowsAffected, nil
}

// ===== AGGREGATION OPERATIONS =====

func (r *reviewRepository) RatingSummary(ctx context.Context, tx *gorm.DB, courseID string) (*repositories.RatingSummary, error) {
	db := getDB(r.db, tx)
	var summary repositories.RatingSummary
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("course_id = ?", courseID).
		Scan(&summary).Error; err != nil {
		return nil, handleDBError(err, "summarize course ratings")
	}
	return &summary, nil
}

func (r *reviewRepository) CountByCourses(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	db := getDB(r.db, tx)
	var rows []struct {
		CourseID string
		Count    int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Select("course_id, COUNT(*) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "count course reviews")
	}

	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}
	return counts, nil
}
