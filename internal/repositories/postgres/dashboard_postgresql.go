package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

// ===== TOTALS =====

func (r *dashboardRepository) count(ctx context.Context, tx *gorm.DB, model interface{}, what string, where ...interface{}) (int64, error) {
	q := getDB(r.db, tx).WithContext(ctx).Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return count, nil
}

func (r *dashboardRepository) CountUsers(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.count(ctx, tx, &models.User{}, "users")
}

func (r *dashboardRepository) CountDisciplines(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.count(ctx, tx, &models.Discipline{}, "disciplines")
}

func (r *dashboardRepository) CountCourses(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.count(ctx, tx, &models.Course{}, "courses")
}

func (r *dashboardRepository) CountRatedCourses(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.count(ctx, tx, &models.Course{}, "rated courses", "average_rating IS NOT NULL")
}

func (r *dashboardRepository) CountReviews(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.count(ctx, tx, &models.Review{}, "reviews")
}

func (r *dashboardRepository) CountReviewsBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) (int64, error) {
	return r.count(ctx, tx, &models.Review{}, "recent reviews", "created_at >= ? AND created_at < ?", from, to)
}

func (r *dashboardRepository) ActiveReviewers(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	db := getDB(r.db, tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("created_at >= ?", since).
		Distinct("user_id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get active reviewers: %w", err)
	}

	return count, nil
}

// ===== METRICS =====

func (r *dashboardRepository) AverageReviewRating(ctx context.Context, tx *gorm.DB) (*float64, error) {
	db := getDB(r.db, tx)

	var result struct {
		Total int64
		Sum   int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS total, COALESCE(SUM(rating), 0) AS sum").
		Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to get average rating: %w", err)
	}

	if result.Total == 0 {
		return nil, nil
	}
	average := float64(result.Sum) / float64(result.Total)
	return &average, nil
}

func (r *dashboardRepository) RatingDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.RatingBucket, error) {
	db := getDB(r.db, tx)

	var buckets []repositories.RatingBucket
	if err := db.WithContext(ctx).
		Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Order("rating ASC").
		Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("failed to get rating distribution: %w", err)
	}

	return buckets, nil
}

// ===== RANKINGS =====

func (r *dashboardRepository) TopCourses(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.CourseRankingData, error) {
	db := getDB(r.db, tx)

	var rows []repositories.CourseRankingData
	if err := db.WithContext(ctx).
		Table("courses c").
		Select(`c.id AS course_id, c.name AS course_name, c.slug AS course_slug,
			COALESCE(d.name, '') AS discipline_name, c.average_rating AS average_rating,
			COUNT(r.id) AS review_count`).
		Joins("LEFT JOIN disciplines d ON d.id = c.discipline_id").
		Joins("LEFT JOIN reviews r ON r.course_id = c.id").
		Where("c.average_rating IS NOT NULL").
		Group("c.id, c.name, c.slug, d.name, c.average_rating").
		Order("c.average_rating DESC, c.name ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get top courses: %w", err)
	}

	return rows, nil
}

func (r *dashboardRepository) DisciplinePerformance(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.DisciplinePerformanceData, error) {
	db := getDB(r.db, tx)

	var rows []struct {
		DisciplineID   string
		DisciplineName string
		DisciplineSlug string
		CourseCount    int64
		ReviewCount    int64
		RatingSum      int64
	}
	if err := db.WithContext(ctx).
		Table("disciplines d").
		Select(`d.id AS discipline_id, d.name AS discipline_name, d.slug AS discipline_slug,
			COUNT(DISTINCT c.id) AS course_count, COUNT(r.id) AS review_count,
			COALESCE(SUM(r.rating), 0) AS rating_sum`).
		Joins("LEFT JOIN courses c ON c.discipline_id = d.id").
		Joins("LEFT JOIN reviews r ON r.course_id = c.id").
		Group("d.id, d.name, d.slug").
		Order("review_count DESC, d.name ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get discipline performance: %w", err)
	}

	result := make([]repositories.DisciplinePerformanceData, len(rows))
	for i, row := range rows {
		result[i] = repositories.DisciplinePerformanceData{
			DisciplineID:   row.DisciplineID,
			DisciplineName: row.DisciplineName,
			DisciplineSlug: row.DisciplineSlug,
			CourseCount:    row.CourseCount,
			ReviewCount:    row.ReviewCount,
		}
		if row.ReviewCount > 0 {
			average := float64(row.RatingSum) / float64(row.ReviewCount)
			result[i].AverageRating = &average
		}
	}
	return result, nil
}
