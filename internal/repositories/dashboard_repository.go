package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository interface for catalog analytics
type DashboardRepository interface {
	// Totals
	CountUsers(ctx context.Context, tx *gorm.DB) (int64, error)
	CountDisciplines(ctx context.Context, tx *gorm.DB) (int64, error)
	CountCourses(ctx context.Context, tx *gorm.DB) (int64, error)
	CountRatedCourses(ctx context.Context, tx *gorm.DB) (int64, error)
	CountReviews(ctx context.Context, tx *gorm.DB) (int64, error)

	// CountReviewsBetween counts reviews created in [from, to)
	CountReviewsBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) (int64, error)
	// ActiveReviewers counts distinct authors with a review since the given time
	ActiveReviewers(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	// AverageReviewRating is the mean over every review, nil when there are none
	AverageReviewRating(ctx context.Context, tx *gorm.DB) (*float64, error)

	RatingDistribution(ctx context.Context, tx *gorm.DB) ([]RatingBucket, error)
	TopCourses(ctx context.Context, tx *gorm.DB, limit int) ([]CourseRankingData, error)
	DisciplinePerformance(ctx context.Context, tx *gorm.DB, limit int) ([]DisciplinePerformanceData, error)
}

// Data structures for dashboard responses

type RatingBucket struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

type CourseRankingData struct {
	CourseID       string  `json:"course_id"`
	CourseName     string  `json:"course_name"`
	CourseSlug     string  `json:"course_slug"`
	DisciplineName string  `json:"discipline_name"`
	AverageRating  float64 `json:"average_rating"`
	ReviewCount    int64   `json:"review_count"`
}

type DisciplinePerformanceData struct {
	DisciplineID   string   `json:"discipline_id"`
	DisciplineName string   `json:"discipline_name"`
	DisciplineSlug string   `json:"discipline_slug"`
	CourseCount    int64    `json:"course_count"`
	ReviewCount    int64    `json:"review_count"`
	AverageRating  *float64 `json:"average_rating"`
}
