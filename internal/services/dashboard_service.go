package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

// ===== RESPONSE DTOs =====

type DashboardStatsResponse struct {
	Overview DashboardOverview `json:"overview"`
	Metrics  DashboardMetrics  `json:"metrics"`
	Trends   DashboardTrends   `json:"trends"`
}

type DashboardOverview struct {
	TotalUsers       int64 `json:"total_users"`
	TotalDisciplines int64 `json:"total_disciplines"`
	TotalCourses     int64 `json:"total_courses"`
	TotalReviews     int64 `json:"total_reviews"`
	ActiveReviewers  int64 `json:"active_reviewers"`
}

type DashboardMetrics struct {
	// Mean over all reviews, nil while nothing is reviewed
	AverageRating *float64 `json:"average_rating"`
	// Percentage of courses with at least one review
	RatedCourseRate  float64 `json:"rated_course_rate"`
	ReviewsPerCourse float64 `json:"reviews_per_course"`
}

type DashboardTrends struct {
	PeriodDays    int     `json:"period_days"`
	RecentReviews int64   `json:"recent_reviews"`
	ReviewsChange float64 `json:"reviews_change"`
}

type RatingDistributionResponse struct {
	Rating     int     `json:"rating"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ===== SERVICE INTERFACE =====

type DashboardService interface {
	GetDashboardStats(ctx context.Context, principal *models.User, period int) (*DashboardStatsResponse, error)
	GetRatingDistribution(ctx context.Context, principal *models.User) ([]RatingDistributionResponse, error)
	GetTopCourses(ctx context.Context, principal *models.User, limit int) ([]repositories.CourseRankingData, error)
	GetDisciplinePerformance(ctx context.Context, principal *models.User, limit int) ([]repositories.DisciplinePerformanceData, error)
}

const (
	defaultDashboardPeriod = 30
	defaultRankingLimit    = 5
	maxRankingLimit        = 50
)

// ===== SERVICE IMPLEMENTATION =====

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, principal *models.User, period int) (*DashboardStatsResponse, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}

	if period <= 0 {
		period = defaultDashboardPeriod
	}
	s.logger.Info("Getting dashboard stats", "period", period)

	dashboard := s.repo.Dashboard()

	totalUsers, err := dashboard.CountUsers(ctx, nil)
	if err != nil {
		return nil, err
	}
	totalDisciplines, err := dashboard.CountDisciplines(ctx, nil)
	if err != nil {
		return nil, err
	}
	totalCourses, err := dashboard.CountCourses(ctx, nil)
	if err != nil {
		return nil, err
	}
	ratedCourses, err := dashboard.CountRatedCourses(ctx, nil)
	if err != nil {
		return nil, err
	}
	totalReviews, err := dashboard.CountReviews(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	currentStart := now.AddDate(0, 0, -period)
	previousStart := currentStart.AddDate(0, 0, -period)

	activeReviewers, err := dashboard.ActiveReviewers(ctx, nil, currentStart)
	if err != nil {
		return nil, err
	}

	average, err := dashboard.AverageReviewRating(ctx, nil)
	if err != nil {
		return nil, err
	}
	if average != nil {
		rounded := roundFloat(*average, 2)
		average = &rounded
	}

	// Trend failures degrade to zero rather than failing the whole dashboard
	recent, err := dashboard.CountReviewsBetween(ctx, nil, currentStart, now)
	if err != nil {
		s.logger.Warn("Failed to count recent reviews", "error", err)
		recent = 0
	}
	previous, err := dashboard.CountReviewsBetween(ctx, nil, previousStart, currentStart)
	if err != nil {
		s.logger.Warn("Failed to count previous reviews", "error", err)
		previous = 0
	}

	return &DashboardStatsResponse{
		Overview: DashboardOverview{
			TotalUsers:       totalUsers,
			TotalDisciplines: totalDisciplines,
			TotalCourses:     totalCourses,
			TotalReviews:     totalReviews,
			ActiveReviewers:  activeReviewers,
		},
		Metrics: DashboardMetrics{
			AverageRating:    average,
			RatedCourseRate:  percentage(ratedCourses, totalCourses),
			ReviewsPerCourse: ratio(totalReviews, totalCourses),
		},
		Trends: DashboardTrends{
			PeriodDays:    period,
			RecentReviews: recent,
			ReviewsChange: trendChange(recent, previous),
		},
	}, nil
}

// GetRatingDistribution reports every rating from 1 to 10, including empty ones
func (s *dashboardService) GetRatingDistribution(ctx context.Context, principal *models.User) ([]RatingDistributionResponse, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}

	buckets, err := s.repo.Dashboard().RatingDistribution(ctx, nil)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(buckets))
	var total int64
	for _, bucket := range buckets {
		counts[bucket.Rating] = bucket.Count
		total += bucket.Count
	}

	response := make([]RatingDistributionResponse, 0, models.MaxRating-models.MinRating+1)
	for rating := models.MinRating; rating <= models.MaxRating; rating++ {
		response = append(response, RatingDistributionResponse{
			Rating:     rating,
			Count:      counts[rating],
			Percentage: percentage(counts[rating], total),
		})
	}
	return response, nil
}

func (s *dashboardService) GetTopCourses(ctx context.Context, principal *models.User, limit int) ([]repositories.CourseRankingData, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}

	courses, err := s.repo.Dashboard().TopCourses(ctx, nil, rankingLimit(limit))
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []repositories.CourseRankingData{}
	}
	return courses, nil
}

func (s *dashboardService) GetDisciplinePerformance(ctx context.Context, principal *models.User, limit int) ([]repositories.DisciplinePerformanceData, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}

	rows, err := s.repo.Dashboard().DisciplinePerformance(ctx, nil, rankingLimit(limit))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repositories.DisciplinePerformanceData{}
	}
	for i := range rows {
		if rows[i].AverageRating != nil {
			rounded := roundFloat(*rows[i].AverageRating, 2)
			rows[i].AverageRating = &rounded
		}
	}
	return rows, nil
}

// ===== HELPERS =====

func rankingLimit(limit int) int {
	if limit <= 0 || limit > maxRankingLimit {
		return defaultRankingLimit
	}
	return limit
}

func roundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return roundFloat(float64(part)*100/float64(total), 1)
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return roundFloat(float64(part)/float64(total), 2)
}

// trendChange is the percentage change from previous to current; growth from zero counts as 100%
func trendChange(current, previous int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return roundFloat(float64(current-previous)*100/float64(previous), 1)
}
