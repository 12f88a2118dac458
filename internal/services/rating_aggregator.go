package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

// RatingAggregator keeps Course.AverageRating equal to the rounded mean of its reviews
type RatingAggregator struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewRatingAggregator(repo repositories.Repository, logger *slog.Logger) *RatingAggregator {
	return &RatingAggregator{repo: repo, logger: logger}
}

// AverageRating rounds half away from zero to two decimals; nil means unrated
func AverageRating(count, sum int64) *float64 {
	if count <= 0 {
		return nil
	}
	mean := float64(sum) / float64(count)
	rounded := math.Round(mean*100) / 100
	return &rounded
}

// Recompute derives the course rating from the current review rows and stores
// it. It must run on the mutating transaction; a missing course is a no-op.
func (a *RatingAggregator) Recompute(ctx context.Context, tx *gorm.DB, courseID string) (*float64, error) {
	course, err := a.repo.Course().GetByID(ctx, tx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			a.logger.Debug("Skipping rating recompute for missing course", "course_id", courseID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load course for rating: %w", err)
	}

	summary, err := a.repo.Review().RatingSummary(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}

	rating := AverageRating(summary.Count, summary.Sum)
	if err := a.repo.Course().UpdateAverageRating(ctx, tx, course, rating); err != nil {
		return nil, fmt.Errorf("failed to store average rating: %w", err)
	}

	a.logger.Debug("Course rating recomputed", "course_id", courseID, "reviews", summary.Count, "average_rating", rating)
	return rating, nil
}

// RecomputeMany recomputes each distinct course once and returns the slugs
// of the courses it rewrote, for cache invalidation after commit.
func (a *RatingAggregator) RecomputeMany(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(courseIDs))
	slugs := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		course, err := a.repo.Course().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load course for rating: %w", err)
		}
		if _, err := a.Recompute(ctx, tx, id); err != nil {
			return nil, err
		}
		slugs = append(slugs, course.Slug)
	}
	return slugs, nil
}
