package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

type reviewService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	aggregator *RatingAggregator
	publisher  events.EventPublisher
}

func NewReviewService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, aggregator *RatingAggregator, publisher events.EventPublisher) ReviewService {
	return &reviewService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		aggregator: aggregator,
		publisher:  publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

// Create stores the review and recomputes the course rating in the same
// transaction. The returned review is the one that was written.
func (s *reviewService) Create(ctx context.Context, principal *models.User, courseSlug string, req *CreateReviewRequest) (*models.Review, error) {
	if principal == nil {
		return nil, ErrNotAuthenticated
	}
	if !isValidSlug(courseSlug) {
		return nil, ErrCourseNotFound
	}
	s.logger.Info("Creating review", "course_slug", courseSlug, "user_id", principal.ID)

	if errs := s.validator.GetBusinessValidator().ValidateReviewCreate(req); len(errs) > 0 {
		return nil, errs
	}

	review := &models.Review{
		ID:      uuid.NewString(),
		Comment: req.Comment,
		Rating:  int(req.Rating),
		UserID:  principal.ID,
	}

	var course *models.Course
	var rating *float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		course, err = s.repo.Course().GetBySlug(ctx, tx, courseSlug)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return err
		}
		review.CourseID = course.ID

		exists, err := s.repo.Review().ExistsByUserAndCourse(ctx, tx, principal.ID, course.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateReview
		}

		if err := s.repo.Review().Create(ctx, tx, review); err != nil {
			return err
		}

		rating, err = s.aggregator.Recompute(ctx, tx, course.ID)
		return err
	})
	if err != nil {
		return nil, translateDuplicate(err, ErrDuplicateReview)
	}

	s.afterRatingChange(ctx, course, rating)
	publishEvent(ctx, s.publisher, s.logger, events.ReviewCreated, map[string]interface{}{
		"review_id": review.ID,
		"course_id": course.ID,
		"user_id":   principal.ID,
		"rating":    review.Rating,
	})

	s.logger.Info("Review created", "review_id", review.ID, "course_id", course.ID)
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, principal *models.User, id string, req *UpdateReviewRequest) (*models.Review, error) {
	if principal == nil {
		return nil, ErrNotAuthenticated
	}
	if !isValidID(id) {
		return nil, ErrReviewNotFound
	}
	s.logger.Info("Updating review", "review_id", id, "user_id", principal.ID)

	if errs := s.validator.GetBusinessValidator().ValidateReviewUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	var review *models.Review
	var course *models.Course
	var rating *float64
	ratingChanged := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		review, course, err = s.loadReview(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := AuthorizeOwner(principal, review.UserID, ErrNotReviewOwner); err != nil {
			return err
		}

		if req.Comment != nil {
			review.Comment = *req.Comment
		}
		if req.Rating != nil && int(*req.Rating) != review.Rating {
			review.Rating = int(*req.Rating)
			ratingChanged = true
		}

		if err := s.repo.Review().Update(ctx, tx, review); err != nil {
			return err
		}

		if ratingChanged {
			rating, err = s.aggregator.Recompute(ctx, tx, course.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if ratingChanged {
		s.afterRatingChange(ctx, course, rating)
	}
	publishEvent(ctx, s.publisher, s.logger, events.ReviewUpdated, map[string]interface{}{
		"review_id":      review.ID,
		"course_id":      review.CourseID,
		"rating_changed": ratingChanged,
	})

	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, principal *models.User, id string) error {
	if principal == nil {
		return ErrNotAuthenticated
	}
	if !isValidID(id) {
		return ErrReviewNotFound
	}
	s.logger.Info("Deleting review", "review_id", id, "user_id", principal.ID)

	var review *models.Review
	var course *models.Course
	var rating *float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		review, err = s.repo.Review().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrReviewNotFound
			}
			return err
		}
		if err := AuthorizeOwner(principal, review.UserID, ErrNotReviewOwner); err != nil {
			return err
		}

		if err := s.repo.Review().Delete(ctx, tx, review.ID); err != nil {
			return err
		}

		// an orphaned review has no course left to recompute
		course, err = s.repo.Course().GetByID(ctx, tx, review.CourseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				course = nil
				return nil
			}
			return err
		}
		rating, err = s.aggregator.Recompute(ctx, tx, course.ID)
		return err
	})
	if err != nil {
		return err
	}

	if course != nil {
		s.afterRatingChange(ctx, course, rating)
	}
	publishEvent(ctx, s.publisher, s.logger, events.ReviewDeleted, map[string]interface{}{
		"review_id": review.ID,
		"course_id": review.CourseID,
		"user_id":   review.UserID,
	})
	return nil
}

// ===== QUERY OPERATIONS =====

// GetByID hides reviews whose course is gone behind a not found
func (s *reviewService) GetByID(ctx context.Context, id string) (*models.Review, error) {
	if !isValidID(id) {
		return nil, ErrReviewNotFound
	}

	review, course, err := s.loadReview(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	review.Course = course
	return review, nil
}

func (s *reviewService) ListByCourse(ctx context.Context, courseSlug string, params query.Params) (*ListResponse[*models.Review], error) {
	if !isValidSlug(courseSlug) {
		return nil, ErrCourseNotFound
	}

	course, err := s.repo.Course().GetBySlug(ctx, nil, courseSlug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	plan, err := query.Build(query.ReviewListing, params)
	if err != nil {
		return nil, filterValidationError(err)
	}

	reviews, total, err := s.repo.Review().ListByCourse(ctx, nil, course.ID, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return &ListResponse[*models.Review]{Items: reviews, Page: plan.Page, Limit: plan.Limit, Total: total}, nil
}

// ===== HELPERS =====

func (s *reviewService) loadReview(ctx context.Context, tx *gorm.DB, id string) (*models.Review, *models.Course, error) {
	review, err := s.repo.Review().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrReviewNotFound
		}
		return nil, nil, fmt.Errorf("failed to get review: %w", err)
	}

	course, err := s.repo.Course().GetByID(ctx, tx, review.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Review points at a missing course", "review_id", review.ID, "course_id", review.CourseID)
			return nil, nil, ErrReviewNotFound
		}
		return nil, nil, fmt.Errorf("failed to get review course: %w", err)
	}
	return review, course, nil
}

// afterRatingChange runs once the rating commit is visible
func (s *reviewService) afterRatingChange(ctx context.Context, course *models.Course, rating *float64) {
	s.repo.Course().InvalidateCache(ctx, course.Slug)

	data := map[string]interface{}{"course_id": course.ID, "slug": course.Slug, "average_rating": nil}
	if rating != nil {
		data["average_rating"] = *rating
	}
	publishEvent(ctx, s.publisher, s.logger, events.CourseRatingUpdated, data)
}
