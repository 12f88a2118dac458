package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

const defaultBlobTimeout = 5 * time.Second

// CascadeManager owns every delete that has dependents. Each cascade runs in a
// fixed order: image release, then children, then the record itself.
type CascadeManager struct {
	repo        repositories.Repository
	blobs       blobstore.Store
	aggregator  *RatingAggregator
	publisher   events.EventPublisher
	logger      *slog.Logger
	blobTimeout time.Duration
}

func NewCascadeManager(repo repositories.Repository, blobs blobstore.Store, aggregator *RatingAggregator, publisher events.EventPublisher, logger *slog.Logger) *CascadeManager {
	return &CascadeManager{
		repo:        repo,
		blobs:       blobs,
		aggregator:  aggregator,
		publisher:   publisher,
		logger:      logger,
		blobTimeout: defaultBlobTimeout,
	}
}

// ReleaseImage removes a blob best-effort. Failures are logged and never returned.
func (m *CascadeManager) ReleaseImage(ctx context.Context, ref *string) {
	if ref == nil || *ref == "" || m.blobs == nil {
		return
	}

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.blobTimeout)
	defer cancel()

	if err := m.blobs.Remove(releaseCtx, *ref); err != nil {
		m.logger.Warn("Failed to release image", "ref", *ref, "error", err)
		return
	}
	m.logger.Debug("Image released", "ref", *ref)
}

// ===== SINGLE RECORD CASCADES =====

// DeleteUser removes the user's reviews, recomputes every course they touched,
// then removes the user. Disciplines and courses they created stay.
func (m *CascadeManager) DeleteUser(ctx context.Context, user *models.User) error {
	m.logger.Info("Deleting user", "user_id", user.ID)

	// image goes first; a failed transaction below leaves a dangling reference
	m.ReleaseImage(ctx, user.ImageURL)

	var touched []string
	err := m.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		courseIDs, err := m.repo.Review().DeleteByUser(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		if touched, err = m.aggregator.RecomputeMany(ctx, tx, courseIDs); err != nil {
			return err
		}

		return m.repo.User().Delete(ctx, tx, user.ID)
	})
	if err != nil {
		if user.ImageURL != nil {
			m.logger.Error("User kept after its image was released", "user_id", user.ID, "image", *user.ImageURL, "error", err)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	m.repo.Course().InvalidateCache(ctx, touched...)
	m.publish(ctx, events.UserDeleted, map[string]interface{}{
		"user_id":          user.ID,
		"courses_affected": touched,
	})

	m.logger.Info("User deleted", "user_id", user.ID, "courses_recomputed", len(touched))
	return nil
}

// DeleteDiscipline releases the discipline image, cascades each course, then
// removes the discipline. All rows go in one transaction.
func (m *CascadeManager) DeleteDiscipline(ctx context.Context, discipline *models.Discipline) error {
	m.logger.Info("Deleting discipline", "discipline_id", discipline.ID, "slug", discipline.Slug)

	// image goes first; a failed transaction below leaves a dangling reference
	m.ReleaseImage(ctx, discipline.ImageURL)

	var courses []*models.Course
	removed := make(map[string]int64)
	err := m.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		courses, _, err = m.repo.Course().List(ctx, tx, repositories.CourseFilters{DisciplineID: &discipline.ID})
		if err != nil {
			return err
		}

		for _, course := range courses {
			if removed[course.ID], err = m.deleteCourse(ctx, tx, course); err != nil {
				return err
			}
		}

		return m.repo.Discipline().Delete(ctx, tx, discipline)
	})
	if err != nil {
		if discipline.ImageURL != nil {
			m.logger.Error("Discipline kept after its image was released", "discipline_id", discipline.ID, "image", *discipline.ImageURL, "error", err)
		}
		return fmt.Errorf("failed to delete discipline: %w", err)
	}

	courseSlugs := make([]string, 0, len(courses))
	for _, course := range courses {
		courseSlugs = append(courseSlugs, course.Slug)
		m.publishCourseDeleted(ctx, course, removed[course.ID])
	}
	m.repo.Course().InvalidateCache(ctx, courseSlugs...)
	m.repo.Discipline().InvalidateCache(ctx, discipline.Slug)
	m.publish(ctx, events.DisciplineDeleted, map[string]interface{}{
		"discipline_id":   discipline.ID,
		"slug":            discipline.Slug,
		"courses_deleted": len(courses),
	})

	m.logger.Info("Discipline deleted", "discipline_id", discipline.ID, "courses_deleted", len(courses))
	return nil
}

// DeleteCourse removes the course's reviews and then the course. No rating
// recompute happens since the course is gone.
func (m *CascadeManager) DeleteCourse(ctx context.Context, course *models.Course) error {
	m.logger.Info("Deleting course", "course_id", course.ID, "slug", course.Slug)

	var removed int64
	err := m.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		removed, err = m.deleteCourse(ctx, tx, course)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	m.repo.Course().InvalidateCache(ctx, course.Slug)
	m.publishCourseDeleted(ctx, course, removed)
	return nil
}

func (m *CascadeManager) deleteCourse(ctx context.Context, tx *gorm.DB, course *models.Course) (int64, error) {
	removed, err := m.repo.Review().DeleteByCourse(ctx, tx, course.ID)
	if err != nil {
		return 0, err
	}
	if err := m.repo.Course().Delete(ctx, tx, course); err != nil {
		return 0, err
	}

	m.logger.Debug("Course cascade complete", "course_id", course.ID, "reviews_deleted", removed)
	return removed, nil
}

// ===== BULK CASCADES =====
// Bulk deletes cascade record by record, each in its own transaction. A
// failure stops the batch and reports how many records were already removed.

func (m *CascadeManager) DeleteUsers(ctx context.Context, filters repositories.UserFilters) (int, error) {
	users, _, err := m.repo.User().List(ctx, nil, filters)
	if err != nil {
		return 0, fmt.Errorf("failed to load users: %w", err)
	}

	for i, user := range users {
		if err := m.DeleteUser(ctx, user); err != nil {
			return i, err
		}
	}
	return len(users), nil
}

func (m *CascadeManager) DeleteDisciplines(ctx context.Context, filters repositories.DisciplineFilters) (int, error) {
	disciplines, _, err := m.repo.Discipline().List(ctx, nil, filters)
	if err != nil {
		return 0, fmt.Errorf("failed to load disciplines: %w", err)
	}

	for i, discipline := range disciplines {
		if err := m.DeleteDiscipline(ctx, discipline); err != nil {
			return i, err
		}
	}
	return len(disciplines), nil
}

func (m *CascadeManager) DeleteCourses(ctx context.Context, filters repositories.CourseFilters) (int, error) {
	courses, _, err := m.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return 0, fmt.Errorf("failed to load courses: %w", err)
	}

	for i, course := range courses {
		if err := m.DeleteCourse(ctx, course); err != nil {
			return i, err
		}
	}
	return len(courses), nil
}

// ResetSummary counts what Reset removed
type ResetSummary struct {
	Disciplines   int   `json:"disciplines"`
	Users         int   `json:"users"`
	Courses       int   `json:"courses"`
	OrphanReviews int64 `json:"orphan_reviews"`
}

// Reset empties the catalog. Disciplines go first so their cascade removes
// courses and reviews, then users, then any course or review left behind.
func (m *CascadeManager) Reset(ctx context.Context) (*ResetSummary, error) {
	m.logger.Warn("Resetting catalog")

	summary := &ResetSummary{}
	var err error

	if summary.Disciplines, err = m.DeleteDisciplines(ctx, repositories.DisciplineFilters{}); err != nil {
		return summary, err
	}
	if summary.Users, err = m.DeleteUsers(ctx, repositories.UserFilters{}); err != nil {
		return summary, err
	}
	if summary.Courses, err = m.DeleteCourses(ctx, repositories.CourseFilters{}); err != nil {
		return summary, err
	}
	if summary.OrphanReviews, err = m.repo.Review().DeleteOrphans(ctx, nil); err != nil {
		return summary, fmt.Errorf("failed to delete orphaned reviews: %w", err)
	}

	if err := m.repo.ClearCache(ctx); err != nil {
		m.logger.Warn("Failed to clear cache after reset", "error", err)
	}

	m.logger.Warn("Catalog reset complete",
		"disciplines", summary.Disciplines,
		"users", summary.Users,
		"courses", summary.Courses,
		"orphan_reviews", summary.OrphanReviews)
	return summary, nil
}

func (m *CascadeManager) publishCourseDeleted(ctx context.Context, course *models.Course, reviewsDeleted int64) {
	m.publish(ctx, events.CourseDeleted, map[string]interface{}{
		"course_id":       course.ID,
		"slug":            course.Slug,
		"reviews_deleted": reviewsDeleted,
	})
}

func (m *CascadeManager) publish(ctx context.Context, eventType events.EventType, data map[string]interface{}) {
	publishEvent(ctx, m.publisher, m.logger, eventType, data)
}
