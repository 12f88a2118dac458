package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/query"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cascade   *CascadeManager
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, cascade *CascadeManager) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		cascade:   cascade,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, principal *models.User, disciplineSlug string, req *CreateCourseRequest) (*models.Course, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}
	if !isValidSlug(disciplineSlug) {
		return nil, ErrDisciplineNotFound
	}
	s.logger.Info("Creating course", "discipline_slug", disciplineSlug, "name", req.Name)

	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, errs
	}

	course := &models.Course{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Slug:       utils.Slugify(req.Name),
		NameTokens: utils.TokenIndex(req.Name),
		UserID:     principal.ID,
		Cost:       req.Cost,
	}
	if course.Slug == "" {
		return nil, fieldError("name", "The course name must contain letters or digits.", "slug")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		discipline, err := s.repo.Discipline().GetBySlug(ctx, tx, disciplineSlug)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrDisciplineNotFound
			}
			return err
		}
		course.DisciplineID = discipline.ID

		if err := s.ensureUnique(ctx, tx, course); err != nil {
			return err
		}
		return s.repo.Course().Create(ctx, tx, course)
	})
	if err != nil {
		return nil, translateDuplicate(err, ErrCourseNameInUse)
	}

	s.logger.Info("Course created", "course_id", course.ID, "slug", course.Slug)
	return course, nil
}

func (s *courseService) Update(ctx context.Context, principal *models.User, slug string, req *UpdateCourseRequest) (*models.Course, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}
	if !isValidSlug(slug) {
		return nil, ErrCourseNotFound
	}
	s.logger.Info("Updating course", "slug", slug, "user_id", principal.ID)

	if errs := s.validator.GetBusinessValidator().ValidateCourseUpdate(req); len(errs) > 0 {
		return nil, errs
	}
	if req.Name != nil && utils.Slugify(*req.Name) == "" {
		return nil, fieldError("name", "The course name must contain letters or digits.", "slug")
	}

	var course *models.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		course, err = s.repo.Course().GetBySlug(ctx, tx, slug)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return err
		}

		if req.Name != nil && *req.Name != course.Name {
			course.Name = *req.Name
			course.Slug = utils.Slugify(*req.Name)
			course.NameTokens = utils.TokenIndex(*req.Name)
			if err := s.ensureUnique(ctx, tx, course); err != nil {
				return err
			}
		}
		if req.Cost != nil {
			course.Cost = *req.Cost
		}

		return s.repo.Course().Update(ctx, tx, course)
	})
	if err != nil {
		return nil, translateDuplicate(err, ErrCourseNameInUse)
	}

	s.repo.Course().InvalidateCache(ctx, slug, course.Slug)
	s.logger.Info("Course updated", "course_id", course.ID, "slug", course.Slug)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, principal *models.User, slug string) error {
	if err := AuthorizeAdmin(principal); err != nil {
		return err
	}
	if !isValidSlug(slug) {
		return ErrCourseNotFound
	}

	course, err := s.repo.Course().GetBySlug(ctx, nil, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	return s.cascade.DeleteCourse(ctx, course)
}

// ===== QUERY OPERATIONS =====

func (s *courseService) GetBySlug(ctx context.Context, slug string, includeReviews bool) (*models.Course, error) {
	if !isValidSlug(slug) {
		return nil, ErrCourseNotFound
	}

	var course *models.Course
	var err error
	if includeReviews {
		course, err = s.repo.Course().GetBySlugWithReviews(ctx, nil, slug)
	} else {
		course, err = s.repo.Course().GetBySlug(ctx, nil, slug)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context, params query.Params) (*ListResponse[*models.Course], error) {
	return s.search(ctx, params, "")
}

// ListByDiscipline runs the same search scoped to one discipline
func (s *courseService) ListByDiscipline(ctx context.Context, disciplineSlug string, params query.Params) (*ListResponse[*models.Course], error) {
	if !isValidSlug(disciplineSlug) {
		return nil, ErrDisciplineNotFound
	}

	discipline, err := s.repo.Discipline().GetBySlug(ctx, nil, disciplineSlug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDisciplineNotFound
		}
		return nil, fmt.Errorf("failed to get discipline: %w", err)
	}

	return s.search(ctx, params, discipline.ID)
}

func (s *courseService) search(ctx context.Context, params query.Params, disciplineID string) (*ListResponse[*models.Course], error) {
	plan, err := query.Build(query.CourseListing, params)
	if err != nil {
		return nil, filterValidationError(err)
	}

	courses, total, err := s.repo.Course().Search(ctx, nil, plan, disciplineID)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}

	return &ListResponse[*models.Course]{Items: courses, Page: plan.Page, Limit: plan.Limit, Total: total}, nil
}

// ensureUnique rejects a name or slug already held by another course
func (s *courseService) ensureUnique(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	exists, err := s.repo.Course().ExistsByName(ctx, tx, course.Name, course.ID)
	if err != nil {
		return err
	}
	if !exists {
		exists, err = s.repo.Course().ExistsBySlug(ctx, tx, course.Slug, course.ID)
		if err != nil {
			return err
		}
	}
	if exists {
		return ErrCourseNameInUse
	}
	return nil
}

func filterValidationError(err error) error {
	var filterErr *query.FilterError
	if errors.As(err, &filterErr) {
		return fieldError(filterErr.Field, filterErr.Error(), "filter")
	}
	return err
}
