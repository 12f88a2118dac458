package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

type disciplineService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	blobs     blobstore.Store
	cascade   *CascadeManager
}

func NewDisciplineService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, blobs blobstore.Store, cascade *CascadeManager) DisciplineService {
	return &disciplineService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		blobs:     blobs,
		cascade:   cascade,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *disciplineService) Create(ctx context.Context, principal *models.User, req *CreateDisciplineRequest, image *ImageUpload) (*models.Discipline, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}
	s.logger.Info("Creating discipline", "user_id", principal.ID, "name", req.Name)

	errs := s.validator.GetBusinessValidator().ValidateDisciplineCreate(req)
	errs = append(errs, validateImage(image)...)
	if len(errs) > 0 {
		return nil, errs
	}

	discipline := &models.Discipline{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Slug:   utils.Slugify(req.Name),
		UserID: principal.ID,
	}
	if discipline.Slug == "" {
		return nil, fieldError("name", "The discipline name must contain letters or digits.", "slug")
	}

	imageRef, err := storeImage(ctx, s.blobs, image)
	if err != nil {
		return nil, err
	}
	discipline.ImageURL = imageRef

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(ctx, tx, discipline); err != nil {
			return err
		}
		return s.repo.Discipline().Create(ctx, tx, discipline)
	})
	if err != nil {
		s.cascade.ReleaseImage(ctx, imageRef)
		return nil, translateDuplicate(err, ErrDisciplineNameInUse)
	}
	s.repo.Discipline().InvalidateCache(ctx, discipline.Slug)

	s.logger.Info("Discipline created", "discipline_id", discipline.ID, "slug", discipline.Slug)
	return discipline, nil
}

func (s *disciplineService) Update(ctx context.Context, principal *models.User, slug string, req *UpdateDisciplineRequest, image *ImageUpload) (*models.Discipline, error) {
	if err := AuthorizeAdmin(principal); err != nil {
		return nil, err
	}
	if !isValidSlug(slug) {
		return nil, ErrDisciplineNotFound
	}
	s.logger.Info("Updating discipline", "slug", slug, "user_id", principal.ID)

	errs := s.validator.GetBusinessValidator().ValidateDisciplineUpdate(req, image != nil)
	errs = append(errs, validateImage(image)...)
	if len(errs) > 0 {
		return nil, errs
	}
	if req.Name != nil && utils.Slugify(*req.Name) == "" {
		return nil, fieldError("name", "The discipline name must contain letters or digits.", "slug")
	}

	newImage, err := storeImage(ctx, s.blobs, image)
	if err != nil {
		return nil, err
	}

	var discipline *models.Discipline
	var oldImage *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		discipline, err = s.repo.Discipline().GetBySlug(ctx, tx, slug)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrDisciplineNotFound
			}
			return err
		}

		if req.Name != nil && *req.Name != discipline.Name {
			discipline.Name = *req.Name
			discipline.Slug = utils.Slugify(*req.Name)
			if err := s.ensureUnique(ctx, tx, discipline); err != nil {
				return err
			}
		}
		if newImage != nil {
			oldImage = discipline.ImageURL
			discipline.ImageURL = newImage
		}

		return s.repo.Discipline().Update(ctx, tx, discipline)
	})
	if err != nil {
		s.cascade.ReleaseImage(ctx, newImage)
		return nil, translateDuplicate(err, ErrDisciplineNameInUse)
	}

	s.repo.Discipline().InvalidateCache(ctx, slug, discipline.Slug)
	s.cascade.ReleaseImage(ctx, oldImage)

	s.logger.Info("Discipline updated", "discipline_id", discipline.ID, "slug", discipline.Slug)
	return discipline, nil
}

func (s *disciplineService) Delete(ctx context.Context, principal *models.User, slug string) error {
	if err := AuthorizeAdmin(principal); err != nil {
		return err
	}
	if !isValidSlug(slug) {
		return ErrDisciplineNotFound
	}

	discipline, err := s.repo.Discipline().GetBySlug(ctx, nil, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDisciplineNotFound
		}
		return fmt.Errorf("failed to get discipline: %w", err)
	}

	return s.cascade.DeleteDiscipline(ctx, discipline)
}

// ===== QUERY OPERATIONS =====

func (s *disciplineService) GetBySlug(ctx context.Context, slug string, includeCourses bool) (*models.Discipline, error) {
	if !isValidSlug(slug) {
		return nil, ErrDisciplineNotFound
	}

	var discipline *models.Discipline
	var err error
	if includeCourses {
		discipline, err = s.repo.Discipline().GetBySlugWithCourses(ctx, nil, slug)
	} else {
		discipline, err = s.repo.Discipline().GetBySlug(ctx, nil, slug)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDisciplineNotFound
		}
		return nil, fmt.Errorf("failed to get discipline: %w", err)
	}
	return discipline, nil
}

func (s *disciplineService) List(ctx context.Context) ([]*models.Discipline, error) {
	disciplines, err := s.repo.Discipline().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list disciplines: %w", err)
	}
	return disciplines, nil
}

// ensureUnique rejects a name or slug already held by another discipline
func (s *disciplineService) ensureUnique(ctx context.Context, tx *gorm.DB, discipline *models.Discipline) error {
	exists, err := s.repo.Discipline().ExistsByName(ctx, tx, discipline.Name, discipline.ID)
	if err != nil {
		return err
	}
	if !exists {
		exists, err = s.repo.Discipline().ExistsBySlug(ctx, tx, discipline.Slug, discipline.ID)
		if err != nil {
			return err
		}
	}
	if exists {
		return ErrDisciplineNameInUse
	}
	return nil
}
