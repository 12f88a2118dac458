package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/blobstore"
	"github.com/SAP-F-2025/course-review-service/internal/credentials"
	"github.com/SAP-F-2025/course-review-service/internal/events"
	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
	"github.com/SAP-F-2025/course-review-service/internal/validator"
)

const defaultResetTokenTTL = 10 * time.Minute

// Credentials bundles the hashing and token capabilities of the user service
type Credentials struct {
	Hasher   credentials.PasswordHasher
	Issuer   credentials.TokenIssuer
	Verifier credentials.TokenVerifier
}

type UserServiceConfig struct {
	ResetURL      string
	ResetTokenTTL time.Duration
}

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	creds     Credentials
	blobs     blobstore.Store
	notifier  events.Notifier
	cascade   *CascadeManager
	config    UserServiceConfig
	now       func() time.Time
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, creds Credentials, blobs blobstore.Store, notifier events.Notifier, cascade *CascadeManager, config UserServiceConfig) UserService {
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = defaultResetTokenTTL
	}
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		creds:     creds,
		blobs:     blobs,
		notifier:  notifier,
		cascade:   cascade,
		config:    config,
		now:       time.Now,
	}
}

// ===== ACCOUNT LIFECYCLE =====

func (s *userService) Register(ctx context.Context, req *SignupRequest, image *ImageUpload) (*AuthResponse, error) {
	s.logger.Info("Registering user", "email", req.Email)

	if errs := s.validator.GetBusinessValidator().ValidateSignup(req); len(errs) > 0 {
		return nil, errs
	}
	if errs := validateImage(image); len(errs) > 0 {
		return nil, errs
	}

	email := strings.ToLower(req.Email)
	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hash, err := s.creds.Hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	imageRef, err := storeImage(ctx, s.blobs, image)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		ImageURL: imageRef,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		s.cascade.ReleaseImage(ctx, imageRef)
		return nil, translateDuplicate(fmt.Errorf("failed to create user: %w", err), ErrEmailInUse)
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, strings.TrimSpace(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.creds.Hasher.Verify(req.Password, user.Password) {
		s.logger.Warn("Failed login attempt", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *userService) RequestPasswordReset(ctx context.Context, req *ForgotPasswordRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrEmailNotRegistered
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	raw, digest, err := credentials.NewResetToken()
	if err != nil {
		return "", err
	}
	expires := s.now().Add(s.config.ResetTokenTTL)
	user.ResetToken = &digest
	user.ResetTokenExpiration = &expires

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	// delivery failures never fail the request
	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, user.Email, s.config.ResetURL+raw); err != nil {
			s.logger.Warn("Password reset notification failed", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info("Password reset requested", "user_id", user.ID)
	return raw, nil
}

func (s *userService) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (*AuthResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidResetToken
	}
	if errs := s.validator.GetBusinessValidator().ValidatePasswordReset(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByResetToken(ctx, nil, credentials.HashResetToken(token), s.now())
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	hash, err := s.creds.Hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash
	user.ResetToken = nil
	user.ResetTokenExpiration = nil

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info("Password reset", "user_id", user.ID)
	return s.authResponse(user)
}

func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.creds.Verifier.Verify(ctx, token)
	if err != nil || !isValidID(userID) {
		return nil, ErrNotAuthenticated
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return user, nil
}

// ===== PROFILE OPERATIONS =====

func (s *userService) GetProfile(ctx context.Context, principal *models.User) (*models.User, error) {
	if principal == nil {
		return nil, ErrNotAuthenticated
	}
	return s.loadUser(ctx, principal.ID, true)
}

func (s *userService) UpdateProfile(ctx context.Context, principal *models.User, req *UpdateProfileRequest, image *ImageUpload) (*models.User, error) {
	if principal == nil {
		return nil, ErrNotAuthenticated
	}
	s.logger.Info("Updating profile", "user_id", principal.ID)

	errs := s.validator.GetBusinessValidator().ValidateProfileUpdate(req, image != nil)
	errs = append(errs, validateImage(image)...)
	if len(errs) > 0 {
		return nil, errs
	}

	var passwordHash string
	if req.Password != nil {
		hash, err := s.creds.Hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	newImage, err := storeImage(ctx, s.blobs, image)
	if err != nil {
		return nil, err
	}

	var user *models.User
	var oldImage *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.repo.User().GetByID(ctx, tx, principal.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return err
		}

		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Email != nil {
			email := strings.ToLower(*req.Email)
			exists, err := s.repo.User().ExistsByEmail(ctx, tx, email, user.ID)
			if err != nil {
				return fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if exists {
				return ErrEmailInUse
			}
			user.Email = email
		}
		if passwordHash != "" {
			user.Password = passwordHash
		}
		if newImage != nil {
			oldImage = user.ImageURL
			user.ImageURL = newImage
		}

		return s.repo.User().Update(ctx, tx, user)
	})
	if err != nil {
		s.cascade.ReleaseImage(ctx, newImage)
		return nil, translateDuplicate(err, ErrEmailInUse)
	}

	s.cascade.ReleaseImage(ctx, oldImage)
	s.logger.Info("Profile updated", "user_id", user.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, principal *models.User, userID string) error {
	if !isValidID(userID) {
		return ErrUserNotFound
	}
	if err := AuthorizeOwner(principal, userID, ErrNotProfileOwner); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	return s.cascade.DeleteUser(ctx, user)
}

// ===== DIRECTORY OPERATIONS =====

func (s *userService) GetByID(ctx context.Context, id string, includeReviews bool) (*models.User, error) {
	if !isValidID(id) {
		return nil, ErrUserNotFound
	}
	user, err := s.loadUser(ctx, id, includeReviews)
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}

func (s *userService) List(ctx context.Context, req UserListRequest) (*ListResponse[*models.User], error) {
	page, limit := normalizePage(req.Page, req.Limit)

	users, total, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		Query:  strings.TrimSpace(req.Query),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for i := range users {
		users[i] = publicUser(users[i])
	}
	return &ListResponse[*models.User]{Items: users, Page: page, Limit: limit, Total: total}, nil
}

// ===== HELPERS =====

func (s *userService) loadUser(ctx context.Context, id string, includeReviews bool) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if includeReviews {
		reviews, err := s.repo.Review().ListByUser(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load user reviews: %w", err)
		}
		user.Reviews = make([]models.Review, 0, len(reviews))
		for _, review := range reviews {
			user.Reviews = append(user.Reviews, *review)
		}
	}
	return user, nil
}

func (s *userService) authResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.creds.Issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// publicUser hides contact details from other users
func publicUser(user *models.User) *models.User {
	user.Email = ""
	return user
}
