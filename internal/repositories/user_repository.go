package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string           // Search query for name or email
	Role   *models.UserRole // Restrict to one role
	IDs    []string
	Limit  int // Page size, 0 for all
	Offset int // Offset for pagination
}

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	// GetByResetToken matches the stored token hash and requires an unexpired token
	GetByResetToken(ctx context.Context, tx *gorm.DB, tokenHash string, now time.Time) (*models.User, error)

	// FindByEmail resolves externally authenticated identities to local accounts
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Validation and checks
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email, excludeID string) (bool, error)
}
