package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.GetByEmail(ctx, nil, email)
}

func (r *userRepository) GetByResetToken(ctx context.Context, tx *gorm.DB, tokenHash string, now time.Time) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User
	if err := db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiration > ?", tokenHash, now).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by reset token")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := getDB(r.db, tx)
	var users []*models.User
	var total int64

	q := db.WithContext(ctx).Model(&models.User{})
	if filters.Query != "" {
		pattern := "%" + strings.ToLower(filters.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR email LIKE ?", pattern, pattern)
	}
	if filters.Role != nil {
		q = q.Where("role = ?", *filters.Role)
	}
	if len(filters.IDs) > 0 {
		q = q.Where("id IN ?", filters.IDs)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	q = applyPagination(q.Order("created_at DESC, id ASC"), filters.Limit, filters.Offset)
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Reviews").Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return handleDBError(err, "delete user")
	}
	return nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email, excludeID string) (bool, error) {
	exists, err := existsBy(ctx, getDB(r.db, tx), &models.User{}, "email", strings.ToLower(email), excludeID)
	if err != nil {
		return false, handleDBError(err, "check user email")
	}
	return exists, nil
}
