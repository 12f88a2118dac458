package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	Name     string   `json:"name" gorm:"not null;size:50"`
	Email    string   `json:"email,omitempty" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:100"`
	Role     UserRole `json:"role,omitempty" gorm:"not null;size:20;default:user"`

	// Profile info
	ImageURL *string `json:"image_url,omitempty" gorm:"size:500"`

	// Password reset, only the sha256 of the token is stored
	ResetToken           *string    `json:"-" gorm:"size:64;index"`
	ResetTokenExpiration *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Opt-in relation, loaded only when requested
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
