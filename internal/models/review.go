package models

import "time"

const (
	MinRating        = 1
	MaxRating        = 10
	MaxCommentLength = 2000
)

type Review struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	Comment  string `json:"comment" gorm:"type:text"`
	Rating   int    `json:"rating" gorm:"not null"`
	UserID   string `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_reviews_user_course"`
	CourseID string `json:"course_id" gorm:"not null;size:36;index;uniqueIndex:idx_reviews_user_course"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Review) TableName() string {
	return "reviews"
}
