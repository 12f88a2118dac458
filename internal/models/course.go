package models

import "time"

const (
	MinCourseCost = 1
	MaxCourseCost = 200
)

type Course struct {
	ID           string  `json:"id" gorm:"primaryKey;size:36"`
	Name         string  `json:"name" gorm:"uniqueIndex;not null;size:200"`
	Slug         string  `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	NameTokens   string  `json:"-" gorm:"not null;size:500;index"`
	DisciplineID string  `json:"discipline_id" gorm:"not null;index;size:36"`
	UserID       string  `json:"user_id" gorm:"not null;index;size:36"`
	Cost         float64 `json:"cost" gorm:"not null"`

	// Derived from the course's reviews, nil while unrated
	AverageRating *float64 `json:"average_rating" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Discipline *Discipline `json:"discipline,omitempty" gorm:"foreignKey:DisciplineID"`
	Reviews    []Review    `json:"reviews,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}
