package models

import "time"

type Discipline struct {
	ID       string  `json:"id" gorm:"primaryKey;size:36"`
	Name     string  `json:"name" gorm:"uniqueIndex;not null;size:200"`
	Slug     string  `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	UserID   string  `json:"user_id" gorm:"not null;index;size:36"`
	ImageURL *string `json:"image_url,omitempty" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:DisciplineID"`
}

func (Discipline) TableName() string {
	return "disciplines"
}
