package models

import "time"

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tests []Test `json:"-" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}
