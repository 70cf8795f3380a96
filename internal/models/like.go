package models

import "time"

type Like struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_test"`
	TestID uint `json:"test_id" gorm:"not null;uniqueIndex:idx_likes_user_test;index"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Test Test `json:"-" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
}

func (Like) TableName() string {
	return "likes"
}
