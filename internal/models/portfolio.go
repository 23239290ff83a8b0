package models

import (
	"time"

	"gorm.io/gorm"
)

// PortfolioPhoto is a work sample an artisan shows on their public profile.
type PortfolioPhoto struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	URL           string         `gorm:"type:text;not null" json:"url"`
	PhotoPublicID string         `gorm:"type:text;not null" json:"-"`
	Caption       string         `gorm:"type:varchar(255)" json:"caption,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PortfolioPhoto) TableName() string {
	return "portfolio_photos"
}
