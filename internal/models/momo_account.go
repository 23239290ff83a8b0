package models

import (
	"time"

	"gorm.io/gorm"
)

// MomoAccount is a mobile money number an artisan registers for payouts.
type MomoAccount struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Provider    string         `gorm:"type:varchar(30);not null" json:"provider"`
	PhoneNumber string         `gorm:"type:varchar(20);not null" json:"phone_number"`
	AccountName string         `gorm:"type:varchar(100);not null" json:"account_name"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (MomoAccount) TableName() string {
	return "momo_accounts"
}
