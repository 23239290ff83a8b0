package models

import (
	"time"

	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteEnAttente QuoteStatus = "en_attente"
	QuoteAccepte   QuoteStatus = "accepte"
	QuoteRefuse    QuoteStatus = "refuse"
	QuoteRetire    QuoteStatus = "retire"
)

// Quote is an artisan's offer ("devis") on an open job.
type Quote struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	JobID     uint    `gorm:"not null;index" json:"job_id"`
	ArtisanID uint    `gorm:"not null;index" json:"artisan_id"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Message   string  `gorm:"type:text" json:"message,omitempty"`
	// Estimated completion time in days
	DelayDays int `gorm:"default:0" json:"delay_days"`

	Status     QuoteStatus    `gorm:"type:varchar(20);not null;default:'en_attente'" json:"status"`
	AcceptedAt *time.Time     `json:"accepted_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Job     Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Artisan User `gorm:"foreignKey:ArtisanID" json:"artisan,omitempty"`
}

func (Quote) TableName() string {
	return "quotes"
}
