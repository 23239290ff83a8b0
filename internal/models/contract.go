package models

import (
	"time"

	"gorm.io/gorm"
)

type ContractStatus string

const (
	// Work in progress
	ContractActif ContractStatus = "actif"
	// Artisan marked the work as done, awaiting release by the client
	ContractTermine ContractStatus = "termine"
	// Escrowed funds released to the artisan
	ContractSolde  ContractStatus = "solde"
	ContractAnnule ContractStatus = "annule"
)

// Contract binds a client and an artisan once a quote has been accepted.
// Every contract owns exactly one escrow account.
type Contract struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	JobID     uint    `gorm:"not null;index" json:"job_id"`
	QuoteID   uint    `gorm:"not null;uniqueIndex" json:"quote_id"`
	ClientID  uint    `gorm:"not null;index" json:"client_id"`
	ArtisanID uint    `gorm:"not null;index" json:"artisan_id"`
	Amount    float64 `gorm:"not null" json:"amount"`

	Status      ContractStatus `gorm:"type:varchar(20);not null;default:'actif'" json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	SettledAt   *time.Time     `json:"settled_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Job          Job           `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Quote        Quote         `gorm:"foreignKey:QuoteID" json:"quote,omitempty"`
	Client       User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Artisan      User          `gorm:"foreignKey:ArtisanID" json:"artisan,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:ContractID" json:"transactions,omitempty"`
}

func (Contract) TableName() string {
	return "contracts"
}
