package models

import (
	"time"

	"gorm.io/gorm"
)

type EscrowStatus string

const (
	EscrowEnAttente EscrowStatus = "en_attente"
	EscrowAlimente  EscrowStatus = "alimente"
	EscrowLibere    EscrowStatus = "libere"
	EscrowRembourse EscrowStatus = "rembourse"
)

// EscrowAccount is the per-contract ledger holding the client's deposits
// until the work is delivered and the client releases the funds.
type EscrowAccount struct {
	ID         uint `gorm:"primarykey" json:"id"`
	ContractID uint `gorm:"not null;uniqueIndex" json:"contract_id"`

	AmountDeposited float64 `gorm:"default:0" json:"amount_deposited"`
	AmountReleased  float64 `gorm:"default:0" json:"amount_released"`

	Status     EscrowStatus   `gorm:"type:varchar(20);not null;default:'en_attente'" json:"status"`
	FundedAt   *time.Time     `json:"funded_at,omitempty"`
	ReleasedAt *time.Time     `json:"released_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

func (EscrowAccount) TableName() string {
	return "escrow_accounts"
}
