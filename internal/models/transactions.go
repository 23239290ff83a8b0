package models

import (
	"time"

	"gorm.io/gorm"
)

type TransactionType string
type TransactionStatus string

const (
	// Deposit funding the contract's escrow account
	TransactionAcompte TransactionType = "acompte"
	// Balance payment once the work is done
	TransactionSolde TransactionType = "solde"
	// Fee an artisan pays to unlock a client's contact details
	TransactionFraisDeblocage TransactionType = "frais_deblocage"
	TransactionRemboursement  TransactionType = "remboursement"
)

// Canonical transaction statuses. Every mobile money provider's raw status
// vocabulary is normalized onto these four values.
const (
	TransactionEnAttente  TransactionStatus = "en_attente"
	TransactionTraitement TransactionStatus = "traitement"
	TransactionComplete   TransactionStatus = "complete"
	TransactionEchoue     TransactionStatus = "echoue"
)

// IsTerminal reports whether the status is final. A terminal transaction
// must never regress to en_attente or traitement.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionComplete || s == TransactionEchoue
}

type Transaction struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	ContractID uint            `gorm:"not null;index" json:"contract_id"`
	ClientID   uint            `gorm:"not null;index" json:"client_id"`
	Type       TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Amount     float64         `gorm:"not null" json:"amount"`

	Status TransactionStatus `gorm:"type:varchar(20);not null;default:'en_attente'" json:"status"`

	// Mobile money operator that carries the payment
	Provider string `gorm:"type:varchar(30);not null" json:"provider"`
	// Correlation key echoed back in provider callbacks
	ProviderTransactionID string `gorm:"index;not null" json:"provider_transaction_id"`
	// Secondary provider token, kept for audit only
	ProviderReference string `gorm:"type:varchar(100)" json:"provider_reference,omitempty"`

	// Set once, on the first transition to complete
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Client   User     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
