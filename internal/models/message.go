package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a chat message between the two parties of a contract.
type Message struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	ContractID uint           `gorm:"not null;index" json:"contract_id"`
	SenderID   uint           `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint           `gorm:"not null;index" json:"receiver_id"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	IsRead     bool           `gorm:"default:false;index" json:"is_read"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Sender   User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
