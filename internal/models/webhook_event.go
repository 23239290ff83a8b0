package models

import "time"

// PaymentWebhookEvent dead-letters a provider callback whose persistence
// failed. The provider still receives a success acknowledgement (retries on
// their side would not fix our database), so this table is the operator's
// recovery path: the raw payload can be replayed once the incident is over.
type PaymentWebhookEvent struct {
	ID                    uint      `gorm:"primarykey" json:"id"`
	Provider              string    `gorm:"type:varchar(30);not null;index" json:"provider"`
	ProviderTransactionID string    `gorm:"type:varchar(100);index" json:"provider_transaction_id"`
	Status                string    `gorm:"type:varchar(20)" json:"status"`
	Payload               string    `gorm:"type:text" json:"payload"`
	Error                 string    `gorm:"type:text" json:"error"`
	Resolved              bool      `gorm:"default:false;index" json:"resolved"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (PaymentWebhookEvent) TableName() string {
	return "payment_webhook_events"
}
