package models

import (
	"time"

	"gorm.io/gorm"
)

type JobStatus string

const (
	JobOuvert   JobStatus = "ouvert"
	JobAttribue JobStatus = "attribue"
	JobTermine  JobStatus = "termine"
	JobAnnule   JobStatus = "annule"
)

type Job struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	ClientID    uint    `gorm:"not null;index" json:"client_id"`
	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Category    string  `gorm:"type:varchar(50);not null;index" json:"category"`
	City        string  `gorm:"type:varchar(100);not null;index" json:"city"`
	Budget      float64 `gorm:"not null" json:"budget"`

	PhotoURL      string `gorm:"type:text" json:"photo_url,omitempty"`
	PhotoPublicID string `gorm:"type:text" json:"photo_public_id,omitempty"`

	Status     JobStatus      `gorm:"type:varchar(20);not null;default:'ouvert'" json:"status"`
	AssignedAt *time.Time     `json:"assigned_at,omitempty"`
	ClosedAt   *time.Time     `json:"closed_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client User    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Quotes []Quote `gorm:"foreignKey:JobID" json:"quotes,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}
