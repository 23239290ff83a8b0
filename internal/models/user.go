package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient  UserRole = "client"
	RoleArtisan UserRole = "artisan"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID             uint     `gorm:"primarykey" json:"id"`
	FullName       string   `gorm:"not null" json:"full_name"`
	Email          string   `gorm:"uniqueIndex;not null" json:"email"`
	Phone          string   `gorm:"not null" json:"phone"`
	Password       string   `gorm:"not null" json:"-"`
	UserTag        string   `gorm:"uniqueIndex;not null" json:"user_tag"`
	Role           UserRole `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	Avatar         string   `gorm:"type:text" json:"avatar,omitempty"`
	AvatarPublicID string   `gorm:"type:text" json:"avatar_public_id,omitempty"`

	// Artisan profile fields; empty for clients
	Trade string `gorm:"type:varchar(50);index" json:"trade,omitempty"`
	City  string `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Bio   string `gorm:"type:text" json:"bio,omitempty"`

	// Payout wallet in FCFA, credited when escrowed funds are released
	Balance float64 `gorm:"default:0" json:"balance"`

	IsEmailVerified bool       `gorm:"default:false" json:"is_email_verified"`
	IsSuspended     bool       `gorm:"default:false" json:"is_suspended"`
	SuspendedAt     *time.Time `json:"suspended_at,omitempty"`
	SuspendReason   string     `gorm:"type:text" json:"suspend_reason,omitempty"`

	OTP              string         `gorm:"index" json:"-"`
	OTPExpiry        *time.Time     `json:"-"`
	ResetToken       string         `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time     `json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to set default role
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleClient
	}
	return nil
}

// IsAdmin checks if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsArtisan checks if user is a registered artisan
func (u *User) IsArtisan() bool {
	return u.Role == RoleArtisan
}

// CanPerformAction checks if user can perform actions
func (u *User) CanPerformAction() bool {
	return !u.IsSuspended && u.IsEmailVerified
}

type PendingUser struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"not null" json:"phone"`
	Password  string    `gorm:"not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	Trade     string    `gorm:"type:varchar(50)" json:"trade,omitempty"`
	City      string    `gorm:"type:varchar(100)" json:"city,omitempty"`
	OTP       string    `gorm:"not null" json:"-"`
	OTPExpiry time.Time `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (PendingUser) TableName() string {
	return "pending_users"
}
