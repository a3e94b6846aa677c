// Package models contains domain entities and business models for the link distribution system
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	IsActive *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Sessions        []UserSession    `gorm:"foreignKey:UserID" json:"-"`
	Contacts        []Contact        `gorm:"foreignKey:UserID" json:"-"`
	Batches         []Batch          `gorm:"foreignKey:UserID" json:"-"`
	Links           []Link           `gorm:"foreignKey:UserID" json:"-"`
	DeliveryRecords []DeliveryRecord `gorm:"foreignKey:UserID" json:"-"`
	Devices         []Device         `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
