package models

import "time"

// Contact is a recipient of distributed link batches. Phone numbers are
// unique per owner, not globally.
type Contact struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index:idx_contacts_user_id;uniqueIndex:uk_contacts_user_phone" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Name        string `gorm:"size:255;not null" json:"name"`
	PhoneNumber string `gorm:"size:20;not null;uniqueIndex:uk_contacts_user_phone" json:"phone_number"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// ContactFilter represents filter criteria for contact queries
type ContactFilter struct {
	ID          *uint
	UserID      *uint
	PhoneNumber *string
	Name        *string
}
