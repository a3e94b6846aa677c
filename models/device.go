package models

import (
	"time"

	"github.com/hanifmaulana/distrolink/utils"
)

// Device is a registered PWA client. An owner mints a short-lived
// registration token; the device redeems it once and receives a
// long-lived device token used on the polling endpoints. A device acts
// on behalf of one contact.
type Device struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	UserID    uint     `gorm:"not null;index:idx_devices_user_id" json:"user_id"`
	User      User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	ContactID *uint    `gorm:"index:idx_devices_contact_id" json:"contact_id,omitempty"`
	Contact   *Contact `gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	Name      *string  `gorm:"size:255" json:"name,omitempty"`

	RegistrationToken string    `gorm:"size:128;not null;uniqueIndex:uk_devices_registration_token" json:"-"`
	TokenExpiresAt    time.Time `gorm:"not null" json:"token_expires_at"`

	DeviceToken *string    `gorm:"size:128;uniqueIndex:uk_devices_device_token" json:"-"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	IsActive    *bool      `gorm:"default:true;index:idx_devices_is_active" json:"is_active"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Device) TableName() string {
	return "devices"
}

// IsClaimed reports whether the registration token has been redeemed.
func (d *Device) IsClaimed() bool {
	return d.ClaimedAt != nil
}

// RegistrationExpired reports whether an unclaimed registration token
// is past its validity window.
func (d *Device) RegistrationExpired() bool {
	return !d.IsClaimed() && utils.UTCNow().After(d.TokenExpiresAt)
}

// DeviceFilter represents filter criteria for device queries
type DeviceFilter struct {
	ID                *uint
	UserID            *uint
	ContactID         *uint
	RegistrationToken *string
	DeviceToken       *string
	IsActive          *bool
	Claimed           *bool
}
