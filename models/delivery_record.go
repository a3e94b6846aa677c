package models

import "time"

// DeliveryRecord is an append-only log entry marking that a batch's
// links were handed off to a contact. ContactName is denormalized so
// history survives contact deletion; ContactID is nulled when the
// contact goes away.
type DeliveryRecord struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"not null;index:idx_delivery_records_user_id" json:"user_id"`
	User        User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	ContactID   *uint    `gorm:"index:idx_delivery_records_contact_id" json:"contact_id,omitempty"`
	Contact     *Contact `gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`
	ContactName string   `gorm:"size:255;not null" json:"contact_name"`
	BatchID     uint     `gorm:"not null;index:idx_delivery_records_batch_id" json:"batch_id"`
	BatchLabel  string   `gorm:"size:64;not null" json:"batch_label"`
	LinkCount   int      `gorm:"not null" json:"link_count"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_delivery_records_created_at" json:"created_at"`
}

func (DeliveryRecord) TableName() string {
	return "delivery_records"
}

// DeliveryRecordFilter represents filter criteria for history queries
type DeliveryRecordFilter struct {
	ID            *uint
	UserID        *uint
	ContactID     *uint
	BatchID       *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
