package models

import "time"

// LinkStatus enumerates the allocation state of a pool link
type LinkStatus string

const (
	LinkStatusAvailable LinkStatus = "available"
	LinkStatusAssigned  LinkStatus = "assigned"
)

// LinkProcessingStatus enumerates the per-link outcome a device reports
// while working through an assigned batch
type LinkProcessingStatus string

const (
	LinkProcessingPending   LinkProcessingStatus = "pending"
	LinkProcessingActive    LinkProcessingStatus = "processing"
	LinkProcessingCompleted LinkProcessingStatus = "completed"
	LinkProcessingFailed    LinkProcessingStatus = "failed"
)

// Link is a product URL in the warehouse pool. A nil BatchID means the
// link is unassigned (pool state); assignment only happens through the
// allocator and removal only through the delivery recorder.
type Link struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	UserID  uint       `gorm:"not null;index:idx_links_user_id" json:"user_id"`
	User    User       `gorm:"foreignKey:UserID;references:ID" json:"-"`
	URL     string     `gorm:"type:text;not null" json:"url"`
	Status  LinkStatus `gorm:"size:16;not null;default:'available';index:idx_links_status" json:"status"`
	BatchID *uint      `gorm:"index:idx_links_batch_id" json:"batch_id,omitempty"`
	Batch   *Batch     `gorm:"foreignKey:BatchID;references:ID;constraint:OnDelete:SET NULL" json:"-"`

	ProcessingStatus *LinkProcessingStatus `gorm:"size:16" json:"processing_status,omitempty"`
	ProcessedAt      *time.Time            `json:"processed_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Link) TableName() string {
	return "links"
}

// InPool reports whether the link is unassigned.
func (l *Link) InPool() bool {
	return l.BatchID == nil
}

// LinkFilter represents filter criteria for link queries
type LinkFilter struct {
	ID            *uint
	UserID        *uint
	BatchID       *uint
	Unassigned    *bool // filters batch_id IS NULL
	Status        *LinkStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
