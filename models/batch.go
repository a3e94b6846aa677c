package models

import "time"

// DefaultBatchCapacity is the capacity assigned to batches created
// during a registry resize.
const DefaultBatchCapacity = 100

// Batch is a capacity-bounded container of links destined for one
// contact. The current fill count is derived from the links table and
// never stored; capacity may be lowered below the current fill by a
// direct edit, in which case the allocator skips the batch.
type Batch struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	UserID    uint     `gorm:"not null;index:idx_batches_user_id" json:"user_id"`
	User      User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Label     string   `gorm:"size:64;not null" json:"label"`
	Capacity  int      `gorm:"not null;default:100" json:"capacity"`
	ContactID *uint    `gorm:"index:idx_batches_contact_id" json:"contact_id,omitempty"`
	Contact   *Contact `gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:SET NULL" json:"contact,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// LinksCount is populated by annotated queries, not a column.
	LinksCount int64 `gorm:"->;-:migration" json:"links_count"`
}

func (Batch) TableName() string {
	return "batches"
}

// Remaining returns the number of links the batch can still accept.
func (b *Batch) Remaining() int {
	needed := b.Capacity - int(b.LinksCount)
	if needed < 0 {
		return 0
	}
	return needed
}

// BatchFilter represents filter criteria for batch queries
type BatchFilter struct {
	ID        *uint
	UserID    *uint
	ContactID *uint
}
