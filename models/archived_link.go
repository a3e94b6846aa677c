package models

import "time"

// ArchivedLink is a write-once copy of a delivered link URL, kept only
// so future research imports can skip URLs the owner has already sent.
type ArchivedLink struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index:idx_archived_links_user_id" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID" json:"-"`
	URL    string `gorm:"type:text;not null" json:"url"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_archived_links_created_at" json:"created_at"`
}

func (ArchivedLink) TableName() string {
	return "archived_links"
}

// ArchivedLinkFilter represents filter criteria for archive queries
type ArchivedLinkFilter struct {
	ID     *uint
	UserID *uint
	URL    *string
}
