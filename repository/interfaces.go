// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/hanifmaulana/distrolink/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// UserRepository defines operations for owner accounts
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID uint) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	Deactivate(ctx context.Context, sessionID uint) error
	DeactivateAllForUser(ctx context.Context, userID uint) error
}

// ContactRepository defines operations for contacts, always owner scoped
type ContactRepository interface {
	Repository[models.Contact, models.ContactFilter]
	ByIDForUser(ctx context.Context, userID, contactID uint) (*models.Contact, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Contact, error)
	PhoneInUse(ctx context.Context, userID uint, phone string, excludeID *uint) (bool, error)
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, userID, contactID uint) error
}

// BatchRepository defines operations for the batch registry
type BatchRepository interface {
	Repository[models.Batch, models.BatchFilter]
	ByIDForUser(ctx context.Context, userID, batchID uint) (*models.Batch, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Batch, error)
	ListWithFillCounts(ctx context.Context, userID uint) ([]*models.Batch, error)
	Update(ctx context.Context, batch *models.Batch) error
	DeleteByIDs(ctx context.Context, userID uint, ids []uint) error
	DeleteAllForUser(ctx context.Context, userID uint) error
}

// LinkRepository defines operations for the link pool
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]
	ListPoolForUser(ctx context.Context, userID uint) ([]*models.Link, error)
	ListByBatch(ctx context.Context, userID, batchID uint) ([]*models.Link, error)
	CountPoolForUser(ctx context.Context, userID uint) (int64, error)
	CountByBatches(ctx context.Context, userID uint, batchIDs []uint) (int64, error)
	URLsForUser(ctx context.Context, userID uint) ([]string, error)
	AssignToBatch(ctx context.Context, userID uint, linkIDs []uint, batchID uint) error
	ReleaseFromBatches(ctx context.Context, userID uint, batchIDs []uint) error
	DeleteByIDs(ctx context.Context, userID uint, ids []uint) error
	DeleteAllForUser(ctx context.Context, userID uint) error
	UpdateProcessing(ctx context.Context, linkID uint, status models.LinkProcessingStatus) error
}

// DeliveryRecordRepository defines operations for the append-only delivery history
type DeliveryRecordRepository interface {
	Repository[models.DeliveryRecord, models.DeliveryRecordFilter]
	RecentForUser(ctx context.Context, userID uint, limit int) ([]*models.DeliveryRecord, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
}

// ArchivedLinkRepository defines operations for the delivered-link archive
type ArchivedLinkRepository interface {
	Repository[models.ArchivedLink, models.ArchivedLinkFilter]
	URLsForUser(ctx context.Context, userID uint) ([]string, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
}

// DeviceRepository defines operations for registered PWA devices
type DeviceRepository interface {
	Repository[models.Device, models.DeviceFilter]
	ByRegistrationToken(ctx context.Context, token string) (*models.Device, error)
	ByDeviceToken(ctx context.Context, token string) (*models.Device, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, userID, deviceID uint) error
	DeleteExpiredUnclaimed(ctx context.Context, userID uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
}
