package repository

import (
	"context"
	"errors"

	"github.com/hanifmaulana/distrolink/models"
	"gorm.io/gorm"
)

// UserSessionRepositoryImpl implements UserSessionRepository
type UserSessionRepositoryImpl struct {
	*BaseRepository[models.UserSession, models.UserSessionFilter]
}

func NewUserSessionRepository(db *gorm.DB) UserSessionRepository {
	return &UserSessionRepositoryImpl{BaseRepository: NewBaseRepository[models.UserSession, models.UserSessionFilter](db)}
}

func (r *UserSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.UserSession, error) {
	db := r.getDB(ctx)
	var row models.UserSession
	if err := db.Where("session_token = ?", token).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error) {
	db := r.getDB(ctx)
	var row models.UserSession
	if err := db.Where("refresh_token = ?", token).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserSessionRepositoryImpl) applyFilter(db *gorm.DB, f models.UserSessionFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.SessionToken != nil {
		db = db.Where("session_token = ?", *f.SessionToken)
	}
	if f.RefreshToken != nil {
		db = db.Where("refresh_token = ?", *f.RefreshToken)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.ExpiresAfter != nil {
		db = db.Where("expires_at >= ?", *f.ExpiresAfter)
	}
	if f.ExpiresBefore != nil {
		db = db.Where("expires_at < ?", *f.ExpiresBefore)
	}
	return db
}

func (r *UserSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.UserSessionFilter, orderBy string, limit, offset int) ([]*models.UserSession, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.UserSession{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.UserSession
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *UserSessionRepositoryImpl) Count(ctx context.Context, filter models.UserSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.UserSession{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserSessionRepositoryImpl) Deactivate(ctx context.Context, sessionID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.UserSession{}).
		Where("id = ?", sessionID).
		Update("is_active", false).Error
}

func (r *UserSessionRepositoryImpl) DeactivateAllForUser(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}
