package repository

import (
	"context"
	"errors"

	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// DeviceRepositoryImpl implements DeviceRepository
type DeviceRepositoryImpl struct {
	*BaseRepository[models.Device, models.DeviceFilter]
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &DeviceRepositoryImpl{BaseRepository: NewBaseRepository[models.Device, models.DeviceFilter](db)}
}

func (r *DeviceRepositoryImpl) ByRegistrationToken(ctx context.Context, token string) (*models.Device, error) {
	db := r.getDB(ctx)
	var row models.Device
	if err := db.Where("registration_token = ?", token).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *DeviceRepositoryImpl) ByDeviceToken(ctx context.Context, token string) (*models.Device, error) {
	db := r.getDB(ctx)
	var row models.Device
	if err := db.Where("device_token = ?", token).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *DeviceRepositoryImpl) ListForUser(ctx context.Context, userID uint) ([]*models.Device, error) {
	db := r.getDB(ctx)
	var rows []*models.Device
	if err := db.Preload("Contact").Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DeviceRepositoryImpl) applyFilter(db *gorm.DB, f models.DeviceFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.ContactID != nil {
		db = db.Where("contact_id = ?", *f.ContactID)
	}
	if f.RegistrationToken != nil {
		db = db.Where("registration_token = ?", *f.RegistrationToken)
	}
	if f.DeviceToken != nil {
		db = db.Where("device_token = ?", *f.DeviceToken)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.Claimed != nil {
		if *f.Claimed {
			db = db.Where("claimed_at IS NOT NULL")
		} else {
			db = db.Where("claimed_at IS NULL")
		}
	}
	return db
}

func (r *DeviceRepositoryImpl) ByFilter(ctx context.Context, filter models.DeviceFilter, orderBy string, limit, offset int) ([]*models.Device, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Device{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Device
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DeviceRepositoryImpl) Count(ctx context.Context, filter models.DeviceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Device{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DeviceRepositoryImpl) Update(ctx context.Context, device *models.Device) error {
	db := r.getDB(ctx)
	device.UpdatedAt = utils.UTCNow()
	return db.Save(device).Error
}

func (r *DeviceRepositoryImpl) Delete(ctx context.Context, userID, deviceID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND id = ?", userID, deviceID).Delete(&models.Device{}).Error
}

// DeleteExpiredUnclaimed purges registration tokens that were never
// redeemed and are past their validity window.
func (r *DeviceRepositoryImpl) DeleteExpiredUnclaimed(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND claimed_at IS NULL AND token_expires_at < ?", userID, utils.UTCNow()).
		Delete(&models.Device{}).Error
}
