package repository

import (
	"context"

	"github.com/hanifmaulana/distrolink/models"
	"gorm.io/gorm"
)

// DeliveryRecordRepositoryImpl implements DeliveryRecordRepository
type DeliveryRecordRepositoryImpl struct {
	*BaseRepository[models.DeliveryRecord, models.DeliveryRecordFilter]
}

func NewDeliveryRecordRepository(db *gorm.DB) DeliveryRecordRepository {
	return &DeliveryRecordRepositoryImpl{BaseRepository: NewBaseRepository[models.DeliveryRecord, models.DeliveryRecordFilter](db)}
}

func (r *DeliveryRecordRepositoryImpl) RecentForUser(ctx context.Context, userID uint, limit int) ([]*models.DeliveryRecord, error) {
	db := r.getDB(ctx)
	var rows []*models.DeliveryRecord
	query := db.Preload("Contact").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DeliveryRecordRepositoryImpl) DeleteAllForUser(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ?", userID).Delete(&models.DeliveryRecord{}).Error
}

func (r *DeliveryRecordRepositoryImpl) applyFilter(db *gorm.DB, f models.DeliveryRecordFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.ContactID != nil {
		db = db.Where("contact_id = ?", *f.ContactID)
	}
	if f.BatchID != nil {
		db = db.Where("batch_id = ?", *f.BatchID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *DeliveryRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.DeliveryRecordFilter, orderBy string, limit, offset int) ([]*models.DeliveryRecord, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DeliveryRecord{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.DeliveryRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DeliveryRecordRepositoryImpl) Count(ctx context.Context, filter models.DeliveryRecordFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DeliveryRecord{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
