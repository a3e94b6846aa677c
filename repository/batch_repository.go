package repository

import (
	"context"
	"errors"

	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// BatchRepositoryImpl implements BatchRepository
type BatchRepositoryImpl struct {
	*BaseRepository[models.Batch, models.BatchFilter]
}

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &BatchRepositoryImpl{BaseRepository: NewBaseRepository[models.Batch, models.BatchFilter](db)}
}

func (r *BatchRepositoryImpl) ByIDForUser(ctx context.Context, userID, batchID uint) (*models.Batch, error) {
	db := r.getDB(ctx)
	var row models.Batch
	if err := db.Where("user_id = ? AND id = ?", userID, batchID).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListForUser returns the owner's batches in creation order. Creation
// order is the registry's stable identity order for resize and
// allocation.
func (r *BatchRepositoryImpl) ListForUser(ctx context.Context, userID uint) ([]*models.Batch, error) {
	db := r.getDB(ctx)
	var rows []*models.Batch
	if err := db.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListWithFillCounts returns the owner's batches in creation order with
// LinksCount populated from a live aggregate. The fill count is always
// derived, never stored.
func (r *BatchRepositoryImpl) ListWithFillCounts(ctx context.Context, userID uint) ([]*models.Batch, error) {
	db := r.getDB(ctx)
	var rows []*models.Batch
	err := db.Model(&models.Batch{}).
		Select("batches.*, COUNT(links.id) AS links_count").
		Joins("LEFT JOIN links ON links.batch_id = batches.id").
		Where("batches.user_id = ?", userID).
		Group("batches.id").
		Order("batches.id ASC").
		Preload("Contact").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BatchRepositoryImpl) applyFilter(db *gorm.DB, f models.BatchFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.ContactID != nil {
		db = db.Where("contact_id = ?", *f.ContactID)
	}
	return db
}

func (r *BatchRepositoryImpl) ByFilter(ctx context.Context, filter models.BatchFilter, orderBy string, limit, offset int) ([]*models.Batch, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Batch{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Batch
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BatchRepositoryImpl) Count(ctx context.Context, filter models.BatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Batch{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BatchRepositoryImpl) Update(ctx context.Context, batch *models.Batch) error {
	db := r.getDB(ctx)
	batch.UpdatedAt = utils.UTCNow()
	return db.Save(batch).Error
}

func (r *BatchRepositoryImpl) DeleteByIDs(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Batch{}).Error
}

func (r *BatchRepositoryImpl) DeleteAllForUser(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ?", userID).Delete(&models.Batch{}).Error
}
