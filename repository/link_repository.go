package repository

import (
	"context"

	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// LinkRepositoryImpl implements LinkRepository
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db)}
}

// ListPoolForUser returns the owner's unassigned links in creation
// order, the order the allocator consumes them in.
func (r *LinkRepositoryImpl) ListPoolForUser(ctx context.Context, userID uint) ([]*models.Link, error) {
	db := r.getDB(ctx)
	var rows []*models.Link
	if err := db.Where("user_id = ? AND batch_id IS NULL", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) ListByBatch(ctx context.Context, userID, batchID uint) ([]*models.Link, error) {
	db := r.getDB(ctx)
	var rows []*models.Link
	if err := db.Where("user_id = ? AND batch_id = ?", userID, batchID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByBatches counts links currently assigned to any of the given batches
func (r *LinkRepositoryImpl) CountByBatches(ctx context.Context, userID uint, batchIDs []uint) (int64, error) {
	if len(batchIDs) == 0 {
		return 0, nil
	}
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Link{}).
		Where("user_id = ? AND batch_id IN ?", userID, batchIDs).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkRepositoryImpl) CountPoolForUser(ctx context.Context, userID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Link{}).
		Where("user_id = ? AND batch_id IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// URLsForUser returns every URL the owner currently holds in the pool,
// assigned or not. Used together with the archive for import dedupe.
func (r *LinkRepositoryImpl) URLsForUser(ctx context.Context, userID uint) ([]string, error) {
	db := r.getDB(ctx)
	var urls []string
	if err := db.Model(&models.Link{}).Where("user_id = ?", userID).Pluck("url", &urls).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

// AssignToBatch bulk-moves the given links into a batch. The caller is
// responsible for never exceeding the batch's remaining capacity.
func (r *LinkRepositoryImpl) AssignToBatch(ctx context.Context, userID uint, linkIDs []uint, batchID uint) error {
	if len(linkIDs) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	return db.Model(&models.Link{}).
		Where("user_id = ? AND id IN ?", userID, linkIDs).
		Updates(map[string]any{
			"batch_id":   batchID,
			"status":     models.LinkStatusAssigned,
			"updated_at": utils.UTCNow(),
		}).Error
}

// ReleaseFromBatches returns every link assigned to the given batches
// to the pool.
func (r *LinkRepositoryImpl) ReleaseFromBatches(ctx context.Context, userID uint, batchIDs []uint) error {
	if len(batchIDs) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	return db.Model(&models.Link{}).
		Where("user_id = ? AND batch_id IN ?", userID, batchIDs).
		Updates(map[string]any{
			"batch_id":   nil,
			"status":     models.LinkStatusAvailable,
			"updated_at": utils.UTCNow(),
		}).Error
}

func (r *LinkRepositoryImpl) DeleteByIDs(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Link{}).Error
}

func (r *LinkRepositoryImpl) DeleteAllForUser(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ?", userID).Delete(&models.Link{}).Error
}

func (r *LinkRepositoryImpl) UpdateProcessing(ctx context.Context, linkID uint, status models.LinkProcessingStatus) error {
	db := r.getDB(ctx)
	return db.Model(&models.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]any{
			"processing_status": status,
			"processed_at":      utils.UTCNow(),
			"updated_at":        utils.UTCNow(),
		}).Error
}

func (r *LinkRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.BatchID != nil {
		db = db.Where("batch_id = ?", *f.BatchID)
	}
	if f.Unassigned != nil && *f.Unassigned {
		db = db.Where("batch_id IS NULL")
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Link
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
