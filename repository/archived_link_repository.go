package repository

import (
	"context"

	"github.com/hanifmaulana/distrolink/models"
	"gorm.io/gorm"
)

// ArchivedLinkRepositoryImpl implements ArchivedLinkRepository
type ArchivedLinkRepositoryImpl struct {
	*BaseRepository[models.ArchivedLink, models.ArchivedLinkFilter]
}

func NewArchivedLinkRepository(db *gorm.DB) ArchivedLinkRepository {
	return &ArchivedLinkRepositoryImpl{BaseRepository: NewBaseRepository[models.ArchivedLink, models.ArchivedLinkFilter](db)}
}

func (r *ArchivedLinkRepositoryImpl) URLsForUser(ctx context.Context, userID uint) ([]string, error) {
	db := r.getDB(ctx)
	var urls []string
	if err := db.Model(&models.ArchivedLink{}).Where("user_id = ?", userID).Pluck("url", &urls).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *ArchivedLinkRepositoryImpl) DeleteAllForUser(ctx context.Context, userID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ?", userID).Delete(&models.ArchivedLink{}).Error
}

func (r *ArchivedLinkRepositoryImpl) applyFilter(db *gorm.DB, f models.ArchivedLinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.URL != nil {
		db = db.Where("url = ?", *f.URL)
	}
	return db
}

func (r *ArchivedLinkRepositoryImpl) ByFilter(ctx context.Context, filter models.ArchivedLinkFilter, orderBy string, limit, offset int) ([]*models.ArchivedLink, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ArchivedLink{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ArchivedLink
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ArchivedLinkRepositoryImpl) Count(ctx context.Context, filter models.ArchivedLinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ArchivedLink{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
