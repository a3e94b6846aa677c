package repository

import (
	"context"
	"errors"

	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// ContactRepositoryImpl implements ContactRepository
type ContactRepositoryImpl struct {
	*BaseRepository[models.Contact, models.ContactFilter]
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &ContactRepositoryImpl{BaseRepository: NewBaseRepository[models.Contact, models.ContactFilter](db)}
}

func (r *ContactRepositoryImpl) ByIDForUser(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	db := r.getDB(ctx)
	var row models.Contact
	if err := db.Where("user_id = ? AND id = ?", userID, contactID).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ContactRepositoryImpl) ListForUser(ctx context.Context, userID uint) ([]*models.Contact, error) {
	db := r.getDB(ctx)
	var rows []*models.Contact
	if err := db.Where("user_id = ?", userID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContactRepositoryImpl) PhoneInUse(ctx context.Context, userID uint, phone string, excludeID *uint) (bool, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Contact{}).Where("user_id = ? AND phone_number = ?", userID, phone)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ContactRepositoryImpl) applyFilter(db *gorm.DB, f models.ContactFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.PhoneNumber != nil {
		db = db.Where("phone_number = ?", *f.PhoneNumber)
	}
	if f.Name != nil {
		db = db.Where("name = ?", *f.Name)
	}
	return db
}

func (r *ContactRepositoryImpl) ByFilter(ctx context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Contact{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Contact
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContactRepositoryImpl) Count(ctx context.Context, filter models.ContactFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Contact{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContactRepositoryImpl) Update(ctx context.Context, contact *models.Contact) error {
	db := r.getDB(ctx)
	contact.UpdatedAt = utils.UTCNow()
	return db.Save(contact).Error
}

func (r *ContactRepositoryImpl) Delete(ctx context.Context, userID, contactID uint) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND id = ?", userID, contactID).Delete(&models.Contact{}).Error
}
