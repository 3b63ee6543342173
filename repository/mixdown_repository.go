package repository

import (
	"context"

	"MashFM/model"

	"gorm.io/gorm"
)

// MixdownRepository persists rendered mixdown metadata.
type MixdownRepository interface {
	Create(ctx context.Context, record *model.MixdownRecord) error
	Update(ctx context.Context, record *model.MixdownRecord) error
	GetByID(ctx context.Context, id string) (*model.MixdownRecord, error)
	ListByComposition(ctx context.Context, compositionID string) ([]*model.MixdownRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.MixdownRecord, error)
}

type gormMixdownRepository struct {
	db *gorm.DB
}

// NewGormMixdownRepository creates the GORM-backed implementation.
func NewGormMixdownRepository(db *gorm.DB) MixdownRepository {
	return &gormMixdownRepository{db: db}
}

// Create inserts a mixdown record.
func (r *gormMixdownRepository) Create(ctx context.Context, record *model.MixdownRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Update overwrites an existing mixdown record.
func (r *gormMixdownRepository) Update(ctx context.Context, record *model.MixdownRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// GetByID returns the record, or (nil, nil) when it does not exist.
func (r *gormMixdownRepository) GetByID(ctx context.Context, id string) (*model.MixdownRecord, error) {
	var record model.MixdownRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByComposition returns all renders of a composition, newest first.
func (r *gormMixdownRepository) ListByComposition(ctx context.Context, compositionID string) ([]*model.MixdownRecord, error) {
	var records []*model.MixdownRecord
	err := r.db.WithContext(ctx).
		Where("composition_id = ?", compositionID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByUser returns all mixdowns owned by a user, newest first.
func (r *gormMixdownRepository) ListByUser(ctx context.Context, userID int64) ([]*model.MixdownRecord, error) {
	var records []*model.MixdownRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
