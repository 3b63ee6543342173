package repository

import (
	"context"

	"MashFM/model"

	"gorm.io/gorm"
)

// CompositionRepository persists composition snapshots.
type CompositionRepository interface {
	Save(ctx context.Context, record *model.CompositionRecord) error
	GetByID(ctx context.Context, id string) (*model.CompositionRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.CompositionRecord, error)
	Delete(ctx context.Context, id string) error
}

type gormCompositionRepository struct {
	db *gorm.DB
}

// NewGormCompositionRepository creates the GORM-backed implementation.
func NewGormCompositionRepository(db *gorm.DB) CompositionRepository {
	return &gormCompositionRepository{db: db}
}

// Save inserts or updates a composition record.
func (r *gormCompositionRepository) Save(ctx context.Context, record *model.CompositionRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// GetByID returns the record, or (nil, nil) when it does not exist.
func (r *gormCompositionRepository) GetByID(ctx context.Context, id string) (*model.CompositionRecord, error) {
	var record model.CompositionRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByUser returns all compositions owned by a user, newest first.
func (r *gormCompositionRepository) ListByUser(ctx context.Context, userID int64) ([]*model.CompositionRecord, error) {
	var records []*model.CompositionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a composition record.
func (r *gormCompositionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.CompositionRecord{}, "id = ?", id).Error
}
