package repository

import (
	"context"

	"github.com/timmy/hotelsense/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageContextRepository stores categorization records.
type ImageContextRepository struct {
	db *gorm.DB
}

func NewImageContextRepository(db *gorm.DB) *ImageContextRepository {
	return &ImageContextRepository{db: db}
}

func (r *ImageContextRepository) Exists(ctx context.Context, hotelID, imageID string, category domain.ImageCategory) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ImageContext{}).
		Where("hotel_id = ? AND image_id = ? AND category = ?", hotelID, imageID, category).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ImageContextRepository) Create(ctx context.Context, ic *domain.ImageContext) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "image_id"}, {Name: "category"}},
		DoNothing: true,
	}).Create(ic)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListImageIDs returns the ids of every image of the hotel filed under category.
func (r *ImageContextRepository) ListImageIDs(ctx context.Context, hotelID string, category domain.ImageCategory) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&domain.ImageContext{}).
		Where("hotel_id = ? AND category = ?", hotelID, category).
		Order("id ASC").
		Pluck("image_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
