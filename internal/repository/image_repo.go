package repository

import (
	"context"

	"github.com/timmy/hotelsense/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository stores hotel_images rows.
type ImageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ImageRepository: repository instance bound to db.
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Exists checks whether the (hotel, image) pair is already known.
func (r *ImageRepository) Exists(ctx context.Context, hotelID, imageID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("hotel_id = ? AND image_id = ?", hotelID, imageID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Get returns domain.ErrNotFound when the image is unknown.
func (r *ImageRepository) Get(ctx context.Context, hotelID, imageID string) (*domain.Image, error) {
	var img domain.Image
	if err := r.db.WithContext(ctx).
		First(&img, "hotel_id = ? AND image_id = ?", hotelID, imageID).Error; err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

// ListByHotel returns the hotel's images in insertion order.
func (r *ImageRepository) ListByHotel(ctx context.Context, hotelID string) ([]domain.Image, error) {
	var images []domain.Image
	if err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Create inserts img unless the (hotel, image) pair exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - img: image record to persist.
// Returns:
//   - bool: true if a row was written.
//   - error: non-nil if the insert fails.
func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "image_id"}},
		DoNothing: true,
	}).Create(img)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ImageRepository) SetRoomID(ctx context.Context, hotelID, imageID, roomID string) error {
	return r.update(ctx, hotelID, imageID, "room_id", roomID)
}

func (r *ImageRepository) SetRating(ctx context.Context, hotelID, imageID string, rating int) error {
	return r.update(ctx, hotelID, imageID, "rating", rating)
}

func (r *ImageRepository) update(ctx context.Context, hotelID, imageID, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("hotel_id = ? AND image_id = ?", hotelID, imageID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
