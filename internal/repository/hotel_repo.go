package repository

import (
	"context"
	"time"

	"github.com/timmy/hotelsense/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HotelRepository reads hotels and writes their main-image columns.
type HotelRepository struct {
	db *gorm.DB
}

func NewHotelRepository(db *gorm.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

func (r *HotelRepository) Get(ctx context.Context, hotelID string) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := r.db.WithContext(ctx).First(&h, "hotel_id = ?", hotelID).Error; err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

// UpsertMainImage sets the hotel's main image, creating the hotel row if the
// listing system has not written it yet. Other columns are left untouched.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - hotelID: hotel to update.
//   - img: winning image and its rating.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *HotelRepository) UpsertMainImage(ctx context.Context, hotelID string, img domain.MainImage) error {
	h := domain.Hotel{
		HotelID:         hotelID,
		MainImageURL:    &img.ImageURL,
		MainImageID:     &img.ImageID,
		MainImageRating: &img.Rating,
		UpdatedAt:       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"main_image_url", "main_image_id", "main_image_rating", "updated_at"}),
	}).Create(&h).Error
}
