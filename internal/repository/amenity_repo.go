package repository

import (
	"context"

	"github.com/timmy/hotelsense/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AmenityRepository stores hotel_amenities rows.
type AmenityRepository struct {
	db *gorm.DB
}

func NewAmenityRepository(db *gorm.DB) *AmenityRepository {
	return &AmenityRepository{db: db}
}

// ExistsHotelWide checks for a hotel-wide record. Rows written without a
// room_id and rows with an empty one both count.
func (r *AmenityRepository) ExistsHotelWide(ctx context.Context, hotelID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Amenity{}).
		Where("hotel_id = ? AND amenity_name = ?", hotelID, name).
		Where("room_id IS NULL OR room_id = ''").
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AmenityRepository) ExistsForRoom(ctx context.Context, hotelID, roomID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Amenity{}).
		Where("hotel_id = ? AND room_id = ? AND amenity_name = ?", hotelID, roomID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AmenityRepository) Create(ctx context.Context, a *domain.Amenity) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "room_id"}, {Name: "amenity_name"}},
		DoNothing: true,
	}).Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AmenityRepository) ListByHotel(ctx context.Context, hotelID string) ([]domain.Amenity, error) {
	var amenities []domain.Amenity
	if err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id ASC").
		Find(&amenities).Error; err != nil {
		return nil, err
	}
	return amenities, nil
}
