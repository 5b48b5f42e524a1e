package repository

import (
	"context"
	"strings"

	"github.com/timmy/hotelsense/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomRepository stores hotel_rooms rows.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) ListByHotel(ctx context.Context, hotelID string) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id ASC").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// Create inserts room unless (hotel, room_id, lower(room_type)) exists.
// RoomTypeKey is derived here so callers cannot get it wrong.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) (bool, error) {
	room.RoomTypeKey = strings.ToLower(room.RoomType)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "room_id"}, {Name: "room_type_key"}},
		DoNothing: true,
	}).Create(room)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
