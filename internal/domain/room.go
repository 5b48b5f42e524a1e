package domain

import (
	"strings"
	"time"
)

// Room is a physical room identified from a room-category image.
// RoomTypeKey is the lowercased RoomType and takes part in the natural key.
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	HotelID     string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_rooms_key,priority:1" json:"hotel_id"`
	ImageID     string    `gorm:"type:text;not null" json:"image_id"`
	RoomID      string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_rooms_key,priority:2" json:"room_id"`
	RoomName    string    `gorm:"type:text" json:"room_name"`
	RoomType    string    `gorm:"type:text;not null" json:"room_type"`
	RoomTypeKey string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_rooms_key,priority:3" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Room.
func (Room) TableName() string {
	return "hotel_rooms"
}

// RoomKey is the per-hotel natural key of a Room.
type RoomKey struct {
	RoomID   string
	RoomType string // always lowercase
}

// NewRoomKey builds a RoomKey, normalizing the type's case.
func NewRoomKey(roomID, roomType string) RoomKey {
	return RoomKey{RoomID: roomID, RoomType: strings.ToLower(roomType)}
}

// Key returns the natural key of r.
func (r Room) Key() RoomKey {
	return NewRoomKey(r.RoomID, r.RoomType)
}
