package domain

import "time"

// Amenity attaches a detected amenity to a hotel, or to one of its rooms.
// RoomID is "" for hotel-wide amenities; NULL rows come from older writers
// that omitted the field and are treated as hotel-wide as well.
type Amenity struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	HotelID     string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_amenities_key,priority:1" json:"hotel_id"`
	AmenityID   string    `gorm:"type:text;not null;uniqueIndex" json:"amenity_id"`
	AmenityName string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_amenities_key,priority:3" json:"amenity_name"`
	RoomID      *string   `gorm:"type:text;uniqueIndex:idx_hotel_amenities_key,priority:2" json:"room_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Amenity.
func (Amenity) TableName() string {
	return "hotel_amenities"
}

// IsHotelWide reports whether the amenity belongs to no specific room.
func (a Amenity) IsHotelWide() bool {
	return a.RoomID == nil || *a.RoomID == ""
}
