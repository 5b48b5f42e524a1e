package domain

import "time"

// Image is a hotel photo known to the pipeline.
// RoomID is assigned by the room stage and Rating by the rating stage.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	HotelID   string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_images_key,priority:1" json:"hotel_id"`
	ImageID   string    `gorm:"type:text;not null;uniqueIndex:idx_hotel_images_key,priority:2" json:"image_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image_url"`
	RoomID    *string   `gorm:"type:text" json:"room_id,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Image.
func (Image) TableName() string {
	return "hotel_images"
}

// ImageContext records the category an image was classified into.
// It is kept apart from Image so repeated categorizations stay detectable.
type ImageContext struct {
	ID        uint          `gorm:"primaryKey" json:"-"`
	HotelID   string        `gorm:"type:text;not null;uniqueIndex:idx_hotel_context_key,priority:1;index:idx_hotel_context_category,priority:1" json:"hotel_id"`
	ImageID   string        `gorm:"type:text;not null;uniqueIndex:idx_hotel_context_key,priority:2" json:"image_id"`
	Category  ImageCategory `gorm:"type:text;not null;uniqueIndex:idx_hotel_context_key,priority:3;index:idx_hotel_context_category,priority:2" json:"category"`
	CreatedAt time.Time     `json:"created_at"`
}

// TableName returns the database table name for ImageContext.
func (ImageContext) TableName() string {
	return "hotel_context"
}

// ImageCategory is one of the fixed categories an image can be sorted into.
type ImageCategory string

const (
	CategoryExterior  ImageCategory = "exterior"
	CategoryInterior  ImageCategory = "interior"
	CategoryFoods     ImageCategory = "foods"
	CategoryLeisure   ImageCategory = "leisure"
	CategoryParking   ImageCategory = "parking"
	CategoryRooms     ImageCategory = "rooms"
	CategoryBathrooms ImageCategory = "bathrooms"
)
