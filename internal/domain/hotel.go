package domain

import "time"

// Hotel is owned by the listing system; the pipeline only fills in the
// main-image columns.
type Hotel struct {
	HotelID         string    `gorm:"type:text;primaryKey" json:"hotel_id"`
	MainImageURL    *string   `gorm:"type:text" json:"main_image_url,omitempty"`
	MainImageID     *string   `gorm:"type:text" json:"main_image_id,omitempty"`
	MainImageRating *int      `json:"main_image_rating,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for Hotel.
func (Hotel) TableName() string {
	return "hotels"
}

// MainImage is the winning image promoted onto a Hotel.
type MainImage struct {
	ImageID  string
	ImageURL string
	Rating   int
}
