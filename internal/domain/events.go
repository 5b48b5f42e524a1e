package domain

// ObjectRef points at one stored object.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// RoomImagesEvent is emitted by ingestion once per hotel that has room images.
type RoomImagesEvent struct {
	HotelID      string   `json:"hotel_id"`
	RoomImageIDs []string `json:"room_image_ids"`
}

// HotelEvent triggers the amenity and rating stages.
type HotelEvent struct {
	HotelID string `json:"hotel_id"`
}
