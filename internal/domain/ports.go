package domain

import "context"

// Create methods across the repositories insert only when the natural key
// is absent and report whether a row was written.

type ImageRepository interface {
	Exists(ctx context.Context, hotelID, imageID string) (bool, error)
	Get(ctx context.Context, hotelID, imageID string) (*Image, error)
	ListByHotel(ctx context.Context, hotelID string) ([]Image, error)
	Create(ctx context.Context, img *Image) (bool, error)
	SetRoomID(ctx context.Context, hotelID, imageID, roomID string) error
	SetRating(ctx context.Context, hotelID, imageID string, rating int) error
}

type ImageContextRepository interface {
	Exists(ctx context.Context, hotelID, imageID string, category ImageCategory) (bool, error)
	Create(ctx context.Context, ic *ImageContext) (bool, error)
	ListImageIDs(ctx context.Context, hotelID string, category ImageCategory) ([]string, error)
}

type RoomRepository interface {
	ListByHotel(ctx context.Context, hotelID string) ([]Room, error)
	Create(ctx context.Context, room *Room) (bool, error)
}

type AmenityRepository interface {
	// ExistsHotelWide matches rows whose room_id is NULL or empty.
	ExistsHotelWide(ctx context.Context, hotelID, name string) (bool, error)
	ExistsForRoom(ctx context.Context, hotelID, roomID, name string) (bool, error)
	Create(ctx context.Context, a *Amenity) (bool, error)
	ListByHotel(ctx context.Context, hotelID string) ([]Amenity, error)
}

type HotelRepository interface {
	Get(ctx context.Context, hotelID string) (*Hotel, error)
	UpsertMainImage(ctx context.Context, hotelID string, img MainImage) error
}

// ImageData is the payload handed to the classifier. Path is the storage
// key or URL of the image and serves as a hint only.
type ImageData struct {
	Bytes []byte
	Path  string
}

// RoomLabel is the classifier's reading of a room photo.
type RoomLabel struct {
	Name string
	Type string
}

// QualityScore is a 0-100 image quality rating with the model's rationale.
type QualityScore struct {
	Score  int
	Reason string
}

type Classifier interface {
	Categorize(ctx context.Context, img ImageData) (ImageCategory, error)
	ExtractRoom(ctx context.Context, img ImageData) (RoomLabel, error)
	DetectAmenities(ctx context.Context, img ImageData) ([]string, error)
	ScoreQuality(ctx context.Context, img ImageData) (QualityScore, error)
}

// ObjectStore reads image bytes and maps (bucket, key) pairs to the image
// URLs stored on Image records.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	URL(bucket, key string) string
	ParseURL(rawURL string) (bucket, key string, err error)
}

// Publisher sends a continuation event. Delivery is fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
