package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/timmy/hotelsense/internal/domain"
)

// memImages is an in-memory domain.ImageRepository.
type memImages struct {
	mu     sync.Mutex
	images []domain.Image
	getErr error
}

func (r *memImages) Exists(_ context.Context, hotelID, imageID string) (bool, error) {
	_, ok := r.find(hotelID, imageID)
	return ok, nil
}

func (r *memImages) find(hotelID, imageID string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, img := range r.images {
		if img.HotelID == hotelID && img.ImageID == imageID {
			return i, true
		}
	}
	return -1, false
}

func (r *memImages) Get(_ context.Context, hotelID, imageID string) (*domain.Image, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	i, ok := r.find(hotelID, imageID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	img := r.images[i]
	return &img, nil
}

func (r *memImages) ListByHotel(_ context.Context, hotelID string) ([]domain.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Image
	for _, img := range r.images {
		if img.HotelID == hotelID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *memImages) Create(_ context.Context, img *domain.Image) (bool, error) {
	if _, ok := r.find(img.HotelID, img.ImageID); ok {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, *img)
	return true, nil
}

func (r *memImages) SetRoomID(_ context.Context, hotelID, imageID, roomID string) error {
	i, ok := r.find(hotelID, imageID)
	if !ok {
		return domain.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[i].RoomID = &roomID
	return nil
}

func (r *memImages) SetRating(_ context.Context, hotelID, imageID string, rating int) error {
	i, ok := r.find(hotelID, imageID)
	if !ok {
		return domain.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[i].Rating = &rating
	return nil
}

type memContexts struct {
	contexts []domain.ImageContext
}

func (r *memContexts) Exists(_ context.Context, hotelID, imageID string, category domain.ImageCategory) (bool, error) {
	for _, c := range r.contexts {
		if c.HotelID == hotelID && c.ImageID == imageID && c.Category == category {
			return true, nil
		}
	}
	return false, nil
}

func (r *memContexts) Create(ctx context.Context, ic *domain.ImageContext) (bool, error) {
	if ok, _ := r.Exists(ctx, ic.HotelID, ic.ImageID, ic.Category); ok {
		return false, nil
	}
	r.contexts = append(r.contexts, *ic)
	return true, nil
}

func (r *memContexts) ListImageIDs(_ context.Context, hotelID string, category domain.ImageCategory) ([]string, error) {
	var ids []string
	for _, c := range r.contexts {
		if c.HotelID == hotelID && c.Category == category {
			ids = append(ids, c.ImageID)
		}
	}
	return ids, nil
}

type memRooms struct {
	rooms []domain.Room
}

func (r *memRooms) ListByHotel(_ context.Context, hotelID string) ([]domain.Room, error) {
	var out []domain.Room
	for _, room := range r.rooms {
		if room.HotelID == hotelID {
			out = append(out, room)
		}
	}
	return out, nil
}

func (r *memRooms) Create(_ context.Context, room *domain.Room) (bool, error) {
	for _, existing := range r.rooms {
		if existing.HotelID == room.HotelID && existing.Key() == room.Key() {
			return false, nil
		}
	}
	r.rooms = append(r.rooms, *room)
	return true, nil
}

type memAmenities struct {
	amenities []domain.Amenity
}

func (r *memAmenities) ExistsHotelWide(_ context.Context, hotelID, name string) (bool, error) {
	for _, a := range r.amenities {
		if a.HotelID == hotelID && a.AmenityName == name && a.IsHotelWide() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAmenities) ExistsForRoom(_ context.Context, hotelID, roomID, name string) (bool, error) {
	for _, a := range r.amenities {
		if a.HotelID == hotelID && a.AmenityName == name && a.RoomID != nil && *a.RoomID == roomID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAmenities) Create(ctx context.Context, a *domain.Amenity) (bool, error) {
	if a.RoomID != nil {
		if ok, _ := r.ExistsForRoom(ctx, a.HotelID, *a.RoomID, a.AmenityName); ok {
			return false, nil
		}
	}
	r.amenities = append(r.amenities, *a)
	return true, nil
}

func (r *memAmenities) ListByHotel(_ context.Context, hotelID string) ([]domain.Amenity, error) {
	var out []domain.Amenity
	for _, a := range r.amenities {
		if a.HotelID == hotelID {
			out = append(out, a)
		}
	}
	return out, nil
}

// forRoom lists amenity names attached to roomID ("" for hotel-wide).
func (r *memAmenities) forRoom(roomID string) []string {
	var names []string
	for _, a := range r.amenities {
		if a.RoomID != nil && *a.RoomID == roomID {
			names = append(names, a.AmenityName)
		}
	}
	return names
}

type memHotels struct {
	hotels map[string]domain.Hotel
}

func (r *memHotels) Get(_ context.Context, hotelID string) (*domain.Hotel, error) {
	h, ok := r.hotels[hotelID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &h, nil
}

func (r *memHotels) UpsertMainImage(_ context.Context, hotelID string, img domain.MainImage) error {
	if r.hotels == nil {
		r.hotels = make(map[string]domain.Hotel)
	}
	h := r.hotels[hotelID]
	h.HotelID = hotelID
	h.MainImageID = &img.ImageID
	h.MainImageURL = &img.ImageURL
	h.MainImageRating = &img.Rating
	r.hotels[hotelID] = h
	return nil
}

// memStore keeps objects under "bucket/key" and uses mem://bucket/key URLs.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) put(bucket, key string) string {
	s.objects[bucket+"/"+key] = []byte(key)
	return s.URL(bucket, key)
}

func (s *memStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, key, errObjectMissing)
	}
	return data, nil
}

var errObjectMissing = errors.New("object not found")

func (s *memStore) URL(bucket, key string) string {
	return "mem://" + bucket + "/" + key
}

func (s *memStore) ParseURL(rawURL string) (string, string, error) {
	rest, ok := strings.CutPrefix(rawURL, "mem://")
	if !ok {
		return "", "", fmt.Errorf("not a mem URL: %q", rawURL)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok {
		return "", "", fmt.Errorf("missing key in %q", rawURL)
	}
	return bucket, key, nil
}

// fakeClassifier answers from per-path tables. The image bytes a memStore
// returns are the key itself, so Path and Bytes identify the same image.
type fakeClassifier struct {
	categories map[string]domain.ImageCategory
	rooms      map[string]domain.RoomLabel
	amenities  map[string][]string
	scores     map[string]int
	fail       map[string]bool

	calls []string
}

func (c *fakeClassifier) lookup(op string, img domain.ImageData) (string, error) {
	key := string(img.Bytes)
	c.calls = append(c.calls, op+":"+key)
	if c.fail[key] {
		return "", fmt.Errorf("model unavailable for %s", key)
	}
	return key, nil
}

func (c *fakeClassifier) Categorize(_ context.Context, img domain.ImageData) (domain.ImageCategory, error) {
	key, err := c.lookup("categorize", img)
	if err != nil {
		return "", err
	}
	cat, ok := c.categories[key]
	if !ok {
		return domain.CategoryInterior, nil
	}
	return cat, nil
}

func (c *fakeClassifier) ExtractRoom(_ context.Context, img domain.ImageData) (domain.RoomLabel, error) {
	key, err := c.lookup("room", img)
	if err != nil {
		return domain.RoomLabel{}, err
	}
	label, ok := c.rooms[key]
	if !ok {
		return domain.RoomLabel{}, fmt.Errorf("no room label for %s", key)
	}
	return label, nil
}

func (c *fakeClassifier) DetectAmenities(_ context.Context, img domain.ImageData) ([]string, error) {
	key, err := c.lookup("amenities", img)
	if err != nil {
		return nil, err
	}
	return c.amenities[key], nil
}

func (c *fakeClassifier) ScoreQuality(_ context.Context, img domain.ImageData) (domain.QualityScore, error) {
	key, err := c.lookup("score", img)
	if err != nil {
		return domain.QualityScore{}, err
	}
	return domain.QualityScore{Score: c.scores[key], Reason: "test"}, nil
}

func (c *fakeClassifier) callCount(op string) int {
	n := 0
	for _, call := range c.calls {
		if strings.HasPrefix(call, op+":") {
			n++
		}
	}
	return n
}

type published struct {
	topic   string
	payload any
}

type fakePublisher struct {
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, payload: payload})
	return nil
}
