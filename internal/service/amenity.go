package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/hotelsense/internal/catalog"
	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/metrics"
)

// DefaultMaxAmenities caps the labels collected per hotel.
const DefaultMaxAmenities = 10

// AmenityService detects amenities across a hotel's images and attaches
// them to the hotel or to its rooms.
type AmenityService struct {
	images       domain.ImageRepository
	rooms        domain.RoomRepository
	amenities    domain.AmenityRepository
	store        domain.ObjectStore
	classifier   domain.Classifier
	publisher    domain.Publisher
	ratingTopic  string
	maxAmenities int
}

func NewAmenityService(
	images domain.ImageRepository,
	rooms domain.RoomRepository,
	amenities domain.AmenityRepository,
	store domain.ObjectStore,
	classifier domain.Classifier,
	publisher domain.Publisher,
	ratingTopic string,
	maxAmenities int,
) *AmenityService {
	if maxAmenities <= 0 {
		maxAmenities = DefaultMaxAmenities
	}
	return &AmenityService{
		images:       images,
		rooms:        rooms,
		amenities:    amenities,
		store:        store,
		classifier:   classifier,
		publisher:    publisher,
		ratingTopic:  ratingTopic,
		maxAmenities: maxAmenities,
	}
}

// AmenityResult reports one amenity stage run.
type AmenityResult struct {
	HotelID         string       `json:"hotel_id"`
	Status          ResultStatus `json:"status"`
	Message         string       `json:"message,omitempty"`
	Labels          []string     `json:"labels"`
	ClassifierCalls int          `json:"classifier_calls"`
	FailedImages    int          `json:"failed_images"`
	Inserted        int          `json:"inserted"`
	Notified        bool         `json:"notified"`
}

// Process runs detection for one hotel. A hotel without images ends the
// pipeline here; otherwise the rating stage is always notified.
func (s *AmenityService) Process(ctx context.Context, event domain.HotelEvent) *AmenityResult {
	ctx = logger.SetStage(ctx, StageAmenities, event.HotelID)
	log := logger.FromContext(ctx)
	result := &AmenityResult{HotelID: event.HotelID, Labels: []string{}}

	rooms, err := s.rooms.ListByHotel(ctx, event.HotelID)
	if err != nil {
		log.WithError(err).Error("Failed to load rooms")
		result.Status, result.Message = StatusFailed, "failed to load rooms"
		return result
	}
	if len(rooms) == 0 {
		// Placeholder so room-scoped amenities are still evaluated.
		rooms = []domain.Room{{HotelID: event.HotelID}}
	}

	images, err := s.images.ListByHotel(ctx, event.HotelID)
	if err != nil {
		log.WithError(err).Error("Failed to load images")
		result.Status, result.Message = StatusFailed, "failed to load images"
		return result
	}
	if len(images) == 0 {
		log.Warn("No images found for hotel")
		result.Status, result.Message = StatusNotFound, "No images found"
		return result
	}

	labels := s.collectLabels(ctx, images, result)
	result.Labels = labels

	for _, label := range labels {
		result.Inserted += s.attach(ctx, event.HotelID, strings.ToLower(label), rooms)
	}

	if err := s.publisher.Publish(ctx, s.ratingTopic, domain.HotelEvent{HotelID: event.HotelID}); err != nil {
		log.WithError(err).Error("Failed to publish amenities processed event")
	} else {
		result.Notified = true
	}

	result.Status = StatusSuccess
	log.WithFields(logger.Fields{
		"labels":   len(labels),
		"calls":    result.ClassifierCalls,
		"failed":   result.FailedImages,
		"inserted": result.Inserted,
	}).Info("Amenity detection completed")
	return result
}

// collectLabels runs the classifier image by image until the cap is hit.
func (s *AmenityService) collectLabels(ctx context.Context, images []domain.Image, result *AmenityResult) []string {
	acc := newLabelSet(s.maxAmenities)
	for _, img := range images {
		if acc.full() {
			break
		}
		imgLog := logger.FromContext(ctx).WithField(logger.FieldImageID, img.ImageID)

		data, err := fetchImage(ctx, s.store, img.ImageURL)
		if err != nil {
			result.FailedImages++
			metrics.ObserveItem(StageAmenities, metrics.OutcomeFailed)
			imgLog.WithError(err).Error("Failed to read image")
			continue
		}
		result.ClassifierCalls++
		found, err := s.classifier.DetectAmenities(ctx, data)
		if err != nil {
			result.FailedImages++
			metrics.ObserveItem(StageAmenities, metrics.OutcomeFailed)
			imgLog.WithError(err).Error("Failed to detect amenities")
			continue
		}
		acc.add(found...)
		metrics.ObserveItem(StageAmenities, metrics.OutcomeProcessed)
	}
	return acc.items()
}

// attach writes the records for one amenity and returns how many were new.
func (s *AmenityService) attach(ctx context.Context, hotelID, name string, rooms []domain.Room) int {
	log := logger.FromContext(ctx).WithField("amenity", name)

	if catalog.IsGeneralAmenity(name) {
		exists, err := s.amenities.ExistsHotelWide(ctx, hotelID, name)
		if err != nil {
			log.WithError(err).Error("Failed to check hotel amenity")
			return 0
		}
		if exists {
			return 0
		}
		return s.insert(ctx, hotelID, name, "")
	}

	inserted := 0
	for _, room := range rooms {
		exists, err := s.amenities.ExistsForRoom(ctx, hotelID, room.RoomID, name)
		if err != nil {
			log.WithField("room_id", room.RoomID).WithError(err).Error("Failed to check room amenity")
			continue
		}
		if exists || !catalog.ShouldAssociate(name, room.RoomType) {
			continue
		}
		inserted += s.insert(ctx, hotelID, name, room.RoomID)
	}
	return inserted
}

func (s *AmenityService) insert(ctx context.Context, hotelID, name, roomID string) int {
	a := &domain.Amenity{
		HotelID:     hotelID,
		AmenityID:   uuid.New().String(),
		AmenityName: name,
		RoomID:      &roomID,
	}
	created, err := s.amenities.Create(ctx, a)
	if err != nil {
		logger.FromContext(ctx).WithFields(logger.Fields{
			"amenity": name,
			"room_id": roomID,
		}).WithError(err).Error("Failed to save amenity")
		return 0
	}
	if !created {
		return 0
	}
	return 1
}

// labelSet keeps unique labels in insertion order up to a limit. Labels
// offered once the set is full are dropped, which is the same as merging
// then keeping the first limit entries.
type labelSet struct {
	limit int
	order []string
	seen  map[string]struct{}
}

func newLabelSet(limit int) *labelSet {
	return &labelSet{limit: limit, seen: make(map[string]struct{}, limit)}
}

func (s *labelSet) add(labels ...string) {
	for _, l := range labels {
		if s.full() {
			return
		}
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := s.seen[l]; ok {
			continue
		}
		s.seen[l] = struct{}{}
		s.order = append(s.order, l)
	}
}

func (s *labelSet) full() bool {
	return len(s.order) >= s.limit
}

func (s *labelSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
