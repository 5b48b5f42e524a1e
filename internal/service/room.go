package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/hotelsense/internal/catalog"
	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/metrics"
)

// RoomService turns room-category images into Room records.
type RoomService struct {
	images         domain.ImageRepository
	rooms          domain.RoomRepository
	store          domain.ObjectStore
	classifier     domain.Classifier
	publisher      domain.Publisher
	amenitiesTopic string
}

func NewRoomService(
	images domain.ImageRepository,
	rooms domain.RoomRepository,
	store domain.ObjectStore,
	classifier domain.Classifier,
	publisher domain.Publisher,
	amenitiesTopic string,
) *RoomService {
	return &RoomService{
		images:         images,
		rooms:          rooms,
		store:          store,
		classifier:     classifier,
		publisher:      publisher,
		amenitiesTopic: amenitiesTopic,
	}
}

// RoomStats summarizes one room stage run.
type RoomStats struct {
	HotelID      string `json:"hotel_id"`
	TotalImages  int    `json:"total_images"`
	Missing      int    `json:"missing"`
	Failed       int    `json:"failed"`
	RoomsCreated int    `json:"rooms_created"`
	Notified     bool   `json:"notified"`
}

// Process classifies each listed image and records new rooms. The amenity
// stage is notified afterwards whether or not anything was created.
func (s *RoomService) Process(ctx context.Context, event domain.RoomImagesEvent) *RoomStats {
	ctx = logger.SetStage(ctx, StageRooms, event.HotelID)
	log := logger.FromContext(ctx)
	stats := &RoomStats{HotelID: event.HotelID, TotalImages: len(event.RoomImageIDs)}

	// A failed read leaves known empty; the unique index on hotel_rooms
	// still rejects duplicates.
	existing, err := s.rooms.ListByHotel(ctx, event.HotelID)
	if err != nil {
		log.WithError(err).Warn("Failed to load existing rooms")
	}
	known := make(map[domain.RoomKey]struct{}, len(existing))
	for _, r := range existing {
		known[r.Key()] = struct{}{}
	}

	for _, imageID := range event.RoomImageIDs {
		img, err := s.images.Get(ctx, event.HotelID, imageID)
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown ids are dropped without noise.
			stats.Missing++
			metrics.ObserveItem(StageRooms, metrics.OutcomeSkipped)
			log.WithField(logger.FieldImageID, imageID).Debug("Image not found, skipping")
			continue
		}
		if err != nil {
			stats.Failed++
			metrics.ObserveItem(StageRooms, metrics.OutcomeFailed)
			log.WithField(logger.FieldImageID, imageID).WithError(err).Error("Failed to load room image")
			continue
		}

		created, err := s.processImage(ctx, img, known)
		if err != nil {
			stats.Failed++
			metrics.ObserveItem(StageRooms, metrics.OutcomeFailed)
			log.WithField(logger.FieldImageID, imageID).WithError(err).Error("Failed to process room image")
			continue
		}
		if created {
			stats.RoomsCreated++
		}
		metrics.ObserveItem(StageRooms, metrics.OutcomeProcessed)
	}

	if err := s.publisher.Publish(ctx, s.amenitiesTopic, domain.HotelEvent{HotelID: event.HotelID}); err != nil {
		log.WithError(err).Error("Failed to publish rooms processed event")
	} else {
		stats.Notified = true
	}

	log.WithFields(logger.Fields{
		"total":   stats.TotalImages,
		"missing": stats.Missing,
		"failed":  stats.Failed,
		"created": stats.RoomsCreated,
	}).Info("Room classification completed")
	return stats
}

// processImage assigns img to a room and creates the room if its key is new.
// known is updated in place so later images in the batch see the new room.
func (s *RoomService) processImage(ctx context.Context, img *domain.Image, known map[domain.RoomKey]struct{}) (bool, error) {
	data, err := fetchImage(ctx, s.store, img.ImageURL)
	if err != nil {
		return false, err
	}
	label, err := s.classifier.ExtractRoom(ctx, data)
	if err != nil {
		return false, fmt.Errorf("failed to classify room: %w", err)
	}

	roomID := deriveRoomID(s.store, img.ImageURL, img.HotelID, label.Type)

	if err := s.images.SetRoomID(ctx, img.HotelID, img.ImageID, roomID); err != nil {
		return false, fmt.Errorf("failed to set room id: %w", err)
	}

	key := domain.NewRoomKey(roomID, label.Type)
	if _, ok := known[key]; ok {
		return false, nil
	}
	room := &domain.Room{
		HotelID:   img.HotelID,
		ImageID:   img.ImageID,
		RoomID:    roomID,
		RoomName:  label.Name,
		RoomType:  label.Type,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.rooms.Create(ctx, room)
	if err != nil {
		return false, fmt.Errorf("failed to save room: %w", err)
	}
	known[key] = struct{}{}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldImageID: img.ImageID,
		"room_id":           roomID,
		"room_type":         label.Type,
	}).Info("Room recorded")
	return created, nil
}

// deriveRoomID reads the room id from the directory holding the image,
// as in hotels/<hotel_id>/<room_id>/<file>. Keys without such a directory
// fall back to the slugged room type.
func deriveRoomID(store domain.ObjectStore, imageURL, hotelID, roomType string) string {
	_, key, err := store.ParseURL(imageURL)
	if err == nil {
		parts := strings.Split(key, "/")
		if len(parts) >= 4 {
			parent := parts[len(parts)-2]
			if parent != "" && parent != hotelID {
				return parent
			}
		}
	}
	return catalog.RoomSlug(roomType)
}
