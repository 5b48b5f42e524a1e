package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/metrics"
)

// IngestService categorizes newly stored images and hands room images on
// to the room stage.
type IngestService struct {
	images     domain.ImageRepository
	contexts   domain.ImageContextRepository
	store      domain.ObjectStore
	classifier domain.Classifier
	publisher  domain.Publisher
	roomsTopic string
}

// NewIngestService creates a new ingest service.
// roomsTopic receives one RoomImagesEvent per touched hotel after a batch.
func NewIngestService(
	images domain.ImageRepository,
	contexts domain.ImageContextRepository,
	store domain.ObjectStore,
	classifier domain.Classifier,
	publisher domain.Publisher,
	roomsTopic string,
) *IngestService {
	return &IngestService{
		images:     images,
		contexts:   contexts,
		store:      store,
		classifier: classifier,
		publisher:  publisher,
		roomsTopic: roomsTopic,
	}
}

// IngestStats holds statistics for an ingestion batch
type IngestStats struct {
	TotalItems     int       `json:"total_items"`
	ProcessedItems int       `json:"processed_items"`
	SkippedItems   int       `json:"skipped_items"`
	FailedItems    int       `json:"failed_items"`
	HotelsNotified int       `json:"hotels_notified"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

// Ingest processes a batch of object references. Bad items are logged and
// skipped; the batch itself never fails.
func (s *IngestService) Ingest(ctx context.Context, refs []domain.ObjectRef) *IngestStats {
	ctx = logger.SetStage(ctx, StageIngest, "")
	log := logger.FromContext(ctx)
	stats := &IngestStats{TotalItems: len(refs), StartTime: time.Now()}

	// Touched hotels in first-seen order so notifications are deterministic.
	var touched []string
	seen := make(map[string]struct{})

	for _, ref := range refs {
		hotelID, outcome, err := s.processRef(ctx, ref)
		itemLog := log.WithFields(logger.Fields{
			"bucket": ref.Bucket,
			"key":    ref.Key,
		})
		switch outcome {
		case metrics.OutcomeSkipped:
			stats.SkippedItems++
			if err != nil {
				itemLog.WithError(err).Warn("Skipping object")
			} else {
				itemLog.Debug("Duplicate image, skipping")
			}
		case metrics.OutcomeFailed:
			stats.FailedItems++
			itemLog.WithError(err).Error("Failed to process object")
		default:
			stats.ProcessedItems++
			if _, ok := seen[hotelID]; !ok {
				seen[hotelID] = struct{}{}
				touched = append(touched, hotelID)
			}
		}
		metrics.ObserveItem(StageIngest, outcome)
	}

	for _, hotelID := range touched {
		if s.notifyRooms(ctx, hotelID) {
			stats.HotelsNotified++
		}
	}

	stats.EndTime = time.Now()
	log.WithFields(logger.Fields{
		"total":     stats.TotalItems,
		"processed": stats.ProcessedItems,
		"skipped":   stats.SkippedItems,
		"failed":    stats.FailedItems,
		"notified":  stats.HotelsNotified,
		"duration":  stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Ingestion completed")

	return stats
}

// processRef handles one object. It returns the hotel id and the outcome;
// err explains skips and failures.
func (s *IngestService) processRef(ctx context.Context, ref domain.ObjectRef) (string, string, error) {
	hotelID, imageID, err := parseImageKey(ref.Key)
	if err != nil {
		return "", metrics.OutcomeSkipped, err
	}

	exists, err := s.images.Exists(ctx, hotelID, imageID)
	if err != nil {
		return hotelID, metrics.OutcomeFailed, fmt.Errorf("failed to check image: %w", err)
	}
	if exists {
		return hotelID, metrics.OutcomeSkipped, nil
	}

	data, err := s.store.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return hotelID, metrics.OutcomeFailed, fmt.Errorf("failed to read image: %w", err)
	}
	category, err := s.classifier.Categorize(ctx, domain.ImageData{Bytes: data, Path: ref.Key})
	if err != nil {
		return hotelID, metrics.OutcomeFailed, fmt.Errorf("failed to categorize image: %w", err)
	}

	// The context check is separate from the image check above: when this
	// exact categorization is already on file nothing is written, but the
	// hotel still counts as touched.
	hasContext, err := s.contexts.Exists(ctx, hotelID, imageID, category)
	if err != nil {
		return hotelID, metrics.OutcomeFailed, fmt.Errorf("failed to check image context: %w", err)
	}
	if !hasContext {
		img := &domain.Image{
			HotelID:   hotelID,
			ImageID:   imageID,
			ImageURL:  s.store.URL(ref.Bucket, ref.Key),
			CreatedAt: time.Now().UTC(),
		}
		if _, err := s.images.Create(ctx, img); err != nil {
			return hotelID, metrics.OutcomeFailed, fmt.Errorf("failed to save image: %w", err)
		}
		ic := &domain.ImageContext{
			HotelID:   hotelID,
			ImageID:   imageID,
			Category:  category,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := s.contexts.Create(ctx, ic); err != nil {
			return hotelID, metrics.OutcomeFailed, fmt.Errorf("failed to save image context: %w", err)
		}
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldHotelID: hotelID,
		logger.FieldImageID: imageID,
		"category":          category,
	}).Info("Image categorized")
	return hotelID, metrics.OutcomeProcessed, nil
}

// notifyRooms publishes the hotel's room images, if any. It reports whether
// an event was sent.
func (s *IngestService) notifyRooms(ctx context.Context, hotelID string) bool {
	log := logger.FromContext(ctx).WithField(logger.FieldHotelID, hotelID)

	ids, err := s.contexts.ListImageIDs(ctx, hotelID, domain.CategoryRooms)
	if err != nil {
		log.WithError(err).Error("Failed to list room images")
		return false
	}
	if len(ids) == 0 {
		return false
	}

	event := domain.RoomImagesEvent{HotelID: hotelID, RoomImageIDs: ids}
	if err := s.publisher.Publish(ctx, s.roomsTopic, event); err != nil {
		log.WithError(err).Error("Failed to publish room images event")
		return false
	}
	log.WithField(logger.FieldCount, len(ids)).Info("Room images event published")
	return true
}

// parseImageKey splits "<prefix>/<hotel_id>/.../<image_id>".
func parseImageKey(key string) (hotelID, imageID string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("%w: %q, expected <prefix>/<hotel_id>/<image>", domain.ErrInvalidKey, key)
	}
	hotelID = parts[1]
	imageID = parts[len(parts)-1]
	if hotelID == "" || imageID == "" {
		return "", "", fmt.Errorf("%w: %q has an empty hotel or image segment", domain.ErrInvalidKey, key)
	}
	return hotelID, imageID, nil
}
