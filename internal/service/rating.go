package service

import (
	"context"
	"fmt"

	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/metrics"
)

// RatingService scores every image of a hotel and promotes the best one.
type RatingService struct {
	images     domain.ImageRepository
	hotels     domain.HotelRepository
	store      domain.ObjectStore
	classifier domain.Classifier
}

func NewRatingService(
	images domain.ImageRepository,
	hotels domain.HotelRepository,
	store domain.ObjectStore,
	classifier domain.Classifier,
) *RatingService {
	return &RatingService{
		images:     images,
		hotels:     hotels,
		store:      store,
		classifier: classifier,
	}
}

// RatingResult reports one rating run. ImageID, ImageURL and Rating describe
// the promoted main image and are set only on success.
type RatingResult struct {
	HotelID  string       `json:"hotel_id"`
	Status   ResultStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	ImageID  string       `json:"image_id,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	Rating   int          `json:"rating"`
	Scored   int          `json:"scored"`
	Failed   int          `json:"failed"`
}

// Process rates all images of the hotel. Ties keep the first image seen.
func (s *RatingService) Process(ctx context.Context, event domain.HotelEvent) *RatingResult {
	ctx = logger.SetStage(ctx, StageRating, event.HotelID)
	log := logger.FromContext(ctx)
	result := &RatingResult{HotelID: event.HotelID}

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

	var best *domain.Image
	bestScore := -1
	for i := range images {
		img := &images[i]
		score, err := s.rate(ctx, img)
		if err != nil {
			result.Failed++
			metrics.ObserveItem(StageRating, metrics.OutcomeFailed)
			log.WithField(logger.FieldImageID, img.ImageID).WithError(err).Error("Failed to rate image")
			continue
		}
		result.Scored++
		metrics.ObserveItem(StageRating, metrics.OutcomeProcessed)
		if score > bestScore {
			bestScore = score
			best = img
		}
	}

	if best == nil {
		result.Status, result.Message = StatusFailed, "All image ratings failed"
		return result
	}

	winner := domain.MainImage{ImageID: best.ImageID, ImageURL: best.ImageURL, Rating: bestScore}
	if err := s.hotels.UpsertMainImage(ctx, event.HotelID, winner); err != nil {
		log.WithError(err).Error("Failed to update main image")
		result.Status, result.Message = StatusFailed, "failed to update main image"
		return result
	}

	result.Status = StatusSuccess
	result.ImageID, result.ImageURL, result.Rating = best.ImageID, best.ImageURL, bestScore
	log.WithFields(logger.Fields{
		logger.FieldImageID: best.ImageID,
		"rating":            bestScore,
		"scored":            result.Scored,
		"failed":            result.Failed,
	}).Info("Main image updated")
	return result
}

func (s *RatingService) rate(ctx context.Context, img *domain.Image) (int, error) {
	data, err := fetchImage(ctx, s.store, img.ImageURL)
	if err != nil {
		return 0, err
	}
	q, err := s.classifier.ScoreQuality(ctx, data)
	if err != nil {
		return 0, fmt.Errorf("failed to score image: %w", err)
	}
	if err := s.images.SetRating(ctx, img.HotelID, img.ImageID, q.Score); err != nil {
		return 0, fmt.Errorf("failed to save rating: %w", err)
	}
	return q.Score, nil
}
