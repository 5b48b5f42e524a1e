package service

import (
	"context"
	"fmt"

	"github.com/timmy/hotelsense/internal/domain"
)

// Stage names used in logs and metrics.
const (
	StageIngest    = "ingest"
	StageRooms     = "rooms"
	StageAmenities = "amenities"
	StageRating    = "rating"
)

// ResultStatus is the structured outcome of a hotel-scoped stage run.
type ResultStatus string

const (
	StatusSuccess  ResultStatus = "success"
	StatusNotFound ResultStatus = "not_found"
	StatusFailed   ResultStatus = "failed"
)

// fetchImage loads the bytes behind an Image record's URL.
func fetchImage(ctx context.Context, store domain.ObjectStore, imageURL string) (domain.ImageData, error) {
	bucket, key, err := store.ParseURL(imageURL)
	if err != nil {
		return domain.ImageData{}, err
	}
	data, err := store.Get(ctx, bucket, key)
	if err != nil {
		return domain.ImageData{}, fmt.Errorf("failed to read image: %w", err)
	}
	return domain.ImageData{Bytes: data, Path: key}, nil
}
