package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/events"
	"github.com/timmy/hotelsense/internal/logger"
	"github.com/timmy/hotelsense/internal/service"
)

type ingester interface {
	Ingest(ctx context.Context, refs []domain.ObjectRef) *service.IngestStats
}

type roomProcessor interface {
	Process(ctx context.Context, event domain.RoomImagesEvent) *service.RoomStats
}

type amenityProcessor interface {
	Process(ctx context.Context, event domain.HotelEvent) *service.AmenityResult
}

type ratingProcessor interface {
	Process(ctx context.Context, event domain.HotelEvent) *service.RatingResult
}

// Each handler returns an error only when the message cannot be decoded.
// Stage outcomes are logged by the stages themselves.

func ingestHandler(svc ingester) events.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		refs, err := events.DecodeObjectCreated(msg.Value)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			logger.FromContext(ctx).Debug("Notification carried no created objects")
			return nil
		}
		svc.Ingest(ctx, refs)
		return nil
	}
}

func roomsHandler(svc roomProcessor) events.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event domain.RoomImagesEvent
		if err := decodeEvent(msg.Value, &event); err != nil {
			return err
		}
		if event.HotelID == "" {
			return errNoHotel
		}
		svc.Process(ctx, event)
		return nil
	}
}

func amenitiesHandler(svc amenityProcessor) events.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event domain.HotelEvent
		if err := decodeEvent(msg.Value, &event); err != nil {
			return err
		}
		if event.HotelID == "" {
			return errNoHotel
		}
		svc.Process(ctx, event)
		return nil
	}
}

func ratingHandler(svc ratingProcessor) events.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event domain.HotelEvent
		if err := decodeEvent(msg.Value, &event); err != nil {
			return err
		}
		if event.HotelID == "" {
			return errNoHotel
		}
		res := svc.Process(ctx, event)
		if res.Status != service.StatusSuccess {
			logger.FromContext(ctx).WithFields(logger.Fields{
				logger.FieldHotelID: event.HotelID,
				logger.FieldStatus:  res.Status,
			}).Warn(res.Message)
		}
		return nil
	}
}

var errNoHotel = errors.New("event has no hotel_id")

func decodeEvent(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	return nil
}
