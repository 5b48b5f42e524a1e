package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/events"
	"github.com/timmy/hotelsense/internal/service"
)

type Ingester interface {
	Ingest(ctx context.Context, refs []domain.ObjectRef) *service.IngestStats
}

type RoomProcessor interface {
	Process(ctx context.Context, event domain.RoomImagesEvent) *service.RoomStats
}

type AmenityProcessor interface {
	Process(ctx context.Context, event domain.HotelEvent) *service.AmenityResult
}

type RatingProcessor interface {
	Process(ctx context.Context, event domain.HotelEvent) *service.RatingResult
}

// StageHandler runs single stage invocations synchronously.
type StageHandler struct {
	ingest    Ingester
	rooms     RoomProcessor
	amenities AmenityProcessor
	rating    RatingProcessor
}

// NewStageHandler creates a new stage handler.
func NewStageHandler(ingest Ingester, rooms RoomProcessor, amenities AmenityProcessor, rating RatingProcessor) *StageHandler {
	return &StageHandler{
		ingest:    ingest,
		rooms:     rooms,
		amenities: amenities,
		rating:    rating,
	}
}

// IngestRequest lists objects to ingest directly, as an alternative to a
// bucket notification body.
type IngestRequest struct {
	Objects []domain.ObjectRef `json:"objects"`
}

// Ingest handles POST /api/v1/stages/ingest.
// The body is either a bucket notification ({"Records": [...]}) or an
// IngestRequest.
func (h *StageHandler) Ingest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body: " + err.Error()})
		return
	}

	refs, err := decodeIngestBody(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	stats := h.ingest.Ingest(c.Request.Context(), refs)
	c.JSON(http.StatusOK, stats)
}

func decodeIngestBody(body []byte) ([]domain.ObjectRef, error) {
	var probe struct {
		Records json.RawMessage `json:"Records"`
		Objects json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}
	switch {
	case probe.Records != nil:
		return events.DecodeObjectCreated(body)
	case probe.Objects != nil:
		var req IngestRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		return req.Objects, nil
	default:
		return nil, errors.New(`expected "Records" or "objects"`)
	}
}

// Rooms handles POST /api/v1/stages/rooms.
func (h *StageHandler) Rooms(c *gin.Context) {
	var event domain.RoomImagesEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if event.HotelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id is required"})
		return
	}
	c.JSON(http.StatusOK, h.rooms.Process(c.Request.Context(), event))
}

// Amenities handles POST /api/v1/stages/amenities.
func (h *StageHandler) Amenities(c *gin.Context) {
	event, ok := bindHotelEvent(c)
	if !ok {
		return
	}
	res := h.amenities.Process(c.Request.Context(), event)
	c.JSON(statusCode(res.Status), res)
}

// Rating handles POST /api/v1/stages/rating.
func (h *StageHandler) Rating(c *gin.Context) {
	event, ok := bindHotelEvent(c)
	if !ok {
		return
	}
	res := h.rating.Process(c.Request.Context(), event)
	c.JSON(statusCode(res.Status), res)
}

func bindHotelEvent(c *gin.Context) (domain.HotelEvent, bool) {
	var event domain.HotelEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return event, false
	}
	if event.HotelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hotel_id is required"})
		return event, false
	}
	return event, true
}

func statusCode(s service.ResultStatus) int {
	switch s {
	case service.StatusSuccess:
		return http.StatusOK
	case service.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
