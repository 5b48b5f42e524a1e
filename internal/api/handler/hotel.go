package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hotelsense/internal/domain"
)

// HotelHandler serves the enrichment results for a hotel.
type HotelHandler struct {
	hotels    domain.HotelRepository
	images    domain.ImageRepository
	rooms     domain.RoomRepository
	amenities domain.AmenityRepository
}

// NewHotelHandler creates a new hotel handler.
// Parameters:
//   - hotels, images, rooms, amenities: document store repositories.
// Returns:
//   - *HotelHandler: initialized handler.
func NewHotelHandler(
	hotels domain.HotelRepository,
	images domain.ImageRepository,
	rooms domain.RoomRepository,
	amenities domain.AmenityRepository,
) *HotelHandler {
	return &HotelHandler{
		hotels:    hotels,
		images:    images,
		rooms:     rooms,
		amenities: amenities,
	}
}

// HotelResponse is the enriched view of one hotel.
type HotelResponse struct {
	HotelID   string           `json:"hotel_id"`
	MainImage *MainImageView   `json:"main_image"`
	Rooms     []domain.Room    `json:"rooms"`
	Amenities []domain.Amenity `json:"amenities"`
}

type MainImageView struct {
	ImageID  string `json:"image_id"`
	ImageURL string `json:"image_url"`
	Rating   int    `json:"rating"`
}

// GetHotel handles GET /api/v1/hotels/:hotel_id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *HotelHandler) GetHotel(c *gin.Context) {
	ctx := c.Request.Context()
	hotelID := c.Param("hotel_id")

	resp := HotelResponse{HotelID: hotelID, Rooms: []domain.Room{}, Amenities: []domain.Amenity{}}

	hotel, err := h.hotels.Get(ctx, hotelID)
	switch {
	case err == nil:
		if hotel.MainImageID != nil && hotel.MainImageURL != nil {
			view := &MainImageView{ImageID: *hotel.MainImageID, ImageURL: *hotel.MainImageURL}
			if hotel.MainImageRating != nil {
				view.Rating = *hotel.MainImageRating
			}
			resp.MainImage = view
		}
	case !errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get hotel: " + err.Error()})
		return
	}

	rooms, err := h.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms: " + err.Error()})
		return
	}
	amenities, err := h.amenities.ListByHotel(ctx, hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list amenities: " + err.Error()})
		return
	}

	if hotel == nil && len(rooms) == 0 && len(amenities) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		return
	}
	if rooms != nil {
		resp.Rooms = rooms
	}
	if amenities != nil {
		resp.Amenities = amenities
	}
	c.JSON(http.StatusOK, resp)
}

// ListImages handles GET /api/v1/hotels/:hotel_id/images.
func (h *HotelHandler) ListImages(c *gin.Context) {
	hotelID := c.Param("hotel_id")
	images, err := h.images.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list images: " + err.Error()})
		return
	}
	if images == nil {
		images = []domain.Image{}
	}
	c.JSON(http.StatusOK, gin.H{
		"hotel_id": hotelID,
		"images":   images,
		"total":    len(images),
	})
}
