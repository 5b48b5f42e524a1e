// Package catalog holds the fixed lookup tables the pipeline classifies against.
package catalog

import (
	"strings"

	"github.com/timmy/hotelsense/internal/domain"
)

var categories = map[domain.ImageCategory]struct{}{
	domain.CategoryExterior:  {},
	domain.CategoryInterior:  {},
	domain.CategoryFoods:     {},
	domain.CategoryLeisure:   {},
	domain.CategoryParking:   {},
	domain.CategoryRooms:     {},
	domain.CategoryBathrooms: {},
}

// RoomTypes lists every room type the classifier may return, in prompt order.
var RoomTypes = []string{
	"single_room",
	"double_room",
	"twin_room",
	"triple_room",
	"quad_room",
	"studio_room",
	"suite",
	"junior_suite",
	"executive_room",
	"presidential_suite",
	"family_room",
	"connecting_rooms",
	"adjoining_rooms",
	"accessible_room",
	"smoking_room",
	"pet-friendly_room",
	"themed_room",
}

var roomTypeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(RoomTypes))
	for _, t := range RoomTypes {
		m[t] = struct{}{}
	}
	return m
}()

// Hotel-wide amenities. Never attached to a room.
var generalAmenities = map[string]struct{}{
	"24-hour-front-desk": {},
	"free-parking":       {},
	"swimming-pool":      {},
	"fitness-center":     {},
	"spa-services":       {},
}

// Attached to every room regardless of type.
var commonAmenities = map[string]struct{}{
	"free-wi-fi":               {},
	"air-conditioning":         {},
	"towels":                   {},
	"complimentary-toiletries": {},
}

var upscaleRooms = []string{"deluxe-room", "executive-suite", "penthouse"}

// Premium amenities attach only to the listed room types.
var premiumAmenities = map[string]map[string]struct{}{
	"mini-fridge":        setOf(upscaleRooms...),
	"coffee/tea-maker":   setOf(upscaleRooms...),
	"flat-screen-tv":     setOf(upscaleRooms...),
	"hairdryer":          setOf(upscaleRooms...),
	"daily-housekeeping": setOf(append([]string{"standard-room"}, upscaleRooms...)...),
}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

func IsCategory(c domain.ImageCategory) bool {
	_, ok := categories[c]
	return ok
}

// Categories returns the category labels in a stable order.
func Categories() []domain.ImageCategory {
	return []domain.ImageCategory{
		domain.CategoryExterior,
		domain.CategoryInterior,
		domain.CategoryFoods,
		domain.CategoryLeisure,
		domain.CategoryParking,
		domain.CategoryRooms,
		domain.CategoryBathrooms,
	}
}

func IsRoomType(t string) bool {
	_, ok := roomTypeSet[t]
	return ok
}

// IsGeneralAmenity reports whether name is a hotel-wide amenity.
// name must already be lowercase.
func IsGeneralAmenity(name string) bool {
	_, ok := generalAmenities[name]
	return ok
}

// ShouldAssociate reports whether a room-scoped amenity belongs on a room of
// the given type. Amenities found in neither the common nor the premium
// table never associate.
func ShouldAssociate(amenity, roomType string) bool {
	if _, ok := commonAmenities[amenity]; ok {
		return true
	}
	allowed, ok := premiumAmenities[amenity]
	if !ok {
		return false
	}
	_, ok = allowed[roomType]
	return ok
}

// RoomSlug turns a room type into the fallback room id, e.g.
// "Junior_Suite" -> "junior-suite".
func RoomSlug(roomType string) string {
	return strings.ReplaceAll(strings.ToLower(roomType), "_", "-")
}
