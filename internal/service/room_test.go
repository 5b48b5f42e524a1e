package service

import (
	"context"
	"errors"
	"testing"

	"github.com/timmy/hotelsense/internal/domain"
)

type roomFixture struct {
	images     *memImages
	rooms      *memRooms
	store      *memStore
	classifier *fakeClassifier
	publisher  *fakePublisher
	svc        *RoomService
}

func newRoomFixture() *roomFixture {
	f := &roomFixture{
		images: &memImages{},
		rooms:  &memRooms{},
		store:  newMemStore(),
		classifier: &fakeClassifier{
			rooms: map[string]domain.RoomLabel{},
			fail:  map[string]bool{},
		},
		publisher: &fakePublisher{},
	}
	f.svc = NewRoomService(f.images, f.rooms, f.store, f.classifier, f.publisher, "amenities-topic")
	return f
}

// stored registers an image under key and returns its image id.
func (f *roomFixture) stored(hotelID, imageID, key string, label domain.RoomLabel) string {
	url := f.store.put(testBucket, key)
	f.images.images = append(f.images.images, domain.Image{HotelID: hotelID, ImageID: imageID, ImageURL: url})
	f.classifier.rooms[key] = label
	return imageID
}

func roomIDOf(t *testing.T, images *memImages, hotelID, imageID string) string {
	t.Helper()
	img, err := images.Get(context.Background(), hotelID, imageID)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", imageID, err)
	}
	if img.RoomID == nil {
		return ""
	}
	return *img.RoomID
}

func TestRoomProcessDedupesByDirectoryAndType(t *testing.T) {
	f := newRoomFixture()
	event := domain.RoomImagesEvent{HotelID: "h1", RoomImageIDs: []string{
		f.stored("h1", "a.jpg", "hotels/h1/suite-7/a.jpg", domain.RoomLabel{Name: "Ocean Suite", Type: "suite"}),
		f.stored("h1", "b.jpg", "hotels/h1/suite-7/b.jpg", domain.RoomLabel{Name: "Ocean Suite", Type: "SUITE"}),
	}}

	stats := f.svc.Process(context.Background(), event)

	if stats.RoomsCreated != 1 {
		t.Errorf("RoomsCreated = %d, want 1", stats.RoomsCreated)
	}
	if len(f.rooms.rooms) != 1 {
		t.Fatalf("rooms = %d, want 1", len(f.rooms.rooms))
	}
	room := f.rooms.rooms[0]
	if room.RoomID != "suite-7" || room.ImageID != "a.jpg" || room.RoomName != "Ocean Suite" {
		t.Errorf("room = %+v", room)
	}
	for _, id := range []string{"a.jpg", "b.jpg"} {
		if got := roomIDOf(t, f.images, "h1", id); got != "suite-7" {
			t.Errorf("%s room_id = %q, want suite-7", id, got)
		}
	}
}

func TestRoomProcessFallsBackToTypeSlug(t *testing.T) {
	f := newRoomFixture()
	event := domain.RoomImagesEvent{HotelID: "h1", RoomImageIDs: []string{
		f.stored("h1", "c.jpg", "hotels/h1/c.jpg", domain.RoomLabel{Name: "Garden", Type: "junior_suite"}),
	}}

	f.svc.Process(context.Background(), event)

	if got := roomIDOf(t, f.images, "h1", "c.jpg"); got != "junior-suite" {
		t.Errorf("room_id = %q, want junior-suite", got)
	}
	if len(f.rooms.rooms) != 1 || f.rooms.rooms[0].RoomID != "junior-suite" {
		t.Errorf("rooms = %+v", f.rooms.rooms)
	}
}

func TestRoomProcessSkipsExistingRooms(t *testing.T) {
	f := newRoomFixture()
	f.rooms.rooms = append(f.rooms.rooms, domain.Room{HotelID: "h1", RoomID: "suite-7", RoomType: "Suite"})
	event := domain.RoomImagesEvent{HotelID: "h1", RoomImageIDs: []string{
		f.stored("h1", "a.jpg", "hotels/h1/suite-7/a.jpg", domain.RoomLabel{Type: "suite"}),
	}}

	stats := f.svc.Process(context.Background(), event)

	if stats.RoomsCreated != 0 || len(f.rooms.rooms) != 1 {
		t.Errorf("created %d rooms, have %d; want 0 and 1", stats.RoomsCreated, len(f.rooms.rooms))
	}
	if got := roomIDOf(t, f.images, "h1", "a.jpg"); got != "suite-7" {
		t.Errorf("room_id = %q, want suite-7", got)
	}
}

func TestRoomProcessToleratesMissingAndFailingImages(t *testing.T) {
	f := newRoomFixture()
	event := domain.RoomImagesEvent{HotelID: "h1", RoomImageIDs: []string{
		"unknown.jpg",
		f.stored("h1", "bad.jpg", "hotels/h1/r1/bad.jpg", domain.RoomLabel{Type: "suite"}),
		f.stored("h1", "ok.jpg", "hotels/h1/r2/ok.jpg", domain.RoomLabel{Type: "twin_room"}),
	}}
	f.classifier.fail["hotels/h1/r1/bad.jpg"] = true

	stats := f.svc.Process(context.Background(), event)

	if stats.Missing != 1 || stats.Failed != 1 || stats.RoomsCreated != 1 {
		t.Errorf("stats = %+v, want 1 missing, 1 failed, 1 created", stats)
	}
	if got := roomIDOf(t, f.images, "h1", "bad.jpg"); got != "" {
		t.Errorf("failed image room_id = %q, want unset", got)
	}
	if !stats.Notified {
		t.Error("amenity stage was not notified")
	}
}

func TestRoomProcessCountsLookupErrorsAsFailed(t *testing.T) {
	f := newRoomFixture()
	event := domain.RoomImagesEvent{HotelID: "h1", RoomImageIDs: []string{
		f.stored("h1", "a.jpg", "hotels/h1/r1/a.jpg", domain.RoomLabel{Type: "suite"}),
	}}
	f.images.getErr = errors.New("connection refused")

	stats := f.svc.Process(context.Background(), event)

	if stats.Failed != 1 || stats.Missing != 0 || stats.RoomsCreated != 0 {
		t.Errorf("stats = %+v, want 1 failed, 0 missing, 0 created", stats)
	}
	if n := f.classifier.callCount("room"); n != 0 {
		t.Errorf("classifier called %d times, want 0", n)
	}
}

func TestRoomProcessAlwaysNotifies(t *testing.T) {
	f := newRoomFixture()

	stats := f.svc.Process(context.Background(), domain.RoomImagesEvent{HotelID: "h9"})

	if !stats.Notified || len(f.publisher.events) != 1 {
		t.Fatalf("events = %+v, want one", f.publisher.events)
	}
	ev := f.publisher.events[0]
	if ev.topic != "amenities-topic" {
		t.Errorf("topic = %q", ev.topic)
	}
	if ev.payload != (domain.HotelEvent{HotelID: "h9"}) {
		t.Errorf("payload = %+v", ev.payload)
	}
}

func TestDeriveRoomID(t *testing.T) {
	store := newMemStore()
	tests := []struct {
		name     string
		url      string
		roomType string
		want     string
	}{
		{name: "room directory", url: "mem://b/hotels/h1/deluxe-12/a.jpg", roomType: "suite", want: "deluxe-12"},
		{name: "nested directory", url: "mem://b/hotels/h1/floor-2/r5/a.jpg", roomType: "suite", want: "r5"},
		{name: "flat key", url: "mem://b/hotels/h1/a.jpg", roomType: "Junior_Suite", want: "junior-suite"},
		{name: "parent is hotel", url: "mem://b/x/h1/h1/a.jpg", roomType: "twin_room", want: "twin-room"},
		{name: "empty parent", url: "mem://b/hotels/h1//a.jpg", roomType: "suite", want: "suite"},
		{name: "unparseable url", url: "https://elsewhere/a.jpg", roomType: "family_room", want: "family-room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveRoomID(store, tt.url, "h1", tt.roomType); got != tt.want {
				t.Errorf("deriveRoomID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
