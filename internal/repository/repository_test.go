package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/timmy/hotelsense/internal/config"
	"github.com/timmy/hotelsense/internal/domain"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestImageRepository_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewImageRepository(openTestDB(t))

	img := &domain.Image{HotelID: "h1", ImageID: "a.jpg", ImageURL: "https://b.s3.amazonaws.com/hotels/h1/a.jpg"}
	created, err := repo.Create(ctx, img)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	created, err = repo.Create(ctx, &domain.Image{HotelID: "h1", ImageID: "a.jpg", ImageURL: "other"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("duplicate image was inserted")
	}

	images, err := repo.ListByHotel(ctx, "h1")
	if err != nil {
		t.Fatalf("ListByHotel: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}

	exists, err := repo.Exists(ctx, "h1", "a.jpg")
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v", exists, err)
	}
}

func TestImageRepository_SetFields(t *testing.T) {
	ctx := context.Background()
	repo := NewImageRepository(openTestDB(t))

	if _, err := repo.Create(ctx, &domain.Image{HotelID: "h1", ImageID: "a.jpg", ImageURL: "u"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetRoomID(ctx, "h1", "a.jpg", "room-101"); err != nil {
		t.Fatalf("SetRoomID: %v", err)
	}
	if err := repo.SetRating(ctx, "h1", "a.jpg", 72); err != nil {
		t.Fatalf("SetRating: %v", err)
	}

	img, err := repo.Get(ctx, "h1", "a.jpg")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if img.RoomID == nil || *img.RoomID != "room-101" {
		t.Errorf("room_id = %v", img.RoomID)
	}
	if img.Rating == nil || *img.Rating != 72 {
		t.Errorf("rating = %v", img.Rating)
	}

	if _, err := repo.Get(ctx, "h1", "missing.jpg"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.SetRating(ctx, "h1", "missing.jpg", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetRating missing: expected ErrNotFound, got %v", err)
	}
}

func TestImageContextRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewImageContextRepository(openTestDB(t))

	for _, ic := range []domain.ImageContext{
		{HotelID: "h1", ImageID: "a.jpg", Category: domain.CategoryRooms},
		{HotelID: "h1", ImageID: "b.jpg", Category: domain.CategoryExterior},
		{HotelID: "h1", ImageID: "c.jpg", Category: domain.CategoryRooms},
		{HotelID: "h2", ImageID: "d.jpg", Category: domain.CategoryRooms},
	} {
		ic := ic
		if _, err := repo.Create(ctx, &ic); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	created, err := repo.Create(ctx, &domain.ImageContext{HotelID: "h1", ImageID: "a.jpg", Category: domain.CategoryRooms})
	if err != nil || created {
		t.Fatalf("duplicate context: created=%v err=%v", created, err)
	}

	ids, err := repo.ListImageIDs(ctx, "h1", domain.CategoryRooms)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a.jpg" || ids[1] != "c.jpg" {
		t.Errorf("ListImageIDs = %v", ids)
	}

	ok, err := repo.Exists(ctx, "h1", "b.jpg", domain.CategoryRooms)
	if err != nil || ok {
		t.Errorf("Exists(b.jpg, rooms) = %v, %v", ok, err)
	}
}

func TestRoomRepository_DedupesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository(openTestDB(t))

	now := time.Now().UTC()
	created, err := repo.Create(ctx, &domain.Room{HotelID: "h1", ImageID: "a.jpg", RoomID: "101", RoomType: "suite", CreatedAt: now})
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	created, err = repo.Create(ctx, &domain.Room{HotelID: "h1", ImageID: "b.jpg", RoomID: "101", RoomType: "SUITE", CreatedAt: now})
	if err != nil || created {
		t.Fatalf("case variant: created=%v err=%v", created, err)
	}
	if _, err := repo.Create(ctx, &domain.Room{HotelID: "h1", ImageID: "c.jpg", RoomID: "101", RoomType: "double_room", CreatedAt: now}); err != nil {
		t.Fatal(err)
	}

	rooms, err := repo.ListByHotel(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
}

func TestAmenityRepository_HotelWideMatchesNullAndEmpty(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewAmenityRepository(db)

	// legacy row without a room_id
	if _, err := repo.Create(ctx, &domain.Amenity{HotelID: "h1", AmenityID: "x1", AmenityName: "swimming-pool"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, &domain.Amenity{HotelID: "h1", AmenityID: "x2", AmenityName: "free-parking", RoomID: strPtr("")}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, &domain.Amenity{HotelID: "h1", AmenityID: "x3", AmenityName: "towels", RoomID: strPtr("101")}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		want bool
	}{
		{"swimming-pool", true},
		{"free-parking", true},
		{"towels", false},
		{"spa-services", false},
	}
	for _, tc := range cases {
		got, err := repo.ExistsHotelWide(ctx, "h1", tc.name)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("ExistsHotelWide(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}

	ok, err := repo.ExistsForRoom(ctx, "h1", "101", "towels")
	if err != nil || !ok {
		t.Errorf("ExistsForRoom(101, towels) = %v, %v", ok, err)
	}
	created, err := repo.Create(ctx, &domain.Amenity{HotelID: "h1", AmenityID: "x4", AmenityName: "towels", RoomID: strPtr("101")})
	if err != nil || created {
		t.Errorf("duplicate room amenity: created=%v err=%v", created, err)
	}
}

func TestHotelRepository_UpsertMainImage(t *testing.T) {
	ctx := context.Background()
	repo := NewHotelRepository(openTestDB(t))

	if _, err := repo.Get(ctx, "h1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpsertMainImage(ctx, "h1", domain.MainImage{ImageID: "a.jpg", ImageURL: "u1", Rating: 40}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertMainImage(ctx, "h1", domain.MainImage{ImageID: "b.jpg", ImageURL: "u2", Rating: 85}); err != nil {
		t.Fatal(err)
	}

	h, err := repo.Get(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if h.MainImageID == nil || *h.MainImageID != "b.jpg" {
		t.Errorf("main_image_id = %v", h.MainImageID)
	}
	if h.MainImageRating == nil || *h.MainImageRating != 85 {
		t.Errorf("main_image_rating = %v", h.MainImageRating)
	}
}
