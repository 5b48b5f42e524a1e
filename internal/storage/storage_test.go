package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseS3URL(t *testing.T) {
	cases := []struct {
		url        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"https://photos.s3.amazonaws.com/hotels/h1/a.jpg", "photos", "hotels/h1/a.jpg", false},
		{"https://photos.s3.amazonaws.com/hotels/h1/room-101/b.png", "photos", "hotels/h1/room-101/b.png", false},
		{"https://example.com/hotels/h1/a.jpg", "", "", true},
		{"https://photos.s3.amazonaws.com/", "", "", true},
		{"://bad", "", "", true},
	}
	for _, tc := range cases {
		bucket, key, err := parseS3URL(tc.url)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseS3URL(%q): expected error", tc.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseS3URL(%q): %v", tc.url, err)
			continue
		}
		if bucket != tc.wantBucket || key != tc.wantKey {
			t.Errorf("parseS3URL(%q) = (%q, %q), want (%q, %q)", tc.url, bucket, key, tc.wantBucket, tc.wantKey)
		}
	}
}

func TestS3Storage_URLRoundTrip(t *testing.T) {
	s := &S3Storage{}
	u := s.URL("photos", "hotels/h1/a.jpg")
	if u != "https://photos.s3.amazonaws.com/hotels/h1/a.jpg" {
		t.Fatalf("URL = %q", u)
	}
	bucket, key, err := s.ParseURL(u)
	if err != nil || bucket != "photos" || key != "hotels/h1/a.jpg" {
		t.Fatalf("ParseURL = (%q, %q, %v)", bucket, key, err)
	}
}

var awkwardKeys = []string{
	"hotels/h1/r1/50%off.jpg",
	"hotels/h1/r1/lobby#2.jpg",
	"hotels/h1/r1/a?b.jpg",
	"hotels/h1/r1/caf%C3%A9.jpg",
	"hotels/h1/r1/café.jpg",
	"lobby view(1).jpg",
}

func TestS3Storage_URLRoundTripEscapedKeys(t *testing.T) {
	s := &S3Storage{}
	for _, want := range awkwardKeys {
		t.Run(want, func(t *testing.T) {
			bucket, key, err := s.ParseURL(s.URL("photos", want))
			if err != nil {
				t.Fatalf("ParseURL: %v", err)
			}
			if bucket != "photos" || key != want {
				t.Errorf("ParseURL = (%q, %q), want (photos, %q)", bucket, key, want)
			}
		})
	}
}

func TestS3Storage_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photos/hotels/h1/a.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("jpeg-bytes"))
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
		}
	}))
	defer srv.Close()

	s, err := NewS3Storage(context.Background(), &S3Config{
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}

	data, err := s.Get(context.Background(), "photos", "hotels/h1/a.jpg")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("Get = %q", data)
	}

	_, err = s.Get(context.Background(), "photos", "hotels/h1/missing.jpg")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestMinIOStorage_URL(t *testing.T) {
	s, err := NewMinIOStorage(&MinIOConfig{Endpoint: "http://localhost:9000/", AccessKey: "k", SecretKey: "s"})
	if err != nil {
		t.Fatalf("NewMinIOStorage: %v", err)
	}
	u := s.URL("photos", "hotels/h1/a.jpg")
	if u != "http://localhost:9000/photos/hotels/h1/a.jpg" {
		t.Fatalf("URL = %q", u)
	}
	bucket, key, err := s.ParseURL(u)
	if err != nil || bucket != "photos" || key != "hotels/h1/a.jpg" {
		t.Fatalf("ParseURL = (%q, %q, %v)", bucket, key, err)
	}
	if _, _, err := s.ParseURL("http://other:9000/photos/a.jpg"); err == nil {
		t.Error("expected error for foreign host")
	}
	if _, _, err := s.ParseURL("http://localhost:9000/photos"); err == nil {
		t.Error("expected error for missing key")
	}
	for _, want := range awkwardKeys {
		bucket, key, err := s.ParseURL(s.URL("photos", want))
		if err != nil || bucket != "photos" || key != want {
			t.Errorf("round trip %q = (%q, %q, %v)", want, bucket, key, err)
		}
	}
}
