package events

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/timmy/hotelsense/internal/domain"
)

// DecodeObjectCreated extracts the object references from an S3 or MinIO
// bucket notification. Records for other event types are ignored and keys
// are URL-decoded.
func DecodeObjectCreated(data []byte) ([]domain.ObjectRef, error) {
	var info notification.Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("invalid bucket notification: %w", err)
	}

	refs := make([]domain.ObjectRef, 0, len(info.Records))
	for _, rec := range info.Records {
		if rec.EventName != "" && !strings.Contains(rec.EventName, "ObjectCreated") {
			continue
		}
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid object key %q: %w", rec.S3.Object.Key, err)
		}
		refs = append(refs, domain.ObjectRef{Bucket: rec.S3.Bucket.Name, Key: key})
	}
	return refs, nil
}
