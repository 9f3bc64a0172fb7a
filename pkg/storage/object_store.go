package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

// ErrStorage marks failures talking to the object store.
var ErrStorage = errors.New("object storage error")

var errBucketRequired = errors.New("bucket required")

// Presence is the outcome of an existence check. Unknown means the store could not
// answer and must not be read as Absent.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresencePresent
	PresenceAbsent
)

func (p Presence) String() string {
	switch p {
	case PresencePresent:
		return "present"
	case PresenceAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// ObjectStore provides access to object storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (Presence, error)
	Delete(ctx context.Context, key string) error
	// PublicURL derives the public URL of key. The last path segment is the
	// escaped last segment of key.
	PublicURL(key string) string
}

func joinPublicURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

func endpointBaseURL(endpoint, bucket string, useSSL bool) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.Contains(endpoint, "://") {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		endpoint = scheme + "://" + endpoint
	}
	return endpoint + "/" + bucket
}
