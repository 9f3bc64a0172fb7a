package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in-process. Suitable for local development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	objects    map[string]memoryObject
	publicBase string
}

// NewMemoryStore initializes an empty in-memory store whose URLs start with publicBase.
func NewMemoryStore(publicBase string) *MemoryStore {
	if publicBase == "" {
		publicBase = "http://localhost/blobs"
	}
	return &MemoryStore{
		objects:    make(map[string]memoryObject),
		publicBase: publicBase,
	}
}

// Put stores a copy of r's contents.
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: put object: %w", ErrStorage, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("%w: put object: %w", ErrStorage, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

// Exists reports whether key is stored.
func (m *MemoryStore) Exists(ctx context.Context, key string) (Presence, error) {
	if err := ctx.Err(); err != nil {
		return PresenceUnknown, fmt.Errorf("%w: stat object: %w", ErrStorage, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; ok {
		return PresencePresent, nil
	}
	return PresenceAbsent, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: delete object: %w", ErrStorage, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// PublicURL returns the public URL of an object.
func (m *MemoryStore) PublicURL(key string) string {
	return joinPublicURL(m.publicBase, key)
}

// Object returns the stored bytes and content type for key.
func (m *MemoryStore) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ ObjectStore = (*MemoryStore)(nil)
