package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed DocumentStore used by tests and local
// development. It assigns uuid ids and resolves ServerTimestamp sentinels
// with its own clock at write time.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	now         func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source; tests use it to control ordering.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Query returns all documents in the collection whose field equals the value.
func (s *MemoryStore) Query(ctx context.Context, collection, field string, equals any) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for id, data := range s.collections[collection] {
		if data[field] == equals {
			out = append(out, Document{ID: id, Data: copyMap(data)})
		}
	}
	return out, nil
}

// Get returns the document with the given id, or (nil, nil) when absent.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &Document{ID: id, Data: copyMap(data)}, nil
}

// Add persists a new document and returns its assigned id.
func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	id := uuid.NewString()
	s.collections[collection][id] = s.resolveTimestamps(copyMap(data))
	return id, nil
}

// Update merges the partial field map into an existing document.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range s.resolveTimestamps(copyMap(partial)) {
		data[k] = v
	}
	return nil
}

// UpdateIf merges the partial field map only when the guard field currently
// equals the given value.
func (s *MemoryStore) UpdateIf(ctx context.Context, collection, id, field string, equals any, partial map[string]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return false, ErrNotFound
	}
	if data[field] != equals {
		return false, nil
	}
	for k, v := range s.resolveTimestamps(copyMap(partial)) {
		data[k] = v
	}
	return true, nil
}

// Delete removes the document with the given id.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) resolveTimestamps(data map[string]any) map[string]any {
	for k, v := range data {
		if _, ok := v.(serverTimestamp); ok {
			data[k] = s.now()
		}
	}
	return data
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyMap(nested)
			continue
		}
		if list, ok := v.([]any); ok {
			cp := make([]any, len(list))
			for i, el := range list {
				if m, ok := el.(map[string]any); ok {
					cp[i] = copyMap(m)
				} else {
					cp[i] = el
				}
			}
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}
