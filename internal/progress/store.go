package progress

import (
	"context"
	"errors"
	"sync"
)

// ErrCorrupt is returned (wrapped) by stores whose persisted value for a
// course cannot be decoded. Engine.Load treats it as an empty set.
var ErrCorrupt = errors.New("progress: corrupt stored value")

// Store persists the completed lesson ids of each course.
//
// Read returns (nil, nil) when nothing is stored for courseID. Write replaces
// the stored value with lessonIDs. Within one process, Read after a completed
// Write must return that write's value.
type Store interface {
	Read(ctx context.Context, courseID string) ([]string, error)
	Write(ctx context.Context, courseID string, lessonIDs []string) error
}

// MemoryStore is a Store kept in process memory.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]string)}
}

// Read returns a copy of the stored ids, or nil when absent.
func (s *MemoryStore) Read(_ context.Context, courseID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.data[courseID]
	if !ok {
		return nil, nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Write stores a copy of lessonIDs.
func (s *MemoryStore) Write(_ context.Context, courseID string, lessonIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[courseID] = append([]string{}, lessonIDs...)
	return nil
}
