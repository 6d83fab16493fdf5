package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is returned by RecordingStore when a failure is configured.
var ErrInjected = errors.New("testutil: injected store failure")

// Write is one recorded RecordingStore.Write call.
type Write struct {
	CourseID  string
	LessonIDs []string
}

// RecordingStore is an in-memory progress store that records every write in
// call order and can be told to fail reads or writes.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingStore struct {
	mu        sync.Mutex
	data      map[string][]string
	writes    []Write
	failRead  bool
	failWrite bool
	raw       map[string]error
}

// NewRecordingStore creates an empty store.
func NewRecordingStore() *RecordingStore {
	return &RecordingStore{
		data: make(map[string][]string),
		raw:  make(map[string]error),
	}
}

// Seed sets the stored ids for a course without recording a write.
func (s *RecordingStore) Seed(courseID string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[courseID] = append([]string(nil), ids...)
}

// SeedError makes Read for courseID return err (e.g. a corrupt value).
func (s *RecordingStore) SeedError(courseID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[courseID] = err
}

// FailReads toggles read failures.
func (s *RecordingStore) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = fail
}

// FailWrites toggles write failures. Failed writes are still recorded.
func (s *RecordingStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = fail
}

// Read returns a copy of the stored ids, or nil when absent.
func (s *RecordingStore) Read(_ context.Context, courseID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead {
		return nil, ErrInjected
	}
	if err := s.raw[courseID]; err != nil {
		return nil, err
	}
	ids, ok := s.data[courseID]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), ids...), nil
}

// Write records the call and stores a copy unless failures are enabled.
func (s *RecordingStore) Write(_ context.Context, courseID string, lessonIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := append([]string(nil), lessonIDs...)
	s.writes = append(s.writes, Write{CourseID: courseID, LessonIDs: snapshot})
	if s.failWrite {
		return ErrInjected
	}
	s.data[courseID] = snapshot
	return nil
}

// Writes returns all recorded writes in call order.
func (s *RecordingStore) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Write, len(s.writes))
	copy(out, s.writes)
	return out
}

// Stored returns the current stored ids for a course.
func (s *RecordingStore) Stored(courseID string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.data[courseID]
	return append([]string(nil), ids...), ok
}
