package progress

import (
	"fmt"
	"sync"
)

// LocalStore is the offline mirror. Keys follow the web shell's localStorage
// scheme so both implementations stay interchangeable.
type LocalStore interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

func PositionKey(courseID, activityID string) string {
	return fmt.Sprintf("course_video_pos_%s_%s", courseID, activityID)
}

func CompletedKey(courseID string) string {
	return fmt.Sprintf("course_completed_%s", courseID)
}

// MemoryStore is the in-process mirror used in tests and when no mirror file
// is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
