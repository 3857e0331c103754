package progress

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/dfarias/aulatrack/internal/curriculum"
)

// CompletionSet tracks which activities are complete, mirrored to the local
// store. Once an identifier enters the set it is only ever removed by an
// explicit toggle; reconciliation and remote failures never shrink it.
type CompletionSet struct {
	store    LocalStore
	courseID string

	mu  sync.Mutex
	ids map[string]struct{}
}

func NewCompletionSet(store LocalStore, courseID string) *CompletionSet {
	s := &CompletionSet{
		store:    store,
		courseID: courseID,
		ids:      make(map[string]struct{}),
	}

	if raw, ok := store.Get(CompletedKey(courseID)); ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			slog.Warn("Discarding malformed completion mirror", "course", courseID, "err", err)
		}
		for _, id := range ids {
			s.ids[id] = struct{}{}
		}
	}

	return s
}

func (s *CompletionSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *CompletionSet) Add(id string) {
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.persistLocked()
	s.mu.Unlock()
}

// Remove is only called from the explicit mark-incomplete toggle.
func (s *CompletionSet) Remove(id string) {
	s.mu.Lock()
	delete(s.ids, id)
	s.persistLocked()
	s.mu.Unlock()
}

// Reconcile merges remotely recorded completions into the set. The merge
// only adds: a remote record missing an id the mirror already has does not
// un-complete it.
func (s *CompletionSet) Reconcile(progress map[string]curriculum.Progress) {
	s.mu.Lock()
	changed := false
	for id, p := range progress {
		if p.Completed {
			if _, ok := s.ids[id]; !ok {
				s.ids[id] = struct{}{}
				changed = true
			}
		}
	}
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()
}

func (s *CompletionSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *CompletionSet) persistLocked() {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := s.store.Set(CompletedKey(s.courseID), string(data)); err != nil {
		slog.Warn("Unable to persist completion mirror", "course", s.courseID, "err", err)
	}
}
