package progress

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/dfarias/aulatrack/internal/curriculum"
)

// Store is the persistence gateway the session controller talks to. Reads
// prefer the remote backend and degrade to the local mirror; position writes
// update the mirror after remote success and fall back to a local-only write
// when the remote is unreachable. Background failures are never surfaced.
type Store struct {
	backend Backend
	local   LocalStore

	mu sync.Mutex
	// highest seconds confirmed remotely per position key; the mirror never
	// regresses below this
	lastRemote map[string]int
}

func NewStore(backend Backend, local LocalStore) *Store {
	if local == nil {
		local = NewMemoryStore()
	}

	return &Store{
		backend:    backend,
		local:      local,
		lastRemote: make(map[string]int),
	}
}

// RemotePosition reads the authoritative stored position. Errors mean the
// remote is unreachable, not that no position exists.
func (s *Store) RemotePosition(ctx context.Context, courseID, activityID, enrollmentID string) (Position, error) {
	if s.backend == nil {
		return Position{}, nil
	}

	return s.backend.Position(ctx, courseID, activityID, enrollmentID)
}

// LocalPosition reads the mirror.
func (s *Store) LocalPosition(courseID, activityID string) Position {
	raw, ok := s.local.Get(PositionKey(courseID, activityID))
	if !ok {
		return Position{}
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return Position{}
	}

	return Position{Seconds: seconds, Exists: true}
}

// Position resolves remote first, mirror on failure. Never returns an error:
// an unreachable store reads as "no position".
func (s *Store) Position(ctx context.Context, courseID, activityID, enrollmentID string) Position {
	pos, err := s.RemotePosition(ctx, courseID, activityID, enrollmentID)
	if err == nil {
		return pos
	}

	slog.Debug("Remote position lookup failed, using local mirror", "activity", activityID, "err", err)
	return s.LocalPosition(courseID, activityID)
}

// SavePosition is fire-and-forget from the caller's perspective. The mirror
// keeps the highest seconds value observed, protecting against a forced and
// a periodic save racing.
func (s *Store) SavePosition(ctx context.Context, courseID, moduleID, activityID string, seconds int, enrollmentID string) {
	if seconds < 0 {
		return
	}

	key := PositionKey(courseID, activityID)
	if s.backend != nil {
		if err := s.backend.SavePosition(ctx, courseID, moduleID, activityID, seconds, enrollmentID); err == nil {
			s.mu.Lock()
			if seconds > s.lastRemote[key] {
				s.lastRemote[key] = seconds
			}
			s.mu.Unlock()
		} else {
			slog.Debug("Remote position save failed, keeping local mirror only", "activity", activityID, "err", err)
		}
	}

	s.writeMirror(key, seconds)
}

func (s *Store) writeMirror(key string, seconds int) {
	s.mu.Lock()
	if floor := s.lastRemote[key]; seconds < floor {
		seconds = floor
	}
	if raw, ok := s.local.Get(key); ok {
		if existing, err := strconv.Atoi(raw); err == nil && existing > seconds {
			seconds = existing
		}
	}
	err := s.local.Set(key, strconv.Itoa(seconds))
	s.mu.Unlock()

	if err != nil {
		slog.Warn("Unable to write position mirror", "key", key, "err", err)
	}
}

// ToggleCompletion writes through to the remote store. The error is returned
// so user-initiated toggles can surface it; callers on the automatic path
// log and move on.
func (s *Store) ToggleCompletion(ctx context.Context, courseID, moduleID, activityID string, completed bool, seconds int, enrollmentID string) error {
	if completed && seconds > 0 {
		s.writeMirror(PositionKey(courseID, activityID), seconds)
	}

	if s.backend == nil {
		return nil
	}

	return s.backend.ToggleCompletion(ctx, courseID, moduleID, activityID, completed, seconds, enrollmentID)
}

// Curriculum fetches the reconciliation source of truth.
func (s *Store) Curriculum(ctx context.Context, enrollmentID string) ([]curriculum.Module, map[string]curriculum.Progress, error) {
	if s.backend == nil {
		return nil, map[string]curriculum.Progress{}, nil
	}

	return s.backend.Curriculum(ctx, enrollmentID)
}
