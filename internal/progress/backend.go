package progress

import (
	"context"

	"github.com/dfarias/aulatrack/internal/curriculum"
)

// Position is the stored playhead for one activity.
type Position struct {
	Seconds int
	Exists  bool
}

// Backend is the remote progress store of the course platform. Every method
// can fail with a transient network error; callers degrade to the local
// mirror instead of surfacing background failures.
type Backend interface {
	Position(ctx context.Context, courseID, activityID, enrollmentID string) (Position, error)

	SavePosition(ctx context.Context, courseID, moduleID, activityID string, seconds int, enrollmentID string) error

	// ToggleCompletion is idempotent: repeating a call with the same
	// arguments leaves the same persisted state.
	ToggleCompletion(ctx context.Context, courseID, moduleID, activityID string, completed bool, seconds int, enrollmentID string) error

	// Curriculum is the reconciliation source of truth on initial load:
	// the module tree with every activity annotated with its progress.
	Curriculum(ctx context.Context, enrollmentID string) ([]curriculum.Module, map[string]curriculum.Progress, error)
}
