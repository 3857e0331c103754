package curriculum

import "strings"

// Intent records whether a selection came from policy (initial load,
// auto-advance, search reset) or from a direct user action. User intent
// suspends the auto-skip rule so a completed activity can be reviewed.
type Intent int

const (
	IntentAuto Intent = iota
	IntentUser
)

type Selection struct {
	Index  int
	Intent Intent
}

// InitialSelection picks the activity to open when nothing was explicitly
// requested: first a resume candidate (saved non-zero position, not yet
// completed), then the first not-completed activity in curriculum order,
// then the first activity.
func InitialSelection(items []Activity, progress map[string]Progress) Selection {
	for i, a := range items {
		p := progress[a.ID]
		if p.Seconds > 0 && !p.Completed {
			return Selection{Index: i, Intent: IntentAuto}
		}
	}

	for i, a := range items {
		if !progress[a.ID].Completed {
			return Selection{Index: i, Intent: IntentAuto}
		}
	}

	return Selection{Index: 0, Intent: IntentAuto}
}

// AutoSkip advances one step past a completed selection, but only when the
// selection was reached automatically. The hop is a single step, re-evaluated
// on the next render, never a cascading scan.
func AutoSkip(items []Activity, progress map[string]Progress, sel Selection) Selection {
	if sel.Intent == IntentUser {
		return sel
	}

	if sel.Index < 0 || sel.Index >= len(items) {
		return sel
	}

	if !progress[items[sel.Index].ID].Completed {
		return sel
	}

	if sel.Index+1 >= len(items) {
		return sel
	}

	return Selection{Index: sel.Index + 1, Intent: IntentAuto}
}

// NextIncomplete finds the activity to advance to after the one at from is
// completed: the first not-completed activity strictly after it, falling
// back to the next sequential index. The result carries user intent so the
// auto-skip rule does not immediately bounce it forward. Returns false when
// from is already the last activity.
func NextIncomplete(items []Activity, progress map[string]Progress, from int) (Selection, bool) {
	for i := from + 1; i < len(items); i++ {
		if !progress[items[i].ID].Completed {
			return Selection{Index: i, Intent: IntentUser}, true
		}
	}

	if from+1 < len(items) {
		return Selection{Index: from + 1, Intent: IntentUser}, true
	}

	return Selection{Index: from, Intent: IntentUser}, false
}

// Filter returns the indices of activities whose title or parent module
// title contains the query, case-insensitively. An empty query matches
// everything. Callers reset the active index to the first result.
func Filter(items []Activity, query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	var matched []int
	for i, a := range items {
		if q == "" ||
			strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.ModuleTitle), q) {
			matched = append(matched, i)
		}
	}

	return matched
}
