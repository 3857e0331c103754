package curriculum

import (
	"fmt"
	"strconv"

	"github.com/dfarias/aulatrack/internal/durations"
)

type ContentKind string

const (
	KindVideo    ContentKind = "video"
	KindDocument ContentKind = "document"
	KindLink     ContentKind = "link"
	KindText     ContentKind = "text"
)

// Activity is one unit of content inside a module. Identity must stay stable
// across reloads since it keys position and completion records.
type Activity struct {
	ID            string
	ModuleID      string
	Title         string
	Kind          ContentKind
	Content       string // URL, or raw HTML for reading texts
	DurationValue float64
	DurationUnit  string
	ModuleIndex   int
	Index         int
	ModuleTitle   string
}

// DurationSeconds is the declared duration normalized to seconds. Zero when
// nothing was declared.
func (a Activity) DurationSeconds() int {
	return durations.ToSeconds(a.DurationValue, a.DurationUnit)
}

type Module struct {
	ID            string
	Title         string
	DurationValue float64
	DurationUnit  string
	Activities    []Activity
}

// TotalSeconds sums the declared durations of the module's activities. When
// no activity declares a duration, the module-level declared duration is
// used instead of defaulting to zero.
func (m Module) TotalSeconds() int {
	total := 0
	for _, a := range m.Activities {
		total += a.DurationSeconds()
	}

	if total == 0 {
		return durations.ToSeconds(m.DurationValue, m.DurationUnit)
	}

	return total
}

// Flatten turns the module tree into the ordered activity sequence used for
// navigation. Activities without a server id get a synthesized
// "moduleIndex-activityIndex" identifier; module ids fall back to the module
// index.
func Flatten(modules []Module) []Activity {
	var items []Activity
	for mi, m := range modules {
		moduleID := m.ID
		if moduleID == "" {
			moduleID = strconv.Itoa(mi)
		}

		for ai, a := range m.Activities {
			a.ModuleIndex = mi
			a.Index = ai
			a.ModuleID = moduleID
			a.ModuleTitle = m.Title
			if a.ID == "" {
				a.ID = fmt.Sprintf("%d-%d", mi, ai)
			}
			items = append(items, a)
		}
	}

	return items
}

// IndexOf finds an activity's position in the flattened sequence, -1 when
// absent.
func IndexOf(items []Activity, id string) int {
	for i, a := range items {
		if a.ID == id {
			return i
		}
	}

	return -1
}

// Progress is the per-activity playback record used by the navigation policy
// and reconciled from the remote store on load.
type Progress struct {
	Seconds   int
	Completed bool
}
