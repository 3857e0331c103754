package session

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	"github.com/dfarias/aulatrack/internal/curriculum"
	"github.com/dfarias/aulatrack/internal/notify"
	"github.com/dfarias/aulatrack/internal/player"
	"github.com/dfarias/aulatrack/internal/progress"
)

// AdapterFactory builds the playback adapter for a video activity. The
// default wiring goes through player.Factory; tests substitute fakes.
type AdapterFactory func(a curriculum.Activity, hooks player.Hooks) player.Adapter

type Config struct {
	CourseID     string
	EnrollmentID string

	// SaveInterval and SaveDelta throttle periodic position saves: a save
	// happens only when both the elapsed time and the playhead movement since
	// the last save clear these thresholds. Forced saves on pause and end
	// bypass the throttle.
	SaveInterval time.Duration
	SaveDelta    float64

	// AdvanceGrace is the delay between a reading activity completing its
	// countdown and the automatic advance, so the completion notice is seen.
	AdvanceGrace time.Duration
}

const (
	defaultSaveInterval = 15 * time.Second
	defaultSaveDelta    = 4.0
	defaultAdvanceGrace = 1500 * time.Millisecond
)

// playbackState is everything tied to one selected activity. It is replaced
// wholesale on every selection; async callbacks carry the token of the state
// they were created for and are discarded when it no longer matches.
type playbackState struct {
	token    string
	index    int
	activity curriculum.Activity
	adapter  player.Adapter

	started bool
	ended   bool

	lastKnown     float64
	countdownLeft int

	stopTicker  func()
	cancelGrace func()

	// save throttle
	sending    bool
	lastSaveAt time.Time
	lastSaved  float64
}

// Controller runs the playback session for one course: it owns the active
// activity, resolves where playback resumes, persists positions on a
// throttle, records completions exactly once per playback, and decides where
// to advance next. All adapter events funnel through it.
type Controller struct {
	cfg       Config
	store     *progress.Store
	completed *progress.CompletionSet
	adapters  AdapterFactory
	notifier  notify.Notifier

	// OnAdvance is invoked (outside the controller lock) when a completion
	// decides the next activity. The shell responds by calling Select.
	OnAdvance func(sel curriculum.Selection)

	// time and goroutine seams, overridden in tests
	now   func() time.Time
	after func(d time.Duration, fn func()) (cancel func())
	spawn func(fn func())

	mu       sync.Mutex
	items    []curriculum.Activity
	current  *playbackState
	lastHint map[string]float64
}

func New(items []curriculum.Activity, store *progress.Store, completed *progress.CompletionSet, adapters AdapterFactory, notifier notify.Notifier, cfg Config) *Controller {
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = defaultSaveInterval
	}
	if cfg.SaveDelta <= 0 {
		cfg.SaveDelta = defaultSaveDelta
	}
	if cfg.AdvanceGrace <= 0 {
		cfg.AdvanceGrace = defaultAdvanceGrace
	}
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}

	return &Controller{
		cfg:       cfg,
		store:     store,
		completed: completed,
		adapters:  adapters,
		notifier:  notifier,
		now:       time.Now,
		after: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
		spawn:    func(fn func()) { go fn() },
		items:    items,
		lastHint: make(map[string]float64),
	}
}

// ActiveID is the id of the currently selected activity, empty when idle.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.activity.ID
}

// Progress snapshots per-activity progress for the navigation policy:
// completion from the optimistic set, seconds from the in-memory hints.
func (c *Controller) Progress() map[string]curriculum.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *Controller) progressLocked() map[string]curriculum.Progress {
	out := make(map[string]curriculum.Progress)
	for _, a := range c.items {
		p := curriculum.Progress{
			Seconds:   int(c.lastHint[a.ID]),
			Completed: c.completed.Contains(a.ID),
		}
		if p.Seconds > 0 || p.Completed {
			out[a.ID] = p
		}
	}
	return out
}

// Select makes the activity at index the active one. The previous playback
// state is torn down first; every async callback it spawned becomes stale the
// moment the token changes. The adapter factory and the init goroutine run
// outside the lock: both may call back into the controller.
func (c *Controller) Select(index int) {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return
	}

	c.teardownLocked()

	a := c.items[index]
	st := &playbackState{
		token:    uniuri.New(),
		index:    index,
		activity: a,
	}
	c.current = st
	token := st.token

	if a.Kind != curriculum.KindVideo {
		c.startCountdownLocked(st)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	adapter := c.adapters(a, player.Hooks{
		OnStarted: func() { c.onStarted(token) },
		OnPaused:  func(seconds float64) { c.onPaused(token, seconds) },
		OnEnded:   func(duration float64) { c.onEnded(token, duration) },
	})

	c.mu.Lock()
	if cur := c.current; cur != nil && cur.token == token {
		cur.adapter = adapter
		c.mu.Unlock()
		c.spawn(func() { c.initVideo(token, a, adapter) })
		return
	}
	c.mu.Unlock()

	// reselected while the factory ran
	adapter.Dispose()
}

// Dispose tears down the active playback, leaving the controller idle.
func (c *Controller) Dispose() {
	c.mu.Lock()
	c.teardownLocked()
	c.mu.Unlock()
}

func (c *Controller) teardownLocked() {
	st := c.current
	if st == nil {
		return
	}
	c.current = nil

	if st.stopTicker != nil {
		st.stopTicker()
	}
	if st.cancelGrace != nil {
		st.cancelGrace()
	}
	if st.adapter != nil {
		st.adapter.Dispose()
	}
}

// initVideo resolves the resume position and attaches the adapter. It runs
// off the calling goroutine so a slow remote lookup never blocks selection.
func (c *Controller) initVideo(token string, a curriculum.Activity, adapter player.Adapter) {
	resumeAt := c.resumeAt(a)

	c.mu.Lock()
	stale := c.current == nil || c.current.token != token
	c.mu.Unlock()
	if stale {
		adapter.Dispose()
		return
	}

	adapter.Attach(context.Background(), resumeAt)

	c.mu.Lock()
	if st := c.current; st != nil && st.token == token {
		st.stopTicker = c.every(time.Second, func() { c.pollTick(token) })
	}
	c.mu.Unlock()
}

// resumeAt resolves the resume precedence: remote store, then local mirror,
// then the in-memory hint from this session, then the beginning. A remote
// answer of zero falls through the chain like a missing one.
func (c *Controller) resumeAt(a curriculum.Activity) float64 {
	pos, err := c.store.RemotePosition(context.Background(), c.cfg.CourseID, a.ID, c.cfg.EnrollmentID)
	if err != nil {
		slog.Debug("Remote resume lookup failed", "activity", a.ID, "err", err)
	} else if pos.Exists && pos.Seconds > 0 {
		return float64(pos.Seconds)
	}

	if local := c.store.LocalPosition(c.cfg.CourseID, a.ID); local.Exists && local.Seconds > 0 {
		return float64(local.Seconds)
	}

	c.mu.Lock()
	hint := c.lastHint[a.ID]
	c.mu.Unlock()
	if hint > 0 {
		return hint
	}

	return 0
}

func (c *Controller) onStarted(token string) {
	c.mu.Lock()
	if st := c.current; st != nil && st.token == token && !st.ended {
		st.started = true
	}
	c.mu.Unlock()
}

func (c *Controller) onPaused(token string, seconds float64) {
	c.mu.Lock()
	st := c.current
	if st == nil || st.token != token || st.ended || seconds <= 0 {
		c.mu.Unlock()
		return
	}
	st.lastKnown = seconds
	c.lastHint[st.activity.ID] = seconds
	a := st.activity
	c.mu.Unlock()

	// pause always persists, bypassing the throttle
	c.spawn(func() { c.save(token, a, seconds) })
}

// onEnded records a completion exactly once per playback. Completion seconds
// come from the player's duration, falling back to the declared one.
func (c *Controller) onEnded(token string, duration float64) {
	c.mu.Lock()
	st := c.current
	if st == nil || st.token != token || st.ended {
		c.mu.Unlock()
		return
	}
	st.ended = true
	if st.stopTicker != nil {
		st.stopTicker()
		st.stopTicker = nil
	}

	seconds := duration
	if seconds <= 0 {
		seconds = st.adapter.Duration()
	}
	if seconds <= 0 {
		seconds = float64(st.activity.DurationSeconds())
	}
	a, index := st.activity, st.index
	c.mu.Unlock()

	c.complete(a, int(seconds))
	c.advanceFrom(token, index)
}

// pollTick samples the playhead once a second while a video plays, feeding
// the in-memory hint and the throttled save.
func (c *Controller) pollTick(token string) {
	c.mu.Lock()
	st := c.current
	if st == nil || st.token != token || !st.started || st.ended {
		c.mu.Unlock()
		return
	}

	seconds := st.adapter.CurrentTime()
	if seconds <= 0 {
		c.mu.Unlock()
		return
	}
	st.lastKnown = seconds
	c.lastHint[st.activity.ID] = seconds

	if st.sending ||
		c.now().Sub(st.lastSaveAt) < c.cfg.SaveInterval ||
		math.Abs(seconds-st.lastSaved) < c.cfg.SaveDelta {
		c.mu.Unlock()
		return
	}
	st.sending = true
	a := st.activity
	c.mu.Unlock()

	c.spawn(func() { c.save(token, a, seconds) })
}

func (c *Controller) save(token string, a curriculum.Activity, seconds float64) {
	c.store.SavePosition(context.Background(), c.cfg.CourseID, a.ModuleID, a.ID, int(seconds), c.cfg.EnrollmentID)

	c.mu.Lock()
	if st := c.current; st != nil && st.token == token {
		st.sending = false
		st.lastSaveAt = c.now()
		st.lastSaved = seconds
	}
	c.mu.Unlock()
}

// startCountdownLocked runs the completion countdown for reading content. An
// activity that declares no duration never auto-completes; one already marked
// complete is just displayed.
func (c *Controller) startCountdownLocked(st *playbackState) {
	if c.completed.Contains(st.activity.ID) {
		return
	}

	seconds := st.activity.DurationSeconds()
	if seconds <= 0 {
		return
	}

	st.countdownLeft = seconds
	token := st.token
	st.stopTicker = c.every(time.Second, func() { c.countdownTick(token) })
}

func (c *Controller) countdownTick(token string) {
	c.mu.Lock()
	st := c.current
	if st == nil || st.token != token || st.ended {
		c.mu.Unlock()
		return
	}

	st.countdownLeft--
	if st.countdownLeft > 0 {
		c.mu.Unlock()
		return
	}

	st.ended = true
	if st.stopTicker != nil {
		st.stopTicker()
		st.stopTicker = nil
	}
	a, index := st.activity, st.index
	c.mu.Unlock()

	c.notifier.Notify(notify.KindInfo, "Activity completed", a.Title)
	c.complete(a, a.DurationSeconds())

	c.mu.Lock()
	if cur := c.current; cur != nil && cur.token == token {
		cur.cancelGrace = c.after(c.cfg.AdvanceGrace, func() { c.advanceFrom(token, index) })
	}
	c.mu.Unlock()
}

// complete marks the activity done optimistically and pushes the completion
// to the remote store in the background. A remote failure does not roll the
// local set back; it reconciles on the next curriculum load.
func (c *Controller) complete(a curriculum.Activity, seconds int) {
	c.completed.Add(a.ID)
	c.spawn(func() {
		err := c.store.ToggleCompletion(context.Background(), c.cfg.CourseID, a.ModuleID, a.ID, true, seconds, c.cfg.EnrollmentID)
		if err != nil {
			slog.Warn("Unable to record completion remotely", "activity", a.ID, "err", err)
		}
	})
}

func (c *Controller) advanceFrom(token string, index int) {
	c.mu.Lock()
	if c.current == nil || c.current.token != token {
		c.mu.Unlock()
		return
	}
	sel, ok := curriculum.NextIncomplete(c.items, c.progressLocked(), index)
	cb := c.OnAdvance
	c.mu.Unlock()

	if ok && cb != nil {
		cb(sel)
	}
}

// Toggle flips the completion mark on the activity at index by direct user
// action. Unlike the playback path this bypasses the one-shot end guard, and
// a remote failure is surfaced since the user asked for the change.
func (c *Controller) Toggle(index int) {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return
	}
	a := c.items[index]

	// same seconds rule as the playback path: player duration, then declared
	var seconds int
	if st := c.current; st != nil && st.index == index && st.adapter != nil {
		seconds = int(st.adapter.Duration())
	}
	if seconds <= 0 {
		seconds = a.DurationSeconds()
	}
	c.mu.Unlock()

	if c.completed.Contains(a.ID) {
		c.completed.Remove(a.ID)
		err := c.store.ToggleCompletion(context.Background(), c.cfg.CourseID, a.ModuleID, a.ID, false, seconds, c.cfg.EnrollmentID)
		if err != nil {
			c.notifier.Notify(notify.KindError, "Unable to update completion", err.Error())
		}
		return
	}

	c.completed.Add(a.ID)
	err := c.store.ToggleCompletion(context.Background(), c.cfg.CourseID, a.ModuleID, a.ID, true, seconds, c.cfg.EnrollmentID)
	if err != nil {
		c.notifier.Notify(notify.KindError, "Unable to update completion", err.Error())
	}
}

// every reschedules fn at a fixed period on top of the after seam so tests
// can drive the clock by hand.
func (c *Controller) every(d time.Duration, fn func()) (cancel func()) {
	var mu sync.Mutex
	stopped := false
	var cancelNext func()

	var schedule func()
	schedule = func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		cancelNext = c.after(d, func() {
			fn()
			schedule()
		})
	}
	schedule()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		if cancelNext != nil {
			cancelNext()
		}
	}
}
