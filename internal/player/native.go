package player

import (
	"context"
	"sync"
)

// NativeAdapter wraps a plain media element. All state comes from the
// element's own events; timeupdate keeps the cached playhead fresh so reads
// stay cheap even after the element is gone.
type NativeAdapter struct {
	el    MediaElement
	hooks Hooks

	mu       sync.Mutex
	offs     []func()
	lastTime float64
	duration float64
	disposed bool
}

func NewNativeAdapter(el MediaElement, hooks Hooks) *NativeAdapter {
	return &NativeAdapter{el: el, hooks: hooks}
}

func (a *NativeAdapter) Attach(_ context.Context, resumeAt float64) {
	if a.el == nil {
		return
	}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}

	el := a.el
	a.offs = append(a.offs,
		el.On("loadedmetadata", func() {
			a.mu.Lock()
			if d := el.Duration(); d > 0 {
				a.duration = d
			}
			a.mu.Unlock()
			if resumeAt > 0 {
				el.Seek(resumeAt)
			}
		}),
		el.On("timeupdate", func() {
			a.mu.Lock()
			a.lastTime = el.CurrentTime()
			if d := el.Duration(); d > 0 {
				a.duration = d
			}
			a.mu.Unlock()
		}),
		el.On("play", func() {
			if a.hooks.OnStarted != nil {
				a.hooks.OnStarted()
			}
		}),
		el.On("pause", func() {
			a.mu.Lock()
			a.lastTime = el.CurrentTime()
			seconds := a.lastTime
			a.mu.Unlock()
			if a.hooks.OnPaused != nil {
				a.hooks.OnPaused(seconds)
			}
		}),
		el.On("ended", func() {
			a.mu.Lock()
			if d := el.Duration(); d > 0 {
				a.duration = d
			}
			duration := a.duration
			a.mu.Unlock()
			if a.hooks.OnEnded != nil {
				a.hooks.OnEnded(duration)
			}
		}),
	)
	a.mu.Unlock()
}

func (a *NativeAdapter) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.el != nil && !a.disposed {
		a.lastTime = a.el.CurrentTime()
	}
	return a.lastTime
}

func (a *NativeAdapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.el != nil && !a.disposed {
		if d := a.el.Duration(); d > 0 {
			a.duration = d
		}
	}
	return a.duration
}

func (a *NativeAdapter) Degraded() bool {
	return a.el == nil
}

func (a *NativeAdapter) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	offs := a.offs
	a.offs = nil
	a.mu.Unlock()

	for _, off := range offs {
		off()
	}
}
