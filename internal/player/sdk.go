package player

import (
	"context"
	"log/slog"
	"sync"
)

// EventData is the payload the SDK attaches to playback events.
type EventData struct {
	Seconds  float64
	Duration float64
}

// SDKPlayer is the slice of the provider's official client SDK the adapter
// consumes.
type SDKPlayer interface {
	On(event string, fn func(data EventData)) (off func())
	SetCurrentTime(seconds float64)
	CurrentTime() float64
	Duration() float64
	Destroy()
}

// SDKLoader imports the SDK and binds it to an embed. Loading can fail in
// environments that block the import; the adapter then falls back to the raw
// postMessage protocol.
type SDKLoader interface {
	Load(ctx context.Context, embedURL string) (SDKPlayer, error)
}

// SDKAdapter prefers the official SDK and delegates to a PostMessageAdapter
// over the same embed when the SDK cannot be loaded. The fallback is built
// up front so the delegation is a plain handoff, not a second code path.
type SDKAdapter struct {
	loader   SDKLoader
	embedURL string
	hooks    Hooks
	fallback Adapter

	mu            sync.Mutex
	player        SDKPlayer
	offs          []func()
	lastTime      float64
	duration      float64
	usingFallback bool
	degraded      bool
	disposed      bool
}

func NewSDKAdapter(loader SDKLoader, port MessagePort, embedURL string, hooks Hooks) *SDKAdapter {
	var fallback Adapter
	if port != nil {
		fallback = NewPostMessageAdapter(port, hooks)
	}

	return &SDKAdapter{
		loader:   loader,
		embedURL: embedURL,
		hooks:    hooks,
		fallback: fallback,
	}
}

func (a *SDKAdapter) Attach(ctx context.Context, resumeAt float64) {
	var player SDKPlayer
	var err error
	if a.loader != nil {
		player, err = a.loader.Load(ctx, a.embedURL)
	}

	if a.loader == nil || err != nil {
		if a.fallback != nil {
			slog.Warn("SDK import failed, falling back to postMessage protocol", "embed", a.embedURL, "err", err)
			a.mu.Lock()
			a.usingFallback = true
			disposed := a.disposed
			a.mu.Unlock()
			if !disposed {
				a.fallback.Attach(ctx, resumeAt)
			}
		} else {
			slog.Warn("SDK import failed and no postMessage bridge available", "embed", a.embedURL, "err", err)
			a.mu.Lock()
			a.degraded = true
			a.mu.Unlock()
		}
		return
	}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		player.Destroy()
		return
	}

	a.player = player
	a.offs = append(a.offs,
		player.On("play", func(EventData) {
			if a.hooks.OnStarted != nil {
				a.hooks.OnStarted()
			}
		}),
		player.On("timeupdate", func(data EventData) {
			a.note(data)
		}),
		player.On("pause", func(data EventData) {
			a.note(data)
			if a.hooks.OnPaused != nil {
				a.hooks.OnPaused(data.Seconds)
			}
		}),
		player.On("ended", func(data EventData) {
			a.note(data)
			a.mu.Lock()
			duration := a.duration
			a.mu.Unlock()
			if a.hooks.OnEnded != nil {
				a.hooks.OnEnded(duration)
			}
		}),
	)
	a.mu.Unlock()

	if resumeAt > 0 {
		player.SetCurrentTime(resumeAt)
	}
}

func (a *SDKAdapter) note(data EventData) {
	a.mu.Lock()
	a.lastTime = data.Seconds
	if data.Duration > 0 {
		a.duration = data.Duration
	}
	a.mu.Unlock()
}

func (a *SDKAdapter) CurrentTime() float64 {
	a.mu.Lock()
	if a.usingFallback {
		a.mu.Unlock()
		return a.fallback.CurrentTime()
	}
	defer a.mu.Unlock()
	if a.player != nil {
		a.lastTime = a.player.CurrentTime()
	}
	return a.lastTime
}

func (a *SDKAdapter) Duration() float64 {
	a.mu.Lock()
	if a.usingFallback {
		a.mu.Unlock()
		return a.fallback.Duration()
	}
	defer a.mu.Unlock()
	if a.player != nil {
		if d := a.player.Duration(); d > 0 {
			a.duration = d
		}
	}
	return a.duration
}

func (a *SDKAdapter) Degraded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.usingFallback {
		return a.fallback.Degraded()
	}
	return a.degraded
}

func (a *SDKAdapter) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	offs := a.offs
	a.offs = nil
	player := a.player
	a.player = nil
	fallback := a.fallback
	a.mu.Unlock()

	for _, off := range offs {
		off()
	}
	if player != nil {
		player.Destroy()
	}
	if fallback != nil {
		fallback.Dispose()
	}
}
