package player

import (
	"context"
	"log/slog"
	"sync"
)

// IFrameAdapter drives a YouTube-style player through the shared IFrame API
// script. The script itself is shared process-wide via ScriptCache; each
// activity gets its own player instance.
type IFrameAdapter struct {
	scripts     *ScriptCache
	apiURL      string
	containerID string
	videoID     string
	hooks       Hooks

	mu       sync.Mutex
	player   IFramePlayer
	offs     []func()
	lastTime float64
	duration float64
	degraded bool
	disposed bool
}

func NewIFrameAdapter(scripts *ScriptCache, apiURL, containerID, videoID string, hooks Hooks) *IFrameAdapter {
	return &IFrameAdapter{
		scripts:     scripts,
		apiURL:      apiURL,
		containerID: containerID,
		videoID:     videoID,
		hooks:       hooks,
	}
}

func (a *IFrameAdapter) Attach(ctx context.Context, resumeAt float64) {
	api, err := a.scripts.Load(ctx, a.apiURL)
	if err != nil {
		slog.Warn("Unable to load IFrame API script", "url", a.apiURL, "err", err)
		a.degrade()
		return
	}

	player, err := api.CreatePlayer(a.containerID, a.videoID)
	if err != nil {
		slog.Warn("Unable to construct IFrame player", "video", a.videoID, "err", err)
		a.degrade()
		return
	}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		player.Destroy()
		return
	}

	a.player = player
	offReady := player.OnReady(func() {
		if resumeAt > 0 {
			player.SeekTo(resumeAt)
		}
	})
	offState := player.OnStateChange(a.handleState)
	a.offs = append(a.offs, offReady, offState)
	a.mu.Unlock()
}

func (a *IFrameAdapter) handleState(state PlayerState) {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}

	if a.player != nil {
		a.lastTime = a.player.CurrentTime()
		if d := a.player.Duration(); d > 0 {
			a.duration = d
		}
	}
	hooks := a.hooks
	lastTime := a.lastTime
	duration := a.duration
	a.mu.Unlock()

	switch state {
	case StatePlaying:
		if hooks.OnStarted != nil {
			hooks.OnStarted()
		}
	case StatePaused:
		if hooks.OnPaused != nil {
			hooks.OnPaused(lastTime)
		}
	case StateEnded:
		if hooks.OnEnded != nil {
			hooks.OnEnded(duration)
		}
	}
}

func (a *IFrameAdapter) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player != nil {
		a.lastTime = a.player.CurrentTime()
	}
	return a.lastTime
}

func (a *IFrameAdapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player != nil {
		if d := a.player.Duration(); d > 0 {
			a.duration = d
		}
	}
	return a.duration
}

func (a *IFrameAdapter) Degraded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.degraded
}

func (a *IFrameAdapter) Dispose() {
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
	a.mu.Unlock()

	// listeners go first so in-flight events cannot reach the controller
	// once teardown has begun
	for _, off := range offs {
		off()
	}
	if player != nil {
		player.Destroy()
	}
}

func (a *IFrameAdapter) degrade() {
	a.mu.Lock()
	a.degraded = true
	a.mu.Unlock()
}
