package player

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// MessagePort is a bidirectional frame channel to an embedded player. In the
// web shell it wraps window.postMessage against the embed iframe; the dev
// harness bridges it over a websocket.
type MessagePort interface {
	Post(data []byte) error

	// OnMessage subscribes to inbound frames and returns an unsubscribe
	// function.
	OnMessage(fn func(data []byte)) (off func())
}

// Wire shapes of the player.js postMessage protocol: outbound frames carry
// method/value, inbound frames carry either an event with data or a method
// response with value.
type outboundFrame struct {
	Method string      `json:"method"`
	Value  interface{} `json:"value,omitempty"`
}

type inboundFrame struct {
	Event  string          `json:"event,omitempty"`
	Method string          `json:"method,omitempty"`
	Data   *frameData      `json:"data,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
}

type frameData struct {
	Seconds  float64 `json:"seconds"`
	Duration float64 `json:"duration"`
}

// PostMessageAdapter reproduces the SDK adapter's event surface over the raw
// postMessage protocol. It exists as a standalone adapter (not a branch
// inside the SDK adapter) and serves as the fallback when the SDK import
// fails.
type PostMessageAdapter struct {
	port  MessagePort
	hooks Hooks

	mu       sync.Mutex
	off      func()
	ready    bool
	resumeAt float64
	lastTime float64
	duration float64
	degraded bool
	disposed bool
}

func NewPostMessageAdapter(port MessagePort, hooks Hooks) *PostMessageAdapter {
	return &PostMessageAdapter{port: port, hooks: hooks}
}

func (a *PostMessageAdapter) Attach(_ context.Context, resumeAt float64) {
	if a.port == nil {
		a.mu.Lock()
		a.degraded = true
		a.mu.Unlock()
		return
	}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.resumeAt = resumeAt
	a.off = a.port.OnMessage(a.handleMessage)
	a.mu.Unlock()

	// the player may have come up before we subscribed; asking for the
	// duration makes it re-announce readiness
	a.post(outboundFrame{Method: "getDuration"})
}

func (a *PostMessageAdapter) handleMessage(data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Debug("Dropping malformed player frame", "err", err)
		return
	}

	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}

	hooks := a.hooks
	var fire func()

	switch frame.Event {
	case "ready":
		if !a.ready {
			a.ready = true
			resumeAt := a.resumeAt
			a.mu.Unlock()
			a.subscribe(resumeAt)
			return
		}
	case "play":
		fire = hooks.OnStarted
	case "timeupdate":
		if frame.Data != nil {
			a.lastTime = frame.Data.Seconds
			if frame.Data.Duration > 0 {
				a.duration = frame.Data.Duration
			}
		}
	case "pause":
		if frame.Data != nil {
			a.lastTime = frame.Data.Seconds
			if frame.Data.Duration > 0 {
				a.duration = frame.Data.Duration
			}
		}
		seconds := a.lastTime
		if hooks.OnPaused != nil {
			fire = func() { hooks.OnPaused(seconds) }
		}
	case "finish":
		if frame.Data != nil && frame.Data.Duration > 0 {
			a.duration = frame.Data.Duration
		}
		duration := a.duration
		if hooks.OnEnded != nil {
			fire = func() { hooks.OnEnded(duration) }
		}
	}

	if frame.Method == "getDuration" && len(frame.Value) > 0 {
		var d float64
		if err := json.Unmarshal(frame.Value, &d); err == nil && d > 0 {
			a.duration = d
		}
	}
	a.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// subscribe registers for the player events and applies the resume seek once
// the embed reports ready.
func (a *PostMessageAdapter) subscribe(resumeAt float64) {
	for _, event := range []string{"play", "pause", "finish", "timeupdate"} {
		a.post(outboundFrame{Method: "addEventListener", Value: event})
	}
	a.post(outboundFrame{Method: "getDuration"})
	if resumeAt > 0 {
		a.post(outboundFrame{Method: "setCurrentTime", Value: resumeAt})
	}
}

func (a *PostMessageAdapter) post(frame outboundFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	if err := a.port.Post(data); err != nil {
		slog.Warn("Unable to post player frame", "method", frame.Method, "err", err)
		a.mu.Lock()
		a.degraded = true
		a.mu.Unlock()
	}
}

func (a *PostMessageAdapter) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastTime
}

func (a *PostMessageAdapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

func (a *PostMessageAdapter) Degraded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.degraded
}

func (a *PostMessageAdapter) Dispose() {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return
	}
	a.disposed = true
	off := a.off
	a.off = nil
	a.mu.Unlock()

	if off != nil {
		off()
	}
}
