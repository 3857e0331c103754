package player

import "context"

// Hooks is the uniform event surface every adapter exposes to the session
// controller, regardless of provider. Adapters must invoke hooks without
// holding their internal lock, so a hook may call back into the adapter (or
// dispose it) without deadlocking.
type Hooks struct {
	OnStarted func()
	OnPaused  func(seconds float64)
	OnEnded   func(durationSeconds float64)
}

// Adapter wraps one provider's native player control surface.
type Adapter interface {
	// Attach constructs the provider's native player and seeks to resumeAt
	// once the player reports ready. Construction failures degrade the
	// adapter into an inert state instead of propagating; the viewer checks
	// Degraded to render a fallback affordance.
	Attach(ctx context.Context, resumeAt float64)

	// CurrentTime is a best-effort synchronous read of the playhead.
	// Providers without a synchronous getter return the last cached value.
	CurrentTime() float64

	// Duration is the media length in seconds, 0 while unknown.
	Duration() float64

	// Degraded reports that no native player could be constructed.
	Degraded() bool

	// Dispose unsubscribes all listeners first, then tears down the native
	// player. Safe to call more than once.
	Dispose()
}

// MediaElement is the slice of a native media element the adapter consumes.
// The web shell implements it over the embed bridge; tests script it.
type MediaElement interface {
	CurrentTime() float64
	Duration() float64
	Seek(seconds float64)

	// On subscribes to an element event ("loadedmetadata", "timeupdate",
	// "play", "pause", "ended") and returns an unsubscribe function.
	On(event string, fn func()) (off func())
}

// Inert returns an adapter that does nothing. Adapters degrade into this
// behavior when the native player cannot be constructed; the viewer then
// renders an open-externally link instead of a player.
func Inert() Adapter {
	return inertAdapter{}
}

type inertAdapter struct{}

func (inertAdapter) Attach(context.Context, float64) {}
func (inertAdapter) CurrentTime() float64            { return 0 }
func (inertAdapter) Duration() float64               { return 0 }
func (inertAdapter) Degraded() bool                  { return true }
func (inertAdapter) Dispose()                        {}
