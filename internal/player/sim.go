package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dchest/uniuri"
)

// SimElement is a scripted media element for the dev harness and tests: it
// plays in real time (optionally accelerated) and fires the usual element
// events. Mirrors how a detached <video> would behave.
type SimElement struct {
	mu       sync.Mutex
	current  float64
	duration float64
	rate     float64
	playing  bool
	stop     chan struct{}
	handlers map[string]map[string]func()
}

func NewSimElement(durationSeconds float64, rate float64) *SimElement {
	if rate <= 0 {
		rate = 1
	}

	return &SimElement{
		duration: durationSeconds,
		rate:     rate,
		handlers: make(map[string]map[string]func()),
	}
}

func (e *SimElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *SimElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *SimElement) Seek(seconds float64) {
	e.mu.Lock()
	if seconds > e.duration {
		seconds = e.duration
	}
	e.current = seconds
	e.mu.Unlock()
	e.emit("timeupdate")
}

func (e *SimElement) On(event string, fn func()) (off func()) {
	id := uniuri.New()
	e.mu.Lock()
	if e.handlers[event] == nil {
		e.handlers[event] = make(map[string]func())
	}
	e.handlers[event][id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.handlers[event], id)
		e.mu.Unlock()
	}
}

// Play announces metadata, then advances the playhead four times per second
// until the end of the media or Pause.
func (e *SimElement) Play() {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = true
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()

	e.emit("loadedmetadata")
	e.emit("play")

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.mu.Lock()
				e.current += 0.25 * e.rate
				ended := e.current >= e.duration && e.duration > 0
				if ended {
					e.current = e.duration
					e.playing = false
				}
				e.mu.Unlock()

				e.emit("timeupdate")
				if ended {
					e.emit("ended")
					return
				}
			}
		}
	}()
}

func (e *SimElement) Pause() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	close(e.stop)
	e.mu.Unlock()

	e.emit("pause")
}

func (e *SimElement) emit(event string) {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.handlers[event]))
	for _, fn := range e.handlers[event] {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SimSDKLoader binds SimElements to the SDK player surface so the harness
// can exercise the SDK adapter without a real embed.
type SimSDKLoader struct {
	// NewElement provides the element backing each load. Nil loader errors
	// are simulated by leaving this unset.
	NewElement func(embedURL string) *SimElement
}

var errSimSDKUnavailable = errors.New("simulated SDK import failure")

func (l *SimSDKLoader) Load(_ context.Context, embedURL string) (SDKPlayer, error) {
	if l == nil || l.NewElement == nil {
		return nil, errSimSDKUnavailable
	}

	return &simSDKPlayer{el: l.NewElement(embedURL)}, nil
}

type simSDKPlayer struct {
	el *SimElement
}

func (p *simSDKPlayer) On(event string, fn func(EventData)) (off func()) {
	return p.el.On(event, func() {
		fn(EventData{Seconds: p.el.CurrentTime(), Duration: p.el.Duration()})
	})
}

func (p *simSDKPlayer) SetCurrentTime(seconds float64) { p.el.Seek(seconds) }
func (p *simSDKPlayer) CurrentTime() float64           { return p.el.CurrentTime() }
func (p *simSDKPlayer) Duration() float64              { return p.el.Duration() }
func (p *simSDKPlayer) Destroy()                       { p.el.Pause() }

// SimIFrameAPI exposes SimElements through the IFrame API surface. The
// harness registers it as the script loader's result.
type SimIFrameAPI struct {
	NewElement func(videoID string) *SimElement
}

func (api *SimIFrameAPI) CreatePlayer(_ string, videoID string) (IFramePlayer, error) {
	el := api.NewElement(videoID)
	p := &simIFramePlayer{el: el}
	return p, nil
}

type simIFramePlayer struct {
	el *SimElement
}

func (p *simIFramePlayer) OnReady(fn func()) (off func()) {
	return p.el.On("loadedmetadata", fn)
}

func (p *simIFramePlayer) OnStateChange(fn func(PlayerState)) (off func()) {
	offPlay := p.el.On("play", func() { fn(StatePlaying) })
	offPause := p.el.On("pause", func() { fn(StatePaused) })
	offEnded := p.el.On("ended", func() { fn(StateEnded) })
	return func() {
		offPlay()
		offPause()
		offEnded()
	}
}

func (p *simIFramePlayer) SeekTo(seconds float64)  { p.el.Seek(seconds) }
func (p *simIFramePlayer) CurrentTime() float64    { return p.el.CurrentTime() }
func (p *simIFramePlayer) Duration() float64       { return p.el.Duration() }
func (p *simIFramePlayer) Destroy()                { p.el.Pause() }
