package player

import (
	"context"
	"sync"
)

// PlayerState mirrors the IFrame API state-change codes.
type PlayerState int

const (
	StateUnstarted PlayerState = -1
	StateEnded     PlayerState = 0
	StatePlaying   PlayerState = 1
	StatePaused    PlayerState = 2
	StateBuffering PlayerState = 3
	StateCued      PlayerState = 5
)

// IFrameAPI is the handle the shared provider script exposes once loaded.
type IFrameAPI interface {
	CreatePlayer(containerID string, videoID string) (IFramePlayer, error)
}

// IFramePlayer is one player instance created through the shared API.
type IFramePlayer interface {
	OnReady(fn func()) (off func())
	OnStateChange(fn func(state PlayerState)) (off func())
	SeekTo(seconds float64)
	CurrentTime() float64
	Duration() float64
	Destroy()
}

// LoadFunc fetches and evaluates the provider script, returning its API
// handle.
type LoadFunc func(ctx context.Context, url string) (IFrameAPI, error)

// ScriptCache memoizes loading of the shared IFrame API script. The script
// is loaded at most once per URL process-wide; concurrent callers share the
// single in-flight load, and the outcome (including failure) stays cached
// like a settled promise.
type ScriptCache struct {
	load LoadFunc

	mu      sync.Mutex
	entries map[string]*scriptEntry
}

type scriptEntry struct {
	done chan struct{}
	api  IFrameAPI
	err  error
}

func NewScriptCache(load LoadFunc) *ScriptCache {
	return &ScriptCache{load: load, entries: make(map[string]*scriptEntry)}
}

func (c *ScriptCache) Load(ctx context.Context, url string) (IFrameAPI, error) {
	c.mu.Lock()
	entry, ok := c.entries[url]
	if !ok {
		entry = &scriptEntry{done: make(chan struct{})}
		c.entries[url] = entry
		go func() {
			entry.api, entry.err = c.load(context.WithoutCancel(ctx), url)
			close(entry.done)
		}()
	}
	c.mu.Unlock()

	select {
	case <-entry.done:
		return entry.api, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
