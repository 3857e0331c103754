package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingAPI struct{}

func (countingAPI) CreatePlayer(string, string) (IFramePlayer, error) {
	return nil, errors.New("not implemented")
}

func TestScriptCacheSingleFlight(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	cache := NewScriptCache(func(ctx context.Context, url string) (IFrameAPI, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return countingAPI{}, nil
	})

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			api, err := cache.Load(context.Background(), "https://example.com/api.js")
			if err != nil {
				t.Errorf("Load failed: %v", err)
			}
			if api == nil {
				t.Error("Load returned nil API")
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("expected exactly one script load, got %d", n)
	}

	// already settled: no new load
	if _, err := cache.Load(context.Background(), "https://example.com/api.js"); err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("expected cached result, got %d loads", n)
	}
}

func TestScriptCacheKeyedByURL(t *testing.T) {
	var loads int32
	cache := NewScriptCache(func(ctx context.Context, url string) (IFrameAPI, error) {
		atomic.AddInt32(&loads, 1)
		return countingAPI{}, nil
	})

	cache.Load(context.Background(), "https://example.com/a.js")
	cache.Load(context.Background(), "https://example.com/b.js")

	if n := atomic.LoadInt32(&loads); n != 2 {
		t.Errorf("expected one load per URL, got %d", n)
	}
}

func TestScriptCacheCachesFailure(t *testing.T) {
	var loads int32
	cache := NewScriptCache(func(ctx context.Context, url string) (IFrameAPI, error) {
		atomic.AddInt32(&loads, 1)
		return nil, errors.New("blocked by network policy")
	})

	for i := 0; i < 3; i++ {
		if _, err := cache.Load(context.Background(), "https://example.com/api.js"); err == nil {
			t.Fatal("expected load error")
		}
	}

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("failure should settle the cache entry, got %d loads", n)
	}
}
