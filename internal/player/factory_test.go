package player

import (
	"context"
	"testing"
)

func testFactory() *Factory {
	return &Factory{
		Scripts: NewScriptCache(func(ctx context.Context, url string) (IFrameAPI, error) {
			return &fakeAPI{player: &fakePlayer{}}, nil
		}),
		SDK:        &fakeSDKLoader{player: newFakeSDKPlayer(10)},
		NewPort:    func(embedURL string) MessagePort { return &fakePort{} },
		NewElement: func(mediaURL string) MediaElement { return newFakeElement(10) },
	}
}

func TestFactorySelection(t *testing.T) {
	f := testFactory()

	if _, ok := f.New("https://youtu.be/dQw4w9WgXcQ", Hooks{}).(*IFrameAdapter); !ok {
		t.Error("expected IFrameAdapter for a YouTube URL")
	}
	if _, ok := f.New("https://vimeo.com/76979871", Hooks{}).(*SDKAdapter); !ok {
		t.Error("expected SDKAdapter for a Vimeo URL")
	}
	if _, ok := f.New("https://cdn.example.com/a.mp4", Hooks{}).(*NativeAdapter); !ok {
		t.Error("expected NativeAdapter for a direct media URL")
	}

	// quoted URLs still classify
	if _, ok := f.New("\"https://youtu.be/dQw4w9WgXcQ\"", Hooks{}).(*IFrameAdapter); !ok {
		t.Error("expected IFrameAdapter for a quoted YouTube URL")
	}

	a := f.New("https://example.com/page", Hooks{})
	if !a.Degraded() {
		t.Error("unknown content must produce an inert adapter")
	}
}

func TestFactoryMissingSurfaces(t *testing.T) {
	f := &Factory{}

	for _, url := range []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"https://vimeo.com/76979871",
		"https://cdn.example.com/a.mp4",
	} {
		a := f.New(url, Hooks{})
		if !a.Degraded() {
			t.Errorf("missing host surfaces must degrade for %s", url)
		}
		a.Attach(context.Background(), 0)
		a.Dispose()
	}
}
