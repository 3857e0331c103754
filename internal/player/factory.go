package player

import (
	"github.com/dchest/uniuri"
	"github.com/dfarias/aulatrack/internal/provider"
)

// DefaultIFrameAPIURL is the shared script the IFrame provider loads once
// per process.
const DefaultIFrameAPIURL = "https://www.youtube.com/iframe_api"

// Factory builds the right adapter for a content URL. The provider kind is
// decided here, at construction time, and nowhere deeper.
type Factory struct {
	Scripts      *ScriptCache
	IFrameAPIURL string
	SDK          SDKLoader

	// NewPort opens the postMessage bridge to an embed; nil disables the
	// SDK fallback path.
	NewPort func(embedURL string) MessagePort

	// NewElement mounts a native media element for a direct media URL.
	NewElement func(mediaURL string) MediaElement
}

func (f *Factory) New(rawURL string, hooks Hooks) Adapter {
	cleaned := provider.Clean(rawURL)

	switch provider.Detect(cleaned) {
	case provider.KindYoutube:
		id, ok := provider.YoutubeID(cleaned)
		if !ok || f.Scripts == nil {
			return Inert()
		}
		apiURL := f.IFrameAPIURL
		if apiURL == "" {
			apiURL = DefaultIFrameAPIURL
		}
		containerID := "player-" + uniuri.New()
		return NewIFrameAdapter(f.Scripts, apiURL, containerID, id, hooks)

	case provider.KindVimeo:
		embed := provider.EmbedURL(cleaned)
		var port MessagePort
		if f.NewPort != nil {
			port = f.NewPort(embed)
		}
		if f.SDK == nil && port == nil {
			return Inert()
		}
		return NewSDKAdapter(f.SDK, port, embed, hooks)

	case provider.KindFile:
		if f.NewElement == nil {
			return Inert()
		}
		return NewNativeAdapter(f.NewElement(cleaned), hooks)
	}

	return Inert()
}
