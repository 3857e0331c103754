package provider

import (
	"net/url"
	"strings"
)

// Kind identifies which embed surface a content URL resolves to.
type Kind string

const (
	KindYoutube Kind = "youtube"
	KindVimeo   Kind = "vimeo"
	KindFile    Kind = "file"
	KindUnknown Kind = "unknown"
)

var fileExtensions = []string{".mp4", ".m4v", ".webm", ".ogv", ".ogg", ".mov", ".mp3", ".m3u8"}

// Clean strips wrapping quote characters and whitespace that occasionally
// leak into stored content URLs. Classification must survive such input.
func Clean(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), "\"'`“”‘’")
}

// Detect classifies a raw content URL into a provider kind. Unparseable or
// unrecognized URLs classify as KindUnknown, never an error.
func Detect(raw string) Kind {
	cleaned := strings.ToLower(Clean(raw))
	if cleaned == "" {
		return KindUnknown
	}

	switch {
	case strings.Contains(cleaned, "youtube.com"), strings.Contains(cleaned, "youtu.be"):
		return KindYoutube
	case strings.Contains(cleaned, "vimeo.com"):
		return KindVimeo
	}

	path := cleaned
	if u, err := url.Parse(cleaned); err == nil && u.Path != "" {
		path = u.Path
	}
	for _, ext := range fileExtensions {
		if strings.HasSuffix(path, ext) {
			return KindFile
		}
	}

	return KindUnknown
}

// EmbedURL rewrites a watch/share-style URL into the provider's embeddable
// form. URLs that are not recognized pass through unchanged (modulo Clean).
func EmbedURL(raw string) string {
	cleaned := Clean(raw)
	switch Detect(cleaned) {
	case KindYoutube:
		if id, ok := YoutubeID(cleaned); ok {
			return "https://www.youtube.com/embed/" + id + "?enablejsapi=1"
		}
	case KindVimeo:
		if id, ok := VimeoID(cleaned); ok {
			return "https://player.vimeo.com/video/" + id
		}
	}

	return cleaned
}

func checkYoutubeID(id string) bool {
	if len(id) != 11 {
		return false
	}

	for _, r := range id {
		suitable := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !suitable {
			return false
		}
	}

	return true
}

// YoutubeID extracts the 11-character video id from the usual URL shapes:
// youtu.be/<id>, watch?v=<id>, /shorts/<id>, /embed/<id> and /live/<id>.
func YoutubeID(raw string) (string, bool) {
	u, err := url.Parse(Clean(raw))
	if err != nil {
		return "", false
	}

	path := strings.Trim(u.Path, "/")
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	if host == "youtu.be" {
		if checkYoutubeID(path) {
			return path, true
		}
		return "", false
	}

	if path == "watch" {
		id := u.Query().Get("v")
		if checkYoutubeID(id) {
			return id, true
		}
		return "", false
	}

	for _, prefix := range []string{"shorts/", "embed/", "live/"} {
		if id, ok := strings.CutPrefix(path, prefix); ok && checkYoutubeID(id) {
			return id, true
		}
	}

	return "", false
}

// VimeoID extracts the numeric video id from vimeo.com/<id> and
// player.vimeo.com/video/<id> URLs.
func VimeoID(raw string) (string, bool) {
	u, err := url.Parse(Clean(raw))
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if isDigits(segments[i]) {
			return segments[i], true
		}
	}

	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
