package notify

import (
	"log/slog"
	"sync"
)

type Kind string

const (
	KindInfo  Kind = "info"
	KindError Kind = "error"
)

// Notifier surfaces user-visible notices. Only genuinely user-initiated
// actions and completion confirmations go through here; background sync
// failures degrade silently to the local mirror.
type Notifier interface {
	Notify(kind Kind, title string, detail string)
}

// LogNotifier writes notices to the structured log. The web shell swaps in a
// toast renderer instead.
type LogNotifier struct{}

func (LogNotifier) Notify(kind Kind, title string, detail string) {
	if kind == KindError {
		slog.Warn(title, "detail", detail)
	} else {
		slog.Info(title, "detail", detail)
	}
}

type Notice struct {
	Kind   Kind
	Title  string
	Detail string
}

// CaptureNotifier records notices for assertions in tests.
type CaptureNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCaptureNotifier() *CaptureNotifier {
	return &CaptureNotifier{}
}

func (c *CaptureNotifier) Notify(kind Kind, title string, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Kind: kind, Title: title, Detail: detail})
}

func (c *CaptureNotifier) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}
