// Package sound is the notification sink: the orchestrator reports what
// happened and the sink decides how, or whether, to make noise about it.
package sound

import (
	"io"
	"log/slog"
	"sync"
)

// Kind identifies a notification.
type Kind int

const (
	Click Kind = iota
	Start
	Delete
	Complete
	Celebration
)

var kindNames = [...]string{"click", "start", "delete", "complete", "celebration"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Sink receives fire-and-forget notifications.
type Sink interface {
	Notify(Kind)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Kind) {}

// Bell rings the terminal bell for interval completion and celebration.
// Clicks, starts and deletes are silent in a terminal.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Notify(k Kind) {
	var pattern string
	switch k {
	case Complete:
		pattern = "\a"
	case Celebration:
		pattern = "\a\a"
	default:
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	io.WriteString(b.w, pattern)
}

// Safe wraps a sink so it can never panic into the caller. Notifications
// are logged at debug level.
func Safe(s Sink, logger *slog.Logger) Sink {
	if s == nil {
		s = Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return safeSink{next: s, logger: logger}
}

type safeSink struct {
	next   Sink
	logger *slog.Logger
}

func (s safeSink) Notify(k Kind) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("notification sink panicked", "kind", k, "panic", r)
		}
	}()
	s.logger.Debug("notify", "kind", k)
	s.next.Notify(k)
}
