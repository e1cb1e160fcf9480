// Package console implements the conference UI ports for a terminal session.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/conference"
)

// Router remembers the current route and prints every navigation.
type Router struct {
	out io.Writer

	mu      sync.Mutex
	current string
}

func NewRouter(out io.Writer) *Router {
	return &Router{out: out, current: conference.RouteRoot}
}

func (r *Router) Push(path string) {
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()

	slog.Debug("navigate", slog.String(constant.Path, path))

	fmt.Fprintf(r.out, "-> %s\n", path)
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

type Notifier struct {
	out io.Writer
	mu  sync.Mutex
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(note conference.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintf(n.out, "[%s] %s\n", note.Duration, note.Message)
}

// Clipboard prints copied text; a terminal has no portable clipboard.
type Clipboard struct {
	out io.Writer

	mu   sync.Mutex
	last string
}

func NewClipboard(out io.Writer) *Clipboard {
	return &Clipboard{out: out}
}

func (c *Clipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.out, "copied: %s\n", text); err != nil {
		return fmt.Errorf("write clipboard text: %w", err)
	}

	c.last = text

	return nil
}

func (c *Clipboard) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// SyncWriter serializes writes from the room goroutines onto one terminal.
func SyncWriter(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}
