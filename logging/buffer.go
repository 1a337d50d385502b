package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// BufferHandler is a slog.Handler that keeps formatted records in memory.
// Tests use it to check what the parser reported.
type BufferHandler struct {
	mu    *sync.Mutex
	buf   *bytes.Buffer
	level slog.Leveler
	attrs []slog.Attr
}

// NewBufferHandler returns a handler accepting records at or above level.
// A nil level accepts everything.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{
		mu:    &sync.Mutex{},
		buf:   &bytes.Buffer{},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

// Handle implements slog.Handler. Each record becomes one line:
// LEVEL message key=value ...
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(r.Level.String())
	line.WriteByte(' ')
	line.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&line, " %s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.WriteString(line.String())
	return nil
}

// WithAttrs implements slog.Handler.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *BufferHandler) WithGroup(string) slog.Handler {
	return h
}

// String returns everything logged so far.
func (h *BufferHandler) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}

// Contains reports whether any logged line contains s.
func (h *BufferHandler) Contains(s string) bool {
	return strings.Contains(h.String(), s)
}

// Reset discards the captured output.
func (h *BufferHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
}
