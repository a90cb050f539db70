package server

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that copies every record it handles to a
// console channel before passing it on to the next handler. Sends never
// block: when the channel is full the console copy is dropped.
type ConsoleHandler struct {
	next        slog.Handler
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
}

// NewConsoleHandler creates a handler for a single render's console
func NewConsoleHandler(consoleChan chan<- ConsoleMessage, next slog.Handler) *ConsoleHandler {
	return &ConsoleHandler{next: next, consoleChan: consoleChan}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.consoleChan != nil {
		select {
		case h.consoleChan <- ConsoleMessage{
			Message:   h.format(record),
			Timestamp: record.Time,
			Level:     levelName(record.Level),
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
	return h.next.Handle(ctx, record)
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConsoleHandler{
		next:        h.next.WithAttrs(attrs),
		consoleChan: h.consoleChan,
		attrs:       append(slices.Clip(h.attrs), attrs...),
	}
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return &ConsoleHandler{
		next:        h.next.WithGroup(name),
		consoleChan: h.consoleChan,
		attrs:       h.attrs,
	}
}

// format renders a record as "message key=value ..."
func (h *ConsoleHandler) format(record slog.Record) string {
	var b strings.Builder
	b.WriteString(record.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	record.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	return b.String()
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
