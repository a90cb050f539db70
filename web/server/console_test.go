package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(ch chan ConsoleMessage, level slog.Level) *slog.Logger {
	next := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
	return slog.New(NewConsoleHandler(ch, next))
}

func TestConsoleHandler_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := newTestConsole(messageChan, slog.LevelInfo)

	logger.Info("Test log message", "pass", 2)

	select {
	case msg := <-messageChan:
		assert.Equal(t, "Test log message pass=2", msg.Message)
		assert.Equal(t, "info", msg.Level)
		assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Second)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for console message")
	}
}

func TestConsoleHandler_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := newTestConsole(messageChan, slog.LevelInfo)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Info(msg)
	}

	var received []string
	for range messages {
		select {
		case msg := <-messageChan:
			received = append(received, msg.Message)
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout after %d messages", len(received))
		}
	}
	assert.Equal(t, messages, received, "messages should arrive in order")
}

func TestConsoleHandler_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := newTestConsole(messageChan, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Warn("careful")
	logger.Error("broken")

	require.Len(t, messageChan, 2, "debug records are filtered by the next handler's level")
	assert.Equal(t, "warning", (<-messageChan).Level)
	assert.Equal(t, "error", (<-messageChan).Level)
}

func TestConsoleHandler_WithAttrs(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := newTestConsole(messageChan, slog.LevelInfo).With("render", "abc")

	logger.Info("pass complete", "pass", 1)

	msg := <-messageChan
	assert.Equal(t, "pass complete render=abc pass=1", msg.Message)
}

func TestConsoleHandler_FullChannelDoesNotBlock(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := newTestConsole(messageChan, slog.LevelInfo)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			logger.Info("spam")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logging blocked on a full console channel")
	}
	assert.Len(t, messageChan, 1)
}

func TestConsoleHandler_NilChannel(t *testing.T) {
	h := NewConsoleHandler(nil, slog.NewTextHandler(io.Discard, nil))
	assert.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "no console", 0)))
}
