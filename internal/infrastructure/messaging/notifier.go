// Package messaging implements the client's user-notification bus. The request
// pipeline and other components publish user-facing notices here instead of
// printing directly; interface layers (the terminal UI, tests) subscribe and
// decide how to render them.
package messaging

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a single user-facing message.
type Notice struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Handler receives published notices.
type Handler func(Notice)

// Bus is an in-memory publish/subscribe hub for notices.
//
// Dispatch is synchronous and in subscription order: by the time Publish
// returns, every subscriber has seen the notice. This keeps the pipeline's
// "notify, then return the error" ordering observable.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// NewBus creates a notification bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a handler for all future notices.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers a notice to every subscriber.
func (b *Bus) Publish(level Level, message string) {
	notice := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	b.logger.Debug("notice published", "level", string(level), "message", message)

	for _, h := range handlers {
		h(notice)
	}
}

// Info publishes an informational notice.
func (b *Bus) Info(message string) { b.Publish(LevelInfo, message) }

// Success publishes a success notice.
func (b *Bus) Success(message string) { b.Publish(LevelSuccess, message) }

// Warning publishes a warning notice.
func (b *Bus) Warning(message string) { b.Publish(LevelWarning, message) }

// Error publishes an error notice.
func (b *Bus) Error(message string) { b.Publish(LevelError, message) }
