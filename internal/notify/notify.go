// Package notify is the transient alert surface. The portal shows the
// latest entries as toasts; the log sink keeps a record of each.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, title, message string, severity Severity)
}

// Feed keeps the most recent notifications in memory
type Feed struct {
	mu       sync.RWMutex
	capacity int
	items    []Notification
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 50
	}
	return &Feed{capacity: capacity}
}

func (f *Feed) Notify(_ context.Context, title, message string, severity Severity) {
	n := Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
}

// Recent returns up to limit notifications, newest first
func (f *Feed) Recent(limit int) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Notification, 0, n)
	for i := len(f.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.items[i])
	}
	return out
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, title, message string, severity Severity) {
	fields := []zap.Field{
		zap.String("title", title),
		zap.String("message", message),
	}
	if severity == SeverityError {
		l.logger.Warn("Notification", fields...)
		return
	}
	l.logger.Info("Notification", fields...)
}

// Multi fans a notification out to every sink
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, message string, severity Severity) {
	for _, n := range m {
		n.Notify(ctx, title, message, severity)
	}
}
