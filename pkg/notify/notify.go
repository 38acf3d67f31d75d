package notify

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vango-dev/area/pkg/reactive"
)

// Level is the notification level.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notification is one message for the user.
type Notification struct {
	ID      uint64    `json:"id"`
	Level   Level     `json:"level"`
	Title   string    `json:"title,omitempty"`
	Message string    `json:"message"`
	Area    string    `json:"area,omitempty"`
	Time    time.Time `json:"time"`
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the notifier's logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// Notifier publishes notifications.
type Notifier struct {
	events *reactive.Subject[Notification]
	seq    atomic.Uint64
	logger *slog.Logger
	now    func() time.Time
}

// New creates a notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		events: reactive.NewSubject[Notification](),
		logger: slog.Default().With("component", "notify"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show publishes a notification.
func (n *Notifier) Show(level Level, message string) Notification {
	return n.Publish(Notification{Level: level, Message: message})
}

// Success publishes a success notification.
//
//	n.Success("Changes saved!")
func (n *Notifier) Success(message string) Notification {
	return n.Show(LevelSuccess, message)
}

// Error publishes an error notification.
//
//	n.Error("Failed to delete item")
func (n *Notifier) Error(message string) Notification {
	return n.Show(LevelError, message)
}

// Warning publishes a warning notification.
func (n *Notifier) Warning(message string) Notification {
	return n.Show(LevelWarning, message)
}

// Info publishes an info notification.
func (n *Notifier) Info(message string) Notification {
	return n.Show(LevelInfo, message)
}

// WithTitle publishes a notification with a title and message.
//
//	n.WithTitle(notify.LevelSuccess, "Settings", "Your changes have been saved.")
func (n *Notifier) WithTitle(level Level, title, message string) Notification {
	return n.Publish(Notification{Level: level, Title: title, Message: message})
}

// Publish fills in the ID and time of note and publishes it.
func (n *Notifier) Publish(note Notification) Notification {
	if note.Level == "" {
		note.Level = LevelInfo
	}
	note.ID = n.seq.Add(1)
	if note.Time.IsZero() {
		note.Time = n.now()
	}
	n.logger.Debug("notification", "level", string(note.Level), "message", note.Message)
	n.events.Next(note)
	return note
}

// Events emits every published notification.
func (n *Notifier) Events() reactive.Observable[Notification] {
	return n.events
}

// Close completes Events.
func (n *Notifier) Close() {
	n.events.Complete()
}
