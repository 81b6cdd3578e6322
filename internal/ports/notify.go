package ports

import "time"

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is a message surfaced to the host editor, e.g. a skipped
// sidecar move.
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(n Notification)
}
