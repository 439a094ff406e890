package model

import "time"

// NotificationLevel classifies a transient notification
type NotificationLevel int

const (
	NotificationInfo NotificationLevel = iota
	NotificationError
)

// Notification is a transient, auto-dismissing message surfaced to the
// operator; it never represents an unhandled failure.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"-"`
}
