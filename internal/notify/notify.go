package notify

import (
	"sync"
	"time"

	"landguard/internal/config"
	"landguard/internal/model"
	"landguard/internal/util"
)

// Center collects transient notifications for the operator. Entries expire
// after config.NotificationTTL; the UI polls Pending and never sees an
// unhandled error.
type Center struct {
	mu    sync.Mutex
	items []model.Notification
}

var (
	centerInstance *Center
	centerOnce     sync.Once
)

// GetCenter returns the singleton notification center
func GetCenter() *Center {
	centerOnce.Do(func() {
		centerInstance = &Center{}
	})
	return centerInstance
}

// NewCenter creates an isolated center (used by tests and per-instance wiring)
func NewCenter() *Center {
	return &Center{}
}

// Info posts an informational notification
func (c *Center) Info(message string) {
	c.post(model.NotificationInfo, message)
}

// Error posts an error notification
func (c *Center) Error(message string) {
	c.post(model.NotificationError, message)
}

func (c *Center) post(level model.NotificationLevel, message string) {
	now := time.Now()
	n := model.Notification{
		ID:        util.ShortUUID(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(config.NotificationTTL),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Pending returns the not-yet-expired notifications
func (c *Center) Pending() []model.Notification {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]model.Notification, 0, len(c.items))
	for _, n := range c.items {
		if n.ExpiresAt.After(now) {
			result = append(result, n)
		}
	}
	return result
}

// Expire drops notifications past their TTL; called by the maintenance worker
func (c *Center) Expire() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, n := range c.items {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		}
	}
	c.items = kept
}
