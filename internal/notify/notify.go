// Package notify keeps the transient notifications shown to the user.
// Nothing here touches the network.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirius-dms/dms-client/internal/logging"
	"github.com/sirius-dms/dms-client/internal/observe"
	"go.uber.org/zap"
)

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultAutoCloseDelay is how long a notification lives unless configured otherwise.
const DefaultAutoCloseDelay = 5 * time.Second

// Notification is one message in the center.
type Notification struct {
	ID        string
	Kind      Kind
	Title     string
	Message   string
	CreatedAt time.Time
}

// Center holds notifications in creation order. With a positive
// auto-close delay each notification is removed when the delay elapses;
// otherwise it stays until removed. Safe for concurrent use.
type Center struct {
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	items  []Notification
	timers map[string]*time.Timer

	subs observe.Hub[[]Notification]
}

// NewCenter creates a center whose notifications expire after delay.
// delay <= 0 disables expiry.
func NewCenter(delay time.Duration, logger *zap.Logger) *Center {
	return &Center{
		delay:  delay,
		logger: logging.OrNop(logger),
		timers: make(map[string]*time.Timer),
	}
}

// Add appends a notification and returns its id.
func (c *Center) Add(kind Kind, title, message string) string {
	n := Notification{
		ID:        newID(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if c.delay > 0 {
		id := n.ID
		c.timers[id] = time.AfterFunc(c.delay, func() { c.expire(id) })
	}
	c.mu.Unlock()

	c.logger.Debug("notification added", zap.String("id", n.ID), zap.String("kind", string(kind)))
	c.notify()
	return n.ID
}

func (c *Center) Success(title, message string) string { return c.Add(KindSuccess, title, message) }
func (c *Center) Warning(title, message string) string { return c.Add(KindWarning, title, message) }
func (c *Center) Error(title, message string) string   { return c.Add(KindError, title, message) }
func (c *Center) Info(title, message string) string    { return c.Add(KindInfo, title, message) }

// Remove dismisses a notification. It reports whether id was present.
func (c *Center) Remove(id string) bool {
	c.mu.Lock()
	removed := c.removeLocked(id)
	c.mu.Unlock()
	if removed {
		c.notify()
	}
	return removed
}

func (c *Center) expire(id string) {
	c.mu.Lock()
	removed := c.removeLocked(id)
	c.mu.Unlock()
	if removed {
		c.logger.Debug("notification expired", zap.String("id", id))
		c.notify()
	}
}

func (c *Center) removeLocked(id string) bool {
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear dismisses every notification and stops pending timers.
func (c *Center) Clear() {
	c.mu.Lock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.items = nil
	c.mu.Unlock()
	c.notify()
}

// List returns the current notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// Subscribe registers fn for list changes and returns a function that removes it.
func (c *Center) Subscribe(fn func([]Notification)) func() {
	return c.subs.Subscribe(fn)
}

func (c *Center) notify() {
	c.mu.Lock()
	items := append([]Notification(nil), c.items...)
	ver := c.subs.Stamp()
	c.mu.Unlock()
	c.subs.Publish(ver, items)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
