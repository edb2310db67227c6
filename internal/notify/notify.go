package notify

import (
	"sync"
	"time"

	"pos-agent/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-facing message produced by an operation.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(level Level, message string)
}

const defaultCapacity = 100

// Center queues notifications until the front end drains them. The oldest
// entries are dropped once capacity is reached.
type Center struct {
	mu       sync.Mutex
	pending  []Notification
	capacity int
	logger   *zap.Logger
}

func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Center{capacity: capacity, logger: util.Named("notify")}
}

func (c *Center) Notify(level Level, message string) {
	n := Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	switch level {
	case LevelError:
		c.logger.Error(message)
	case LevelWarning:
		c.logger.Warn(message)
	default:
		c.logger.Info(message, zap.String("level", string(level)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) >= c.capacity {
		c.pending = c.pending[1:]
	}
	c.pending = append(c.pending, n)
}

// Drain returns the queued notifications, oldest first, and empties the queue.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Pending returns a copy of the queue without draining it.
func (c *Center) Pending() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.pending...)
}
