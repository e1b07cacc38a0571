package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one active realtime connection for one user.
type Client struct {
	ID       string
	UserID   uuid.UUID
	Name     string
	JoinedAt time.Time
	Socket   *websocket.Conn
	Events   chan Event

	mu     sync.RWMutex
	closed bool
}

func NewClient(userID uuid.UUID, name string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     name,
		JoinedAt: time.Now().UTC(),
		Events:   make(chan Event, 16),
	}
}

// EnqueueEvent hands an event to the client's writer without blocking.
// A full buffer drops the event: delivery here is at-most-once. Events
// enqueued after Close are dropped the same way; the channel only closes
// while no enqueue is in flight.
func (c *Client) EnqueueEvent(event Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}

// Close releases the writer goroutine draining Events. Safe to call more
// than once and safe against concurrent EnqueueEvent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}
