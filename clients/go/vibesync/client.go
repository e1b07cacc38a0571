// Package vibesync provides a realtime client for the VibeSync couples API.
package vibesync

import (
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State describes what the client currently knows about its connection
// and the partner's activity.
type State int

const (
	// StateDisconnected means no live socket. Sends fail fast.
	StateDisconnected State = iota
	// StateConnectedIdle means the socket is up and the partner is not typing.
	StateConnectedIdle
	// StateConnectedPartnerTyping means a typing signal arrived and no
	// stop_typing has followed yet.
	StateConnectedPartnerTyping
)

func (s State) String() string {
	switch s {
	case StateConnectedIdle:
		return "connected"
	case StateConnectedPartnerTyping:
		return "partner_typing"
	default:
		return "disconnected"
	}
}

// typingIdleTimeout is how long after the last keystroke the client emits
// stop_typing on the sender's behalf.
const typingIdleTimeout = 3 * time.Second

// Event is a server-to-client frame. Payload stays raw so callers decode
// only the types they care about.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler receives every event the server pushes, after the client has
// applied its own state transitions.
type Handler func(Event)

var ErrNotConnected = errors.New("vibesync: not connected")

// Client is a realtime VibeSync client for one authenticated user. All
// methods are safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	dialer  *websocket.Dialer
	handler Handler

	mu          sync.Mutex
	conn        *websocket.Conn
	state       State
	writeMu     sync.Mutex
	typingTimer *time.Timer
	typingSent  bool
}

// NewClient creates a client. baseURL is the server origin, for example
// "http://localhost:5000"; token is the JWT obtained from the login
// endpoint.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		state:   StateDisconnected,
	}
}

// OnEvent registers the handler invoked for every incoming event. Set it
// before calling Connect.
func (c *Client) OnEvent(h Handler) {
	c.handler = h
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the websocket endpoint and announces presence. The same
// sequence runs on every reconnect: dial, then user_online, so the server
// re-derives rooms from scratch and the partner is re-notified.
func (c *Client) Connect() error {
	wsURL, err := c.socketURL()
	if err != nil {
		return err
	}

	conn, resp, err := c.dialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnectedIdle
	c.mu.Unlock()

	if err := c.send("user_online", nil); err != nil {
		c.Close()
		return err
	}

	go c.readLoop(conn)
	return nil
}

// Close tears the connection down. The state drops to Disconnected; any
// partner-typing knowledge is discarded because it cannot be trusted
// across a gap.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.typingSent = false
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// JoinCoupleRoom asks the server to add this connection to the couple
// chat room. The server verifies the room against the stored partner
// link and rejects anything else.
func (c *Client) JoinCoupleRoom(room string) error {
	return c.send("join_couple_room", map[string]any{"room": room})
}

// SendMessage sends a chat message to the couple room. Sending counts as
// activity, so any pending typing timer is resolved with stop_typing.
func (c *Client) SendMessage(room, author, text string) error {
	c.stopTyping(room)
	return c.send("send_message", map[string]any{
		"room":    room,
		"author":  author,
		"message": text,
		"time":    time.Now().UTC(),
	})
}

// Typing signals that the user is composing. The first call emits the
// typing event; repeated calls just push the inactivity deadline out.
// After three seconds without another call, stop_typing goes out exactly
// once.
func (c *Client) Typing(room string) error {
	c.mu.Lock()
	first := !c.typingSent
	c.typingSent = true
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(typingIdleTimeout, func() {
		c.stopTyping(room)
	})
	c.mu.Unlock()

	if !first {
		return nil
	}
	return c.send("typing", map[string]any{"room": room})
}

// StopTyping ends the composing signal immediately instead of waiting
// out the inactivity timeout.
func (c *Client) StopTyping(room string) error {
	c.stopTyping(room)
	return nil
}

func (c *Client) stopTyping(room string) {
	c.mu.Lock()
	sent := c.typingSent
	c.typingSent = false
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.mu.Unlock()

	if sent {
		_ = c.send("stop_typing", map[string]any{"room": room})
	}
}

// UpdateMood publishes a mood change. Privacy may be nil to leave the
// current sharing preference untouched.
func (c *Client) UpdateMood(mood string, intensity int, privacy *bool) error {
	payload := map[string]any{"mood": mood, "intensity": intensity}
	if privacy != nil {
		payload["privacy"] = *privacy
	}
	return c.send("mood_update", payload)
}

// CompleteTask marks the day's task as completed.
func (c *Client) CompleteTask(taskID string) error {
	return c.send("task_update", map[string]any{
		"taskId": taskID,
		"status": "completed",
	})
}

// SubmitFeedback rates a completed task.
func (c *Client) SubmitFeedback(taskID string, rating int, comment string) error {
	return c.send("feedback_submitted", map[string]any{
		"taskId":  taskID,
		"rating":  rating,
		"comment": comment,
	})
}

// RefreshDashboard requests a fresh dashboard snapshot for this
// connection only.
func (c *Client) RefreshDashboard() error {
	return c.send("refresh_dashboard", nil)
}

func (c *Client) socketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/api/ws"
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) send(eventType string, data any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	frame := struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{Type: eventType, Data: data}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

// readLoop consumes server frames until the socket dies, applying the
// typing state transitions before handing each event to the handler.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.state = StateDisconnected
			}
			c.mu.Unlock()
			return
		}

		c.transition(event.Type)

		if c.handler != nil {
			c.handler(event)
		}
	}
}

func (c *Client) transition(eventType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisconnected {
		return
	}

	switch eventType {
	case "typing":
		c.state = StateConnectedPartnerTyping
	case "stop_typing", "receive_message", "partner_offline":
		// A message or the partner leaving ends the typing indicator too;
		// duplicate stop signals are harmless.
		c.state = StateConnectedIdle
	}
}
