package vibesync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsServer is a minimal websocket endpoint that records client frames and
// can push server events back.
type wsServer struct {
	*httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conn   *websocket.Conn
	frames chan map[string]any
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()

	s := &wsServer{frames: make(chan map[string]any, 32)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			s.frames <- frame
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *wsServer) push(t *testing.T, event Event) {
	t.Helper()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	require.NotNil(t, conn)
	require.NoError(t, conn.WriteJSON(event))
}

func (s *wsServer) nextFrame(t *testing.T) map[string]any {
	t.Helper()

	select {
	case frame := <-s.frames:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client frame")
		return nil
	}
}

func (s *wsServer) noFrame(t *testing.T, wait time.Duration) {
	t.Helper()

	select {
	case frame := <-s.frames:
		t.Fatalf("unexpected frame: %v", frame)
	case <-time.After(wait):
	}
}

func connect(t *testing.T, s *wsServer) *Client {
	t.Helper()

	c := NewClient(s.URL, "test-token")
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })

	// The announce frame always comes first.
	frame := s.nextFrame(t)
	require.Equal(t, "user_online", frame["type"])
	return c
}

func TestClient_ConnectAnnounces(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	assert.Equal(t, StateConnectedIdle, c.State())
}

func TestClient_SendWithoutConnect(t *testing.T) {
	c := NewClient("http://localhost:0", "token")

	assert.ErrorIs(t, c.SendMessage("room", "alex", "hi"), ErrNotConnected)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_SendMessageFrame(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	require.NoError(t, c.SendMessage("a_b", "alex", "hello"))

	frame := s.nextFrame(t)
	assert.Equal(t, "send_message", frame["type"])
	data := frame["data"].(map[string]any)
	assert.Equal(t, "a_b", data["room"])
	assert.Equal(t, "alex", data["author"])
	assert.Equal(t, "hello", data["message"])
}

func TestClient_TypingEmitsOnce(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	require.NoError(t, c.Typing("a_b"))
	require.NoError(t, c.Typing("a_b"))
	require.NoError(t, c.Typing("a_b"))

	frame := s.nextFrame(t)
	assert.Equal(t, "typing", frame["type"])
	s.noFrame(t, 200*time.Millisecond)

	require.NoError(t, c.StopTyping("a_b"))
	frame = s.nextFrame(t)
	assert.Equal(t, "stop_typing", frame["type"])

	// Stopping again, or the expired timer firing, sends nothing more.
	require.NoError(t, c.StopTyping("a_b"))
	s.noFrame(t, 200*time.Millisecond)
}

func TestClient_SendMessageResolvesTyping(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	require.NoError(t, c.Typing("a_b"))
	require.Equal(t, "typing", s.nextFrame(t)["type"])

	require.NoError(t, c.SendMessage("a_b", "alex", "done typing"))

	assert.Equal(t, "stop_typing", s.nextFrame(t)["type"])
	assert.Equal(t, "send_message", s.nextFrame(t)["type"])
}

func TestClient_PartnerTypingState(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	events := make(chan Event, 8)
	c.OnEvent(func(e Event) { events <- e })

	s.push(t, Event{Type: "typing"})
	require.Eventually(t, func() bool {
		return c.State() == StateConnectedPartnerTyping
	}, 2*time.Second, 10*time.Millisecond)

	msg, _ := json.Marshal(map[string]string{"message": "hi"})
	s.push(t, Event{Type: "receive_message", Payload: msg})
	require.Eventually(t, func() bool {
		return c.State() == StateConnectedIdle
	}, 2*time.Second, 10*time.Millisecond)

	got := <-events
	assert.Equal(t, "typing", got.Type)
	got = <-events
	assert.Equal(t, "receive_message", got.Type)
}

func TestClient_CloseDropsState(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	s.push(t, Event{Type: "typing"})
	require.Eventually(t, func() bool {
		return c.State() == StateConnectedPartnerTyping
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_ReconnectReannounces(t *testing.T) {
	s := newWSServer(t)
	c := connect(t, s)

	require.NoError(t, c.Close())
	require.NoError(t, c.Connect())
	defer c.Close()

	frame := s.nextFrame(t)
	assert.Equal(t, "user_online", frame["type"])
	assert.Equal(t, StateConnectedIdle, c.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnectedIdle.String())
	assert.Equal(t, "partner_typing", StateConnectedPartnerTyping.String())
}
