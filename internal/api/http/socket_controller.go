package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vibesync/vibesync/internal/api/http/middleware"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/realtime"
	"github.com/vibesync/vibesync/internal/service"
	"github.com/vibesync/vibesync/lib/logger/sl"
)

const recentTasksLimit = 10

var (
	errInvalidPayload = errors.New("invalid event payload")
	errRoomMismatch   = errors.New("room does not belong to you")
)

func errUnsupportedIntent(eventType string) error {
	return fmt.Errorf("unsupported event type %q", eventType)
}

// intent is the envelope for client-to-server frames. Data is decoded
// per type at the boundary; an unknown type or a malformed payload is
// answered with an error event, never acted upon.
type intent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type SocketController struct {
	hub   *realtime.Hub
	auth  service.AuthInteractor
	chat  service.ChatInteractor
	tasks service.TaskInteractor
	log   *slog.Logger

	upgrader websocket.Upgrader
}

func NewSocketController(hub *realtime.Hub, auth service.AuthInteractor, chat service.ChatInteractor, tasks service.TaskInteractor, log *slog.Logger) *SocketController {
	if log == nil {
		log = slog.Default()
	}
	return &SocketController{
		hub:   hub,
		auth:  auth,
		chat:  chat,
		tasks: tasks,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Serve upgrades the connection and runs its read loop until the socket
// dies. The identity comes from the auth middleware; clients never get to
// claim who they are over the socket.
func (c *SocketController) Serve(ctx *gin.Context) {
	userID := middleware.UserID(ctx)

	user, err := c.auth.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Error("websocket upgrade failed", sl.Err(err))
		return
	}

	client := domain.NewClient(user.ID, user.Name)
	client.Socket = conn
	c.hub.Register(client)

	go forwardClientEvents(client)

	for {
		var msg intent
		if err := conn.ReadJSON(&msg); err != nil {
			c.hub.Disconnect(context.Background(), client.ID)
			conn.Close()
			return
		}

		if err := c.handleIntent(context.Background(), client, &msg); err != nil {
			client.EnqueueEvent(domain.Event{
				Type:    domain.EventError,
				Payload: domain.ErrorPayload{Message: err.Error()},
			})
		}
	}
}

func (c *SocketController) handleIntent(ctx context.Context, client *domain.Client, msg *intent) error {
	switch msg.Type {
	case "user_online":
		return c.handleOnline(ctx, client)
	case "join_couple_room":
		return c.handleJoin(ctx, client, msg.Data)
	case "send_message":
		return c.handleSendMessage(ctx, client, msg.Data)
	case "typing":
		return c.handleTyping(ctx, client, msg.Data, domain.EventTyping)
	case "stop_typing":
		return c.handleTyping(ctx, client, msg.Data, domain.EventStopTyping)
	case "mood_update":
		return c.handleMoodUpdate(ctx, client, msg.Data)
	case "task_update":
		return c.handleTaskUpdate(ctx, client, msg.Data)
	case "feedback_submitted":
		return c.handleFeedback(ctx, client, msg.Data)
	case "refresh_dashboard":
		return c.handleRefreshDashboard(ctx, client)
	default:
		return errUnsupportedIntent(msg.Type)
	}
}

// handleOnline records presence and pushes the user's current state: the
// latest tasks and, when shared, the partner's mood. The couple room and
// presence scopes are derived from the stored partner link, not from
// anything the client sent.
func (c *SocketController) handleOnline(ctx context.Context, client *domain.Client) error {
	user, err := c.auth.GetUser(ctx, client.UserID)
	if err != nil {
		return err
	}

	partnerID := uuid.Nil
	if user.HasPartner() {
		partnerID = *user.PartnerID
	}
	c.hub.Announce(ctx, client, partnerID)

	if partnerID == uuid.Nil {
		return nil
	}

	if tasks, err := c.tasks.ListRecent(ctx, client.UserID, recentTasksLimit); err == nil {
		client.EnqueueEvent(domain.Event{
			Type:    domain.EventTasksUpdate,
			Payload: tasks,
		})
	}

	partner, err := c.auth.GetUser(ctx, partnerID)
	if err != nil {
		return nil
	}
	if mood, intensity := partner.SharedMood(); mood != nil && *mood != "" {
		client.EnqueueEvent(domain.Event{
			Type: domain.EventPartnerMood,
			Payload: domain.MoodPayload{
				UserID:    partner.ID,
				Mood:      mood,
				Intensity: intensity,
				Privacy:   partner.MoodPrivacy,
				Timestamp: partner.LastMoodUpdate,
			},
		})
	}
	return nil
}

// handleJoin honors a room join only when the claimed room matches the
// one derived from the caller's own partner link. The earlier behavior of
// trusting the client-supplied id let any connection listen in on any
// couple.
func (c *SocketController) handleJoin(ctx context.Context, client *domain.Client, data json.RawMessage) error {
	var payload struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}

	expected, err := c.deriveCoupleRoom(ctx, client.UserID)
	if err != nil {
		return err
	}
	if payload.Room != expected {
		c.log.Warn("rejected join for mismatched room",
			slog.String("user_id", client.UserID.String()),
			slog.String("claimed", payload.Room),
		)
		return errRoomMismatch
	}

	c.hub.Join(client.ID, expected)
	return nil
}

func (c *SocketController) handleSendMessage(ctx context.Context, client *domain.Client, data json.RawMessage) error {
	var payload struct {
		Room    string    `json:"room"`
		Author  string    `json:"author"`
		Message string    `json:"message"`
		Time    time.Time `json:"time"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}

	// Persist first; the broadcast is fire-and-forget, the store is not.
	msg, err := c.chat.SendMessage(ctx, payload.Room, client.UserID, payload.Author, payload.Message, payload.Time)
	if err != nil {
		return err
	}

	c.hub.Broadcast(payload.Room, domain.Event{
		Type:    domain.EventReceiveMessage,
		Payload: msg,
	}, client.ID)
	return nil
}

func (c *SocketController) handleTyping(ctx context.Context, client *domain.Client, data json.RawMessage, event domain.EventType) error {
	var payload struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}

	expected, err := c.deriveCoupleRoom(ctx, client.UserID)
	if err != nil {
		return err
	}
	if payload.Room != expected {
		return errRoomMismatch
	}

	c.hub.Broadcast(expected, domain.Event{Type: event}, client.ID)
	return nil
}

func (c *SocketController) handleMoodUpdate(ctx context.Context, client *domain.Client, data json.RawMessage) error {
	var payload struct {
		Mood      domain.Mood `json:"mood"`
		Intensity int         `json:"intensity"`
		Privacy   *bool       `json:"privacy"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}

	// The service persists and fans out with privacy applied.
	_, err := c.auth.UpdateMood(ctx, client.UserID, payload.Mood, payload.Intensity, payload.Privacy)
	return err
}

func (c *SocketController) handleTaskUpdate(ctx context.Context, client *domain.Client, data json.RawMessage) error {
	var payload struct {
		TaskID uuid.UUID `json:"taskId"`
		Status string    `json:"status"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	if payload.Status != string(domain.TaskStatusCompleted) {
		return errInvalidPayload
	}

	_, err := c.tasks.Complete(ctx, client.UserID, payload.TaskID)
	return err
}

func (c *SocketController) handleFeedback(ctx context.Context, client *domain.Client, data json.RawMessage) error {
	var payload struct {
		TaskID  uuid.UUID `json:"taskId"`
		Rating  int       `json:"rating"`
		Comment string    `json:"comment"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}

	_, err := c.tasks.SubmitFeedback(ctx, client.UserID, payload.TaskID, payload.Rating, payload.Comment)
	return err
}

func (c *SocketController) handleRefreshDashboard(ctx context.Context, client *domain.Client) error {
	tasks, err := c.tasks.ListRecent(ctx, client.UserID, 2*recentTasksLimit)
	if err != nil {
		return err
	}

	client.EnqueueEvent(domain.Event{
		Type: domain.EventDashboardUpdate,
		Payload: domain.DashboardPayload{
			Tasks:     tasks,
			Timestamp: time.Now().UTC(),
		},
	})
	return nil
}

func (c *SocketController) deriveCoupleRoom(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := c.auth.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.HasPartner() {
		return "", service.ErrNoPartner
	}
	return realtime.CoupleRoomID(user.ID, *user.PartnerID), nil
}

// forwardClientEvents drains the client's event buffer onto the socket.
// The channel is closed by the hub on disconnect; a write error just ends
// the writer, the read loop notices the dead socket on its own.
func forwardClientEvents(client *domain.Client) {
	for event := range client.Events {
		if err := client.Socket.WriteJSON(event); err != nil {
			return
		}
	}
}
