package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/metrics"
	"github.com/vibesync/vibesync/lib/logger/sl"
)

// Hub owns room membership and fan-out for one server process. All state
// changes worth telling the partner about flow through it; delivery is
// fire-and-forget and failures never propagate back to the caller.
type Hub struct {
	registry Registry
	log      *slog.Logger

	mu      sync.RWMutex
	clients map[string]*domain.Client
	rooms   map[string]map[string]*domain.Client
	joined  map[string]map[string]struct{} // connID -> room ids
}

func NewHub(registry Registry, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		registry: registry,
		log:      log,
		clients:  make(map[string]*domain.Client),
		rooms:    make(map[string]map[string]*domain.Client),
		joined:   make(map[string]map[string]struct{}),
	}
}

// Register adds a freshly upgraded connection to the hub.
func (h *Hub) Register(c *domain.Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	metrics.ClientsConnected.Inc()
	h.log.Info("client connected",
		slog.String("conn_id", c.ID),
		slog.String("user_id", c.UserID.String()),
	)
}

// Join puts the connection into a room. Joining twice has no extra effect.
func (h *Hub) Join(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*domain.Client)
	}
	h.rooms[roomID][connID] = c

	if h.joined[connID] == nil {
		h.joined[connID] = make(map[string]struct{})
	}
	h.joined[connID][roomID] = struct{}{}
}

// Announce records the user as online and notifies the partner. The
// connection joins its user room, its own presence room's subscriber side
// (the partner's presence room) and the couple chat room, all derived
// server-side from the authenticated identity.
func (h *Hub) Announce(ctx context.Context, c *domain.Client, partnerID uuid.UUID) {
	h.Join(c.ID, UserRoomID(c.UserID))
	if partnerID != uuid.Nil {
		h.Join(c.ID, PresenceRoomID(partnerID))
		h.Join(c.ID, CoupleRoomID(c.UserID, partnerID))
	}

	if err := h.registry.MarkOnline(ctx, c.UserID, c.ID); err != nil {
		h.log.Error("failed to mark online", sl.Err(err))
	}

	// Addressed by the announcing user's identity: the partner joined
	// this room while announcing, or will see fresh state on refetch if
	// they have not yet.
	h.Broadcast(PresenceRoomID(c.UserID), domain.Event{
		Type:    domain.EventPartnerOnline,
		Payload: domain.PresencePayload{UserID: c.UserID},
	}, c.ID)

	// A partner who announced earlier broadcast into an empty room; tell
	// the late arriver directly so both sides end up knowing.
	if partnerID != uuid.Nil {
		if online, err := h.registry.IsOnline(ctx, partnerID); err == nil && online {
			h.deliver([]*domain.Client{c}, domain.Event{
				Type:    domain.EventPartnerOnline,
				Room:    PresenceRoomID(partnerID),
				Payload: domain.PresencePayload{UserID: partnerID},
			})
		}
	}
}

// Disconnect removes the connection from every room and, when it was the
// user's current session, clears presence and notifies the partner.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	if ok {
		delete(h.clients, connID)
	}
	for roomID := range h.joined[connID] {
		delete(h.rooms[roomID], connID)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.joined, connID)
	h.mu.Unlock()

	if !ok {
		return
	}

	metrics.ClientsConnected.Dec()
	c.Close()

	userID, wasOnline, err := h.registry.MarkOffline(ctx, connID)
	if err != nil {
		h.log.Error("failed to mark offline", sl.Err(err))
		return
	}
	if !wasOnline {
		return
	}

	h.log.Info("client disconnected",
		slog.String("conn_id", connID),
		slog.String("user_id", userID.String()),
	)

	h.Broadcast(PresenceRoomID(userID), domain.Event{
		Type:    domain.EventPartnerOffline,
		Payload: domain.PresencePayload{UserID: userID},
	}, connID)
}

// IsOnline is a pure lookup against the presence registry.
func (h *Hub) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	online, err := h.registry.IsOnline(ctx, userID)
	if err != nil {
		h.log.Error("presence lookup failed", sl.Err(err))
		return false
	}
	return online
}

// Broadcast delivers the event to every room member except the sender's
// connection, so nobody sees their own action echoed back.
func (h *Hub) Broadcast(roomID string, event domain.Event, excludeConnID string) {
	event.Room = roomID

	h.mu.RLock()
	targets := make([]*domain.Client, 0, len(h.rooms[roomID]))
	for id, c := range h.rooms[roomID] {
		if id == excludeConnID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, event)
}

// BroadcastAll delivers the event to every room member, sender included.
// Task lifecycle events use it: both members refetch.
func (h *Hub) BroadcastAll(roomID string, event domain.Event) {
	h.Broadcast(roomID, event, "")
}

// EmitToUser delivers the event to the user's own room, reaching whichever
// connection they currently hold.
func (h *Hub) EmitToUser(userID uuid.UUID, event domain.Event) {
	h.Broadcast(UserRoomID(userID), event, "")
}

func (h *Hub) deliver(targets []*domain.Client, event domain.Event) {
	for _, c := range targets {
		if c.EnqueueEvent(event) {
			metrics.EventsFannedOut.WithLabelValues(string(event.Type)).Inc()
		} else {
			metrics.EventsDropped.WithLabelValues(string(event.Type)).Inc()
			h.log.Debug("dropping event",
				slog.String("conn_id", c.ID),
				slog.String("type", string(event.Type)),
			)
		}
	}
}
