package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibesync/vibesync/internal/domain"
)

func newTestHub() *Hub {
	return NewHub(NewInMemoryRegistry(), nil)
}

func drain(c *domain.Client) []domain.Event {
	var events []domain.Event
	for {
		select {
		case e := <-c.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	hub := newTestHub()

	sender := domain.NewClient(uuid.New(), "alex")
	receiver := domain.NewClient(uuid.New(), "sam")
	hub.Register(sender)
	hub.Register(receiver)
	hub.Join(sender.ID, "room")
	hub.Join(receiver.ID, "room")

	hub.Broadcast("room", domain.Event{Type: domain.EventTyping}, sender.ID)

	assert.Empty(t, drain(sender))

	got := drain(receiver)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventTyping, got[0].Type)
	assert.Equal(t, "room", got[0].Room)
}

func TestHub_BroadcastAllIncludesSender(t *testing.T) {
	hub := newTestHub()

	a := domain.NewClient(uuid.New(), "alex")
	b := domain.NewClient(uuid.New(), "sam")
	hub.Register(a)
	hub.Register(b)
	hub.Join(a.ID, "room")
	hub.Join(b.ID, "room")

	hub.BroadcastAll("room", domain.Event{Type: domain.EventTaskStatus})

	require.Len(t, drain(a), 1)
	require.Len(t, drain(b), 1)
}

func TestHub_BroadcastToUnknownRoom(t *testing.T) {
	hub := newTestHub()

	// Must not panic or error, there is just nobody to tell.
	hub.Broadcast("empty", domain.Event{Type: domain.EventTyping}, "")
}

func TestHub_AnnounceNotifiesEarlierPartner(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	alexID := uuid.New()
	samID := uuid.New()

	sam := domain.NewClient(samID, "sam")
	hub.Register(sam)
	hub.Announce(ctx, sam, alexID)

	// Sam came online into an empty presence room; nothing arrives.
	assert.Empty(t, drain(sam))

	alex := domain.NewClient(alexID, "alex")
	hub.Register(alex)
	hub.Announce(ctx, alex, samID)

	got := drain(sam)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventPartnerOnline, got[0].Type)
	payload, ok := got[0].Payload.(domain.PresencePayload)
	require.True(t, ok)
	assert.Equal(t, alexID, payload.UserID)

	// The late arriver learns about the already-online partner, without
	// hearing their own presence echoed back.
	got = drain(alex)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventPartnerOnline, got[0].Type)
	payload, ok = got[0].Payload.(domain.PresencePayload)
	require.True(t, ok)
	assert.Equal(t, samID, payload.UserID)

	assert.True(t, hub.IsOnline(ctx, alexID))
	assert.True(t, hub.IsOnline(ctx, samID))
}

func TestHub_DisconnectNotifiesPartner(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	alexID := uuid.New()
	samID := uuid.New()

	sam := domain.NewClient(samID, "sam")
	hub.Register(sam)
	hub.Announce(ctx, sam, alexID)

	alex := domain.NewClient(alexID, "alex")
	hub.Register(alex)
	hub.Announce(ctx, alex, samID)
	drain(sam)
	drain(alex)

	hub.Disconnect(ctx, alex.ID)

	got := drain(sam)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventPartnerOffline, got[0].Type)
	payload, ok := got[0].Payload.(domain.PresencePayload)
	require.True(t, ok)
	assert.Equal(t, alexID, payload.UserID)

	assert.False(t, hub.IsOnline(ctx, alexID))

	// The events channel is closed so the writer goroutine ends.
	_, open := <-alex.Events
	assert.False(t, open)
}

func TestHub_DisconnectUnknownConn(t *testing.T) {
	hub := newTestHub()

	hub.Disconnect(context.Background(), "never-registered")
}

func TestHub_EmitToUser(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	userID := uuid.New()
	c := domain.NewClient(userID, "alex")
	hub.Register(c)
	hub.Announce(ctx, c, uuid.Nil)

	hub.EmitToUser(userID, domain.Event{Type: domain.EventPartnerResponded})

	got := drain(c)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EventPartnerResponded, got[0].Type)
}

func TestHub_DeliverAfterDisconnect(t *testing.T) {
	hub := newTestHub()
	ctx := context.Background()

	c := domain.NewClient(uuid.New(), "alex")
	hub.Register(c)
	hub.Join(c.ID, "room")

	// Broadcast snapshots members outside the lock, so a disconnect can
	// land between the snapshot and the enqueue. Replaying that ordering
	// must drop the event, not panic on a released channel.
	hub.mu.RLock()
	targets := make([]*domain.Client, 0, len(hub.rooms["room"]))
	for _, member := range hub.rooms["room"] {
		targets = append(targets, member)
	}
	hub.mu.RUnlock()
	require.Len(t, targets, 1)

	hub.Disconnect(ctx, c.ID)

	require.NotPanics(t, func() {
		hub.deliver(targets, domain.Event{Type: domain.EventReceiveMessage})
	})
	assert.False(t, c.EnqueueEvent(domain.Event{Type: domain.EventTyping}))
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub := newTestHub()

	c := domain.NewClient(uuid.New(), "alex")
	hub.Register(c)
	hub.Join(c.ID, "room")

	for i := 0; i < cap(c.Events); i++ {
		require.True(t, c.EnqueueEvent(domain.Event{Type: domain.EventTyping}))
	}

	// The slow consumer loses this one instead of stalling the hub.
	hub.Broadcast("room", domain.Event{Type: domain.EventReceiveMessage}, "")

	got := drain(c)
	assert.Len(t, got, cap(c.Events))
	for _, e := range got {
		assert.Equal(t, domain.EventTyping, e.Type)
	}
}
