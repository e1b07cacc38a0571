package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibesync/vibesync/internal/realtime"
)

func TestChatService_SendAndHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	room := realtime.CoupleRoomID(alex.ID, sam.ID)

	first, err := env.chat.SendMessage(ctx, room, alex.ID, "alex", "hey you", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, alex.ID, first.SenderID)

	_, err = env.chat.SendMessage(ctx, room, sam.ID, "sam", "hey back", time.Time{})
	require.NoError(t, err)

	history, err := env.chat.History(ctx, sam.ID, room)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hey you", history[0].Text)
	assert.Equal(t, "hey back", history[1].Text)
}

func TestChatService_SendTrimsAndRejectsEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	room := realtime.CoupleRoomID(alex.ID, sam.ID)

	msg, err := env.chat.SendMessage(ctx, room, alex.ID, "alex", "  padded  ", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "padded", msg.Text)

	_, err = env.chat.SendMessage(ctx, room, alex.ID, "alex", "   ", time.Time{})
	assert.Error(t, err)
}

func TestChatService_SendRejectsOverlongMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	room := realtime.CoupleRoomID(alex.ID, sam.ID)

	_, err := env.chat.SendMessage(ctx, room, alex.ID, "alex", strings.Repeat("a", 4001), time.Time{})
	assert.Error(t, err)
}

func TestChatService_RoomMembershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	outsider := env.addUser(t, "jo", "jo@example.com")
	room := realtime.CoupleRoomID(alex.ID, sam.ID)

	_, err := env.chat.SendMessage(ctx, room, outsider.ID, "jo", "let me in", time.Time{})
	assert.ErrorIs(t, err, ErrRoomForbidden)

	_, err = env.chat.History(ctx, outsider.ID, room)
	assert.ErrorIs(t, err, ErrRoomForbidden)
}

func TestChatService_ClientTimestampKept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alex, sam := env.addCouple(t)
	room := realtime.CoupleRoomID(alex.ID, sam.ID)

	sentAt := time.Date(2026, 8, 14, 20, 30, 0, 0, time.UTC)
	msg, err := env.chat.SendMessage(ctx, room, alex.ID, "alex", "late note", sentAt)
	require.NoError(t, err)
	assert.Equal(t, sentAt, msg.SentAt)
}
