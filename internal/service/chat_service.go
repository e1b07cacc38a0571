package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/internal/metrics"
	"github.com/vibesync/vibesync/internal/repository"
)

const maxChatMessageLength = 4000

var ErrRoomForbidden = errors.New("not authorized for this chat room")

type ChatService struct {
	messages repository.MessageRepository
	log      *slog.Logger
}

func NewChatService(messages repository.MessageRepository, log *slog.Logger) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &ChatService{messages: messages, log: log}
}

// SendMessage validates and persists a chat message. Persistence happens
// before the realtime broadcast, so history is the durable source of
// truth even when the partner misses the event.
func (s *ChatService) SendMessage(ctx context.Context, room string, senderID uuid.UUID, author, text string, sentAt time.Time) (*domain.ChatMessage, error) {
	const op = "service.chat.send"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		return nil, errors.New("message is too long")
	}
	if !roomHasMember(room, senderID) {
		return nil, ErrRoomForbidden
	}

	msg := domain.NewChatMessage(room, senderID, author, text)
	if !sentAt.IsZero() {
		msg.SentAt = sentAt.UTC()
	}

	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesSaved.Inc()

	s.log.Info("message saved",
		slog.String("op", op),
		slog.String("room", room),
		slog.String("message_id", msg.ID.String()),
	)
	return msg, nil
}

// History returns the room's messages, oldest first. The room id embeds
// both member ids, so membership is checked against it directly.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, room string) ([]*domain.ChatMessage, error) {
	if !roomHasMember(room, userID) {
		return nil, ErrRoomForbidden
	}
	return s.messages.ListByRoom(ctx, room)
}

func roomHasMember(room string, userID uuid.UUID) bool {
	for _, part := range strings.Split(room, "_") {
		if part == userID.String() {
			return true
		}
	}
	return false
}
