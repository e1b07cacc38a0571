package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID       uuid.UUID `json:"_id"`
	Room     string    `json:"room"`
	SenderID uuid.UUID `json:"senderId"`
	Author   string    `json:"author"`
	Text     string    `json:"message"`
	SentAt   time.Time `json:"time"`
}

func NewChatMessage(room string, senderID uuid.UUID, author, text string) *ChatMessage {
	return &ChatMessage{
		ID:       uuid.New(),
		Room:     room,
		SenderID: senderID,
		Author:   author,
		Text:     text,
		SentAt:   time.Now().UTC(),
	}
}
