package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name               string     `gorm:"size:255;not null"`
	Email              string     `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash       string     `gorm:"size:255;not null"`
	PartnerLinkCode    string     `gorm:"size:16;uniqueIndex;not null"`
	PartnerID          *uuid.UUID `gorm:"type:uuid;index"`
	CommunicationStyle string     `gorm:"size:255"`
	LoveLanguage       string     `gorm:"size:255"`
	Interests          []string   `gorm:"serializer:json"`
	CurrentMood        string     `gorm:"size:32"`
	TaskIntensity      int        `gorm:"not null;default:2"`
	MoodPrivacy        bool       `gorm:"not null;default:true"`
	LastMoodUpdate     *time.Time
	ResetTokenHash     string `gorm:"size:64;index"`
	ResetTokenExp      *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CoupleKey   string    `gorm:"size:80;index;not null"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"not null"`
	Category    string    `gorm:"size:64;not null"`
	Date        time.Time `gorm:"index;not null"`
	Status      string    `gorm:"size:16;index;not null"`
	AIGenerated bool      `gorm:"not null"`
	CompletedAt *time.Time
	Responses   []TaskResponse `gorm:"constraint:OnDelete:CASCADE"`
	Feedback    []TaskFeedback `gorm:"constraint:OnDelete:CASCADE"`
}

type TaskResponse struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type TaskFeedback struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string
	CreatedAt time.Time `gorm:"not null"`
}

type ChatMessage struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Room     string    `gorm:"size:80;index;not null"`
	SenderID uuid.UUID `gorm:"type:uuid;not null"`
	Author   string    `gorm:"size:255;not null"`
	Text     string    `gorm:"not null"`
	SentAt   time.Time `gorm:"index;not null"`
}
