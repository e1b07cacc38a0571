package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPartner          = errors.New("no partner connected")
	ErrAlreadyLinked      = errors.New("already connected to a partner")
	ErrPartnerTaken       = errors.New("partner is already connected to someone else")
	ErrSelfLink           = errors.New("cannot connect with yourself")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidMood        = errors.New("invalid mood")
	ErrInvalidIntensity   = errors.New("intensity must be between 1 and 3")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

type AuthInteractor interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateOnboarding(ctx context.Context, id uuid.UUID, data domain.Onboarding) (*domain.User, error)
	UpdateMood(ctx context.Context, id uuid.UUID, mood domain.Mood, intensity int, privacy *bool) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// PartnerStatus is what a user may know about their partner. Mood and
// Intensity are nil when the partner keeps them private.
type PartnerStatus struct {
	Connected      bool         `json:"connected"`
	Name           string       `json:"name,omitempty"`
	Mood           *domain.Mood `json:"mood"`
	Intensity      *int         `json:"intensity"`
	LastMoodUpdate time.Time    `json:"lastMoodUpdate,omitempty"`
	Online         bool         `json:"online"`
}

type PartnerInteractor interface {
	Connect(ctx context.Context, userID uuid.UUID, code string) (string, error)
	Status(ctx context.Context, userID uuid.UUID) (*PartnerStatus, error)
}

type TaskInteractor interface {
	GetDaily(ctx context.Context, userID uuid.UUID) (*domain.Task, error)
	Complete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	Respond(ctx context.Context, userID, taskID uuid.UUID, text string) (*domain.Task, error)
	SubmitFeedback(ctx context.Context, userID, taskID uuid.UUID, rating int, comment string) (*domain.Task, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Task, error)
}

type ChatInteractor interface {
	SendMessage(ctx context.Context, room string, senderID uuid.UUID, author, text string, sentAt time.Time) (*domain.ChatMessage, error)
	History(ctx context.Context, userID uuid.UUID, room string) ([]*domain.ChatMessage, error)
}

type InsightInteractor interface {
	ChartData(ctx context.Context, userID uuid.UUID) (*Insights, error)
}
