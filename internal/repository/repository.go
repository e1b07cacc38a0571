package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserEmailExists  = errors.New("user with email already exists")
	ErrTaskNotFound     = errors.New("task not found")
	ErrLinkCodeNotFound = errors.New("partner code not found")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByLinkCode(ctx context.Context, code string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	// GetDaily returns the couple's task dated at or after since,
	// or ErrTaskNotFound when none exists yet.
	GetDaily(ctx context.Context, coupleKey string, since time.Time) (*domain.Task, error)
	// ListCompleted returns completed tasks, newest first.
	ListCompleted(ctx context.Context, coupleKey string, limit int) ([]*domain.Task, error)
	// ListRecent returns tasks of any status, newest first.
	ListRecent(ctx context.Context, coupleKey string, limit int) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
}

type MessageRepository interface {
	Save(ctx context.Context, msg *domain.ChatMessage) error
	// ListByRoom returns the room's history, oldest first.
	ListByRoom(ctx context.Context, room string) ([]*domain.ChatMessage, error)
}
