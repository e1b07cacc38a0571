package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vibesync/vibesync/internal/domain"
)

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.emails[user.Email]; ok {
		return ErrUserEmailExists
	}

	cp := *user
	r.users[user.ID] = &cp
	r.emails[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	cp := *user
	return &cp, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}

	cp := *r.users[id]
	return &cp, nil
}

func (r *InMemoryUserRepository) GetByLinkCode(ctx context.Context, code string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.PartnerLinkCode == code {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrLinkCodeNotFound
}

func (r *InMemoryUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	for _, user := range r.users {
		if user.ResetTokenHash == tokenHash && user.ResetTokenExp.After(now) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	if old.Email != user.Email {
		if _, taken := r.emails[user.Email]; taken {
			return ErrUserEmailExists
		}
		delete(r.emails, old.Email)
		r.emails[user.Email] = user.ID
	}

	cp := *user
	cp.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = &cp
	return nil
}

type InMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

func (r *InMemoryTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *InMemoryTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	cp := *task
	return &cp, nil
}

func (r *InMemoryTaskRepository) GetDaily(ctx context.Context, coupleKey string, since time.Time) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Task
	for _, task := range r.tasks {
		if task.CoupleKey != coupleKey || task.Date.Before(since) {
			continue
		}
		if latest == nil || task.Date.After(latest.Date) {
			latest = task
		}
	}
	if latest == nil {
		return nil, ErrTaskNotFound
	}

	cp := *latest
	return &cp, nil
}

func (r *InMemoryTaskRepository) ListCompleted(ctx context.Context, coupleKey string, limit int) ([]*domain.Task, error) {
	return r.list(ctx, coupleKey, limit, true)
}

func (r *InMemoryTaskRepository) ListRecent(ctx context.Context, coupleKey string, limit int) ([]*domain.Task, error) {
	return r.list(ctx, coupleKey, limit, false)
}

func (r *InMemoryTaskRepository) list(ctx context.Context, coupleKey string, limit int, completedOnly bool) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Task, 0)
	for _, task := range r.tasks {
		if task.CoupleKey != coupleKey {
			continue
		}
		if completedOnly && task.Status != domain.TaskStatusCompleted {
			continue
		}
		cp := *task
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}

	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

type InMemoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[string][]*domain.ChatMessage
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{
		messages: make(map[string][]*domain.ChatMessage),
	}
}

func (r *InMemoryMessageRepository) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *msg
	r.messages[msg.Room] = append(r.messages[msg.Room], &cp)
	return nil
}

func (r *InMemoryMessageRepository) ListByRoom(ctx context.Context, room string) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages[room]
	result := make([]*domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		result = append(result, &cp)
	}
	return result, nil
}
