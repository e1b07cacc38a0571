package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which users currently have a live realtime connection.
// It is injectable so single-instance deployments can keep it in-process
// while multi-instance ones back it with Redis; without a shared backend,
// presence is only correct within one process.
type Registry interface {
	// MarkOnline registers the connection for the user. An existing entry
	// is silently replaced: last connection wins.
	MarkOnline(ctx context.Context, userID uuid.UUID, connID string) error
	// MarkOffline removes the entry recorded for the connection and
	// returns the user it belonged to. An unknown connection is a no-op,
	// not an error.
	MarkOffline(ctx context.Context, connID string) (uuid.UUID, bool, error)
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

type InMemoryRegistry struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]string
	byConn map[string]uuid.UUID
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		byUser: make(map[uuid.UUID]string),
		byConn: make(map[string]uuid.UUID),
	}
}

func (r *InMemoryRegistry) MarkOnline(ctx context.Context, userID uuid.UUID, connID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok {
		delete(r.byConn, old)
	}
	r.byUser[userID] = connID
	r.byConn[connID] = userID
	return nil
}

func (r *InMemoryRegistry) MarkOffline(ctx context.Context, connID string) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return uuid.Nil, false, nil
	}

	delete(r.byConn, connID)
	// Only clear the user entry if this connection is still the current
	// one; a replaced connection disconnecting later must not knock the
	// newer session offline.
	if r.byUser[userID] == connID {
		delete(r.byUser, userID)
		return userID, true, nil
	}
	return uuid.Nil, false, nil
}

func (r *InMemoryRegistry) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUser[userID]
	return ok, nil
}
