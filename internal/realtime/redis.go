package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// presenceTTL bounds how long a stale entry survives a process that died
// without running its disconnect cleanup.
const presenceTTL = 24 * time.Hour

// RedisRegistry is the shared presence backend for multi-instance
// deployments. Keys mirror the in-process maps: one per user, one per
// connection.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(ctx context.Context, redisURL string) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisRegistry{client: client}, nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func userKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:user:%s", userID)
}

func connKey(connID string) string {
	return fmt.Sprintf("presence:conn:%s", connID)
}

func (r *RedisRegistry) MarkOnline(ctx context.Context, userID uuid.UUID, connID string) error {
	// Drop the reverse entry of a replaced connection so its later
	// disconnect cannot be mistaken for this user going offline.
	old, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := r.client.TxPipeline()
	if old != "" && old != connID {
		pipe.Del(ctx, connKey(old))
	}
	pipe.Set(ctx, userKey(userID), connID, presenceTTL)
	pipe.Set(ctx, connKey(connID), userID.String(), presenceTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRegistry) MarkOffline(ctx context.Context, connID string) (uuid.UUID, bool, error) {
	raw, err := r.client.GetDel(ctx, connKey(connID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, nil
	}

	current, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return uuid.Nil, false, err
	}
	if current != connID {
		return uuid.Nil, false, nil
	}

	if err := r.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

func (r *RedisRegistry) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
