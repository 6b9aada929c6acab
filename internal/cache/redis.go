package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/weather-outfit-service/internal/session"
)

// RedisStore implements session.Store on redis with native key expiry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects lazily to addr.
func NewRedisStore(addr, password string, db int, timeout time.Duration) *RedisStore {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	return &RedisStore{client: redis.NewClient(opts)}
}

// NewRedisStoreWithClient wraps an existing client; tests pass a redismock client.
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements session.Store.
func (r *RedisStore) Get(ctx context.Context, id string) (*session.State, bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	s, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Set implements session.Store.
func (r *RedisStore) Set(ctx context.Context, id string, s *session.State, ttl time.Duration) error {
	raw, err := encode(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+id, string(raw), ttl).Err()
}

// Delete implements session.Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, keyPrefix+id).Err()
}

// Ping checks if redis is reachable. Used for health checks.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client. Call during shutdown.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
