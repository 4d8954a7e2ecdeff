package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"truetrace/internal/wallet"
	"truetrace/pkg/platform/sentinel"
)

// DefaultSessionKey is where the active session is stored.
const DefaultSessionKey = "truetrace:wallet:session"

// Redis shares the active session between server instances as a JSON value.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithKey overrides the storage key.
func WithKey(key string) RedisOption {
	return func(r *Redis) {
		if key != "" {
			r.key = key
		}
	}
}

// WithTTL expires the stored session after d. Zero keeps it until cleared.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

// NewRedis constructs a Redis backed session store.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, key: DefaultSessionKey}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) Current(ctx context.Context) (wallet.Session, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return wallet.Session{}, sentinel.ErrNotFound
	}
	if err != nil {
		return wallet.Session{}, fmt.Errorf("get wallet session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var sess wallet.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return wallet.Session{}, fmt.Errorf("decode wallet session: %w", err)
	}
	return sess, nil
}

func (r *Redis) Save(ctx context.Context, session wallet.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode wallet session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set wallet session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("delete wallet session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
