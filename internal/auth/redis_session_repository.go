package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session keys in Redis.
const sessionKeyPrefix = "session:"

// RedisSessionRepository implements SessionRepository on Redis, letting the
// store expire sessions natively via key TTL. Refreshing last_access rewrites
// the value with KEEPTTL so expiry stays anchored to creation time.
type RedisSessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository creates a Redis-backed session repository.
func NewRedisSessionRepository(client *goredis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

// sessionValue is the JSON payload stored under each session key.
type sessionValue struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
	LastAccess string `json:"last_access"`
}

// Create stores a new session with the TTL applied at write time.
func (r *RedisSessionRepository) Create(ctx context.Context, session *Session) error {
	now := time.Now().UTC().Truncate(time.Second)
	session.CreatedAt = now
	session.LastAccess = now

	payload, err := json.Marshal(sessionValue{
		Username:   session.Username,
		Role:       string(session.Role),
		CreatedAt:  now.Format(time.RFC3339),
		LastAccess: now.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.Token, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

// Get retrieves a session by token and refreshes its last_access without
// extending the key's remaining TTL.
func (r *RedisSessionRepository) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	var v sessionValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}

	s := &Session{
		Token:    token,
		Username: v.Username,
		Role:     Role(v.Role),
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, v.CreatedAt) //nolint:errcheck // format is controlled
	s.LastAccess = time.Now().UTC().Truncate(time.Second)

	v.LastAccess = s.LastAccess.Format(time.RFC3339)
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	// KEEPTTL: the refresh must not push expiry past created_at + TTL
	if err := r.client.Set(ctx, sessionKeyPrefix+token, payload, goredis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("refreshing session access: %w", err)
	}

	return s, nil
}

// Delete removes a session by token. The bool reports whether a record
// was present.
func (r *RedisSessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	deleted, err := r.client.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("deleting session: %w", err)
	}
	return deleted > 0, nil
}

// DeleteExpired is a no-op: Redis expires session keys natively.
func (r *RedisSessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}
