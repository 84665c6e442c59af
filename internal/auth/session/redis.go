package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	userSetKeyPrefix = "user_sessions:"
)

// RedisStore keeps sessions in Redis. TTL enforcement is native (SET EX),
// so expired records simply vanish. A per-user set indexes the user's
// session ids for logout-all and session listing.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. It pings once so a dead backend
// fails at startup rather than on the first login.
func NewRedisStore(ctx context.Context, client *redis.Client) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return &RedisStore{client: client}, nil
}

func sessionKey(sessionID string) string { return sessionKeyPrefix + sessionID }
func userSetKey(userID string) string    { return userSetKeyPrefix + userID }

func (r *RedisStore) Create(ctx context.Context, data Session, ttl time.Duration) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	// Callers that track their own clock may stamp ExpiresAt themselves;
	// the field is informational here, Redis TTL is what enforces expiry.
	if data.ExpiresAt.IsZero() {
		data.ExpiresAt = time.Now().Add(ttl)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session: marshal: %w", err)
	}

	// Write the record and index it under the user atomically.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(id), payload, ttl)
	pipe.SAdd(ctx, userSetKey(data.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: create: %v", ErrUnavailable, err)
	}

	return id, nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	// Fetch first so the user index can be cleaned alongside the record.
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSetKey(s.UserID), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	ids, err := r.client.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: smembers: %v", ErrUnavailable, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.Del(ctx, userSetKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: delete all: %v", ErrUnavailable, err)
	}

	return len(ids), nil
}

func (r *RedisStore) ListForUser(ctx context.Context, userID string) ([]Summary, error) {
	ids, err := r.client.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: smembers: %v", ErrUnavailable, err)
	}

	var out []Summary
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			// Record expired out from under its index entry.
			_ = r.client.SRem(ctx, userSetKey(userID), id).Err()
			continue
		}
		out = append(out, Summary{SessionID: id, Session: *s})
	}
	return out, nil
}
