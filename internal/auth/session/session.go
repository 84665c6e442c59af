// Package session owns the server-side session records that anchor all
// issued credentials. A session existing in the store is the one and only
// proof that it is still valid: deletion is revocation, there is no
// "revoked" flag.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/prismtv/prism/pkg/cryptox"
)

// ErrUnavailable reports a transient backend failure. It is deliberately
// distinct from a miss: callers must treat it as indeterminate (retryable)
// rather than as "session invalid".
var ErrUnavailable = errors.New("session: store unavailable")

// Session is the stored record. Expiry is fixed at creation; sessions are
// not sliding-window and are never extended by refresh.
type Session struct {
	UserID     string    `json:"user_id"`
	DeviceHash string    `json:"device_hash"`
	IP         string    `json:"ip"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Summary pairs a session id with its record, for listing a user's
// active sessions.
type Summary struct {
	SessionID string  `json:"session_id"`
	Session   Session `json:"session"`
}

// Store abstracts the session backend so both the Redis driver and the
// in-memory driver (used by tests) satisfy the same contract. Records are
// independent keys; implementations must be safe for concurrent use but
// need no cross-key transactions.
type Store interface {
	// Create generates a fresh unguessable session id, persists data
	// with expiry now+ttl, and returns the id. A non-zero ExpiresAt on
	// data is kept as-is so callers can stamp it from their own clock.
	Create(ctx context.Context, data Session, ttl time.Duration) (string, error)

	// Get returns the session if present and unexpired, or (nil, nil) on
	// a miss. Backends without native TTL must treat expired-but-present
	// records as absent and purge them lazily.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes a session. Idempotent: deleting an absent id is
	// not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteAllForUser removes every session owned by userID and
	// returns how many were deleted.
	DeleteAllForUser(ctx context.Context, userID string) (int, error)

	// ListForUser returns the user's active sessions.
	ListForUser(ctx context.Context, userID string) ([]Summary, error)
}

// newSessionID returns 32 crypto-random bytes encoded base64url
// (43 chars). 256 bits of entropy makes collisions a non-concern.
func newSessionID() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize256)
}
