package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens stay short because their revocation
// check is only performed when they are exchanged for something; stream
// tokens live longer but are scoped to a single resource.
const (
	DefaultAccessTokenTTL = 15 * time.Minute
	DefaultStreamTokenTTL = 6 * time.Hour
)

// Claims are the signed token payload. Only short primitive fields are
// carried; tokens are signed, not encrypted, so nothing here is secret.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session the token was minted from. Set on access
	// tokens only; stream tokens deliberately omit it so they stay
	// verifiable without a session store.
	SID string `json:"sid,omitempty"`

	// StreamID is the single resource a stream token authorizes.
	StreamID string `json:"stream_id,omitempty"`
}

// NewAccessClaims builds claims for a session-bound access token.
func NewAccessClaims(subject, sid string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SID: sid,
	}
}

// NewStreamClaims builds claims for a token scoped to one stream.
func NewStreamClaims(subject, streamID string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		StreamID: streamID,
	}
}
