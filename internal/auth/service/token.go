package service

import (
	"errors"
	"time"

	"github.com/prismtv/prism/pkg/jwtx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrEmailTaken         = errors.New("email_taken")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrScopeMismatch      = errors.New("scope_mismatch")
)

// TokenService signs and verifies the two token shapes the platform uses:
// short-lived access tokens carrying a session id, and stream tokens scoped
// to a single stream for handoff to the media edge.
type TokenService struct {
	Signer    *jwtx.HS256
	AccessTTL time.Duration
	StreamTTL time.Duration
}

func NewTokenService(secret []byte, accessTTL, streamTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	if streamTTL <= 0 {
		streamTTL = jwtx.DefaultStreamTokenTTL
	}
	return &TokenService{
		Signer:    jwtx.NewHS256(secret, nil),
		AccessTTL: accessTTL,
		StreamTTL: streamTTL,
	}
}

// SignAccess mints an access token bound to the given session.
func (s *TokenService) SignAccess(userID, sessionID string, now time.Time) (string, error) {
	return s.Signer.Sign(jwtx.NewAccessClaims(userID, sessionID, s.AccessTTL, now))
}

// VerifyAccess validates signature and expiry and rejects tokens that were
// minted for a stream rather than as session credentials.
func (s *TokenService) VerifyAccess(token string) (jwtx.Claims, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if claims.SID == "" || claims.StreamID != "" {
		return jwtx.Claims{}, ErrScopeMismatch
	}
	return claims, nil
}

// SignStream mints a token granting access to exactly one stream. Stream
// tokens carry no session id, so they survive a logout on purpose: a viewer
// already admitted to a stream keeps watching until the token expires.
func (s *TokenService) SignStream(userID, streamID string, now time.Time) (string, error) {
	return s.Signer.Sign(jwtx.NewStreamClaims(userID, streamID, s.StreamTTL, now))
}

// VerifyStream validates a stream token and checks it was minted for
// streamID. A valid token presented against the wrong stream returns
// ErrScopeMismatch, distinct from signature and expiry failures.
func (s *TokenService) VerifyStream(token, streamID string) (jwtx.Claims, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if claims.StreamID == "" || claims.StreamID != streamID {
		return jwtx.Claims{}, ErrScopeMismatch
	}
	return claims, nil
}
