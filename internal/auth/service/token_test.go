package service

import (
	"testing"
	"time"

	"github.com/prismtv/prism/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(secret string) *TokenService {
	return NewTokenService([]byte(secret), 15*time.Minute, 6*time.Hour)
}

func TestTokenService_AccessRoundtrip(t *testing.T) {
	t.Parallel()

	ts := newTestTokenService("test-secret")
	now := time.Now()

	token, err := ts.SignAccess("user-1", "sess-1", now)
	require.NoError(t, err)

	claims, err := ts.VerifyAccess(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "sess-1", claims.SID)
	require.Empty(t, claims.StreamID)
}

func TestTokenService_StreamRoundtrip(t *testing.T) {
	t.Parallel()

	ts := newTestTokenService("test-secret")
	now := time.Now()

	token, err := ts.SignStream("user-1", "movie-42", now)
	require.NoError(t, err)

	claims, err := ts.VerifyStream(token, "movie-42")
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "movie-42", claims.StreamID)
	require.Empty(t, claims.SID, "stream tokens carry no session id")
	require.WithinDuration(t, now.Add(6*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokenService_ScopeMismatch(t *testing.T) {
	t.Parallel()

	ts := newTestTokenService("test-secret")
	now := time.Now()

	access, err := ts.SignAccess("user-1", "sess-1", now)
	require.NoError(t, err)
	stream, err := ts.SignStream("user-1", "movie-42", now)
	require.NoError(t, err)

	t.Run("stream token rejected as access token", func(t *testing.T) {
		_, err := ts.VerifyAccess(stream)
		require.ErrorIs(t, err, ErrScopeMismatch)
	})

	t.Run("access token rejected as stream token", func(t *testing.T) {
		_, err := ts.VerifyStream(access, "movie-42")
		require.ErrorIs(t, err, ErrScopeMismatch)
	})

	t.Run("valid stream token for the wrong stream", func(t *testing.T) {
		_, err := ts.VerifyStream(stream, "movie-43")
		require.ErrorIs(t, err, ErrScopeMismatch)
	})
}

func TestTokenService_VerifyErrorsStayDistinct(t *testing.T) {
	t.Parallel()

	ts := newTestTokenService("test-secret")
	other := newTestTokenService("other-secret")
	now := time.Now()

	t.Run("bad signature", func(t *testing.T) {
		token, err := other.SignAccess("user-1", "sess-1", now)
		require.NoError(t, err)

		_, err = ts.VerifyAccess(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ts.VerifyAccess("not.a.token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := ts.SignAccess("user-1", "sess-1", now.Add(-time.Hour))
		require.NoError(t, err)

		_, err = ts.VerifyAccess(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestTokenService_DefaultTTLs(t *testing.T) {
	t.Parallel()

	ts := NewTokenService([]byte("test-secret"), 0, 0)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, ts.AccessTTL)
	require.Equal(t, jwtx.DefaultStreamTokenTTL, ts.StreamTTL)
}
