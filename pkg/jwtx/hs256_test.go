package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prismtv/prism/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHS256_AccessRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := jwtx.NewHS256(testSecret, fixedClock(now))

	signed, err := h.Sign(jwtx.NewAccessClaims("user-1", "sess-1", jwtx.DefaultAccessTokenTTL, now))
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(signed, ".")), "compact JWT has three segments")

	claims, err := h.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "sess-1", claims.SID)
	require.Empty(t, claims.StreamID)
	require.Equal(t, now.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestHS256_StreamRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := jwtx.NewHS256(testSecret, fixedClock(now))

	signed, err := h.Sign(jwtx.NewStreamClaims("user-1", "movie-42", jwtx.DefaultStreamTokenTTL, now))
	require.NoError(t, err)

	claims, err := h.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "movie-42", claims.StreamID)
	require.Empty(t, claims.SID, "stream tokens must not carry a session id")
	require.Equal(t, now.Add(6*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestHS256_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := jwtx.NewHS256(testSecret, fixedClock(now))

	signed, err := h.Sign(jwtx.NewAccessClaims("user-1", "sess-1", time.Minute, now))
	require.NoError(t, err)

	// Move the clock past expiry; no real waiting.
	late := jwtx.NewHS256(testSecret, fixedClock(now.Add(2*time.Minute)))
	_, err = late.Verify(signed)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	// A second before expiry is still fine.
	early := jwtx.NewHS256(testSecret, fixedClock(now.Add(59*time.Second)))
	_, err = early.Verify(signed)
	require.NoError(t, err)
}

func TestHS256_WrongSecret(t *testing.T) {
	now := time.Now()
	h := jwtx.NewHS256(testSecret, nil)

	signed, err := h.Sign(jwtx.NewAccessClaims("user-1", "sess-1", time.Hour, now))
	require.NoError(t, err)

	other := jwtx.NewHS256([]byte("different-secret"), nil)
	_, err = other.Verify(signed)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestHS256_Malformed(t *testing.T) {
	h := jwtx.NewHS256(testSecret, nil)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := h.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", tok)
	}
}

func TestHS256_MissingSubject(t *testing.T) {
	now := time.Now()
	h := jwtx.NewHS256(testSecret, nil)

	signed, err := h.Sign(jwtx.NewAccessClaims("", "sess-1", time.Hour, now))
	require.NoError(t, err)

	_, err = h.Verify(signed)
	require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
}
