package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping. It drives the
// orchestrator, the token signer and the session store together so
// expiry behaviour lines up across all three.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeClock) {
	t.Helper()

	clock := newFakeClock()

	mem := session.NewMemoryStore()
	mem.SetClock(clock.Now)

	tokens := &TokenService{
		Signer:    jwtx.NewHS256([]byte("test-secret"), clock.Now),
		AccessTTL: 15 * time.Minute,
		StreamTTL: 6 * time.Hour,
	}

	svc := NewAuthService(newTestStore(t), mem, tokens)
	svc.now = clock.Now
	return svc, clock
}

func TestAuthService_RegisterLoginStream(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	res, err := svc.Register(ctx, "alice", "alice@x.com", "secret123", "device-1", "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, res.SessionID, 43, "32 random bytes base64url encoded")
	require.Equal(t, 15*time.Minute, res.ExpiresIn)
	require.Equal(t, "alice", res.User.Username)

	claims, err := svc.Tokens.VerifyAccess(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.Subject)
	require.Equal(t, res.SessionID, claims.SID)
	require.WithinDuration(t, svc.now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)

	streamToken, err := svc.IssueStreamToken(ctx, res.Token, "movie-42")
	require.NoError(t, err)

	streamClaims, err := svc.Tokens.VerifyStream(streamToken, "movie-42")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, streamClaims.Subject)
	require.Equal(t, "movie-42", streamClaims.StreamID)
	require.WithinDuration(t, svc.now().Add(6*time.Hour), streamClaims.ExpiresAt.Time, time.Second)

	require.NoError(t, svc.Logout(ctx, res.SessionID))

	_, err = svc.IssueStreamToken(ctx, res.Token, "movie-42")
	require.ErrorIs(t, err, ErrUnauthorized, "access token dies with its session")
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, "bob", "bob@x.com", "secret123", "", "")
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob", "bob2@x.com", "secret123", "", "")
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob2", "bob@x.com", "secret123", "", "")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects junk input", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "c@x.com", "secret123", "", "")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Register(ctx, "carol", "not-an-email", "secret123", "", "")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Register(ctx, "carol", "c@x.com", "", "", "")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	reg, err := svc.Register(ctx, "dana", "dana@x.com", "secret123", "", "")
	require.NoError(t, err)

	t.Run("opens a fresh session per login", func(t *testing.T) {
		res, err := svc.Login(ctx, "dana", "secret123", "device-2", "10.0.0.2")
		require.NoError(t, err)
		require.NotEqual(t, reg.SessionID, res.SessionID)

		sessions, err := svc.ListSessions(ctx, reg.User.ID)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
	})

	t.Run("propagates invalid credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "dana", "wrong", "", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestAuthService(t)

	res, err := svc.Register(ctx, "erin", "erin@x.com", "secret123", "", "")
	require.NoError(t, err)

	t.Run("mints a new access token for the same session", func(t *testing.T) {
		clock.Advance(time.Minute)

		refreshed, err := svc.Refresh(ctx, res.SessionID)
		require.NoError(t, err)
		require.Equal(t, res.SessionID, refreshed.SessionID)
		require.NotEqual(t, res.Token, refreshed.Token)

		claims, err := svc.Tokens.VerifyAccess(refreshed.Token)
		require.NoError(t, err)
		require.Equal(t, res.User.ID, claims.Subject)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("never extends the session window", func(t *testing.T) {
		// Refresh just inside the seven day window, then step past it.
		// If refresh slid the expiry the session would still be alive.
		clock.Advance(7*24*time.Hour - 2*time.Hour)
		_, err := svc.Refresh(ctx, res.SessionID)
		require.NoError(t, err)

		clock.Advance(3 * time.Hour)
		_, err = svc.Refresh(ctx, res.SessionID)
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestAuthService(t)

	res, err := svc.Register(ctx, "finn", "finn@x.com", "secret123", "", "")
	require.NoError(t, err)

	t.Run("valid token resolves the caller", func(t *testing.T) {
		au, err := svc.VerifyToken(ctx, res.Token)
		require.NoError(t, err)
		require.Equal(t, res.User.ID, au.UserID)
		require.Equal(t, res.SessionID, au.SessionID)
	})

	t.Run("stream token is not a session credential", func(t *testing.T) {
		streamToken, err := svc.IssueStreamToken(ctx, res.Token, "movie-9")
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, streamToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		clock.Advance(16 * time.Minute)
		_, err := svc.VerifyToken(ctx, res.Token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, "garbage")
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_StreamTokenOutlivesLogout(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestAuthService(t)

	res, err := svc.Register(ctx, "gus", "gus@x.com", "secret123", "", "")
	require.NoError(t, err)

	streamToken, err := svc.IssueStreamToken(ctx, res.Token, "live-7")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.SessionID))

	// The grant was decided at mint time. The edge keeps honouring the
	// stream token until its own expiry.
	_, err = svc.Tokens.VerifyStream(streamToken, "live-7")
	require.NoError(t, err)

	clock.Advance(6*time.Hour + time.Minute)
	_, err = svc.Tokens.VerifyStream(streamToken, "live-7")
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestAuthService_LogoutAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	res, err := svc.Register(ctx, "hana", "hana@x.com", "secret123", "laptop", "")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "hana", "secret123", "phone", "")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "hana", "secret123", "tv", "")
	require.NoError(t, err)

	n, err := svc.LogoutAll(ctx, res.User.ID)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	sessions, err := svc.ListSessions(ctx, res.User.ID)
	require.NoError(t, err)
	require.Empty(t, sessions)

	_, err = svc.Refresh(ctx, res.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	res, err := svc.Register(ctx, "iris", "iris@x.com", "secret123", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.SessionID))
	require.NoError(t, svc.Logout(ctx, res.SessionID))
}

// downSessions simulates a session backend outage: every call fails
// with an error wrapping session.ErrUnavailable, the way the Redis
// driver reports a dead connection.
type downSessions struct{}

var errSessionsDown = fmt.Errorf("%w: dial tcp: connection refused", session.ErrUnavailable)

func (downSessions) Create(context.Context, session.Session, time.Duration) (string, error) {
	return "", errSessionsDown
}

func (downSessions) Get(context.Context, string) (*session.Session, error) {
	return nil, errSessionsDown
}

func (downSessions) Delete(context.Context, string) error { return errSessionsDown }

func (downSessions) DeleteAllForUser(context.Context, string) (int, error) {
	return 0, errSessionsDown
}

func (downSessions) ListForUser(context.Context, string) ([]session.Summary, error) {
	return nil, errSessionsDown
}

func TestAuthService_SessionBackendOutage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	res, err := svc.Register(ctx, "kira", "kira@x.com", "secret123", "", "")
	require.NoError(t, err)

	svc.Sessions = downSessions{}

	t.Run("login reports the outage, not bad credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "kira", "secret123", "", "")
		require.ErrorIs(t, err, session.ErrUnavailable)
		require.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("refresh reports the outage, not a missing session", func(t *testing.T) {
		_, err := svc.Refresh(ctx, res.SessionID)
		require.ErrorIs(t, err, session.ErrUnavailable)
		require.NotErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("verify passes the outage through", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, res.Token)
		require.ErrorIs(t, err, session.ErrUnavailable)
	})

	t.Run("stream token issuance does not collapse the outage", func(t *testing.T) {
		_, err := svc.IssueStreamToken(ctx, res.Token, "movie-3")
		require.ErrorIs(t, err, session.ErrUnavailable)
		require.NotErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_IssueStreamTokenValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	res, err := svc.Register(ctx, "jack", "jack@x.com", "secret123", "", "")
	require.NoError(t, err)

	_, err = svc.IssueStreamToken(ctx, res.Token, "")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.IssueStreamToken(ctx, "bogus", "movie-1")
	require.ErrorIs(t, err, ErrUnauthorized)
}
