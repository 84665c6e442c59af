package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prismtv/prism/internal/auth/domain"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/internal/auth/store"
	"github.com/prismtv/prism/pkg/cryptox"
	"github.com/prismtv/prism/pkg/idx"
	"github.com/prismtv/prism/pkg/slogx"
)

// DefaultSessionTTL is how long a session lives from creation. The window
// is fixed: refreshing an access token never pushes it out.
const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrInvalidInput = errors.New("invalid_input")

// AuthService composes the credential verifier, session store and token
// service into the account lifecycle operations. It carries the lifecycle
// rules; the collaborators stay mechanism-only.
type AuthService struct {
	Store       store.Store
	Sessions    session.Store
	Tokens      *TokenService
	Credentials *CredentialVerifier
	SessionTTL  time.Duration

	now func() time.Time
}

func NewAuthService(st store.Store, sessions session.Store, tokens *TokenService) *AuthService {
	return &AuthService{
		Store:       st,
		Sessions:    sessions,
		Tokens:      tokens,
		Credentials: &CredentialVerifier{Store: st},
		SessionTTL:  DefaultSessionTTL,
		now:         time.Now,
	}
}

// Register creates the account and then logs it straight in, so the
// client walks away with a live session and access token in one round
// trip. Uniqueness violations surface as ErrUsernameTaken or
// ErrEmailTaken so the form can point at the right field.
func (s *AuthService) Register(ctx context.Context, username, email, password, deviceHash, ip string) (*domain.AuthResult, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, s.classifyConflict(ctx, username, email)
		}
		return nil, err
	}

	l.Info("user registered", slog.String("user_id", u.ID), slog.String("username", u.Username))

	return s.startSession(ctx, u, deviceHash, ip)
}

// Login verifies credentials and opens a fresh session. The identifier
// may be a username or an email address.
func (s *AuthService) Login(ctx context.Context, identifier, password, deviceHash, ip string) (*domain.AuthResult, error) {
	u, err := s.Credentials.Verify(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", u.ID))

	return s.startSession(ctx, u, deviceHash, ip)
}

// Refresh exchanges a live session id for a new access token. The session
// keeps its original expiry; once the seven days run out the client must
// log in again no matter how recently it refreshed.
func (s *AuthService) Refresh(ctx context.Context, sessionID string) (*domain.AuthResult, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// User deleted out from under a live session. Drop it.
			_ = s.Sessions.Delete(ctx, sessionID)
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	token, err := s.Tokens.SignAccess(u.ID, sessionID, s.now())
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{
		User:      u,
		SessionID: sessionID,
		Token:     token,
		ExpiresIn: s.Tokens.AccessTTL,
	}, nil
}

// Logout deletes the session, which revokes it and every access token
// that names it. Idempotent: logging out an already-dead session succeeds.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.Delete(ctx, sessionID)
}

// LogoutAll revokes every session the user owns and reports how many
// were dropped.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int, error) {
	n, err := s.Sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Info("sessions revoked", slog.String("user_id", userID), slog.Int("count", n))
	return n, nil
}

// ListSessions returns the caller's active sessions so they can spot a
// device they do not recognise.
func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]session.Summary, error) {
	return s.Sessions.ListForUser(ctx, userID)
}

// VerifyToken authenticates a bearer access token. The token must check
// out cryptographically AND its session must still exist; a logged-out
// session kills the token even inside its fifteen-minute window. All
// rejection paths collapse into ErrUnauthorized, only backend outages
// pass through distinct.
func (s *AuthService) VerifyToken(ctx context.Context, accessToken string) (domain.AuthUser, error) {
	claims, err := s.Tokens.VerifyAccess(accessToken)
	if err != nil {
		return domain.AuthUser{}, ErrUnauthorized
	}

	sess, err := s.Sessions.Get(ctx, claims.SID)
	if err != nil {
		return domain.AuthUser{}, err
	}
	if sess == nil || sess.UserID != claims.Subject {
		return domain.AuthUser{}, ErrUnauthorized
	}

	return domain.AuthUser{UserID: claims.Subject, SessionID: claims.SID}, nil
}

// IssueStreamToken trades a valid access token for a six-hour token
// scoped to one stream. The stream token deliberately omits the session
// id: the grant decision happens here, at mint time, and the edge
// verifies the stream token alone afterwards.
func (s *AuthService) IssueStreamToken(ctx context.Context, accessToken, streamID string) (string, error) {
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return "", ErrInvalidInput
	}

	au, err := s.VerifyToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			return "", err
		}
		return "", ErrUnauthorized
	}

	token, err := s.Tokens.SignStream(au.UserID, streamID, s.now())
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("stream token issued",
		slog.String("user_id", au.UserID),
		slog.String("stream_id", streamID),
	)

	return token, nil
}

func (s *AuthService) startSession(ctx context.Context, u domain.User, deviceHash, ip string) (*domain.AuthResult, error) {
	now := s.now()

	sessionID, err := s.Sessions.Create(ctx, session.Session{
		UserID:     u.ID,
		DeviceHash: deviceHash,
		IP:         ip,
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(s.SessionTTL),
	}, s.SessionTTL)
	if err != nil {
		return nil, err
	}

	token, err := s.Tokens.SignAccess(u.ID, sessionID, now)
	if err != nil {
		// Orphaned sessions just age out via TTL, but be tidy.
		_ = s.Sessions.Delete(ctx, sessionID)
		return nil, err
	}

	return &domain.AuthResult{
		User:      u,
		SessionID: sessionID,
		Token:     token,
		ExpiresIn: s.Tokens.AccessTTL,
	}, nil
}

// classifyConflict decides which uniqueness constraint tripped by looking
// the values back up. If the racing row vanished in between, fall back to
// the username error; the client will retry and get the truth.
func (s *AuthService) classifyConflict(ctx context.Context, username, email string) error {
	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}
