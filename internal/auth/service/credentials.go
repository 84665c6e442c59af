package service

import (
	"context"
	"errors"
	"strings"

	"github.com/prismtv/prism/internal/auth/domain"
	"github.com/prismtv/prism/internal/auth/store"
	"github.com/prismtv/prism/pkg/cryptox"
)

// CredentialVerifier checks a username/password pair against the user store.
//
// All failure modes that would reveal whether a username exists (unknown
// user, wrong password) collapse into ErrInvalidCredentials. Store outages
// are NOT collapsed so callers can surface a 5xx instead of a 401.
type CredentialVerifier struct {
	Store store.Store
}

// Verify looks the user up by username, falling back to email so people can
// sign in with either. The argon2id comparison runs in constant time.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	u, err := v.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		u, err = v.Store.Users().GetUserByEmail(ctx, username)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return u, nil
}
