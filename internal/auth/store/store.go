// Package store defines the data access contract for durable auth
// records. Concrete drivers live under store/drivers.
package store

import (
	"context"
	"errors"

	"github.com/prismtv/prism/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the auth service.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the backend connection is still alive.
	Ping(ctx context.Context) error
}

// Users is the user-repository capability the auth core depends on:
// lookup for credential checks, creation during registration.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login and registration checks.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail allows login by email and registration checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	// Returns ErrAlreadyExists on a username/email uniqueness violation.
	CreateUser(ctx context.Context, u domain.User) error
}
