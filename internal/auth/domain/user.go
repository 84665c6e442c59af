package domain

import "time"

// User is an account record. The auth core only ever creates users
// (during registration) and reads them for credential checks.
type User struct {
	ID           string // ULID
	Username     string
	Email        string
	PasswordHash string // argon2id PHC encoded
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the JSON shape of a user exposed by the API. The
// password hash never leaves the service.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Public converts a User to its API representation.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
