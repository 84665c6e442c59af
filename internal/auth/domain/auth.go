package domain

import "time"

// AuthResult is what login, register and refresh hand back: the session
// id for cookie transport plus a bearer access token for API calls.
type AuthResult struct {
	User      User
	SessionID string
	Token     string
	ExpiresIn time.Duration // access token lifetime
}

// AuthUser identifies the caller behind a verified access token.
type AuthUser struct {
	UserID    string
	SessionID string
}
