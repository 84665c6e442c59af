package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Callers react differently to each:
// ErrExpired suggests "go refresh", the others do not.
var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256 signs and verifies compact JWTs with a shared HMAC-SHA256 secret.
// It performs no I/O: the only state is the immutable secret and a clock,
// so a value is safe for concurrent use.
type HS256 struct {
	secret []byte

	// now supplies the verification time. Injectable so expiry-boundary
	// tests are deterministic instead of timing-dependent.
	now func() time.Time
}

// NewHS256 creates a signer/verifier from the shared secret. A nil clock
// defaults to time.Now.
func NewHS256(secret []byte, now func() time.Time) *HS256 {
	if now == nil {
		now = time.Now
	}
	return &HS256{secret: secret, now: now}
}

// Sign returns the compact serialized token for the given claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Join(errors.New("jwtx: sign"), err)
	}
	return signed, nil
}

// Verify parses tokenStr, checks the HMAC signature and the exp claim
// against the injected clock, and returns the claims. Failures map onto
// the package's error kinds so callers can branch with errors.Is.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidClaim
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}

	return *claims, nil
}
