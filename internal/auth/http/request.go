package http

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prismtv/prism/internal/auth/domain"
)

const sessionCookieName = "session_id"

// AuthResponse is the success payload for register, login and refresh.
type AuthResponse struct {
	User      domain.PublicUser `json:"user"`
	SessionID string            `json:"session_id"`
	Token     string            `json:"token"`
	TokenType string            `json:"token_type"`
	ExpiresIn int               `json:"expires_in"`
}

func newAuthResponse(res *domain.AuthResult) AuthResponse {
	return AuthResponse{
		User:      res.User.Public(),
		SessionID: res.SessionID,
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresIn: int(res.ExpiresIn.Seconds()),
	}
}

// deviceHash fingerprints the client by hashing its User-Agent. It is a
// display hint for the sessions list, not a security boundary.
func deviceHash(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.UserAgent()))
	return hex.EncodeToString(sum[:])
}

// clientIP prefers proxy-set headers so sessions record the real client
// address when the service sits behind a load balancer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sessionIDFromRequest resolves the session id from the cookie, falling
// back to the given request-body value for cookie-less API clients.
func sessionIDFromRequest(r *http.Request, bodyValue string) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(bodyValue)
}

func setSessionCookie(w http.ResponseWriter, sessionID string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
