package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prismtv/prism/internal/auth/service"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/pkg/httpx"
	"github.com/prismtv/prism/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

type LoginRequest struct {
	// UsernameOrEmail accepts either identifier.
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Verifies credentials and opens a session. The identifier may be a username or an email address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_credentials"
//	@Failure		503		{object}	httpx.ErrorResponse	"session store unavailable"
//	@Header			200		{string}	Set-Cookie	"session_id"
//	@Router			/v1/auth/login [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	res, err := h.AuthService.Login(ctx, req.UsernameOrEmail, req.Password, deviceHash(r), clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials")
		case errors.Is(err, session.ErrUnavailable):
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	setSessionCookie(w, res.SessionID, h.AuthService.SessionTTL)
	httpx.WriteJSON(w, http.StatusOK, newAuthResponse(res))
}
