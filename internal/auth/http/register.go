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

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user and immediately opens a session, returning the session cookie and an access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"Account details"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_input"
//	@Failure		409		{object}	httpx.ErrorResponse	"username_taken or email_taken"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Failure		503		{object}	httpx.ErrorResponse	"session store unavailable"
//	@Header			200		{string}	Set-Cookie	"session_id"
//	@Router			/v1/auth/register [post]
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	res, err := h.AuthService.Register(ctx, req.Username, req.Email, req.Password, deviceHash(r), clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input")
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "username_taken")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "email_taken")
		case errors.Is(err, session.ErrUnavailable):
			log.Error("register failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
		default:
			log.Error("register failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	setSessionCookie(w, res.SessionID, h.AuthService.SessionTTL)
	httpx.WriteJSON(w, http.StatusOK, newAuthResponse(res))
}
