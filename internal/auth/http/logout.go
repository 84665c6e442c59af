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

// LogoutHandler serves POST /v1/auth/logout.
type LogoutHandler struct {
	AuthService *service.AuthService
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Deletes the session, revoking it and every access token bound to it. Logging out an already-dead session still succeeds.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LogoutRequest	false	"Session id, if not sent as a cookie"
//	@Success		200		{object}	LogoutResponse
//	@Failure		503		{object}	httpx.ErrorResponse	"session store unavailable"
//	@Router			/v1/auth/logout [post]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LogoutRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sessionID := sessionIDFromRequest(r, req.SessionID)
	clearSessionCookie(w)

	if sessionID == "" {
		// Nothing to revoke. Treat like a double logout.
		httpx.WriteJSON(w, http.StatusOK, LogoutResponse{Status: "logged_out"})
		return
	}

	if err := h.AuthService.Logout(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			log.Error("logout failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
			return
		}
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LogoutResponse{Status: "logged_out"})
}
