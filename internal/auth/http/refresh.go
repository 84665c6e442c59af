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

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	AuthService *service.AuthService
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

// ServeHTTP godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges a live session (cookie or body) for a fresh access token. The session expiry is unchanged.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RefreshRequest	false	"Session id, if not sent as a cookie"
//	@Success		200		{object}	AuthResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"session_not_found"
//	@Failure		503		{object}	httpx.ErrorResponse	"session store unavailable"
//	@Router			/v1/auth/refresh [post]
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RefreshRequest
	if r.Body != nil {
		// Body is optional when the cookie is present.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sessionID := sessionIDFromRequest(r, req.SessionID)
	if sessionID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "session_not_found")
		return
	}

	res, err := h.AuthService.Refresh(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			clearSessionCookie(w)
			httpx.WriteError(w, http.StatusUnauthorized, "session_not_found")
		case errors.Is(err, session.ErrUnavailable):
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
		default:
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	setSessionCookie(w, res.SessionID, h.AuthService.SessionTTL)
	httpx.WriteJSON(w, http.StatusOK, newAuthResponse(res))
}
