package http

import (
	"errors"
	"net/http"

	"github.com/prismtv/prism/internal/auth/service"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/pkg/httpx"
	"github.com/prismtv/prism/pkg/slogx"
)

// SessionsHandler serves GET /v1/auth/sessions.
type SessionsHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		List active sessions
//	@Description	Returns the authenticated user's live sessions so unfamiliar devices can be spotted and revoked.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		session.Summary
//	@Failure		401	{object}	httpx.ErrorResponse	"unauthorized"
//	@Failure		503	{object}	httpx.ErrorResponse	"session store unavailable"
//	@Router			/v1/auth/sessions [get]
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := httpx.BearerToken(r)
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	au, err := h.AuthService.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrUnavailable) {
			log.Error("list sessions failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
			return
		}
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summaries, err := h.AuthService.ListSessions(ctx, au.UserID)
	if err != nil {
		log.Error("list sessions failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}

	if summaries == nil {
		summaries = []session.Summary{}
	}
	httpx.WriteJSON(w, http.StatusOK, summaries)
}
