package http

import (
	"errors"
	"net/http"

	"github.com/prismtv/prism/internal/auth/service"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/pkg/httpx"
	"github.com/prismtv/prism/pkg/slogx"
)

// LogoutAllHandler serves POST /v1/auth/logout-all.
type LogoutAllHandler struct {
	AuthService *service.AuthService
}

type LogoutAllResponse struct {
	Status          string `json:"status"`
	SessionsRevoked int    `json:"sessions_revoked"`
}

// ServeHTTP godoc
//
//	@Summary		Log out everywhere
//	@Description	Revokes every session the authenticated user owns, including the one backing the presented token.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	LogoutAllResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"unauthorized"
//	@Failure		503	{object}	httpx.ErrorResponse	"session store unavailable"
//	@Router			/v1/auth/logout-all [post]
func (h *LogoutAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
			log.Error("logout-all failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
			return
		}
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	n, err := h.AuthService.LogoutAll(ctx, au.UserID)
	if err != nil {
		log.Error("logout-all failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
		return
	}

	clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, LogoutAllResponse{
		Status:          "logged_out",
		SessionsRevoked: n,
	})
}
