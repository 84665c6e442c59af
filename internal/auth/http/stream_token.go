package http

import (
	"errors"
	"net/http"

	"github.com/prismtv/prism/internal/auth/service"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/pkg/httpx"
	"github.com/prismtv/prism/pkg/slogx"
)

// StreamTokenHandler serves POST /v1/stream/{id}/token.
type StreamTokenHandler struct {
	AuthService *service.AuthService
}

type StreamTokenResponse struct {
	Token string `json:"token"`
}

// ServeHTTP godoc
//
//	@Summary		Issue a stream token
//	@Description	Trades a valid access token for a six hour token scoped to the named stream. The stream token is handed to the media edge and verified there without a session lookup.
//	@Tags			Stream
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Stream id"
//	@Success		200	{object}	StreamTokenResponse
//	@Failure		400	{object}	httpx.ErrorResponse	"invalid_input"
//	@Failure		401	{object}	httpx.ErrorResponse	"unauthorized"
//	@Failure		503	{object}	httpx.ErrorResponse	"session store unavailable"
//	@Router			/v1/stream/{id}/token [post]
func (h *StreamTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accessToken := httpx.BearerToken(r)
	if accessToken == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	streamID := r.PathValue("id")

	token, err := h.AuthService.IssueStreamToken(ctx, accessToken, streamID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input")
		case errors.Is(err, session.ErrUnavailable):
			log.Error("stream token issuance failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable")
		case errors.Is(err, service.ErrUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		default:
			log.Error("stream token issuance failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, StreamTokenResponse{Token: token})
}
