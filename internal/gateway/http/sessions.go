package http

import (
	"net/http"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/aussiebroadwan/campusgate/pkg/httpx"
)

// SessionLister is the part of authgate.Gateway the sessions endpoint uses.
type SessionLister interface {
	Sessions() []authgate.SessionRecord
	Pending(host string) int
}

type SessionsHandler struct {
	Gateway SessionLister
}

// ServeHTTP lists per-host login state.
//
//	@Summary		List sessions
//	@Description	Returns every host the gateway has logged in to, with its expiry and the number of queued logins.
//	@Tags			Sessions
//	@Produce		json
//	@Success		200	{object}	gatesdk.SessionsResponse
//	@Failure		401	{object}	gatesdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	gatesdk.ErrorResponse	"Missing campus:read scope"
//	@Security		BearerAuth
//	@Router			/v1/sessions [get]
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records := h.Gateway.Sessions()

	resp := gatesdk.SessionsResponse{Sessions: make([]gatesdk.SessionInfo, len(records))}
	for i, rec := range records {
		resp.Sessions[i] = gatesdk.SessionInfo{
			Host:                rec.Host,
			LastAuthenticatedAt: rec.LastAuthenticated,
			ExpiresAt:           rec.ExpiresAt,
			Valid:               rec.Valid,
			Pending:             h.Gateway.Pending(rec.Host),
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
