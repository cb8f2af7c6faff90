package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/aussiebroadwan/campusgate/pkg/httpx"
	"github.com/aussiebroadwan/campusgate/pkg/slogx"
)

type AuditLog interface {
	Recent(ctx context.Context, limit int) ([]domain.LoginAttempt, error)
}

type LoginAttemptsHandler struct {
	Audit AuditLog
}

// ServeHTTP lists recent login attempts.
//
//	@Summary		List login attempts
//	@Description	Returns the most recent identity provider logins, newest first.
//	@Tags			Audit
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of attempts (1-500)"	default(50)
//	@Success		200		{object}	gatesdk.LoginAttemptsResponse
//	@Failure		400		{object}	gatesdk.ErrorResponse	"Invalid limit"
//	@Failure		401		{object}	gatesdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403		{object}	gatesdk.ErrorResponse	"Missing campus:admin scope"
//	@Failure		500		{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/login-attempts [get]
func (h *LoginAttemptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.WriteError(w, http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	attempts, err := h.Audit.Recent(ctx, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list login attempts", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, gatesdk.ErrorCodeServerError, "failed to list login attempts")
		return
	}

	resp := gatesdk.LoginAttemptsResponse{Attempts: make([]gatesdk.LoginAttempt, len(attempts))}
	for i, a := range attempts {
		resp.Attempts[i] = gatesdk.LoginAttempt{
			ID:         a.ID,
			Host:       a.Host,
			Trigger:    a.Trigger,
			Outcome:    a.Outcome,
			Error:      a.Error,
			StartedAt:  a.StartedAt,
			FinishedAt: a.FinishedAt,
			DurationMS: a.Duration().Milliseconds(),
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
