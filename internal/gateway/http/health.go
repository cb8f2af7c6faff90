package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/aussiebroadwan/campusgate/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 OK while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, gatesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// KeyStatus reports whether token verification keys are loaded.
type KeyStatus interface {
	Ready() bool
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database and, when bearer authentication is enabled, that verification keys are loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	gatesdk.HealthResponse	"service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, db Pinger, keys KeyStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &gatesdk.HealthChecks{Database: "ok"}
		status, code := "ok", http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		if keys != nil {
			checks.Keys = "ok"
			if !keys.Ready() {
				checks.Keys = "error: no keys loaded"
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, gatesdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
