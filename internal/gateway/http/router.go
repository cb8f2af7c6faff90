package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/httpx"
	"github.com/aussiebroadwan/campusgate/pkg/jwtx"
	"github.com/aussiebroadwan/campusgate/pkg/slogx"

	_ "github.com/aussiebroadwan/campusgate/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// API scopes. campus:admin implies the other two.
const (
	ScopeFetch = "campus:fetch"
	ScopeRead  = "campus:read"
	ScopeAdmin = "campus:admin"
)

// Gateway is satisfied by *authgate.Gateway.
type Gateway interface {
	Authenticator
	SessionLister
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier // nil disables bearer authentication
	keys         KeyStatus
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	db           Pinger

	Gateway     Gateway
	Credentials CredentialManager
	Audit       AuditLog
}

// NewRouter builds a Router. A nil verifier serves every endpoint without
// authentication; keys may be nil in that case.
func NewRouter(
	verifier jwtx.Verifier,
	keys KeyStatus,
	buildVersion string,
	db Pinger,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		db:           db,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerFetch()
	r.registerSessions()
	r.registerCredentials()
	r.registerAudit()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			campusgate API
//	@version		0.1.0
//	@description	Authenticated access to web systems behind a central campus login.
//	@description	The gateway keeps one login session per host, logs in at most once per host at a time and
//	@description	returns the body of the protected resource.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/campusgate
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with bearer authentication and a scope check, then rate
// limits per caller. Without a verifier only the rate limit applies.
func (r *Router) secured(h http.Handler, limit httpx.RateLimit, scopes ...string) http.Handler {
	if r.verifier == nil {
		return httpx.Chain(h, httpx.RateLimitBy(limit, httpx.ClientIP))
	}
	return httpx.Chain(h,
		httpx.Authenticate(r.verifier),
		httpx.RequireScope(scopes...),
		httpx.RateLimitBy(limit, httpx.SubjectOrIP),
	)
}

func (r *Router) registerFetch() {
	h := &FetchHandler{Gateway: r.Gateway}

	// Every fetch may reach the campus network, so this is the tightest
	// per-caller budget after the admin endpoints.
	r.Mux.Handle("POST /v1/fetch",
		r.secured(h, httpx.LimitFromEnv("FETCH", httpx.FetchLimit), ScopeFetch, ScopeAdmin),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{Gateway: r.Gateway}
	r.Mux.Handle("GET /v1/sessions",
		r.secured(h, httpx.LimitFromEnv("READ", httpx.ReadLimit), ScopeRead, ScopeAdmin),
	)
}

func (r *Router) registerCredentials() {
	h := &CredentialsHandler{Credentials: r.Credentials}
	limit := httpx.LimitFromEnv("ADMIN", httpx.AdminLimit)

	r.Mux.Handle("GET /v1/credentials", r.secured(http.HandlerFunc(h.HandleGet), limit, ScopeAdmin))
	r.Mux.Handle("PUT /v1/credentials", r.secured(http.HandlerFunc(h.HandlePut), limit, ScopeAdmin))
	r.Mux.Handle("DELETE /v1/credentials", r.secured(http.HandlerFunc(h.HandleDelete), limit, ScopeAdmin))
}

func (r *Router) registerAudit() {
	h := &LoginAttemptsHandler{Audit: r.Audit}
	r.Mux.Handle("GET /v1/login-attempts",
		r.secured(h, httpx.LimitFromEnv("ADMIN", httpx.AdminLimit), ScopeAdmin),
	)
}

func (r *Router) registerSystem() {
	probe := httpx.LimitFromEnv("READ", httpx.ReadLimit)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), httpx.RateLimitBy(probe, httpx.ClientIP)),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db, r.keys), httpx.RateLimitBy(probe, httpx.ClientIP)),
	)
}
