package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/campusgate/pkg/jwtx"
	"github.com/aussiebroadwan/campusgate/pkg/slogx"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(jwtx.Claims)
	return c, ok
}

// Subject returns the authenticated subject, or "" for anonymous requests.
func Subject(ctx context.Context) string {
	c, _ := ClaimsFromContext(ctx)
	return c.Subject
}

// Authenticate requires a valid bearer token and stores its claims in the
// request context.
func Authenticate(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "invalid_request", "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("bearer token rejected", "error", err)
				writeBearerError(w, "invalid_token", "token verification failed")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("sub", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope lets the request through when the caller holds any of scopes.
func RequireScope(scopes ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			for _, s := range scopes {
				if claims.HasScope(s) {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("WWW-Authenticate",
				`Bearer error="insufficient_scope", scope="`+strings.Join(scopes, " ")+`"`)
			WriteError(w, http.StatusForbidden, "insufficient_scope", "requires one of: "+strings.Join(scopes, ", "))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeBearerError follows RFC 6750 section 3.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, code, desc)
}
