package authgate

import "strings"

// LoginRequiredFunc decides, from the authority of a response's final URL,
// whether the exchange was diverted into the login flow.
//
// The identity provider signals "not logged in" by redirecting to its own
// host rather than with a status code, so the decision is kept swappable per
// deployment.
type LoginRequiredFunc func(finalHost string) bool

// IdentityProviderHost returns a policy that flags responses served from
// host (case-insensitive).
func IdentityProviderHost(host string) LoginRequiredFunc {
	host = strings.ToLower(host)
	return func(finalHost string) bool {
		return strings.ToLower(finalHost) == host
	}
}
