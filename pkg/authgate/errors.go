package authgate

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialsNotFound is returned when the identity provider asks for a
	// login and no credentials are stored. It is never retried.
	ErrCredentialsNotFound = errors.New("authgate: credentials not found")

	// ErrLoginFailed is returned when a request still lands on the identity
	// provider after credentials were submitted, or when an already valid
	// session is bounced back to the login flow.
	ErrLoginFailed = errors.New("authgate: login failed")

	// ErrMalformedRequest is returned for requests without a host or method.
	// No lane work is scheduled for them.
	ErrMalformedRequest = errors.New("authgate: malformed request")
)

// NetworkError wraps a transport level failure from a login or request
// executor. The gateway surfaces it unchanged.
type NetworkError struct {
	Op  string // "login", "request", ...
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("authgate: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err carries a *NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
