package gateway_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/stretchr/testify/require"
)

func TestSessionsEmptyOnStart(t *testing.T) {
	client, cleanup := setupGatewayContainer(t)
	defer cleanup()

	sessions, err := client.Sessions(t.Context())
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestFetchRejectsMalformedTarget(t *testing.T) {
	client, cleanup := setupGatewayContainer(t)
	defer cleanup()

	for _, raw := range []string{"", "ftp://campus.invalid/file", "/relative/path"} {
		_, err := client.Get(t.Context(), raw)
		assertAPIError(t, err, http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest)
	}
}

// TestFetchUnreachableHost covers a GET that never reaches the campus network.
func TestFetchUnreachableHost(t *testing.T) {
	client, cleanup := setupGatewayContainer(t)
	defer cleanup()
	storeCredentials(t, client)

	_, err := client.Get(t.Context(), unreachableURL)
	assertAPIError(t, err, http.StatusBadGateway, gatesdk.ErrorCodeUpstreamError)

	sessions, err := client.Sessions(t.Context())
	require.NoError(t, err)
	require.Empty(t, sessions, "a failed fetch must not mark the host logged in")
}

// TestPreloginWithoutCredentials posts before any account is stored, so the
// login that must precede the request has nothing to submit.
func TestPreloginWithoutCredentials(t *testing.T) {
	client, cleanup := setupGatewayContainer(t)
	defer cleanup()
	ctx := t.Context()

	_, err := client.Fetch(ctx, gatesdk.FetchRequest{
		URL:    unreachableURL,
		Method: http.MethodPost,
		Body:   []byte("lesson=1"),
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
	})
	assertAPIError(t, err, http.StatusPreconditionFailed, gatesdk.ErrorCodeCredentialsMissing)

	attempts, err := client.LoginAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, "campus.invalid", attempts[0].Host)
	require.Equal(t, "prelogin", attempts[0].Trigger)
	require.Equal(t, "credentials_missing", attempts[0].Outcome)
}

// TestPreloginNetworkFailure stores an account and then fails while opening
// the manual login page.
func TestPreloginNetworkFailure(t *testing.T) {
	client, cleanup := setupGatewayContainer(t)
	defer cleanup()
	ctx := t.Context()
	storeCredentials(t, client)

	_, err := client.Fetch(ctx, gatesdk.FetchRequest{
		URL:            unreachableURL,
		Method:         http.MethodGet,
		ManualLoginURL: "http://campus.invalid/eams/login.action",
	})
	assertAPIError(t, err, http.StatusBadGateway, gatesdk.ErrorCodeUpstreamError)

	attempts, err := client.LoginAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, "prelogin", attempts[0].Trigger)
	require.Equal(t, "error", attempts[0].Outcome)
	require.NotEmpty(t, attempts[0].Error)
}
