package uis_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/uis"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

type client struct {
	transport *uis.Transport
	login     *uis.Login
}

func newClient(t *testing.T, cas *fakeCAS) client {
	t.Helper()

	tr, err := uis.NewTransport(uis.TransportConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)

	login, err := uis.NewLogin(uis.LoginConfig{
		Transport:            tr,
		IdentityProviderHost: cas.idpHost(),
		Interval:             -1,
	})
	require.NoError(t, err)

	return client{transport: tr, login: login}
}

func (c client) gateway(t *testing.T, creds authgate.CredentialSource) *authgate.Gateway {
	t.Helper()

	gw, err := authgate.New(authgate.Options{
		Login:       c.login,
		Requests:    c.transport,
		Forms:       uis.NewFormBuilder(),
		Credentials: creds,
		Policy:      c.login.Policy(),
	})
	require.NoError(t, err)
	return gw
}

func TestNewLoginRequiresTransport(t *testing.T) {
	t.Parallel()

	_, err := uis.NewLogin(uis.LoginConfig{})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("submits the form and establishes the session", func(t *testing.T) {
		cas := newFakeCAS(t)
		c := newClient(t, cas)

		err := c.login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"),
			authgate.Credentials{Username: testUsername, Password: testPassword})
		require.NoError(t, err)
		require.Equal(t, int32(1), cas.submissions.Load())

		resp, err := c.transport.Execute(context.Background(), authgate.Request{
			URL: mustURL(t, cas.Resource.URL+"/epay/myepay/index"), Method: http.MethodGet,
		})
		require.NoError(t, err)
		require.Equal(t, "payload GET /epay/myepay/index", string(resp.Body))
	})

	t.Run("already logged in does not resubmit", func(t *testing.T) {
		cas := newFakeCAS(t)
		c := newClient(t, cas)
		creds := authgate.Credentials{Username: testUsername, Password: testPassword}

		require.NoError(t, c.login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"), creds))
		require.NoError(t, c.login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"), creds))
		require.Equal(t, int32(1), cas.submissions.Load())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		cas := newFakeCAS(t)
		c := newClient(t, cas)

		err := c.login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"),
			authgate.Credentials{Username: testUsername, Password: "wrong"})
		require.ErrorIs(t, err, authgate.ErrLoginFailed)
	})

	t.Run("one-time code", func(t *testing.T) {
		const secret = "JBSWY3DPEHPK3PXP"
		cas := newFakeCAS(t)
		cas.requireCode(func(code string) bool { return totp.Validate(code, secret) })
		c := newClient(t, cas)

		err := c.login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"),
			authgate.Credentials{Username: testUsername, Password: testPassword})
		require.ErrorIs(t, err, authgate.ErrLoginFailed, "code missing")

		err = c.login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"),
			authgate.Credentials{Username: testUsername, Password: testPassword, TOTPSecret: secret})
		require.NoError(t, err)
	})
}

func TestLoginThrottlesSubmissions(t *testing.T) {
	t.Parallel()

	cas := newFakeCAS(t)
	tr, err := uis.NewTransport(uis.TransportConfig{})
	require.NoError(t, err)

	login, err := uis.NewLogin(uis.LoginConfig{
		Transport:            tr,
		IdentityProviderHost: cas.idpHost(),
		Interval:             time.Hour,
	})
	require.NoError(t, err)

	bad := authgate.Credentials{Username: testUsername, Password: "wrong"}
	require.ErrorIs(t, login.Login(context.Background(), mustURL(t, cas.Resource.URL+"/"), bad), authgate.ErrLoginFailed)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = login.Login(ctx, mustURL(t, cas.Resource.URL+"/"), bad)
	require.Error(t, err)
	require.NotErrorIs(t, err, authgate.ErrLoginFailed)
	require.Equal(t, int32(1), cas.submissions.Load(), "second submission waits instead of hitting the IdP")
}

func TestGatewayOverCAS(t *testing.T) {
	t.Parallel()

	t.Run("GET recovers through the login redirect", func(t *testing.T) {
		cas := newFakeCAS(t)
		gw := newClient(t, cas).gateway(t, authgate.StaticCredentials{Username: testUsername, Password: testPassword})

		body, err := gw.Fetch(context.Background(), cas.Resource.URL+"/epay/myepay/index")
		require.NoError(t, err)
		require.Equal(t, "payload GET /epay/myepay/index", string(body))

		sessions := gw.Sessions()
		require.Len(t, sessions, 1)
		require.True(t, sessions[0].Valid)

		body, err = gw.Fetch(context.Background(), cas.Resource.URL+"/epay/consume/query")
		require.NoError(t, err)
		require.Equal(t, "payload GET /epay/consume/query", string(body))
		require.Equal(t, int32(1), cas.submissions.Load())
	})

	t.Run("concurrent POSTs share one login", func(t *testing.T) {
		cas := newFakeCAS(t)
		gw := newClient(t, cas).gateway(t, authgate.StaticCredentials{Username: testUsername, Password: testPassword})

		target := mustURL(t, cas.Resource.URL+"/api/query")

		var wg sync.WaitGroup
		errs := make([]error, 6)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = gw.Authenticate(context.Background(), authgate.Request{
					URL:    target,
					Method: http.MethodPost,
				})
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		require.Equal(t, int32(1), cas.submissions.Load())
	})

	t.Run("wrong password", func(t *testing.T) {
		cas := newFakeCAS(t)
		gw := newClient(t, cas).gateway(t, authgate.StaticCredentials{Username: testUsername, Password: "nope"})

		_, err := gw.Fetch(context.Background(), cas.Resource.URL+"/epay/myepay/index")
		require.ErrorIs(t, err, authgate.ErrLoginFailed)
		require.Empty(t, gw.Sessions())
	})
}
