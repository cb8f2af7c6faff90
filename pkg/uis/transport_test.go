package uis_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/uis"
	"github.com/stretchr/testify/require"
)

func TestTransportExecute(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			http.Redirect(w, r, "/final?x=1", http.StatusFound)
		case "/final":
			c, err := r.Cookie("sid")
			if err != nil {
				http.Error(w, "no cookie", http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, "cookie="+c.Value+" ua="+r.UserAgent())
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			_, _ = io.WriteString(w, r.Method+" "+r.Header.Get("X-Trace")+" "+string(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	tr, err := uis.NewTransport(uis.TransportConfig{UserAgent: "campusgate-test"})
	require.NoError(t, err)

	t.Run("follows redirects and reports the final URL", func(t *testing.T) {
		resp, err := tr.Execute(context.Background(), authgate.Request{URL: mustURL(t, srv.URL+"/start"), Method: http.MethodGet})
		require.NoError(t, err)
		require.Equal(t, "/final", resp.FinalURL.Path)
		require.Equal(t, "x=1", resp.FinalURL.RawQuery)
		require.Equal(t, "cookie=abc ua=campusgate-test", string(resp.Body))
	})

	t.Run("sends method, headers and body", func(t *testing.T) {
		resp, err := tr.Execute(context.Background(), authgate.Request{
			URL:    mustURL(t, srv.URL+"/echo"),
			Method: http.MethodPost,
			Header: http.Header{"X-Trace": {"t-1"}},
			Body:   []byte("a=b"),
		})
		require.NoError(t, err)
		require.Equal(t, "POST t-1 a=b", string(resp.Body))
	})

	t.Run("status codes are not errors", func(t *testing.T) {
		resp, err := tr.Execute(context.Background(), authgate.Request{URL: mustURL(t, srv.URL+"/missing"), Method: http.MethodGet})
		require.NoError(t, err)
		require.Contains(t, string(resp.Body), "404")
	})
}

func TestTransportNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/gone"
	srv.Close()

	tr, err := uis.NewTransport(uis.TransportConfig{})
	require.NoError(t, err)

	_, err = tr.Execute(context.Background(), authgate.Request{URL: mustURL(t, target), Method: http.MethodGet})
	require.Error(t, err)

	var netErr *authgate.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, "request", netErr.Op)
	require.Equal(t, target, netErr.URL)
}

func TestTransportRejectsBadMethod(t *testing.T) {
	t.Parallel()

	tr, err := uis.NewTransport(uis.TransportConfig{})
	require.NoError(t, err)

	_, err = tr.Execute(context.Background(), authgate.Request{URL: mustURL(t, "http://127.0.0.1/"), Method: "BAD METHOD"})
	require.ErrorIs(t, err, authgate.ErrMalformedRequest)
}
