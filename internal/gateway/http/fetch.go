package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/aussiebroadwan/campusgate/pkg/httpx"
	"github.com/aussiebroadwan/campusgate/pkg/slogx"
)

// maxFetchRequestBytes bounds the JSON envelope, base64 body included.
const maxFetchRequestBytes = 8 << 20

// Authenticator is the part of authgate.Gateway the fetch endpoint uses.
type Authenticator interface {
	Authenticate(ctx context.Context, req authgate.Request) ([]byte, error)
}

type FetchHandler struct {
	Gateway Authenticator
}

// ServeHTTP performs one authenticated exchange.
//
//	@Summary		Fetch a protected resource
//	@Description	Performs the request with the gateway's session for the target host, logging in first when needed.
//	@Description	The response body of the protected resource is returned as-is.
//	@Tags			Fetch
//	@Accept			json
//	@Produce		octet-stream
//	@Param			request	body		gatesdk.FetchRequest	true	"Exchange to perform"
//	@Success		200		{file}		binary					"Body of the protected resource"
//	@Failure		400		{object}	gatesdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	gatesdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403		{object}	gatesdk.ErrorResponse	"Missing campus:fetch scope"
//	@Failure		412		{object}	gatesdk.ErrorResponse	"No credentials configured"
//	@Failure		429		{object}	gatesdk.ErrorResponse	"Rate limited"
//	@Failure		502		{object}	gatesdk.ErrorResponse	"Login failed or upstream unreachable"
//	@Security		BearerAuth
//	@Router			/v1/fetch [post]
func (h *FetchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var in gatesdk.FetchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFetchRequestBytes)).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	req, err := toGatewayRequest(in)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest, err.Error())
		return
	}

	body, err := h.Gateway.Authenticate(ctx, req)
	if err != nil {
		status, code := fetchErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error("fetch failed", "host", req.Host(), "error", err)
		} else {
			log.Warn("fetch rejected", "host", req.Host(), "error", err)
		}
		httpx.WriteError(w, status, code, err.Error())
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func toGatewayRequest(in gatesdk.FetchRequest) (authgate.Request, error) {
	target, err := parseTarget(in.URL)
	if err != nil {
		return authgate.Request{}, err
	}

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	req := authgate.Request{
		URL:    target,
		Method: method,
		Body:   in.Body,
	}

	if len(in.Headers) > 0 {
		req.Header = make(http.Header, len(in.Headers))
		for k, v := range in.Headers {
			req.Header.Set(k, v)
		}
	}

	if in.ManualLoginURL != "" {
		loginURL, err := parseTarget(in.ManualLoginURL)
		if err != nil {
			return authgate.Request{}, errors.New("manual_login_url: " + err.Error())
		}
		req.ManualLoginURL = loginURL
	}
	return req, nil
}

func parseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.New("url is not valid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("url must be absolute http or https")
	}
	if u.Host == "" {
		return nil, errors.New("url has no host")
	}
	return u, nil
}

func fetchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, authgate.ErrMalformedRequest):
		return http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest
	case errors.Is(err, authgate.ErrCredentialsNotFound):
		return http.StatusPreconditionFailed, gatesdk.ErrorCodeCredentialsMissing
	case errors.Is(err, authgate.ErrLoginFailed):
		return http.StatusBadGateway, gatesdk.ErrorCodeLoginFailed
	case authgate.IsNetworkError(err):
		return http.StatusBadGateway, gatesdk.ErrorCodeUpstreamError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, gatesdk.ErrorCodeUpstreamError
	default:
		return http.StatusInternalServerError, gatesdk.ErrorCodeServerError
	}
}
