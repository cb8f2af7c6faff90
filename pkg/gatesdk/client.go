package gatesdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout covers a fetch that has to log in first.
const DefaultTimeout = 90 * time.Second

// Client talks to a campusgate server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as a bearer token when set.
	Token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}
