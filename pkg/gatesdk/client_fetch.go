package gatesdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetch performs req through the gateway and returns the response body of
// the protected resource.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) ([]byte, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/fetch", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := parseErrorResponse(resp, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Get is Fetch for a plain GET of rawURL.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.Fetch(ctx, FetchRequest{URL: rawURL, Method: http.MethodGet})
}
