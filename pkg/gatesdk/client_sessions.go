package gatesdk

import (
	"context"
	"net/http"
)

// Sessions lists every host the gateway has logged in to.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions", nil, nil)
	if err != nil {
		return nil, err
	}

	var out SessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}
