package gatesdk

import (
	"context"
	"net/http"
	"strconv"
)

// LoginAttempts returns the most recent login attempts, newest first. A
// non-positive limit uses the server default.
func (c *Client) LoginAttempts(ctx context.Context, limit int) ([]LoginAttempt, error) {
	path := "/v1/login-attempts"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out LoginAttemptsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}
