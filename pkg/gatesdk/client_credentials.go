package gatesdk

import (
	"context"
	"net/http"
)

func (c *Client) CredentialStatus(ctx context.Context) (*CredentialStatus, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/credentials", nil, nil)
	if err != nil {
		return nil, err
	}

	var status CredentialStatus
	if err := decodeJSON(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetCredentials replaces the identity provider account the gateway uses.
func (c *Client) SetCredentials(ctx context.Context, req SetCredentialsRequest) (*CredentialStatus, error) {
	resp, err := c.doJSON(ctx, http.MethodPut, "/v1/credentials", req)
	if err != nil {
		return nil, err
	}

	var status CredentialStatus
	if err := decodeJSON(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) ClearCredentials(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/credentials", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
