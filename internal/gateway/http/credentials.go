package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/campusgate/internal/gateway/service"
	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/aussiebroadwan/campusgate/pkg/httpx"
	"github.com/aussiebroadwan/campusgate/pkg/slogx"
)

type CredentialManager interface {
	Set(ctx context.Context, username, password, totpSecret string) error
	Clear(ctx context.Context) error
	Status(ctx context.Context) (service.CredentialStatus, error)
}

type CredentialsHandler struct {
	Credentials CredentialManager
}

// HandleGet reports whether credentials are configured.
//
//	@Summary		Credential status
//	@Description	Reports the configured identity provider account. Secrets are never returned.
//	@Tags			Credentials
//	@Produce		json
//	@Success		200	{object}	gatesdk.CredentialStatus
//	@Failure		401	{object}	gatesdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	gatesdk.ErrorResponse	"Missing campus:admin scope"
//	@Failure		500	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/credentials [get]
func (h *CredentialsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r)
}

// HandlePut replaces the stored credentials.
//
//	@Summary		Set credentials
//	@Description	Replaces the identity provider account. The password and optional TOTP secret are sealed at rest.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.SetCredentialsRequest	true	"Account"
//	@Success		200		{object}	gatesdk.CredentialStatus
//	@Failure		400		{object}	gatesdk.ErrorResponse	"Missing username or password, or invalid TOTP secret"
//	@Failure		401		{object}	gatesdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403		{object}	gatesdk.ErrorResponse	"Missing campus:admin scope"
//	@Failure		500		{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/credentials [put]
func (h *CredentialsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in gatesdk.SetCredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}

	err := h.Credentials.Set(ctx, in.Username, in.Password, in.TOTPSecret)
	switch {
	case errors.Is(err, service.ErrInvalidCredential), errors.Is(err, service.ErrInvalidTOTPSecret):
		httpx.WriteError(w, http.StatusBadRequest, gatesdk.ErrorCodeInvalidRequest, err.Error())
		return
	case err != nil:
		slogx.FromContext(ctx).Error("failed to set credentials", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, gatesdk.ErrorCodeServerError, "failed to store credentials")
		return
	}

	slogx.FromContext(ctx).Info("credentials updated", "username", in.Username)
	h.writeStatus(w, r)
}

// HandleDelete removes the stored credentials.
//
//	@Summary		Clear credentials
//	@Description	Removes the identity provider account. Existing sessions stay valid until they expire.
//	@Tags			Credentials
//	@Success		204
//	@Failure		401	{object}	gatesdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	gatesdk.ErrorResponse	"Missing campus:admin scope"
//	@Failure		500	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/credentials [delete]
func (h *CredentialsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Credentials.Clear(ctx); err != nil {
		slogx.FromContext(ctx).Error("failed to clear credentials", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, gatesdk.ErrorCodeServerError, "failed to clear credentials")
		return
	}
	slogx.FromContext(ctx).Info("credentials cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *CredentialsHandler) writeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Credentials.Status(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to read credential status", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, gatesdk.ErrorCodeServerError, "failed to read credentials")
		return
	}

	resp := gatesdk.CredentialStatus{
		Configured: status.Configured,
		Username:   status.Username,
		HasTOTP:    status.HasTOTP,
	}
	if status.Configured {
		updated := status.UpdatedAt
		resp.UpdatedAt = &updated
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
