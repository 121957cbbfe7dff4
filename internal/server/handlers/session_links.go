package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/information-sharing-networks/kyc-demo/internal/kyc"
	"github.com/information-sharing-networks/kyc-demo/internal/logger"
	"github.com/information-sharing-networks/kyc-demo/internal/server/responses"
)

// SessionLinkIssuer runs the session link workflows (implemented by *kyc.Service)
type SessionLinkIssuer interface {
	Generate(ctx context.Context, externalUserID string) (string, bool)
	Regenerate(ctx context.Context, externalUserID string) (string, bool)
}

// SessionLinkResponse is returned when a session link was issued
type SessionLinkResponse struct {
	ExternalUserID string `json:"externalUserId" example:"u-100"`
	URL            string `json:"url" example:"https://in.sumsub.com/websdk/p/abc123"`
}

// errSessionLinkUnavailable is the only failure message: the workflows do not distinguish failure causes to callers
const errSessionLinkUnavailable = "session link unavailable"

// HandleGenerateSessionLink godoc
//
//	@Summary		Issue a verification session link
//	@Description	Requests a new Sumsub WebSDK link for the user.
//	@Description	Any upstream failure is reported as 502; the cause is only available in the server logs and metrics.
//	@Tags			KYC
//	@Produce		json
//	@Param			externalUserId	path		string				true	"external user id"
//	@Success		200				{object}	SessionLinkResponse
//	@Failure		400				{object}	responses.ErrorResponse	"invalid user id"
//	@Failure		502				{object}	responses.ErrorResponse	"session link unavailable"
//	@Router			/v1/users/{externalUserId}/session-link [post]
func HandleGenerateSessionLink(issuer SessionLinkIssuer) http.HandlerFunc {
	return handleWorkflow(kyc.WorkflowGenerate, issuer.Generate)
}

// HandleRegenerateSessionLink godoc
//
//	@Summary		Reset the user and issue a new verification session link
//	@Description	Looks up the Sumsub applicant for the user, resets it and requests a new WebSDK link.
//	@Description	Any upstream failure is reported as 502; the cause is only available in the server logs and metrics.
//	@Tags			KYC
//	@Produce		json
//	@Param			externalUserId	path		string				true	"external user id"
//	@Success		200				{object}	SessionLinkResponse
//	@Failure		400				{object}	responses.ErrorResponse	"invalid user id"
//	@Failure		502				{object}	responses.ErrorResponse	"session link unavailable"
//	@Router			/v1/users/{externalUserId}/session-link/regenerate [post]
func HandleRegenerateSessionLink(issuer SessionLinkIssuer) http.HandlerFunc {
	return handleWorkflow(kyc.WorkflowRegenerate, issuer.Regenerate)
}

func handleWorkflow(workflow string, run func(context.Context, string) (string, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalUserID, err := url.PathUnescape(chi.URLParam(r, "externalUserId"))
		if err == nil {
			err = kyc.ValidateExternalUserID(externalUserID)
		}
		if err != nil {
			responses.RespondWithError(w, r, http.StatusBadRequest, "invalid external user id")
			return
		}

		logger.ContextWithLogAttrs(r.Context(),
			slog.String("workflow", workflow),
			slog.String("external_user_id", externalUserID),
		)

		// the workflow runs to completion even if the client goes away
		link, ok := run(context.WithoutCancel(r.Context()), externalUserID)
		if !ok {
			responses.RespondWithError(w, r, http.StatusBadGateway, errSessionLinkUnavailable)
			return
		}

		responses.RespondWithJSONPayload(w, http.StatusOK, SessionLinkResponse{
			ExternalUserID: externalUserID,
			URL:            link,
		})
	}
}
