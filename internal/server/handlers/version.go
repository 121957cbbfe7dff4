package handlers

import (
	"net/http"

	"github.com/information-sharing-networks/kyc-demo/internal/server/responses"
	"github.com/information-sharing-networks/kyc-demo/internal/version"
)

// HandleVersion godoc
//
//	@Summary		Get version information
//	@Description	Returns the version and build information for the service
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	VersionResponse	"Version information"
//	@Router			/version [get]
func HandleVersion(info version.Info) http.HandlerFunc {
	response := VersionResponse{
		Version:   info.Version,
		BuildTime: info.BuildDate,
		GitCommit: info.GitCommit,
		Service:   "kyc-server",
	}

	return func(w http.ResponseWriter, r *http.Request) {
		responses.RespondWithJSONPayload(w, http.StatusOK, response)
	}
}

type VersionResponse struct {
	Version   string `json:"version" example:"1.0.0"`
	BuildTime string `json:"build_time" example:"2024-01-28T10:00:00Z"`
	GitCommit string `json:"git_commit" example:"a1b2c3d"`
	Service   string `json:"service" example:"kyc-server"`
}
