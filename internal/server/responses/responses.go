// responses package provides helpers for writing JSON responses from the HTTP handlers and middleware.
package responses

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/information-sharing-networks/kyc-demo/internal/logger"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	StatusCode     int    `json:"statusCode" example:"502"`
	StatusCodeText string `json:"statusCodeText" example:"Bad Gateway"`
	Message        string `json:"message" example:"session link unavailable"`
	RequestID      string `json:"requestId,omitempty"`
	ErrorDateTime  string `json:"errorDateTime"`
}

// RespondWithError sends an ErrorResponse with the given status code.
//
// message is returned to the client as-is and must not contain internal details.
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	requestID := middleware.GetReqID(r.Context())

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Warn("Request failed",
		slog.Int("status_code", statusCode),
		slog.String("message", message),
	)

	RespondWithJSONPayload(w, statusCode, ErrorResponse{
		StatusCode:     statusCode,
		StatusCodeText: http.StatusText(statusCode),
		Message:        message,
		RequestID:      requestID,
		ErrorDateTime:  time.Now().UTC().Format(time.RFC3339),
	})
}

// RespondWithJSONPayload sends a JSON response with the given status code
func RespondWithJSONPayload(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// headers are already written so only log the failure
			slog.Error("Failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}
