package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/information-sharing-networks/kyc-demo/internal/logger"
	"github.com/information-sharing-networks/kyc-demo/internal/server/responses"
)

// RequestSizeLimit returns a middleware that enforces a maximum request body size.
//
// the middleware immediately rejects requests where the Content-Length header is greater than the max size.
// Otherwise the body is wrapped with http.MaxBytesReader so reads past the limit fail.
//
// The middleware adds an X-Max-Request-Size header to all responses to inform clients
// of the server's size limit and returns 413 Payload Too Large if the request body is too large
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Max-Request-Size", strconv.FormatInt(maxBytes, 10))

			if r.ContentLength > maxBytes {
				responses.RespondWithError(w, r, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", r.ContentLength, maxBytes),
				)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related headers to all responses
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// session links are single use
			w.Header().Set("Cache-Control", "no-store")

			if environment == "prod" || environment == "staging" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per second. If requestsPerSecond <= 0, rate limiting is disabled.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				reqLogger := logger.ContextRequestLogger(r.Context())
				reqLogger.Warn("Rate limit exceeded",
					slog.String("component", "RateLimit"),
					slog.String("remote_addr", r.RemoteAddr),
				)

				logger.ContextWithLogAttrs(r.Context(),
					slog.String("remote_addr", r.RemoteAddr),
				)

				w.Header().Set("Retry-After", "1")
				responses.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
