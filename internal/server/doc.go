// Package server provides the HTTP server for the KYC session link service.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// Routes:
//
//	POST /v1/users/{externalUserId}/session-link             issue a session link
//	POST /v1/users/{externalUserId}/session-link/regenerate  reset the user and issue a new link
//	GET  /health/live, /version, /metrics
//
// handlers are in internal/server/handlers and middleware is in internal/server/middleware
package server
