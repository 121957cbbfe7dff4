// Package handlers provides the HTTP handlers for the KYC session link service:
// the session link workflows and the common infrastructure handlers (health, version).
package handlers
