package sumsub

// errors.go defines the error taxonomy for calls to the Sumsub API

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	// ErrKindTransport is used when the request did not produce an HTTP response
	// (connection refused, DNS, timeout, cancelled context).
	ErrKindTransport ErrorKind = "transport"

	// ErrKindRemoteRejection is used when the API returned a non-2xx status with a JSON error body.
	ErrKindRemoteRejection ErrorKind = "remote_rejection"

	// ErrKindProtocol is used when the response could not be understood:
	// a non-2xx status whose body is not a JSON error object, or a 2xx body that does not decode into the expected shape.
	ErrKindProtocol ErrorKind = "protocol"

	// ErrKindNone is returned by KindOf for errors that did not come from this package.
	ErrKindNone ErrorKind = ""
)

// ProviderError is the error object returned by the Sumsub API.
// Only the commonly used fields are decoded; the full body is kept on Error.
type ProviderError struct {
	Description   string `json:"description"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlationId"`
	ErrorCode     int    `json:"errorCode,omitempty"`
	ErrorName     string `json:"errorName,omitempty"`
}

// Error represents a structured error from the sumsub package.
type Error struct {

	// kind is the error classification
	kind ErrorKind

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error

	// statusCode is the HTTP status returned by the API (0 for transport errors)
	statusCode int

	// body is the verbatim response body for remote rejections
	body json.RawMessage

	// provider is the decoded error body for remote rejections
	provider *ProviderError
}

func (e *Error) Error() string {
	msg := e.message
	if e.statusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.statusCode)
	}
	if e.provider != nil && e.provider.Description != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.provider.Description)
	}
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", msg, e.wrapped)
	}
	return msg
}

func (e *Error) Kind() ErrorKind               { return e.kind }
func (e *Error) StatusCode() int               { return e.statusCode }
func (e *Error) Body() json.RawMessage         { return e.body }
func (e *Error) ProviderError() *ProviderError { return e.provider }
func (e *Error) Unwrap() error                 { return e.wrapped }

// KindOf returns the ErrorKind of err, or ErrKindNone if err is not a sumsub error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ErrKindNone
}

// WrapTransportError wraps a failure to obtain an HTTP response.
func WrapTransportError(err error, msg string) error {
	return &Error{kind: ErrKindTransport, message: msg, wrapped: err}
}

// NewRemoteRejection creates an error for a non-2xx response carrying a provider error body.
func NewRemoteRejection(msg string, statusCode int, body json.RawMessage, provider *ProviderError) error {
	return &Error{
		kind:       ErrKindRemoteRejection,
		message:    msg,
		statusCode: statusCode,
		body:       body,
		provider:   provider,
	}
}

// NewProtocolError creates an error for a response that could not be interpreted.
func NewProtocolError(msg string, statusCode int) error {
	return &Error{kind: ErrKindProtocol, message: msg, statusCode: statusCode}
}

// WrapProtocolError wraps a decoding failure as a protocol error.
func WrapProtocolError(err error, msg string, statusCode int) error {
	return &Error{kind: ErrKindProtocol, message: msg, wrapped: err, statusCode: statusCode}
}
