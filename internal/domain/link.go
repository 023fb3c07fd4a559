package domain

import (
	"errors"
	"time"
)

// ShortenRequest is the input of a shorten operation
type ShortenRequest struct {
	APIKey *string `json:"api_key,omitempty"`
	URL    string  `json:"url" binding:"required"`

	// RequestHost is the host the request was addressed to; empty when
	// the transport cannot tell. Used to refuse links pointing back at us.
	RequestHost string `json:"-"`
}

// ShortenResult is returned after an id has been stored
type ShortenResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ErrorResponse is the transport-facing error body
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// KindInvalidRequest is used by transports for bodies they cannot decode
const KindInvalidRequest = "InvalidRequest"

// MissingAPIKeyMessage is returned when an API key is mandatory but absent
const MissingAPIKeyMessage = "Missing API key"

// NewErrorResponse renders err for a client. Server-side kinds expose
// only their own message; the cause chain stays in the logs.
func NewErrorResponse(err error) ErrorResponse {
	kind := KindOf(err)

	message := err.Error()
	var se *ShortenerError
	if kind.Internal() && errors.As(err, &se) {
		message = se.Message
	}

	return ErrorResponse{
		Kind:    kind.String(),
		Message: message,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
