package domain

import (
	"errors"
	"net/http"
)

// ErrorKind classifies shortener failures so transports can map them
// to protocol responses without parsing messages
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidAPIKey
	KindRateLimitExceeded
	KindIDGenerationExhausted
	KindInvalidURL
	KindLinkLoop
	KindStorageError
)

// String returns the wire name of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidAPIKey:
		return "InvalidApiKey"
	case KindRateLimitExceeded:
		return "RateLimitExceeded"
	case KindIDGenerationExhausted:
		return "IdGenerationExhausted"
	case KindInvalidURL:
		return "InvalidUrl"
	case KindLinkLoop:
		return "LinkLoop"
	case KindStorageError:
		return "StorageError"
	default:
		return "Unknown"
	}
}

// StatusCode returns the HTTP status a transport should answer with
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindInvalidAPIKey:
		return http.StatusForbidden
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindInvalidURL, KindLinkLoop:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Internal reports whether failures of this kind are server side
func (k ErrorKind) Internal() bool {
	return k.StatusCode() >= http.StatusInternalServerError
}

// Sentinel errors, one per kind. Compare with errors.Is; the match is
// on Kind so wrapped causes and custom messages still match.
var (
	ErrInvalidAPIKey         = &ShortenerError{Kind: KindInvalidAPIKey, Message: "Invalid API key"}
	ErrRateLimitExceeded     = &ShortenerError{Kind: KindRateLimitExceeded, Message: "Rate limit exceeded"}
	ErrIDGenerationExhausted = &ShortenerError{Kind: KindIDGenerationExhausted, Message: "Unable to generate a free id"}
	ErrInvalidURL            = &ShortenerError{Kind: KindInvalidURL, Message: "Invalid URL"}
	ErrLinkLoop              = &ShortenerError{Kind: KindLinkLoop, Message: "Link loop detected"}
	ErrStorage               = &ShortenerError{Kind: KindStorageError, Message: "Storage error"}
)

// ShortenerError is a kind-tagged error with an optional cause
type ShortenerError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// NewShortenerError creates an error of the given kind with the default
// message for that kind, wrapping cause (which may be nil)
func NewShortenerError(kind ErrorKind, cause error) *ShortenerError {
	return &ShortenerError{
		Kind:    kind,
		Message: defaultMessage(kind),
		Cause:   cause,
	}
}

// Error implements the error interface; the cause chain is appended
func (e *ShortenerError) Error() string {
	if e.Cause != nil {
		return e.Message + " - " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the cause for errors.Is and errors.As
func (e *ShortenerError) Unwrap() error {
	return e.Cause
}

// Is matches any ShortenerError of the same kind
func (e *ShortenerError) Is(target error) bool {
	t, ok := target.(*ShortenerError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the kind of err, or KindUnknown
func KindOf(err error) ErrorKind {
	var se *ShortenerError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func defaultMessage(kind ErrorKind) string {
	switch kind {
	case KindInvalidAPIKey:
		return ErrInvalidAPIKey.Message
	case KindRateLimitExceeded:
		return ErrRateLimitExceeded.Message
	case KindIDGenerationExhausted:
		return ErrIDGenerationExhausted.Message
	case KindInvalidURL:
		return ErrInvalidURL.Message
	case KindLinkLoop:
		return ErrLinkLoop.Message
	case KindStorageError:
		return ErrStorage.Message
	default:
		return "Unknown error"
	}
}
