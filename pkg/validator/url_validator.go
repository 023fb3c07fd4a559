package validator

import (
	"net/url"
	"strings"
)

// defaultScheme is prepended to URLs that do not start with "http"
const defaultScheme = "http://"

// NormalizeURL prepends "http://" unless the URL already starts with
// "http" (case-insensitive). Applying it twice is a no-op.
func NormalizeURL(rawURL string) string {
	if strings.HasPrefix(strings.ToLower(rawURL), "http") {
		return rawURL
	}
	return defaultScheme + rawURL
}

// ParseURL parses a normalized URL
func ParseURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: "Invalid URL structure", Err: err}
	}
	return parsed, nil
}

// IsLoop reports whether parsed points back at requestHost.
// An empty requestHost never loops.
func IsLoop(parsed *url.URL, requestHost string) bool {
	return requestHost != "" && parsed.Host == requestHost
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
