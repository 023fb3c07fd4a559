package service

import (
	"context"

	"shorty/internal/domain"
)

// LinkService defines the shortener operations used by the transports.
// Implementations are safe for concurrent use when their store is.
type LinkService interface {
	// Lookup resolves an id to its URL. Missing ids and store errors
	// both report ok == false.
	Lookup(ctx context.Context, id string) (url string, ok bool)

	// Shorten verifies the optional API key, reserves a fresh id and
	// stores the normalized URL under it. Failures are *domain.ShortenerError.
	Shorten(ctx context.Context, req domain.ShortenRequest) (*domain.ShortenResult, error)
}
