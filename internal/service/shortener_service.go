package service

import (
	"context"
	"errors"
	"time"

	"shorty/internal/domain"
	"shorty/internal/shortener"
	"shorty/internal/store"
	"shorty/pkg/logger"
	"shorty/pkg/validator"
)

// Key prefixes shared with existing deployments
const (
	apiKeyPrefix    = "API_KEY_"
	rateLimitPrefix = "RATE_"
)

// Options configures a shortener
type Options struct {
	// MaxAttempts bounds the id collision retries
	MaxAttempts int
	// RateLimitPeriod is the TTL of a rate counter window
	RateLimitPeriod time.Duration
	// RateLimit is the number of calls allowed per window; <= 0 disables
	RateLimit int64
}

// shortenerService implements LinkService
type shortenerService struct {
	store     store.KeyValueStore
	generator *shortener.CodeGenerator
	opts      Options
	logger    *logger.Logger
}

// NewShortener creates the shortener with its dependencies injected
func NewShortener(
	kv store.KeyValueStore,
	generator *shortener.CodeGenerator,
	opts Options,
	logger *logger.Logger,
) LinkService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &shortenerService{
		store:     kv,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Lookup retrieves the URL stored at id
func (s *shortenerService) Lookup(ctx context.Context, id string) (string, bool) {
	url, err := s.store.GetString(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.Debugw("Lookup failed", "id", id, "error", err)
		}
		return "", false
	}

	return url, true
}

// Shorten runs auth, id generation, URL validation and persistence in
// that order, stopping at the first failure
func (s *shortenerService) Shorten(ctx context.Context, req domain.ShortenRequest) (*domain.ShortenResult, error) {
	// Step 1: API key and rate limit
	if req.APIKey != nil {
		if err := s.verifyAPIKey(ctx, *req.APIKey); err != nil {
			s.logger.Infow("API key rejected", "kind", domain.KindOf(err).String(), "error", err)
			return nil, err
		}
	}

	// Step 2: Reserve an id
	id, err := s.generateID(ctx)
	if err != nil {
		s.logger.Errorw("Failed to generate id", "attempts", s.opts.MaxAttempts)
		return nil, err
	}

	// Step 3: Normalize and parse
	normalizedURL := validator.NormalizeURL(req.URL)

	parsed, err := validator.ParseURL(normalizedURL)
	if err != nil {
		return nil, domain.NewShortenerError(domain.KindInvalidURL, err)
	}

	// Step 4: Refuse links back into this service
	if validator.IsLoop(parsed, req.RequestHost) {
		return nil, domain.NewShortenerError(domain.KindLinkLoop, nil)
	}

	// Step 5: Persist
	if err := s.store.Set(ctx, id, normalizedURL); err != nil {
		s.logger.Errorw("Failed to store link", "id", id, "error", err)
		return nil, domain.NewShortenerError(domain.KindStorageError, err)
	}

	s.logger.Infow("URL shortened successfully", "id", id, "url", normalizedURL)

	return &domain.ShortenResult{ID: id, URL: normalizedURL}, nil
}

// verifyAPIKey checks the key flag and counts the call against the
// key's rate window. Every store error here is reported as InvalidApiKey.
func (s *shortenerService) verifyAPIKey(ctx context.Context, apiKey string) error {
	key := apiKeyPrefix + apiKey

	valid, err := s.store.GetBool(ctx, key)
	if err != nil {
		return domain.NewShortenerError(domain.KindInvalidAPIKey, err)
	}
	if !valid {
		return domain.NewShortenerError(domain.KindInvalidAPIKey, nil)
	}

	if s.opts.RateLimit <= 0 {
		return nil
	}

	rateKey := rateLimitPrefix + key

	// Existence must be read before INCR, which always creates the key
	existed, err := s.store.Exists(ctx, rateKey)
	if err != nil {
		return domain.NewShortenerError(domain.KindInvalidAPIKey, err)
	}

	calls, err := s.store.Increment(ctx, rateKey)
	if err != nil {
		return domain.NewShortenerError(domain.KindInvalidAPIKey, err)
	}

	if !existed {
		if err := s.store.Expire(ctx, rateKey, s.opts.RateLimitPeriod); err != nil {
			return domain.NewShortenerError(domain.KindInvalidAPIKey, err)
		}
	}

	s.logger.Debugw("Rate counter incremented", "key", rateKey, "calls", calls, "new_window", !existed)

	if calls > s.opts.RateLimit {
		return domain.NewShortenerError(domain.KindRateLimitExceeded, nil)
	}

	return nil
}

// generateID draws ids until one is not in the store. A failed existence
// check counts as free.
func (s *shortenerService) generateID(ctx context.Context) (string, error) {
	for i := 0; i < s.opts.MaxAttempts; i++ {
		id := s.generator.Generate()

		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			s.logger.Warnw("Existence check failed, assuming id is free", "id", id, "error", err)
			return id, nil
		}

		if !exists {
			return id, nil
		}

		s.logger.Warnw("Id collision detected, retrying",
			"id", id,
			"attempt", i+1,
		)
	}

	return "", domain.NewShortenerError(domain.KindIDGenerationExhausted, nil)
}
