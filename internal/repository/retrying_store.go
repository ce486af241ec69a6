package repository

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"formcraft/internal/domain"
	"formcraft/internal/logger"
)

// RetryConfig controls RetryingStore backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingStore retries idempotent store operations that failed with
// STORAGE_UNAVAILABLE. Insert is passed through untouched: a lost
// acknowledgement would otherwise create a second document.
type RetryingStore struct {
	inner  domain.DocumentStore
	config RetryConfig
}

// WithRetry wraps a store with retry logic.
func WithRetry(inner domain.DocumentStore, cfg RetryConfig) *RetryingStore {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 2 * time.Second
	}
	return &RetryingStore{inner: inner, config: cfg}
}

func (r *RetryingStore) Insert(ctx context.Context, collection domain.Collection, body json.RawMessage) (*domain.Document, error) {
	return r.inner.Insert(ctx, collection, body)
}

func (r *RetryingStore) FindByID(ctx context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	return retry(ctx, r, "find", func() (*domain.Document, error) {
		return r.inner.FindByID(ctx, collection, id)
	})
}

func (r *RetryingStore) Replace(ctx context.Context, collection domain.Collection, id string, body json.RawMessage) (*domain.Document, error) {
	return retry(ctx, r, "replace", func() (*domain.Document, error) {
		return r.inner.Replace(ctx, collection, id, body)
	})
}

func retry(ctx context.Context, r *RetryingStore, op string, fn func() (*domain.Document, error)) (*domain.Document, error) {
	var lastErr error
	for attempt := range r.config.MaxAttempts {
		doc, err := fn()
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !domain.IsRetryable(err) || attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt)
		logger.Get().Warn("store operation failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, domain.NewTimeoutError(op+" gave up waiting for storage", ctx.Err())
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// backoff doubles the base delay per attempt, capped, with ±20% jitter.
func (r *RetryingStore) backoff(attempt int) time.Duration {
	wait := float64(r.config.BaseDelay) * math.Pow(2, float64(attempt))
	if wait > float64(r.config.MaxDelay) {
		wait = float64(r.config.MaxDelay)
	}
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
