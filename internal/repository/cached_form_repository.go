package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"formcraft/internal/cache"
	"formcraft/internal/domain"
	"formcraft/internal/logger"
)

// CachedFormRepository is a read-through cache in front of a FormRepository.
// Forms only change through UpdateHeaderImage, which drops the cached copy.
// Cache failures are logged and never fail the call.
//
// Concurrent misses for one form share a single store read. That read runs
// detached from any one caller's cancellation and is bounded by readTimeout.
type CachedFormRepository struct {
	inner       domain.FormRepository
	cache       domain.Cache
	ttl         time.Duration
	readTimeout time.Duration
	group       singleflight.Group
}

// NewCachedFormRepository wraps inner with cache.
func NewCachedFormRepository(inner domain.FormRepository, c domain.Cache, ttl, readTimeout time.Duration) *CachedFormRepository {
	return &CachedFormRepository{inner: inner, cache: c, ttl: ttl, readTimeout: readTimeout}
}

func (r *CachedFormRepository) Create(ctx context.Context, form *domain.Form) error {
	if err := r.inner.Create(ctx, form); err != nil {
		return err
	}
	r.store(ctx, form)
	return nil
}

func (r *CachedFormRepository) GetByID(ctx context.Context, id string) (*domain.Form, error) {
	key := cache.FormKey(id)

	cached, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var form domain.Form
		uerr := json.Unmarshal([]byte(cached), &form)
		if uerr == nil {
			return &form, nil
		}
		logger.Get().Warn("discarding undecodable cached form", zap.String("key", key), zap.Error(uerr))
	case !errors.Is(err, domain.ErrCacheMiss):
		logger.Get().Warn("form cache read failed", zap.String("key", key), zap.Error(err))
	}

	ch := r.group.DoChan(id, func() (any, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.readTimeout)
		defer cancel()

		form, err := r.inner.GetByID(readCtx, id)
		if err != nil {
			return nil, err
		}
		r.store(readCtx, form)
		return form, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		form := *res.Val.(*domain.Form)
		return &form, nil
	case <-ctx.Done():
		return nil, contextError("get form "+id, ctx.Err())
	}
}

func (r *CachedFormRepository) UpdateHeaderImage(ctx context.Context, id string, imageRef string) (*domain.Form, error) {
	form, err := r.inner.UpdateHeaderImage(ctx, id, imageRef)
	if err != nil {
		return nil, err
	}
	if derr := r.cache.Delete(ctx, cache.FormKey(id)); derr != nil {
		logger.Get().Warn("form cache invalidation failed", zap.String("form_id", id), zap.Error(derr))
	}
	return form, nil
}

func (r *CachedFormRepository) store(ctx context.Context, form *domain.Form) {
	data, err := json.Marshal(form)
	if err != nil {
		logger.Get().Warn("failed to encode form for cache", zap.String("form_id", form.ID), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, cache.FormKey(form.ID), string(data), r.ttl); err != nil {
		logger.Get().Warn("form cache write failed", zap.String("form_id", form.ID), zap.Error(err))
	}
}
