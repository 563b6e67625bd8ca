package repository

import (
	"context"
	"sync/atomic"
	"time"

	"sharovik/internal/domain"
	"sharovik/internal/models"

	"github.com/rs/zerolog"
)

// FailoverItemCache serves from the primary cache and drops to the fallback
// when the primary errors; it retries the primary after a minute.
type FailoverItemCache struct {
	primary  domain.ItemCache
	fallback domain.ItemCache
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// Unix nanos of the last failed primary attempt; atomic because
	// concurrent requests read and write it without a lock.
	lastCheck atomic.Int64
}

func NewFailoverItemCache(primary, fallback domain.ItemCache, logger *zerolog.Logger) *FailoverItemCache {
	return &FailoverItemCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverItemCache) Get(ctx context.Context, id int64) (*models.Item, error) {
	if !r.isDown.Load() {
		item, err := r.primary.Get(ctx, id)
		if err == nil {
			return item, nil
		}
		r.markDown(err)
	}

	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		item, err := r.primary.Get(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			return item, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Get(ctx, id)
}

func (r *FailoverItemCache) Set(ctx context.Context, item *models.Item) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, item)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Set(ctx, item)
}

func (r *FailoverItemCache) Invalidate(ctx context.Context, id int64) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx, id)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Invalidate(ctx, id)
}

func (r *FailoverItemCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary item cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}
