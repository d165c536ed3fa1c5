// Package sweeper runs the background purge of comment cache families.
// Comment payloads churn faster than their TTL can hide: replies mutate
// parent documents and trees embed arbitrary descendants, so on top of
// per-write invalidation the sweeper periodically drops the whole family.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

// graceInterval is added to the comment TTL so a sweep never races entries
// written just before it fires.
const graceInterval = 30 * time.Second

// Sweeper purges the comment key families on a fixed interval derived from
// the comment cache TTL.
type Sweeper struct {
	cache    *cache.Store
	log      *slog.Logger
	interval time.Duration
}

// New builds a sweeper for the given comment TTL.
func New(c *cache.Store, log *slog.Logger, commentTTL time.Duration) *Sweeper {
	return &Sweeper{
		cache:    c,
		log:      log,
		interval: commentTTL + graceInterval,
	}
}

// Run sweeps until ctx is cancelled. A failed sweep is logged and the loop
// keeps going; stale entries age out on their TTL regardless. Run returns
// only after the final sweep completes, so callers can wait on it during
// shutdown.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.InfoContext(ctx, "comment cache sweeper started", slog.Duration("interval", s.interval))

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("comment cache sweeper stopped")
			return
		case <-timer.C:
		}

		s.sweep(ctx)
		timer.Reset(s.interval)
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	started := time.Now()
	s.cache.DeleteByPattern(ctx, cachekey.CommentFamilies()...)
	s.log.DebugContext(ctx, "comment cache sweep completed",
		slog.Duration("took", time.Since(started)))
}
