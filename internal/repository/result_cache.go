package repository

import (
	"context"
	"errors"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	"StockSage/pkg/cache"
	applogger "StockSage/pkg/logger"
)

// CachedResults implements ResultCache on top of pkg/cache. Keys include
// the dataset as-of time so a refreshed dataset never reads a stale
// analysis.
type CachedResults struct {
	svc cache.Service
	ttl time.Duration
	l   *applogger.Logger
}

// NewCachedResults creates a result cache with the given backend and TTL.
func NewCachedResults(svc cache.Service, ttl time.Duration, l *applogger.Logger) repository.ResultCache {
	return &CachedResults{svc: svc, ttl: ttl, l: l}
}

func (c *CachedResults) Get(ctx context.Context, symbol string, asOfUnix int64) (*models.CombinedAnalysis, bool) {
	var a models.CombinedAnalysis
	err := c.svc.Get(ctx, c.key(symbol, asOfUnix), &a)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && c.l != nil {
			c.l.Warn("result cache get error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, false
	}
	return &a, true
}

func (c *CachedResults) Put(ctx context.Context, a *models.CombinedAnalysis, asOfUnix int64) {
	if err := c.svc.Set(ctx, c.key(a.Symbol, asOfUnix), a, c.ttl); err != nil && c.l != nil {
		c.l.Warn("result cache put error",
			applogger.String("symbol", a.Symbol),
			applogger.Error(err),
		)
	}
}

func (c *CachedResults) key(symbol string, asOfUnix int64) string {
	return cache.Key("analysis", symbol, asOfUnix)
}
