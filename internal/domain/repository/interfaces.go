package repository

import (
	"context"
	"time"

	"StockSage/internal/domain/models"
)

// Publisher emits completed analyses to downstream collaborators (alerting,
// storage). Implementations must be safe for concurrent use.
type Publisher interface {
	PublishAnalysis(ctx context.Context, a *models.CombinedAnalysis) error
	Close() error
}

// HistoryStore persists analyses for audit and later review.
type HistoryStore interface {
	Store(ctx context.Context, a *models.CombinedAnalysis) error
	StoreBatch(ctx context.Context, as []*models.CombinedAnalysis) error
	Recent(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryEntry, error)
}

// ResultCache caches combined analyses keyed by symbol and dataset as-of time.
type ResultCache interface {
	Get(ctx context.Context, symbol string, asOfUnix int64) (*models.CombinedAnalysis, bool)
	Put(ctx context.Context, a *models.CombinedAnalysis, asOfUnix int64)
}

// Metrics is the instrumentation port; the Prometheus recorder in pkg/metrics
// implements it.
type Metrics interface {
	RecordAgentRun(agent, outcome string, seconds float64)
	RecordAnalysis(symbol string, score float64, rec string)
	RecordSymbolFailure(reason string)
	RecordBatch(size int, seconds float64)
	RecordPublishError(sink string)
}
