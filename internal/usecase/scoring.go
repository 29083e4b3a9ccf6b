package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	xlogger "StockSage/pkg/logger"
)

const defaultBatchWorkers = 4

// ScoringSystem runs the orchestrator over many symbols and produces a
// deterministic ranking. Each symbol's pipeline is independent; one symbol
// failing (or being cancelled) never affects the others.
type ScoringSystem struct {
	orch    *Orchestrator
	workers int
	logger  *xlogger.Logger
	metrics domrepo.Metrics

	cache     domrepo.ResultCache
	publisher domrepo.Publisher
	history   domrepo.HistoryStore
}

// ScoringOption configures optional collaborators.
type ScoringOption func(*ScoringSystem)

// WithResultCache reuses cached analyses for identical symbol+as-of snapshots.
func WithResultCache(c domrepo.ResultCache) ScoringOption {
	return func(s *ScoringSystem) { s.cache = c }
}

// WithPublisher emits every completed analysis to downstream consumers.
func WithPublisher(p domrepo.Publisher) ScoringOption {
	return func(s *ScoringSystem) { s.publisher = p }
}

// WithHistory persists completed analyses.
func WithHistory(h domrepo.HistoryStore) ScoringOption {
	return func(s *ScoringSystem) { s.history = h }
}

func NewScoringSystem(orch *Orchestrator, workers int, logger *xlogger.Logger, metrics domrepo.Metrics, opts ...ScoringOption) *ScoringSystem {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	s := &ScoringSystem{orch: orch, workers: workers, logger: logger, metrics: metrics}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Orchestrator exposes the per-symbol engine for single-symbol callers.
func (s *ScoringSystem) Orchestrator() *Orchestrator { return s.orch }

// ResultFunc observes each symbol's outcome as it completes. Called from
// worker goroutines; implementations must be safe for concurrent use.
type ResultFunc func(models.SymbolResult)

// AnalyzeMany analyzes every requested symbol and returns exactly one entry
// per symbol in deterministic order: successes by score desc, confidence desc,
// symbol asc; failures after all successes, by symbol asc. The agent spec set
// is snapshotted up front so configuration changes mid-batch only affect
// subsequent runs.
func (s *ScoringSystem) AnalyzeMany(ctx context.Context, symbols []string, datasets map[string]*models.Dataset, specs domsvc.SpecSet, onResult ResultFunc) ([]models.SymbolResult, error) {
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	snapshot := specs.Clone()
	start := time.Now()

	results := make([]models.SymbolResult, len(symbols))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.analyzeOne(ctx, symbols[i], datasets[symbols[i]], snapshot)
				if onResult != nil {
					onResult(results[i])
				}
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sortResults(results)

	if s.metrics != nil {
		s.metrics.RecordBatch(len(symbols), time.Since(start).Seconds())
	}
	s.logger.Info("batch analyzed",
		xlogger.Int("symbols", len(symbols)),
		xlogger.Duration("elapsed", time.Since(start)))
	return results, nil
}

func (s *ScoringSystem) analyzeOne(ctx context.Context, symbol string, ds *models.Dataset, specs domsvc.SpecSet) models.SymbolResult {
	if ds == nil {
		err := fmt.Errorf("%s: no dataset supplied: %w", symbol, models.ErrInsufficientData)
		if s.metrics != nil {
			s.metrics.RecordSymbolFailure("missing_dataset")
		}
		return failedResult(symbol, err)
	}

	asOf := ds.AsOf.Unix()
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, symbol, asOf); ok {
			return models.SymbolResult{Symbol: symbol, Analysis: cached}
		}
	}

	analysis, err := s.orch.Analyze(ctx, symbol, ds, specs)
	if err != nil {
		return failedResult(symbol, err)
	}

	if s.cache != nil {
		s.cache.Put(ctx, analysis, asOf)
	}
	s.sink(ctx, analysis)
	return models.SymbolResult{Symbol: symbol, Analysis: analysis}
}

// sink forwards a completed analysis to the optional publisher and history
// store. Sink failures are logged and counted, never propagated: delivery is
// best-effort and must not fail the analysis itself.
func (s *ScoringSystem) sink(ctx context.Context, a *models.CombinedAnalysis) {
	if s.publisher != nil {
		if err := s.publisher.PublishAnalysis(ctx, a); err != nil {
			s.logger.Warn("publish analysis failed", xlogger.String("symbol", a.Symbol), xlogger.Error(err))
			if s.metrics != nil {
				s.metrics.RecordPublishError("kafka")
			}
		}
	}
	if s.history != nil {
		if err := s.history.Store(ctx, a); err != nil {
			s.logger.Warn("store analysis failed", xlogger.String("symbol", a.Symbol), xlogger.Error(err))
			if s.metrics != nil {
				s.metrics.RecordPublishError("history")
			}
		}
	}
}

// Rank filters the ordered results down to successes at or above threshold.
// Failed entries are kept after the filtered successes so callers can still
// tell "below threshold" from "could not be analyzed". Order is preserved
// from AnalyzeMany.
func Rank(results []models.SymbolResult, threshold float64) []models.SymbolResult {
	out := make([]models.SymbolResult, 0, len(results))
	var failed []models.SymbolResult
	for _, r := range results {
		switch {
		case r.Failed():
			failed = append(failed, r)
		case r.Analysis.Score >= threshold:
			out = append(out, r)
		}
	}
	return append(out, failed...)
}

func failedResult(symbol string, err error) models.SymbolResult {
	return models.SymbolResult{Symbol: symbol, Err: err, ErrText: err.Error()}
}

// sortResults imposes the deterministic total order: successes by score desc,
// then confidence desc, then symbol asc; failed entries after all successes,
// by symbol asc.
func sortResults(results []models.SymbolResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch {
		case a.Failed() && b.Failed():
			return a.Symbol < b.Symbol
		case a.Failed():
			return false
		case b.Failed():
			return true
		}
		if a.Analysis.Score != b.Analysis.Score {
			return a.Analysis.Score > b.Analysis.Score
		}
		if a.Analysis.Confidence != b.Analysis.Confidence {
			return a.Analysis.Confidence > b.Analysis.Confidence
		}
		return a.Symbol < b.Symbol
	})
}
