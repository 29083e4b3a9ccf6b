package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	fail      bool
}

func (p *fakePublisher) PublishAnalysis(_ context.Context, a *models.CombinedAnalysis) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, a.Symbol)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*models.CombinedAnalysis
	hits    int
}

func cacheKey(symbol string, asOf int64) string {
	return symbol + ":" + time.Unix(asOf, 0).UTC().Format(time.RFC3339)
}

func (c *fakeCache) Get(_ context.Context, symbol string, asOfUnix int64) (*models.CombinedAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[cacheKey(symbol, asOfUnix)]
	if ok {
		c.hits++
	}
	return a, ok
}

func (c *fakeCache) Put(_ context.Context, a *models.CombinedAnalysis, asOfUnix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]*models.CombinedAnalysis)
	}
	c.entries[cacheKey(a.Symbol, asOfUnix)] = a
}

func batchFixture() ([]string, map[string]*models.Dataset, []domsvc.Agent) {
	asOf := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	symbols := []string{"AAPL", "MSFT", "NVDA", "TSLA"}
	datasets := make(map[string]*models.Dataset, len(symbols))
	for _, s := range symbols {
		datasets[s] = &models.Dataset{Symbol: s, AsOf: asOf}
	}
	agents := []domsvc.Agent{
		&stubAgent{
			name:       "scorer",
			confidence: 0.8,
			scoreBySymbol: map[string]float64{
				"AAPL": 65, "MSFT": 40, "NVDA": 72, "TSLA": -50,
			},
		},
	}
	return symbols, datasets, agents
}

func newTestSystem(agents []domsvc.Agent, opts ...ScoringOption) *ScoringSystem {
	orch := NewOrchestrator(agents, nil, nil, time.Second)
	return NewScoringSystem(orch, 3, nil, nil, opts...)
}

func TestAnalyzeManyRanksDeterministically(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	sys := newTestSystem(agents)
	specs := domsvc.DefaultSpecs(agents)

	first, err := sys.AnalyzeMany(context.Background(), symbols, datasets, specs, nil)
	require.NoError(t, err)
	require.Len(t, first, len(symbols))

	order := make([]string, len(first))
	for i, r := range first {
		require.False(t, r.Failed())
		order[i] = r.Symbol
	}
	assert.Equal(t, []string{"NVDA", "AAPL", "MSFT", "TSLA"}, order)

	// identical input, identical output
	second, err := sys.AnalyzeMany(context.Background(), symbols, datasets, specs, nil)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].Symbol, second[i].Symbol)
		assert.Equal(t, first[i].Analysis.Score, second[i].Analysis.Score)
	}
}

func TestAnalyzeManyTieBreaksBySymbol(t *testing.T) {
	asOf := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	symbols := []string{"ZZZ", "AAA", "MMM"}
	datasets := map[string]*models.Dataset{
		"ZZZ": {Symbol: "ZZZ", AsOf: asOf},
		"AAA": {Symbol: "AAA", AsOf: asOf},
		"MMM": {Symbol: "MMM", AsOf: asOf},
	}
	agents := []domsvc.Agent{&stubAgent{name: "flat", score: 10, confidence: 0.5}}
	sys := newTestSystem(agents)

	results, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)

	got := []string{results[0].Symbol, results[1].Symbol, results[2].Symbol}
	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, got)
}

func TestAnalyzeManyPartialFailure(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	delete(datasets, "MSFT") // no dataset -> per-symbol failure
	sys := newTestSystem(agents)

	results, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)
	require.Len(t, results, len(symbols))

	// failures sort after every success
	last := results[len(results)-1]
	assert.Equal(t, "MSFT", last.Symbol)
	assert.True(t, last.Failed())
	assert.ErrorIs(t, last.Err, models.ErrInsufficientData)
	assert.NotEmpty(t, last.ErrText)

	for _, r := range results[:len(results)-1] {
		assert.False(t, r.Failed())
	}
}

func TestAnalyzeManyFailedEntriesOrderedBySymbol(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	delete(datasets, "TSLA")
	delete(datasets, "AAPL")
	sys := newTestSystem(agents)

	results, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", results[2].Symbol)
	assert.Equal(t, "TSLA", results[3].Symbol)
	assert.True(t, results[2].Failed())
	assert.True(t, results[3].Failed())
}

func TestAnalyzeManyCallbackPerSymbol(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	sys := newTestSystem(agents)

	var mu sync.Mutex
	seen := make(map[string]int)
	onResult := func(r models.SymbolResult) {
		mu.Lock()
		defer mu.Unlock()
		seen[r.Symbol]++
	}

	_, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), onResult)
	require.NoError(t, err)

	require.Len(t, seen, len(symbols))
	for _, s := range symbols {
		assert.Equal(t, 1, seen[s])
	}
}

func TestAnalyzeManyUsesResultCache(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	cache := &fakeCache{}
	sys := newTestSystem(agents, WithResultCache(cache))
	specs := domsvc.DefaultSpecs(agents)

	first, err := sys.AnalyzeMany(context.Background(), symbols, datasets, specs, nil)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	second, err := sys.AnalyzeMany(context.Background(), symbols, datasets, specs, nil)
	require.NoError(t, err)
	assert.Equal(t, len(symbols), cache.hits)

	for i := range first {
		assert.Equal(t, first[i].Analysis.Score, second[i].Analysis.Score)
	}
}

func TestAnalyzeManyPublishesResults(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	pub := &fakePublisher{}
	sys := newTestSystem(agents, WithPublisher(pub))

	_, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, symbols, pub.published)
}

func TestAnalyzeManyPublisherFailureIsNotFatal(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	pub := &fakePublisher{fail: true}
	sys := newTestSystem(agents, WithPublisher(pub))

	results, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.Failed())
	}
}

func TestAnalyzeManyRejectsInvalidSpecs(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	sys := newTestSystem(agents)

	specs := domsvc.DefaultSpecs(agents)
	require.NoError(t, specs.Disable("scorer"))

	_, err := sys.AnalyzeMany(context.Background(), symbols, datasets, specs, nil)
	require.Error(t, err)
	assert.True(t, models.IsConfigError(err))
}

func TestRankFiltersByThreshold(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	sys := newTestSystem(agents)

	results, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)

	// threshold is inclusive and failures never qualify
	top := Rank(results, 65)
	require.Len(t, top, 2)
	assert.Equal(t, "NVDA", top[0].Symbol)
	assert.Equal(t, "AAPL", top[1].Symbol)

	all := Rank(results, -100)
	assert.Len(t, all, len(symbols))
}

func TestRankKeepsFailedEntries(t *testing.T) {
	symbols, datasets, agents := batchFixture()
	delete(datasets, "MSFT")
	sys := newTestSystem(agents)

	results, err := sys.AnalyzeMany(context.Background(), symbols, datasets, domsvc.DefaultSpecs(agents), nil)
	require.NoError(t, err)

	ranked := Rank(results, 70)
	require.Len(t, ranked, 2) // NVDA qualifies, MSFT reported as failed
	assert.Equal(t, "NVDA", ranked[0].Symbol)
	assert.Equal(t, "MSFT", ranked[1].Symbol)
	assert.True(t, ranked[1].Failed())
}
