package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent returns a fixed insight, an error, or per-symbol scores.
type stubAgent struct {
	name          string
	score         float64
	confidence    float64
	err           error
	delay         time.Duration
	scoreBySymbol map[string]float64
	failSymbols   map[string]bool
}

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) Analyze(ctx context.Context, symbol string, _ *models.Dataset) (models.AgentInsight, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return models.AgentInsight{}, models.DataUnavailable(a.name, "cancelled")
		}
	}
	if a.failSymbols[symbol] {
		return models.AgentInsight{}, models.DataUnavailable(a.name, "missing fields for %s", symbol)
	}
	if a.err != nil {
		return models.AgentInsight{}, a.err
	}
	score := a.score
	if s, ok := a.scoreBySymbol[symbol]; ok {
		score = s
	}
	return models.NewInsight(a.name, score, a.confidence, "stub"), nil
}

func testDataset() *models.Dataset {
	return &models.Dataset{Symbol: "AAPL", AsOf: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)}
}

func TestAnalyzeCombinesWeightedInsights(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "technical", score: 80, confidence: 0.9},
		&stubAgent{name: "fundamental", score: -20, confidence: 0.5},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)
	specs := domsvc.DefaultSpecs(agents)

	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), specs)
	require.NoError(t, err)

	// (80*0.9 + -20*0.5) / (0.9 + 0.5) = 62 / 1.4
	assert.InDelta(t, 44.2857, res.Score, 0.001)
	assert.Equal(t, models.Buy, res.Recommendation)

	// base confidence 0.7, scores [80,-20] have stddev 50 -> 0.5 penalty
	assert.InDelta(t, 0.35, res.Confidence, 0.001)

	require.Len(t, res.Insights, 2)
	assert.Equal(t, "technical", res.Insights[0].AgentName)
	assert.Equal(t, "fundamental", res.Insights[1].AgentName)
}

func TestAnalyzeUnanimousAgentsKeepConfidence(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "a", score: 50, confidence: 0.8},
		&stubAgent{name: "b", score: 50, confidence: 0.6},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), domsvc.DefaultSpecs(agents))
	require.NoError(t, err)

	// identical scores mean zero disagreement penalty
	assert.InDelta(t, 50, res.Score, 1e-9)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
}

func TestAnalyzeWeightShiftsScore(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "bull", score: 80, confidence: 0.9},
		&stubAgent{name: "bear", score: -20, confidence: 0.5},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	base := domsvc.DefaultSpecs(agents)
	baseline, err := orch.Analyze(context.Background(), "AAPL", testDataset(), base)
	require.NoError(t, err)

	tilted := base.Clone()
	require.NoError(t, tilted.SetWeight("bull", 3))
	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), tilted)
	require.NoError(t, err)

	assert.Greater(t, res.Score, baseline.Score)
}

func TestAnalyzeDisabledAgentExcludedFromMath(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "steady", score: 40, confidence: 0.8},
		&stubAgent{name: "wild", score: -100, confidence: 1},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	specs := domsvc.DefaultSpecs(agents)
	require.NoError(t, specs.Disable("wild"))

	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), specs)
	require.NoError(t, err)

	assert.InDelta(t, 40, res.Score, 1e-9)
	require.Len(t, res.Insights, 2)
	assert.True(t, res.Insights[1].Skipped)
	assert.Equal(t, "agent disabled", res.Insights[1].SkipReason)
}

func TestAnalyzeZeroWeightAgentExcludedFromMath(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "steady", score: 40, confidence: 0.8},
		&stubAgent{name: "muted", score: -100, confidence: 1},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	specs := domsvc.DefaultSpecs(agents)
	require.NoError(t, specs.SetWeight("muted", 0))

	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), specs)
	require.NoError(t, err)

	assert.InDelta(t, 40, res.Score, 1e-9)
	assert.True(t, res.Insights[1].Skipped)
}

func TestAnalyzeFailedAgentRecordedAsSkipped(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "ok", score: 20, confidence: 0.6},
		&stubAgent{name: "broken", err: models.DataUnavailable("broken", "no fundamentals")},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), domsvc.DefaultSpecs(agents))
	require.NoError(t, err)

	assert.InDelta(t, 20, res.Score, 1e-9)
	require.Len(t, res.Insights, 2)
	assert.True(t, res.Insights[1].Skipped)
	assert.Contains(t, res.Insights[1].SkipReason, "no fundamentals")
}

func TestAnalyzeSlowAgentTimesOut(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "fast", score: 30, confidence: 0.7},
		&stubAgent{name: "slow", score: -80, confidence: 1, delay: 500 * time.Millisecond},
	}
	orch := NewOrchestrator(agents, nil, nil, 30*time.Millisecond)

	res, err := orch.Analyze(context.Background(), "AAPL", testDataset(), domsvc.DefaultSpecs(agents))
	require.NoError(t, err)

	assert.InDelta(t, 30, res.Score, 1e-9)
	assert.True(t, res.Insights[1].Skipped)
}

func TestAnalyzeAllAgentsFailing(t *testing.T) {
	agents := []domsvc.Agent{
		&stubAgent{name: "a", err: models.DataUnavailable("a", "nothing")},
		&stubAgent{name: "b", err: models.DataUnavailable("b", "nothing")},
	}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	_, err := orch.Analyze(context.Background(), "AAPL", testDataset(), domsvc.DefaultSpecs(agents))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnalyzeNilDataset(t *testing.T) {
	agents := []domsvc.Agent{&stubAgent{name: "a", score: 10, confidence: 0.5}}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	_, err := orch.Analyze(context.Background(), "AAPL", nil, domsvc.DefaultSpecs(agents))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnalyzeRejectsAllDisabledSpecs(t *testing.T) {
	agents := []domsvc.Agent{&stubAgent{name: "a", score: 10, confidence: 0.5}}
	orch := NewOrchestrator(agents, nil, nil, time.Second)

	specs := domsvc.DefaultSpecs(agents)
	require.NoError(t, specs.Disable("a"))

	_, err := orch.Analyze(context.Background(), "AAPL", testDataset(), specs)
	require.Error(t, err)
	assert.True(t, models.IsConfigError(err))
}

func TestSpecSetRejectsBadWeights(t *testing.T) {
	agents := []domsvc.Agent{&stubAgent{name: "a"}}
	specs := domsvc.DefaultSpecs(agents)

	var cfgErr *models.ConfigError
	err := specs.SetWeight("a", -1)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	assert.Error(t, specs.SetWeight("nope", 1))
	assert.NoError(t, specs.SetWeight("a", 2.5)) // weights above 1 are allowed
}
