package agents

import (
	"context"
	"testing"

	"StockSage/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskRejectsShortHistory(t *testing.T) {
	a := NewRiskAgent()

	_, err := a.Analyze(context.Background(), "AAPL", nil)
	assert.True(t, models.IsDataUnavailable(err))

	ds := &models.Dataset{Symbol: "AAPL", AsOf: testAsOf, Prices: trendingCandles(20, 100, 0.002)}
	_, err = a.Analyze(context.Background(), "AAPL", ds)
	assert.True(t, models.IsDataUnavailable(err))
}

func TestRiskScoresSteadyGrinder(t *testing.T) {
	a := NewRiskAgent()
	// constant +0.2% daily returns: zero realized vol, zero drawdown
	ds := &models.Dataset{Symbol: "AAPL", AsOf: testAsOf, Prices: trendingCandles(60, 100, 0.002)}

	insight, err := a.Analyze(context.Background(), "AAPL", ds)
	require.NoError(t, err)
	assert.Equal(t, "risk", insight.AgentName)
	// volatility 60, sharpe -60 (undefined on zero vol), drawdown 70, VaR 60
	assert.InDelta(t, 32.5, insight.Score, 1e-9)
	assert.InDelta(t, 0.82, insight.Confidence, 1e-9)
	assert.Contains(t, insight.Reasoning, "max drawdown")
}

func TestRiskIncludesBetaWhenNamed(t *testing.T) {
	a := NewRiskAgent()
	ds := &models.Dataset{
		Symbol: "AAPL",
		AsOf:   testAsOf,
		Prices: trendingCandles(60, 100, 0.002),
		Named:  map[string]float64{"beta": 1.0},
	}

	insight, err := a.Analyze(context.Background(), "AAPL", ds)
	require.NoError(t, err)
	assert.InDelta(t, 30, insight.Score, 1e-9) // fifth metric, beta scores 20
	assert.InDelta(t, 0.85, insight.Confidence, 1e-9)
}

func TestSimpleReturns(t *testing.T) {
	rets := simpleReturns([]float64{100, 110, 99})
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.1, rets[0], 1e-9)
	assert.InDelta(t, -0.1, rets[1], 1e-9)

	// zero closes are skipped rather than dividing by zero
	assert.Len(t, simpleReturns([]float64{0, 100, 110}), 1)
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, -0.2, maxDrawdown([]float64{0.1, -0.2, 0.05}), 1e-9)
	assert.Zero(t, maxDrawdown([]float64{0.01, 0.02}))
}

func TestQuantileNearestRank(t *testing.T) {
	assert.InDelta(t, 1, quantile([]float64{5, 1, 3}, 0.05), 1e-9)
	assert.InDelta(t, 5, quantile([]float64{5, 1, 3}, 1), 1e-9) // clamped to last
}

func TestRiskScoreTables(t *testing.T) {
	assert.Equal(t, 60.0, scoreVolatility(0.10))
	assert.Equal(t, -70.0, scoreVolatility(0.80))
	assert.Equal(t, 80.0, scoreSharpe(2.5))
	assert.Equal(t, -60.0, scoreSharpe(-0.5))
	assert.Equal(t, 70.0, scoreDrawdown(-0.05))
	assert.Equal(t, -70.0, scoreDrawdown(-0.60))
	assert.Equal(t, 60.0, scoreVaR(-0.01))
	assert.Equal(t, -60.0, scoreVaR(-0.08))
	assert.Equal(t, -50.0, scoreBeta(-0.2))
	assert.Equal(t, 20.0, scoreBeta(1.0))
	assert.Equal(t, -40.0, scoreBeta(2.0))
}
