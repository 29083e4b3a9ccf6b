package agents

import (
	"math"
	"testing"
	"time"

	"StockSage/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

var testAsOf = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// trendingCandles builds n bars starting at price start, drifting by
// dailyChange (fractional) per bar. Volume is constant.
func trendingCandles(n int, start, dailyChange float64) []models.Candle {
	out := make([]models.Candle, n)
	price := start
	for i := 0; i < n; i++ {
		price *= 1 + dailyChange
		out[i] = models.Candle{
			Time:   testAsOf.AddDate(0, 0, i-n),
			Open:   price * 0.995,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1_000_000,
		}
	}
	return out
}

func TestStddevPopulation(t *testing.T) {
	// population stddev of [80, -20] is 50
	assert.InDelta(t, 50, stddev([]float64{80, -20}), 1e-9)
	assert.Zero(t, stddev([]float64{42}))
	assert.Zero(t, stddev(nil))
}

func TestMeanScores(t *testing.T) {
	assert.InDelta(t, 20, meanScores(map[string]float64{"a": 60, "b": -20, "c": 20}), 1e-9)
	assert.Zero(t, meanScores(nil))
}

func TestConsensusConfidence(t *testing.T) {
	// unanimous strong agreement
	assert.InDelta(t, 0.9, consensusConfidence(map[string]float64{"a": 50, "b": 70}), 1e-9)
	assert.InDelta(t, 0.9, consensusConfidence(map[string]float64{"a": -50, "b": -70}), 1e-9)

	// disagreement decays with dispersion but never below 0.3
	split := consensusConfidence(map[string]float64{"a": 100, "b": -100})
	assert.InDelta(t, 0.3, split, 1e-9)

	mild := consensusConfidence(map[string]float64{"a": 10, "b": 30})
	assert.Greater(t, mild, split)
	assert.LessOrEqual(t, mild, 0.9)

	assert.Zero(t, consensusConfidence(nil))
}

func TestCompletenessConfidence(t *testing.T) {
	assert.InDelta(t, 0.45, completenessConfidence(0.3, 0.15, 0.9, 1), 1e-9)
	assert.InDelta(t, 0.9, completenessConfidence(0.3, 0.15, 0.9, 5), 1e-9) // capped
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 100.0, clampScore(250))
	assert.Equal(t, -100.0, clampScore(-250))
	assert.Equal(t, 33.0, clampScore(33))
}

func TestLastValid(t *testing.T) {
	assert.InDelta(t, 7, lastValid([]float64{1, 2, 7}), 1e-9)
	assert.InDelta(t, 2, lastValid([]float64{1, 2, math.NaN()}), 1e-9)
	assert.True(t, math.IsNaN(lastValid(nil)))
}
