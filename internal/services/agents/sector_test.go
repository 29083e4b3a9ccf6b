package agents

import (
	"context"
	"testing"

	"StockSage/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorRejectsMissingSnapshot(t *testing.T) {
	a := NewSectorAgent()

	_, err := a.Analyze(context.Background(), "AAPL", nil)
	assert.True(t, models.IsDataUnavailable(err))

	_, err = a.Analyze(context.Background(), "AAPL", &models.Dataset{
		Symbol: "AAPL", AsOf: testAsOf, Sector: &models.SectorData{Sector: "Technology"},
	})
	assert.True(t, models.IsDataUnavailable(err))
}

func TestSectorScoresLeader(t *testing.T) {
	a := NewSectorAgent()
	ds := &models.Dataset{
		Symbol: "AAPL",
		AsOf:   testAsOf,
		Fundamentals: &models.Fundamentals{
			TrailingPE:     fptr(12),  // vs 24: ratio 0.5, +60
			ReturnOnEquity: fptr(0.3), // vs 0.15: ratio 2, +60
		},
		Sector: &models.SectorData{
			Sector:   "Technology",
			Industry: "Consumer Electronics",
			SectorAverages: &models.SectorAverages{
				TrailingPE:     fptr(24),
				ReturnOnEquity: fptr(0.15),
			},
			MarketPosition: &models.MarketPosition{MarketShare: 25, Rank: 1, Moat: "strong"}, // 150 -> 100
			PeerPerf:       &models.PeerPerf{YTDReturn: fptr(20), PeerAvgYTD: fptr(5), Percentile: fptr(90)},
			Trends:         &models.SectorTrends{Momentum: "strong", Outlook: "bullish", Regulation: "favorable"},
		},
	}

	insight, err := a.Analyze(context.Background(), "AAPL", ds)
	require.NoError(t, err)
	assert.Equal(t, "sector", insight.AgentName)
	// comparison 60, position 100, peers 100 (60+50 clamped), trends 100 (120 clamped)
	assert.InDelta(t, 90, insight.Score, 1e-9)
	assert.InDelta(t, 0.85, insight.Confidence, 1e-9) // four categories, capped
	assert.Contains(t, insight.Reasoning, "sector rank #1")
	assert.Contains(t, insight.Reasoning, "sector outlook: bullish")
}

func TestSectorLaggardWithThinSnapshot(t *testing.T) {
	a := NewSectorAgent()
	ds := &models.Dataset{
		Symbol: "XYZ",
		AsOf:   testAsOf,
		Sector: &models.SectorData{
			Sector: "Energy",
			PeerPerf: &models.PeerPerf{
				YTDReturn: fptr(-20), PeerAvgYTD: fptr(5), Percentile: fptr(10),
			},
		},
	}

	insight, err := a.Analyze(context.Background(), "XYZ", ds)
	require.NoError(t, err)
	assert.InDelta(t, -90, insight.Score, 1e-9) // -60 - 30
	assert.InDelta(t, 0.52, insight.Confidence, 1e-9)
}

func TestComparePeerFundamentalsDirectionAware(t *testing.T) {
	// leverage rewards being below the sector average
	s, ok := comparePeerFundamentals(
		&models.Fundamentals{DebtToEquity: fptr(0.4)},
		&models.SectorAverages{DebtToEquity: fptr(1.0)},
	)
	require.True(t, ok)
	assert.InDelta(t, 60, s, 1e-9)

	// growth rewards being above
	s, ok = comparePeerFundamentals(
		&models.Fundamentals{RevenueGrowth: fptr(0.05)},
		&models.SectorAverages{RevenueGrowth: fptr(0.10)},
	)
	require.True(t, ok)
	assert.InDelta(t, -40, s, 1e-9)

	_, ok = comparePeerFundamentals(&models.Fundamentals{}, &models.SectorAverages{})
	assert.False(t, ok)
}

func TestScoreMarketPosition(t *testing.T) {
	assert.InDelta(t, 100, scoreMarketPosition(&models.MarketPosition{MarketShare: 25, Rank: 1, Moat: "strong"}), 1e-9)
	assert.InDelta(t, -30, scoreMarketPosition(&models.MarketPosition{Rank: 15, Moat: "weak"}), 1e-9)
	assert.Zero(t, scoreMarketPosition(&models.MarketPosition{}))
}

func TestScoreSectorTrends(t *testing.T) {
	assert.InDelta(t, -100, scoreSectorTrends(&models.SectorTrends{Momentum: "negative", Outlook: "bearish", Regulation: "hostile"}), 1e-9)
	assert.InDelta(t, 20, scoreSectorTrends(&models.SectorTrends{Momentum: "moderate"}), 1e-9)
}
