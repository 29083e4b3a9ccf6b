package agents

import (
	"context"
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
)

const minTechnicalBars = 30

// TechnicalAgent scores price action: RSI, MACD, moving-average crosses,
// Bollinger band position and volume surges.
type TechnicalAgent struct{}

func NewTechnicalAgent() *TechnicalAgent { return &TechnicalAgent{} }

func (a *TechnicalAgent) Name() string { return "technical" }

func (a *TechnicalAgent) Analyze(_ context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if ds == nil || len(ds.Prices) == 0 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no price history for %s", symbol)
	}
	if len(ds.Prices) < minTechnicalBars {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "%d price bars, need at least %d", len(ds.Prices), minTechnicalBars)
	}

	closes := models.Closes(ds.Prices)
	volumes := models.Volumes(ds.Prices)
	last := closes[len(closes)-1]

	const expected = 5
	scores := map[string]float64{}
	var reasons []string

	if rsi := lastValid(talib.Rsi(closes, 14)); !math.IsNaN(rsi) {
		scores["rsi"] = scoreRSI(rsi)
		reasons = append(reasons, describeRSI(rsi))
	}

	if len(closes) >= 35 {
		macd, signal, hist := talib.Macd(closes, 12, 26, 9)
		m, s, h := lastValid(macd), lastValid(signal), lastValid(hist)
		if !math.IsNaN(m) && !math.IsNaN(s) {
			scores["macd"] = scoreMACD(m, s)
			if scores["macd"] > 30 {
				reasons = append(reasons, "MACD shows bullish momentum")
			} else if scores["macd"] < -30 {
				reasons = append(reasons, "MACD shows bearish momentum")
			}
			_ = h
		}
	}

	if len(closes) >= 200 {
		sma50 := lastValid(talib.Sma(closes, 50))
		sma200 := lastValid(talib.Sma(closes, 200))
		if !math.IsNaN(sma50) && !math.IsNaN(sma200) {
			scores["moving_averages"] = scoreMovingAverages(sma50, sma200, last)
			if sma50 > sma200 {
				reasons = append(reasons, "golden cross (SMA50 above SMA200)")
			} else {
				reasons = append(reasons, "death cross (SMA50 below SMA200)")
			}
		}
	}

	if len(closes) >= 20 {
		upper, middle, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
		u, m, l := lastValid(upper), lastValid(middle), lastValid(lower)
		if !math.IsNaN(u) && !math.IsNaN(l) && u > l {
			scores["bollinger"] = scoreBollinger(last, u, l)
			_ = m
		}
	}

	if len(volumes) >= 20 && len(closes) >= 6 {
		avgVol := lastValid(talib.Sma(volumes, 20))
		if !math.IsNaN(avgVol) && avgVol > 0 {
			priceChange := (last - closes[len(closes)-6]) / closes[len(closes)-6]
			scores["volume"] = scoreVolume(volumes[len(volumes)-1]/avgVol, priceChange)
		}
	}

	if len(scores) == 0 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no technical indicator computable")
	}

	// Consensus confidence scaled by indicator completeness.
	confidence := consensusConfidence(scores) * float64(len(scores)) / expected
	insight := models.NewInsight(a.Name(), meanScores(scores), confidence,
		joinReasons(reasons, "technical picture inconclusive"))
	return insight, nil
}

func scoreRSI(rsi float64) float64 {
	switch {
	case rsi < 30:
		return math.Min(100, (30-rsi)*3) // oversold
	case rsi > 70:
		return math.Max(-100, (70-rsi)*3) // overbought
	default:
		return (50 - rsi) * 0.5
	}
}

func describeRSI(rsi float64) string {
	switch {
	case rsi < 30:
		return fmt.Sprintf("RSI %.1f (oversold)", rsi)
	case rsi > 70:
		return fmt.Sprintf("RSI %.1f (overbought)", rsi)
	default:
		return fmt.Sprintf("RSI %.1f (neutral)", rsi)
	}
}

func scoreMACD(macd, signal float64) float64 {
	hist := macd - signal
	switch {
	case hist > 0 && macd > signal:
		return math.Min(100, math.Abs(hist)*50)
	case hist < 0 && macd < signal:
		return math.Max(-100, -math.Abs(hist)*50)
	default:
		return 0
	}
}

func scoreMovingAverages(sma50, sma200, price float64) float64 {
	score := -50.0
	if sma50 > sma200 {
		score = 50
	}
	priceVsSMA50 := (price - sma50) / sma50 * 100
	score += clamp(priceVsSMA50*2, -50, 50)
	return clampScore(score)
}

func scoreBollinger(price, upper, lower float64) float64 {
	position := (price - lower) / (upper - lower)
	switch {
	case position < 0.2:
		return 60 // hugging the lower band
	case position > 0.8:
		return -60 // hugging the upper band
	default:
		return (0.5 - position) * 40
	}
}

func scoreVolume(volumeRatio, priceChange float64) float64 {
	switch {
	case volumeRatio > 1.5 && priceChange > 0:
		return 40
	case volumeRatio > 1.5 && priceChange < 0:
		return -40
	default:
		return 0
	}
}

// lastValid returns the last non-NaN element, or NaN for an empty series.
// talib pads warm-up periods with zeros, so leading values are untrustworthy;
// only the tail matters here.
func lastValid(xs []float64) float64 {
	for i := len(xs) - 1; i >= 0; i-- {
		if !math.IsNaN(xs[i]) {
			return xs[i]
		}
	}
	return math.NaN()
}

var _ domsvc.Agent = (*TechnicalAgent)(nil)
