package agents

import (
	"context"
	"fmt"
	"math"
	"sort"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
)

const (
	minRiskBars  = 30
	tradingDays  = 252
	riskFreeRate = 0.02
)

// RiskAgent scores the instrument's risk profile: realized volatility, Sharpe,
// maximum drawdown, 95% VaR and beta (when the collaborator supplies one via
// the dataset's named fields). Positive scores mean acceptable risk.
type RiskAgent struct{}

func NewRiskAgent() *RiskAgent { return &RiskAgent{} }

func (a *RiskAgent) Name() string { return "risk" }

func (a *RiskAgent) Analyze(_ context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if ds == nil || len(ds.Prices) < minRiskBars {
		n := 0
		if ds != nil {
			n = len(ds.Prices)
		}
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "%d price bars for %s, need at least %d", n, symbol, minRiskBars)
	}

	closes := models.Closes(ds.Prices)
	returns := simpleReturns(closes)
	if len(returns) == 0 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "degenerate price history for %s", symbol)
	}

	vol := stddev(returns) * math.Sqrt(tradingDays)
	sharpe := sharpeRatio(closes, vol)
	maxDD := maxDrawdown(returns)
	var95 := quantile(returns, 0.05)

	scores := map[string]float64{
		"volatility":   scoreVolatility(vol),
		"sharpe":       scoreSharpe(sharpe),
		"max_drawdown": scoreDrawdown(maxDD),
		"var":          scoreVaR(var95),
	}
	if beta, ok := ds.Named["beta"]; ok {
		scores["beta"] = scoreBeta(beta)
	}

	confidence := completenessConfidence(0.5, 0.08, 0.85, len(scores))
	insight := models.NewInsight(a.Name(), meanScores(scores), confidence,
		riskReasoning(scores, vol, sharpe, maxDD, var95))
	return insight, nil
}

func simpleReturns(closes []float64) []float64 {
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		rets = append(rets, closes[i]/closes[i-1]-1)
	}
	return rets
}

func sharpeRatio(closes []float64, annualVol float64) float64 {
	if annualVol == 0 || closes[0] == 0 {
		return 0
	}
	totalReturn := closes[len(closes)-1]/closes[0] - 1
	years := float64(len(closes)) / tradingDays
	if years <= 0 {
		return 0
	}
	annualReturn := math.Pow(1+totalReturn, 1/years) - 1
	return (annualReturn - riskFreeRate) / annualVol
}

// maxDrawdown returns the deepest peak-to-trough loss as a negative fraction.
func maxDrawdown(returns []float64) float64 {
	equity, peak, worst := 1.0, 1.0, 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if dd := (equity - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// quantile uses the nearest-rank method on a sorted copy.
func quantile(xs []float64, q float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func scoreVolatility(vol float64) float64 {
	switch {
	case vol < 0.15:
		return 60
	case vol < 0.25:
		return 30
	case vol < 0.35:
		return 0
	case vol < 0.50:
		return -40
	default:
		return -70
	}
}

func scoreSharpe(sharpe float64) float64 {
	switch {
	case sharpe > 2:
		return 80
	case sharpe > 1:
		return 50
	case sharpe > 0.5:
		return 20
	case sharpe > 0:
		return -10
	default:
		return -60
	}
}

func scoreDrawdown(maxDD float64) float64 {
	switch dd := absf(maxDD) * 100; {
	case dd < 10:
		return 70
	case dd < 20:
		return 40
	case dd < 30:
		return 10
	case dd < 50:
		return -30
	default:
		return -70
	}
}

func scoreVaR(var95 float64) float64 {
	switch v := absf(var95) * 100; {
	case v < 2:
		return 60
	case v < 3:
		return 30
	case v < 5:
		return 0
	case v < 7:
		return -30
	default:
		return -60
	}
}

func scoreBeta(beta float64) float64 {
	switch {
	case beta < 0:
		return -50 // inverse correlation with the market is rarely benign
	case beta < 0.7:
		return 40
	case beta < 1.2:
		return 20
	case beta < 1.5:
		return -10
	default:
		return -40
	}
}

func riskReasoning(scores map[string]float64, vol, sharpe, maxDD, var95 float64) string {
	var level string
	switch avg := meanScores(scores); {
	case avg > 30:
		level = "favorable risk profile"
	case avg > 0:
		level = "moderate risk"
	case avg > -30:
		level = "elevated risk"
	default:
		level = "very high risk"
	}
	return fmt.Sprintf("%s; annualized volatility %s; Sharpe %.2f; max drawdown %s; 95%% VaR %s",
		level, pct(vol), sharpe, pct(absf(maxDD)), pct(absf(var95)))
}

var _ domsvc.Agent = (*RiskAgent)(nil)
