package agents

import (
	"context"
	"fmt"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
)

// FundamentalAgent scores company quality: valuation, profitability, growth,
// balance-sheet health, and dividend policy.
type FundamentalAgent struct{}

func NewFundamentalAgent() *FundamentalAgent { return &FundamentalAgent{} }

func (a *FundamentalAgent) Name() string { return "fundamental" }

func (a *FundamentalAgent) Analyze(_ context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if ds == nil || ds.Fundamentals == nil {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no fundamentals snapshot for %s", symbol)
	}
	f := ds.Fundamentals

	scores := map[string]float64{}
	if v, ok := scoreValuation(f); ok {
		scores["valuation"] = v
	}
	if v, ok := scoreProfitability(f); ok {
		scores["profitability"] = v
	}
	if v, ok := scoreGrowth(f); ok {
		scores["growth"] = v
	}
	if v, ok := scoreFinancialHealth(f); ok {
		scores["financial_health"] = v
	}
	scores["dividends"] = scoreDividends(f)

	if len(scores) == 1 { // only the always-present dividend category
		if f.DividendYield == nil {
			return models.AgentInsight{}, models.DataUnavailable(a.Name(), "fundamentals snapshot carries no usable metric")
		}
	}

	confidence := completenessConfidence(0.3, 0.15, 0.9, len(scores))
	insight := models.NewInsight(a.Name(), meanScores(scores), confidence, fundamentalReasoning(scores, f))
	return insight, nil
}

func scoreValuation(f *models.Fundamentals) (float64, bool) {
	var score float64
	count := 0

	pe := f.TrailingPE
	if pe == nil {
		pe = f.ForwardPE
	}
	if pe != nil && *pe > 0 {
		switch {
		case *pe < 15:
			score += 60
		case *pe < 25:
			score += 20
		case *pe < 35:
			score -= 20
		default:
			score -= 60
		}
		count++
	}
	if pb := f.PriceToBook; pb != nil && *pb > 0 {
		switch {
		case *pb < 1:
			score += 50
		case *pb < 3:
			score += 10
		case *pb < 5:
			score -= 20
		default:
			score -= 50
		}
		count++
	}
	if peg := f.PEGRatio; peg != nil && *peg > 0 {
		switch {
		case *peg < 1:
			score += 50
		case *peg < 2:
			score += 20
		default:
			score -= 30
		}
		count++
	}
	if count == 0 {
		return 0, false
	}
	return score / float64(count), true
}

func scoreProfitability(f *models.Fundamentals) (float64, bool) {
	var score float64
	count := 0

	if roe := f.ReturnOnEquity; roe != nil {
		switch p := *roe * 100; {
		case p > 20:
			score += 60
		case p > 15:
			score += 30
		case p > 10:
			score += 10
		default:
			score -= 20
		}
		count++
	}
	if roa := f.ReturnOnAssets; roa != nil {
		switch p := *roa * 100; {
		case p > 10:
			score += 40
		case p > 5:
			score += 20
		default:
			score -= 10
		}
		count++
	}
	if pm := f.ProfitMargin; pm != nil {
		switch p := *pm * 100; {
		case p > 20:
			score += 50
		case p > 10:
			score += 25
		case p > 5:
			score += 10
		default:
			score -= 20
		}
		count++
	}
	if om := f.OperatingMargin; om != nil {
		switch p := *om * 100; {
		case p > 15:
			score += 40
		case p > 10:
			score += 20
		default:
			score -= 10
		}
		count++
	}
	if count == 0 {
		return 0, false
	}
	return score / float64(count), true
}

func scoreGrowth(f *models.Fundamentals) (float64, bool) {
	var score float64
	count := 0

	if rg := f.RevenueGrowth; rg != nil {
		switch p := *rg * 100; {
		case p > 20:
			score += 70
		case p > 10:
			score += 40
		case p > 5:
			score += 20
		case p > 0:
			score += 5
		default:
			score -= 50
		}
		count++
	}
	if eg := f.EarningsGrowth; eg != nil {
		switch p := *eg * 100; {
		case p > 25:
			score += 70
		case p > 15:
			score += 40
		case p > 5:
			score += 20
		default:
			score -= 30
		}
		count++
	}
	if qg := f.QuarterlyRevenueGrowth; qg != nil {
		switch p := *qg * 100; {
		case p > 15:
			score += 50
		case p > 5:
			score += 25
		default:
			score -= 20
		}
		count++
	}
	if count == 0 {
		return 0, false
	}
	return score / float64(count), true
}

func scoreFinancialHealth(f *models.Fundamentals) (float64, bool) {
	var score float64
	count := 0

	if de := f.DebtToEquity; de != nil {
		switch {
		case *de < 0.3:
			score += 60
		case *de < 0.7:
			score += 30
		case *de < 1.5:
			// tolerable leverage
		default:
			score -= 50
		}
		count++
	}
	if cr := f.CurrentRatio; cr != nil {
		switch {
		case *cr > 2:
			score += 50
		case *cr > 1.5:
			score += 30
		case *cr > 1:
			score += 10
		default:
			score -= 40
		}
		count++
	}
	if qr := f.QuickRatio; qr != nil {
		switch {
		case *qr > 1.5:
			score += 40
		case *qr > 1:
			score += 20
		default:
			score -= 20
		}
		count++
	}
	if count == 0 {
		return 0, false
	}
	return score / float64(count), true
}

// scoreDividends is neutral for non-payers rather than missing: not paying a
// dividend is a policy, not absent data.
func scoreDividends(f *models.Fundamentals) float64 {
	if f.DividendYield == nil || *f.DividendYield <= 0 {
		return 0
	}
	var score float64
	switch y := *f.DividendYield * 100; {
	case y > 4:
		score += 50
	case y > 2:
		score += 30
	case y > 1:
		score += 15
	default:
		score += 5
	}
	if pr := f.PayoutRatio; pr != nil {
		switch {
		case *pr > 0.3 && *pr < 0.6:
			score += 30 // sustainable
		case *pr < 0.3:
			score += 10
		case *pr < 0.8:
			// at the limit
		default:
			score -= 30 // payout likely unsustainable
		}
	}
	return clampScore(score)
}

func fundamentalReasoning(scores map[string]float64, f *models.Fundamentals) string {
	var parts []string
	for _, k := range sortedKeys(scores) {
		s := scores[k]
		switch k {
		case "valuation":
			if f.TrailingPE != nil && s > 30 {
				parts = append(parts, fmt.Sprintf("attractive valuation (P/E %.1f)", *f.TrailingPE))
			} else if f.TrailingPE != nil && s < -30 {
				parts = append(parts, fmt.Sprintf("rich valuation (P/E %.1f)", *f.TrailingPE))
			}
		case "profitability":
			if f.ReturnOnEquity != nil && s > 20 {
				parts = append(parts, fmt.Sprintf("high profitability (ROE %s)", pct(*f.ReturnOnEquity)))
			}
		case "growth":
			if f.RevenueGrowth != nil && s > 30 {
				parts = append(parts, fmt.Sprintf("strong revenue growth (%s)", pct(*f.RevenueGrowth)))
			} else if s < -20 {
				parts = append(parts, "weak or negative growth")
			}
		case "financial_health":
			if s > 30 {
				parts = append(parts, "healthy balance sheet")
			} else if s < -20 {
				parts = append(parts, "leverage concerns")
			}
		case "dividends":
			if s > 20 && f.DividendYield != nil {
				parts = append(parts, fmt.Sprintf("solid dividend yield (%s)", pct(*f.DividendYield)))
			}
		}
	}
	return joinReasons(parts, "mixed fundamental picture")
}

var _ domsvc.Agent = (*FundamentalAgent)(nil)
