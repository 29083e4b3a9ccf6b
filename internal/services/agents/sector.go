package agents

import (
	"context"
	"fmt"
	"strings"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
)

// SectorAgent scores the company against its sector: fundamentals vs sector
// averages, market position, peer-relative performance and sector trends.
type SectorAgent struct{}

func NewSectorAgent() *SectorAgent { return &SectorAgent{} }

func (a *SectorAgent) Name() string { return "sector" }

func (a *SectorAgent) Analyze(_ context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if ds == nil || ds.Sector == nil {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no sector snapshot for %s", symbol)
	}
	sd := ds.Sector

	scores := map[string]float64{}
	var reasons []string
	if sd.Sector != "" {
		reasons = append(reasons, "sector: "+sd.Sector)
	}
	if sd.Industry != "" {
		reasons = append(reasons, "industry: "+sd.Industry)
	}

	if sd.SectorAverages != nil && ds.Fundamentals != nil {
		if s, ok := comparePeerFundamentals(ds.Fundamentals, sd.SectorAverages); ok {
			scores["fundamental_comparison"] = s
			if s > 30 {
				reasons = append(reasons, "metrics above sector average")
			} else if s < -30 {
				reasons = append(reasons, "metrics below sector average")
			}
		}
	}
	if sd.MarketPosition != nil {
		scores["market_position"] = scoreMarketPosition(sd.MarketPosition)
		if sd.MarketPosition.Rank > 0 && scores["market_position"] > 30 {
			reasons = append(reasons, fmt.Sprintf("well positioned (sector rank #%d)", sd.MarketPosition.Rank))
		}
	}
	if sd.PeerPerf != nil {
		if s, ok := scorePeerPerf(sd.PeerPerf); ok {
			scores["peer_performance"] = s
			if sd.PeerPerf.Percentile != nil {
				reasons = append(reasons, fmt.Sprintf("performance percentile %.0f vs peers", *sd.PeerPerf.Percentile))
			}
		}
	}
	if sd.Trends != nil {
		scores["sector_trends"] = scoreSectorTrends(sd.Trends)
		if sd.Trends.Outlook != "" {
			reasons = append(reasons, "sector outlook: "+sd.Trends.Outlook)
		}
	}

	if len(scores) == 0 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "sector snapshot carries no comparable data")
	}

	confidence := completenessConfidence(0.4, 0.12, 0.85, len(scores))
	insight := models.NewInsight(a.Name(), meanScores(scores), confidence,
		joinReasons(reasons, "limited sector picture"))
	return insight, nil
}

// comparePeerFundamentals scores each comparable ratio against the sector
// average, direction-aware: leverage and valuation multiples reward being
// below average, returns and growth reward being above.
func comparePeerFundamentals(f *models.Fundamentals, avg *models.SectorAverages) (float64, bool) {
	type cmp struct {
		company, sector *float64
		higherIsBetter  bool
	}
	cmps := []cmp{
		{f.TrailingPE, avg.TrailingPE, false},
		{f.PriceToBook, avg.PriceToBook, false},
		{f.ReturnOnEquity, avg.ReturnOnEquity, true},
		{f.ProfitMargin, avg.ProfitMargin, true},
		{f.RevenueGrowth, avg.RevenueGrowth, true},
		{f.DebtToEquity, avg.DebtToEquity, false},
	}

	var score float64
	count := 0
	for _, c := range cmps {
		if c.company == nil || c.sector == nil || *c.sector == 0 {
			continue
		}
		ratio := *c.company / *c.sector
		if c.higherIsBetter {
			switch {
			case ratio > 1.3:
				score += 60
			case ratio > 1.1:
				score += 30
			case ratio > 0.9:
				// in line
			default:
				score -= 40
			}
		} else {
			switch {
			case ratio < 0.7:
				score += 60
			case ratio < 0.9:
				score += 30
			case ratio < 1.1:
				// in line
			default:
				score -= 40
			}
		}
		count++
	}
	if count == 0 {
		return 0, false
	}
	return score / float64(count), true
}

func scoreMarketPosition(p *models.MarketPosition) float64 {
	var score float64
	switch {
	case p.MarketShare > 20:
		score += 60
	case p.MarketShare > 10:
		score += 40
	case p.MarketShare > 5:
		score += 20
	}
	switch {
	case p.Rank == 1:
		score += 50
	case p.Rank > 1 && p.Rank <= 3:
		score += 30
	case p.Rank > 3 && p.Rank <= 10:
		score += 10
	case p.Rank > 10:
		score -= 10
	}
	switch strings.ToLower(p.Moat) {
	case "strong":
		score += 40
	case "moderate":
		score += 15
	case "weak":
		score -= 20
	}
	return clampScore(score)
}

func scorePeerPerf(p *models.PeerPerf) (float64, bool) {
	var score float64
	scored := false
	if p.YTDReturn != nil && p.PeerAvgYTD != nil {
		switch out := *p.YTDReturn - *p.PeerAvgYTD; {
		case out > 10:
			score += 60
		case out > 5:
			score += 35
		case out > -5:
			score += 10
		case out > -10:
			score -= 30
		default:
			score -= 60
		}
		scored = true
	}
	if p.Percentile != nil {
		switch {
		case *p.Percentile > 80:
			score += 50
		case *p.Percentile > 60:
			score += 25
		case *p.Percentile > 40:
			// median
		default:
			score -= 30
		}
		scored = true
	}
	if !scored {
		return 0, false
	}
	return clampScore(score), true
}

func scoreSectorTrends(t *models.SectorTrends) float64 {
	var score float64
	switch strings.ToLower(t.Momentum) {
	case "strong":
		score += 50
	case "moderate":
		score += 20
	case "weak":
		score -= 10
	case "negative":
		score -= 50
	}
	switch strings.ToLower(t.Outlook) {
	case "bullish", "positive":
		score += 40
	case "bearish", "negative":
		score -= 40
	}
	switch strings.ToLower(t.Regulation) {
	case "favorable", "supportive":
		score += 30
	case "unfavorable":
		score -= 30
	case "hostile":
		score -= 50
	}
	return clampScore(score)
}

var _ domsvc.Agent = (*SectorAgent)(nil)
