package agents

import (
	"context"
	"fmt"
	"strings"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
)

// MacroAgent scores the macroeconomic backdrop: policy rates, inflation, GDP,
// employment and the prevailing market regime.
type MacroAgent struct{}

func NewMacroAgent() *MacroAgent { return &MacroAgent{} }

func (a *MacroAgent) Name() string { return "macro" }

func (a *MacroAgent) Analyze(_ context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if ds == nil || ds.Macro == nil {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no macro snapshot for %s", symbol)
	}
	m := ds.Macro

	scores := map[string]float64{}
	var reasons []string

	if m.Rates != nil {
		scores["rates"] = scoreRates(m.Rates)
		reasons = append(reasons, fmt.Sprintf("policy rate %.2f%% (%s)", m.Rates.CurrentRate, orUnknown(m.Rates.Trend)))
	}
	if m.Inflation != nil {
		scores["inflation"] = scoreInflation(m.Inflation)
		reasons = append(reasons, fmt.Sprintf("inflation %.1f%%", m.Inflation.CurrentRate))
	}
	if m.GDP != nil {
		scores["gdp"] = scoreGDP(m.GDP)
		reasons = append(reasons, fmt.Sprintf("GDP growing %.1f%%", m.GDP.GrowthRate))
	}
	if m.Employment != nil {
		scores["employment"] = scoreEmployment(m.Employment)
	}
	if m.Regime != nil {
		scores["regime"] = scoreRegime(m.Regime)
		if m.Regime.Type != "" {
			reasons = append(reasons, fmt.Sprintf("%s regime", strings.ReplaceAll(m.Regime.Type, "_", "-")))
		}
		if m.Regime.VIX != nil {
			reasons = append(reasons, fmt.Sprintf("VIX %.1f", *m.Regime.VIX))
		}
	}

	if len(scores) == 0 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "macro snapshot carries no usable series")
	}

	confidence := completenessConfidence(0.4, 0.1, 0.8, len(scores))
	insight := models.NewInsight(a.Name(), meanScores(scores), confidence,
		joinReasons(reasons, "mixed macro environment"))
	return insight, nil
}

// scoreRates: cheap money and easing bias favor equities.
func scoreRates(r *models.RatesData) float64 {
	var score float64
	switch {
	case r.CurrentRate < 2:
		score += 40
	case r.CurrentRate < 4:
		score += 20
	case r.CurrentRate < 6:
		score -= 10
	default:
		score -= 40
	}
	switch strings.ToLower(r.Trend) {
	case "falling":
		score += 30
	case "rising":
		score -= 30
	case "stable":
		score += 10
	}
	exp := strings.ToLower(r.Expectation)
	if strings.Contains(exp, "cut") || strings.Contains(exp, "decrease") {
		score += 20
	} else if strings.Contains(exp, "hike") || strings.Contains(exp, "increase") {
		score -= 20
	}
	return clampScore(score)
}

func scoreInflation(inf *models.InflationData) float64 {
	var score float64
	deviation := inf.CurrentRate - inf.TargetRate
	switch abs := absf(deviation); {
	case abs < 0.5:
		score += 40
	case abs < 1:
		score += 20
	case abs < 2:
		score -= 10
	default:
		score -= 40
	}
	trend := strings.ToLower(inf.Trend)
	if deviation > 0 {
		// running hot
		switch trend {
		case "falling":
			score += 30
		case "rising":
			score -= 40
		}
	} else {
		switch trend {
		case "rising":
			score += 20
		case "falling":
			score -= 20 // deflation risk
		}
	}
	if inf.CurrentRate > 5 {
		score -= 30
	}
	return clampScore(score)
}

func scoreGDP(g *models.GDPData) float64 {
	var score float64
	switch {
	case g.GrowthRate > 4:
		score += 50
	case g.GrowthRate > 2:
		score += 30
	case g.GrowthRate > 0:
		score += 10
	case g.GrowthRate > -1:
		score -= 30
	default:
		score -= 60
	}
	switch strings.ToLower(g.Trend) {
	case "accelerating":
		score += 20
	case "decelerating":
		score -= 20
	}
	return clampScore(score)
}

func scoreEmployment(e *models.EmploymentData) float64 {
	var score float64
	switch {
	case e.UnemploymentRate < 4:
		score += 40
	case e.UnemploymentRate < 5:
		score += 20
	case e.UnemploymentRate < 7:
		// neutral
	default:
		score -= 40
	}
	switch strings.ToLower(e.Trend) {
	case "falling":
		score += 20
	case "rising":
		score -= 30
	}
	return clampScore(score)
}

func scoreRegime(r *models.RegimeData) float64 {
	var score float64
	switch strings.ToLower(r.Type) {
	case "risk_on":
		score += 50
	case "risk_off":
		score -= 50
	}
	if r.VIX != nil {
		switch v := *r.VIX; {
		case v < 15:
			score += 30
		case v < 20:
			score += 10
		case v < 30:
			score -= 20
		default:
			score -= 40
		}
	}
	switch strings.ToLower(r.YieldCurve) {
	case "normal":
		score += 20
	case "flat":
		score -= 10
	case "inverted":
		score -= 50
	}
	return clampScore(score)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

var _ domsvc.Agent = (*MacroAgent)(nil)
