package agents

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
)

// SentimentAgent scores market mood: news flow, social buzz, analyst consensus
// and insider activity. With no sentiment sources it falls back to recent
// price momentum at low confidence. Recency is measured against the dataset's
// as-of time, keeping the analysis reproducible.
type SentimentAgent struct{}

func NewSentimentAgent() *SentimentAgent { return &SentimentAgent{} }

func (a *SentimentAgent) Name() string { return "sentiment" }

func (a *SentimentAgent) Analyze(_ context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if ds == nil {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no dataset for %s", symbol)
	}
	asOf := ds.AsOf
	if asOf.IsZero() && len(ds.Prices) > 0 {
		asOf = ds.Prices[len(ds.Prices)-1].Time
	}

	sd := ds.Sentiment
	scores := map[string]float64{}
	var reasons []string

	if sd != nil {
		if len(sd.News) > 0 {
			scores["news"] = scoreNews(sd.News, asOf)
			if scores["news"] > 30 {
				reasons = append(reasons, fmt.Sprintf("positive tone across %d recent headlines", len(sd.News)))
			} else if scores["news"] < -30 {
				reasons = append(reasons, fmt.Sprintf("negative tone across %d recent headlines", len(sd.News)))
			}
		}
		if sd.Social != nil {
			scores["social"] = scoreSocial(sd.Social)
			if scores["social"] > 30 {
				reasons = append(reasons, "positive social-media buzz")
			} else if scores["social"] < -30 {
				reasons = append(reasons, "negative social-media sentiment")
			}
		}
		if sd.AnalystRatings != nil {
			if s, ok := scoreAnalysts(sd.AnalystRatings); ok {
				scores["analysts"] = s
				total := sd.AnalystRatings.StrongBuy + sd.AnalystRatings.Buy + sd.AnalystRatings.Hold +
					sd.AnalystRatings.Sell + sd.AnalystRatings.StrongSell
				reasons = append(reasons, fmt.Sprintf("%d analysts covering", total))
			}
		}
		if len(sd.InsiderTrades) > 0 {
			if s, ok := scoreInsiders(sd.InsiderTrades, asOf); ok {
				scores["insider"] = s
				if s > 30 {
					reasons = append(reasons, "insiders net buying")
				} else if s < -30 {
					reasons = append(reasons, "insiders net selling")
				}
			}
		}
	}

	if len(scores) == 0 {
		return a.momentumFallback(symbol, ds)
	}

	insight := models.NewInsight(a.Name(), meanScores(scores), sentimentConfidence(scores),
		joinReasons(reasons, "mixed sentiment picture"))
	return insight, nil
}

// scoreNews is a recency-weighted average of headline scores scaled to [-100,100].
func scoreNews(news []models.NewsItem, asOf time.Time) float64 {
	var weighted, weights float64
	for _, n := range news {
		w := 0.5
		if !n.Published.IsZero() && !asOf.IsZero() {
			daysAgo := asOf.Sub(n.Published).Hours() / 24
			if daysAgo < 0 {
				daysAgo = 0
			}
			w = 1 / (1 + daysAgo*0.1)
		}
		weighted += clamp(n.Score, -1, 1) * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return clampScore(weighted / weights * 100)
}

func scoreSocial(s *models.SocialStats) float64 {
	sentiment := clamp(s.Score, -1, 1)
	score := sentiment * 60
	if s.Trending {
		if sentiment > 0 {
			score += 30
		} else {
			score -= 30
		}
	}
	switch sign := math.Copysign(1, sentiment); {
	case s.Mentions > 10000:
		score += 20 * sign
	case s.Mentions > 1000:
		score += 10 * sign
	}
	return clampScore(score)
}

func scoreAnalysts(r *models.AnalystRatings) (float64, bool) {
	total := r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
	if total == 0 {
		return 0, false
	}
	score := float64(r.StrongBuy*100+r.Buy*50+r.Sell*-50+r.StrongSell*-100) / float64(total)
	if r.TargetPrice > 0 && r.CurrentPrice > 0 {
		upside := (r.TargetPrice - r.CurrentPrice) / r.CurrentPrice * 100
		score += clamp(upside*0.5, -30, 30)
	}
	return clampScore(score), true
}

// scoreInsiders nets buy against sell value over the trailing 90 days.
func scoreInsiders(trades []models.InsiderTrade, asOf time.Time) (float64, bool) {
	cutoff := asOf.AddDate(0, 0, -90)
	var buys, sells float64
	for _, t := range trades {
		if !t.Date.IsZero() && t.Date.Before(cutoff) {
			continue
		}
		if t.Buy {
			buys += t.Value
		} else {
			sells += t.Value
		}
	}
	if buys+sells == 0 {
		return 0, false
	}
	return (buys - sells) / (buys + sells) * 100, true
}

// sentimentConfidence rises with cross-source agreement: 0.85 on full
// consensus, 0.7 on a >60% directional majority, 0.5 otherwise.
func sentimentConfidence(scores map[string]float64) float64 {
	vals := make([]float64, 0, len(scores))
	for _, v := range scores {
		vals = append(vals, v)
	}
	allPos, allNeg := true, true
	pos, neg := 0, 0
	for _, v := range vals {
		if v <= 20 {
			allPos = false
		} else {
			pos++
		}
		if v >= -20 {
			allNeg = false
		} else {
			neg++
		}
	}
	if allPos || allNeg {
		return 0.85
	}
	n := float64(len(vals))
	if float64(pos) > n*0.6 || float64(neg) > n*0.6 {
		return 0.7
	}
	return 0.5
}

func (a *SentimentAgent) momentumFallback(symbol string, ds *models.Dataset) (models.AgentInsight, error) {
	if len(ds.Prices) < 21 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "no sentiment sources and no price momentum proxy for %s", symbol)
	}
	closes := models.Closes(ds.Prices)
	ref := closes[len(closes)-21]
	if ref == 0 {
		return models.AgentInsight{}, models.DataUnavailable(a.Name(), "degenerate price history for %s", symbol)
	}
	ret := (closes[len(closes)-1] - ref) / ref
	score := clamp(ret*200, -50, 50)
	return models.NewInsight(a.Name(), score, 0.3,
		"sentiment inferred from 20-bar price momentum (no direct sources)"), nil
}

var _ domsvc.Agent = (*SentimentAgent)(nil)
