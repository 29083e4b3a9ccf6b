package models

import "time"

// Recommendation is the categorical label derived from a combined score.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// RecommendationFor maps a combined score onto its band. Bands are
// [60,100] STRONG_BUY, [30,60) BUY, (-30,30) HOLD, (-60,-30] SELL,
// [-100,-60] STRONG_SELL.
func RecommendationFor(score float64) Recommendation {
	switch {
	case score >= 60:
		return StrongBuy
	case score >= 30:
		return Buy
	case score > -30:
		return Hold
	case score > -60:
		return Sell
	default:
		return StrongSell
	}
}

// AgentInsight is one agent's opinion about one symbol. Immutable once produced.
// Skipped insights record agents that were disabled, carried zero weight, or
// failed; they never contribute to the combined numbers.
type AgentInsight struct {
	AgentName  string  `json:"agent_name"`
	Score      float64 `json:"score"`      // [-100, 100], negative = bearish
	Confidence float64 `json:"confidence"` // [0, 1]
	Reasoning  string  `json:"reasoning"`
	Weight     float64 `json:"weight"` // effective weight at combination time
	Skipped    bool    `json:"skipped"`
	SkipReason string  `json:"skip_reason,omitempty"`
}

// NewInsight clamps score and confidence into their contractual ranges.
func NewInsight(agent string, score, confidence float64, reasoning string) AgentInsight {
	return AgentInsight{
		AgentName:  agent,
		Score:      clampRange(score, -100, 100),
		Confidence: clampRange(confidence, 0, 1),
		Reasoning:  reasoning,
	}
}

// SkippedInsight records a non-contributing agent with the reason it sat out.
func SkippedInsight(agent, reason string) AgentInsight {
	return AgentInsight{AgentName: agent, Skipped: true, SkipReason: reason}
}

// CombinedAnalysis is the orchestrator's decision for one symbol.
type CombinedAnalysis struct {
	Symbol         string         `json:"symbol"`
	Score          float64        `json:"combined_score"`
	Confidence     float64        `json:"combined_confidence"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
	Insights       []AgentInsight `json:"insights"`
	Timestamp      time.Time      `json:"timestamp"`
}

// HistoryEntry is one persisted analysis row, without per-agent detail.
type HistoryEntry struct {
	Symbol         string         `json:"symbol"`
	Score          float64        `json:"combined_score"`
	Confidence     float64        `json:"combined_confidence"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
	Timestamp      time.Time      `json:"timestamp"`
}

// SymbolResult is one batch entry: either an analysis or the per-symbol failure.
// Batch output always carries exactly one SymbolResult per requested symbol.
type SymbolResult struct {
	Symbol   string            `json:"symbol"`
	Analysis *CombinedAnalysis `json:"analysis,omitempty"`
	Err      error             `json:"-"`
	ErrText  string            `json:"error,omitempty"`
}

// Failed reports whether this symbol could not be analyzed.
func (r SymbolResult) Failed() bool { return r.Err != nil }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
