package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	xlogger "StockSage/pkg/logger"
)

const defaultAgentTimeout = 5 * time.Second

// Orchestrator runs the configured agents against one symbol and combines
// their insights into a single decision.
type Orchestrator struct {
	agents  []domsvc.Agent
	timeout time.Duration
	logger  *xlogger.Logger
	metrics domrepo.Metrics
}

func NewOrchestrator(agents []domsvc.Agent, logger *xlogger.Logger, metrics domrepo.Metrics, agentTimeout time.Duration) *Orchestrator {
	if agentTimeout <= 0 {
		agentTimeout = defaultAgentTimeout
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &Orchestrator{agents: agents, timeout: agentTimeout, logger: logger, metrics: metrics}
}

// Agents lists the orchestrated agents in registration order.
func (o *Orchestrator) Agents() []domsvc.Agent { return o.agents }

type agentOutcome struct {
	idx     int
	insight models.AgentInsight
	err     error
}

// Analyze produces one CombinedAnalysis for one symbol, or fails with
// ErrInsufficientData when no enabled agent contributes. Individual agent
// failures are recorded as skipped insights, never dropped.
func (o *Orchestrator) Analyze(ctx context.Context, symbol string, ds *models.Dataset, specs domsvc.SpecSet) (*models.CombinedAnalysis, error) {
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrInsufficientData)
	}

	insights := make([]models.AgentInsight, len(o.agents))
	outcomes := make(chan agentOutcome, len(o.agents))
	running := 0

	for i, agent := range o.agents {
		spec, ok := specs[agent.Name()]
		switch {
		case !ok:
			insights[i] = models.SkippedInsight(agent.Name(), "agent not configured")
			continue
		case !spec.Enabled:
			insights[i] = models.SkippedInsight(agent.Name(), "agent disabled")
			continue
		case spec.Weight == 0:
			insights[i] = models.SkippedInsight(agent.Name(), "zero weight")
			continue
		}

		running++
		go o.runAgent(ctx, agent, spec, i, symbol, ds, outcomes)
	}

	// Join barrier: every launched agent reports exactly once.
	for n := 0; n < running; n++ {
		out := <-outcomes
		agent := o.agents[out.idx]
		spec := specs[agent.Name()]
		if out.err != nil {
			o.logger.Debug("agent skipped",
				xlogger.String("symbol", symbol),
				xlogger.String("agent", agent.Name()),
				xlogger.Error(out.err))
			ins := models.SkippedInsight(agent.Name(), out.err.Error())
			ins.Weight = spec.Weight
			insights[out.idx] = ins
			continue
		}
		ins := out.insight
		ins.Weight = spec.Weight
		insights[out.idx] = ins
	}

	analysis, err := combine(symbol, insights)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordSymbolFailure("insufficient_data")
		}
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.RecordAnalysis(symbol, analysis.Score, string(analysis.Recommendation))
	}
	o.logger.Info("symbol analyzed",
		xlogger.String("symbol", symbol),
		xlogger.Float64("score", analysis.Score),
		xlogger.Float64("confidence", analysis.Confidence),
		xlogger.String("recommendation", string(analysis.Recommendation)))
	return analysis, nil
}

// runAgent executes one agent under the per-agent timeout. A timed-out agent
// is reported as data-unavailable for this run; the goroutine computing it is
// left to finish on its own.
func (o *Orchestrator) runAgent(ctx context.Context, agent domsvc.Agent, spec domsvc.AgentSpec, idx int, symbol string, ds *models.Dataset, outcomes chan<- agentOutcome) {
	actx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan agentOutcome, 1)
	go func() {
		insight, err := agent.Analyze(actx, symbol, ds)
		done <- agentOutcome{idx: idx, insight: insight, err: err}
	}()

	var out agentOutcome
	select {
	case out = <-done:
	case <-actx.Done():
		out = agentOutcome{idx: idx, err: models.DataUnavailable(agent.Name(), "analysis cancelled: %v", actx.Err())}
	}

	if o.metrics != nil {
		outcome := "ok"
		if out.err != nil {
			outcome = "skipped"
		}
		o.metrics.RecordAgentRun(agent.Name(), outcome, time.Since(start).Seconds())
	}
	outcomes <- out
}

// combine folds the collected insights into the weighted, confidence-adjusted
// score. Only non-skipped insights with weight*confidence > 0 contribute.
func combine(symbol string, insights []models.AgentInsight) (*models.CombinedAnalysis, error) {
	var (
		scoreNum, scoreDen float64 // Σ s·w·c / Σ w·c
		confNum, confDen   float64 // Σ c·w / Σ w
		contributing       []float64
	)
	for _, ins := range insights {
		if ins.Skipped {
			continue
		}
		wc := ins.Weight * ins.Confidence
		if wc <= 0 {
			continue
		}
		scoreNum += ins.Score * wc
		scoreDen += wc
		confNum += ins.Confidence * ins.Weight
		confDen += ins.Weight
		contributing = append(contributing, ins.Score)
	}
	if scoreDen <= 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrInsufficientData)
	}

	score := scoreNum / scoreDen

	// Base confidence discounted by normalized disagreement: confident agents
	// pulling in opposite directions must not look like a confident call.
	disagreement := math.Min(1, math.Max(0, scoreStddev(contributing)/100))
	confidence := confNum / confDen * (1 - disagreement)

	return &models.CombinedAnalysis{
		Symbol:         symbol,
		Score:          score,
		Confidence:     confidence,
		Recommendation: models.RecommendationFor(score),
		Reasoning:      combinedReasoning(insights, score),
		Insights:       insights,
		Timestamp:      time.Now().UTC(),
	}, nil
}

func scoreStddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// combinedReasoning summarizes the decision: overall score, consensus or
// divergence, and the highest-conviction individual insights.
func combinedReasoning(insights []models.AgentInsight, score float64) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("combined score %.2f/100", score))

	active := make([]models.AgentInsight, 0, len(insights))
	for _, ins := range insights {
		if !ins.Skipped && ins.Weight*ins.Confidence > 0 {
			active = append(active, ins)
		}
	}
	allBull, allBear := true, true
	for _, ins := range active {
		if ins.Score <= 30 {
			allBull = false
		}
		if ins.Score >= -30 {
			allBear = false
		}
	}
	switch {
	case allBull && len(active) > 0:
		parts = append(parts, "bullish consensus across agents")
	case allBear && len(active) > 0:
		parts = append(parts, "bearish consensus across agents")
	default:
		parts = append(parts, "agents diverge")
	}

	sort.SliceStable(active, func(i, j int) bool {
		return math.Abs(active[i].Score) > math.Abs(active[j].Score)
	})
	if len(active) > 3 {
		active = active[:3]
	}
	for _, ins := range active {
		parts = append(parts, fmt.Sprintf("%s: %s", ins.AgentName, ins.Reasoning))
	}
	return strings.Join(parts, "; ")
}
