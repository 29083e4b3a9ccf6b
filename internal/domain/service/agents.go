package service

import (
	"context"
	"math"
	"sort"

	"StockSage/internal/domain/models"
)

// Agent produces one opinion about one symbol from a supplied dataset.
// Implementations are stateless with respect to analysis: the insight is a pure
// function of (symbol, dataset). Weight and enablement live in AgentSpec and
// are applied only at combination time.
type Agent interface {
	Name() string
	Analyze(ctx context.Context, symbol string, ds *models.Dataset) (models.AgentInsight, error)
}

// AgentSpec is the per-agent run configuration. Specs are copied at batch start
// so mutations apply to subsequent runs only.
type AgentSpec struct {
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// SpecSet maps agent name to its run configuration.
type SpecSet map[string]AgentSpec

// DefaultSpecs enables every given agent at weight 1.
func DefaultSpecs(agents []Agent) SpecSet {
	s := make(SpecSet, len(agents))
	for _, a := range agents {
		s[a.Name()] = AgentSpec{Weight: 1, Enabled: true}
	}
	return s
}

// Clone returns an independent copy, the snapshot taken at batch start.
func (s SpecSet) Clone() SpecSet {
	out := make(SpecSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SetWeight updates one agent's weight for subsequent runs.
func (s SpecSet) SetWeight(agent string, weight float64) error {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return models.ConfigErrorf("weight", "agent %q: weight must be finite and >= 0, got %v", agent, weight)
	}
	spec, ok := s[agent]
	if !ok {
		return models.ConfigErrorf("agent", "unknown agent %q", agent)
	}
	spec.Weight = weight
	s[agent] = spec
	return nil
}

// Enable turns an agent back on for subsequent runs.
func (s SpecSet) Enable(agent string) error { return s.setEnabled(agent, true) }

// Disable keeps an agent visible in output but excluded from combination.
func (s SpecSet) Disable(agent string) error { return s.setEnabled(agent, false) }

func (s SpecSet) setEnabled(agent string, enabled bool) error {
	spec, ok := s[agent]
	if !ok {
		return models.ConfigErrorf("agent", "unknown agent %q", agent)
	}
	spec.Enabled = enabled
	s[agent] = spec
	return nil
}

// ApplyProfile overlays a named weight profile (agent name -> weight) on top of
// the current specs. Profiles come from config or request payloads; the core
// hardcodes none.
func (s SpecSet) ApplyProfile(profile map[string]float64) error {
	for name, w := range profile {
		if err := s.SetWeight(name, w); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects spec sets no run could use: a negative weight slipped in via
// literal construction, or zero enabled agents.
func (s SpecSet) Validate() error {
	enabled := 0
	for name, spec := range s {
		if spec.Weight < 0 || math.IsNaN(spec.Weight) || math.IsInf(spec.Weight, 0) {
			return models.ConfigErrorf("weight", "agent %q: weight must be finite and >= 0, got %v", name, spec.Weight)
		}
		if spec.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return models.ConfigErrorf("agents", "no agent enabled")
	}
	return nil
}

// Names returns agent names in deterministic order.
func (s SpecSet) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
