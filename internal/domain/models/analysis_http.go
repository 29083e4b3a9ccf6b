package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency
// and reuse; bound and validated by pkg/http.

// AgentOverride adjusts one agent's configuration for this request only.
type AgentOverride struct {
	Weight  *float64 `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Enabled *bool    `json:"enabled,omitempty"`
}

type AnalyzeRequest struct {
	Symbol  string                   `json:"symbol" validate:"required"`
	Dataset *Dataset                 `json:"dataset" validate:"required"`
	Profile string                   `json:"profile,omitempty"`
	Agents  map[string]AgentOverride `json:"agents,omitempty"`
}

type RankRequest struct {
	Symbols   []string                 `json:"symbols" validate:"required,min=1,dive,required"`
	Datasets  map[string]*Dataset      `json:"datasets" validate:"required"`
	Profile   string                   `json:"profile,omitempty"`
	Agents    map[string]AgentOverride `json:"agents,omitempty"`
	Threshold *float64                 `json:"threshold,omitempty" validate:"omitempty,gte=-100,lte=100"`
}
