package agents

import domsvc "StockSage/internal/domain/service"

// All returns one instance of every agent variant in a stable order.
func All() []domsvc.Agent {
	return []domsvc.Agent{
		NewTechnicalAgent(),
		NewFundamentalAgent(),
		NewSentimentAgent(),
		NewMacroAgent(),
		NewRiskAgent(),
		NewSectorAgent(),
	}
}
