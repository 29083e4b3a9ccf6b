package models

import "time"

// Dataset is the per-symbol snapshot supplied by the data-fetch collaborator.
// Agents read it but never mutate it; sections an agent needs that are nil or
// empty make that agent report its data as unavailable.
type Dataset struct {
	Symbol string
	AsOf   time.Time

	Prices       []Candle
	Fundamentals *Fundamentals
	Sentiment    *SentimentData
	Macro        *MacroData
	Sector       *SectorData

	// Named carries ad-hoc ratio/volume fields that have no typed section yet.
	Named map[string]float64
}

// Candle is one OHLCV bar of price history, oldest first in Dataset.Prices.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close series in chronological order.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume series in chronological order.
func Volumes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Volume
	}
	return out
}

// Fundamentals is a snapshot of company metrics. Pointer fields distinguish
// "not reported" from a true zero.
type Fundamentals struct {
	TrailingPE             *float64 `json:"trailing_pe,omitempty"`
	ForwardPE              *float64 `json:"forward_pe,omitempty"`
	PriceToBook            *float64 `json:"price_to_book,omitempty"`
	PEGRatio               *float64 `json:"peg_ratio,omitempty"`
	ReturnOnEquity         *float64 `json:"return_on_equity,omitempty"`
	ReturnOnAssets         *float64 `json:"return_on_assets,omitempty"`
	ProfitMargin           *float64 `json:"profit_margin,omitempty"`
	OperatingMargin        *float64 `json:"operating_margin,omitempty"`
	RevenueGrowth          *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth         *float64 `json:"earnings_growth,omitempty"`
	QuarterlyRevenueGrowth *float64 `json:"quarterly_revenue_growth,omitempty"`
	DebtToEquity           *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio           *float64 `json:"current_ratio,omitempty"`
	QuickRatio             *float64 `json:"quick_ratio,omitempty"`
	DividendYield          *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio            *float64 `json:"payout_ratio,omitempty"`
	Sector                 string   `json:"sector,omitempty"`
	Industry               string   `json:"industry,omitempty"`
}

// SentimentData aggregates externally collected sentiment sources.
type SentimentData struct {
	News           []NewsItem      `json:"news,omitempty"`
	Social         *SocialStats    `json:"social,omitempty"`
	AnalystRatings *AnalystRatings `json:"analyst_ratings,omitempty"`
	InsiderTrades  []InsiderTrade  `json:"insider_trades,omitempty"`
}

// NewsItem is one scored headline. Score is in [-1, 1].
type NewsItem struct {
	Title     string    `json:"title"`
	Score     float64   `json:"score"`
	Published time.Time `json:"published"`
	Source    string    `json:"source,omitempty"`
}

// SocialStats summarizes social-media activity for the symbol.
type SocialStats struct {
	Score    float64 `json:"score"` // average sentiment in [-1, 1]
	Mentions int     `json:"mentions"`
	Trending bool    `json:"trending"`
}

// AnalystRatings is the current analyst consensus mix.
type AnalystRatings struct {
	StrongBuy    int     `json:"strong_buy"`
	Buy          int     `json:"buy"`
	Hold         int     `json:"hold"`
	Sell         int     `json:"sell"`
	StrongSell   int     `json:"strong_sell"`
	TargetPrice  float64 `json:"target_price,omitempty"`
	CurrentPrice float64 `json:"current_price,omitempty"`
}

// InsiderTrade is one reported insider transaction.
type InsiderTrade struct {
	Buy   bool      `json:"buy"`
	Value float64   `json:"value"`
	Date  time.Time `json:"date"`
}

// MacroData is the macroeconomic backdrop shared across symbols of one run.
type MacroData struct {
	Rates      *RatesData      `json:"rates,omitempty"`
	Inflation  *InflationData  `json:"inflation,omitempty"`
	GDP        *GDPData        `json:"gdp,omitempty"`
	Employment *EmploymentData `json:"employment,omitempty"`
	Regime     *RegimeData     `json:"regime,omitempty"`
}

type RatesData struct {
	CurrentRate float64 `json:"current_rate"`
	Trend       string  `json:"trend,omitempty"`       // rising, falling, stable
	Expectation string  `json:"expectation,omitempty"` // e.g. "cut expected", "hike likely"
}

type InflationData struct {
	CurrentRate float64 `json:"current_rate"`
	TargetRate  float64 `json:"target_rate"`
	Trend       string  `json:"trend,omitempty"`
}

type GDPData struct {
	GrowthRate float64 `json:"growth_rate"`
	Trend      string  `json:"trend,omitempty"` // accelerating, decelerating
}

type EmploymentData struct {
	UnemploymentRate float64 `json:"unemployment_rate"`
	Trend            string  `json:"trend,omitempty"`
}

type RegimeData struct {
	Type       string   `json:"type,omitempty"` // risk_on, risk_off, neutral
	VIX        *float64 `json:"vix,omitempty"`
	YieldCurve string   `json:"yield_curve,omitempty"` // normal, flat, inverted
}

// SectorData positions the company against its sector peers.
type SectorData struct {
	Sector         string          `json:"sector,omitempty"`
	Industry       string          `json:"industry,omitempty"`
	SectorAverages *SectorAverages `json:"sector_averages,omitempty"`
	MarketPosition *MarketPosition `json:"market_position,omitempty"`
	PeerPerf       *PeerPerf       `json:"peer_performance,omitempty"`
	Trends         *SectorTrends   `json:"trends,omitempty"`
}

// SectorAverages mirrors the comparable Fundamentals fields averaged over the sector.
type SectorAverages struct {
	TrailingPE     *float64 `json:"trailing_pe,omitempty"`
	PriceToBook    *float64 `json:"price_to_book,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	ProfitMargin   *float64 `json:"profit_margin,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
}

type MarketPosition struct {
	MarketShare float64 `json:"market_share,omitempty"` // percent
	Rank        int     `json:"rank,omitempty"`         // 1 = sector leader
	Moat        string  `json:"moat,omitempty"`         // strong, moderate, weak
}

type PeerPerf struct {
	YTDReturn  *float64 `json:"ytd_return,omitempty"` // percent
	PeerAvgYTD *float64 `json:"peer_avg_ytd,omitempty"`
	Percentile *float64 `json:"percentile,omitempty"` // 0-100 vs peers
}

type SectorTrends struct {
	Momentum   string `json:"momentum,omitempty"` // strong, moderate, weak, negative
	Outlook    string `json:"outlook,omitempty"`  // bullish, neutral, bearish
	Regulation string `json:"regulation,omitempty"`
}
