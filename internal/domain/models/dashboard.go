package models

import "time"

// Dashboard is the payload consumed by the chart renderer.
type Dashboard struct {
	Timeframes   []int             `json:"timeframes"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Rows         []MergedRow       `json:"rows"`
	Summary      *Summary          `json:"summary,omitempty"`
	SourceErrors map[string]string `json:"sourceErrors,omitempty"`
}

// Summary holds the headline numbers shown on the stat cards.
type Summary struct {
	Date               string            `json:"date"`
	LatestPrice        *float64          `json:"latestPrice"`
	LatestOpenInterest *float64          `json:"latestOpenInterest"`
	Annualized         []AnnualizedValue `json:"annualized"`
	GeneratedAt        time.Time         `json:"generatedAt"`
}

type AnnualizedValue struct {
	Timeframe int     `json:"timeframe"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
}
