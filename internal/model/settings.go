package model

import "strings"

// Strategy selects the placement algorithm used by the packing engine.
type Strategy string

const (
	StrategyShelf    Strategy = "shelf"    // Rows, tallest panels first
	StrategyColumn   Strategy = "column"   // Columns, widest panels first
	StrategyMondrian Strategy = "mondrian" // Greedy grid scan, largest area first
	StrategyCluster  Strategy = "cluster"  // Forced-first randomised grid scan, centered
)

// Strategies lists every strategy in presentation order.
func Strategies() []Strategy {
	return []Strategy{StrategyCluster, StrategyMondrian, StrategyShelf, StrategyColumn}
}

// ParseStrategy converts a strategy name to a Strategy. Names are case-insensitive.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shelf", "rows":
		return StrategyShelf, true
	case "column", "columns":
		return StrategyColumn, true
	case "mondrian", "grid":
		return StrategyMondrian, true
	case "cluster", "mondrian-cluster", "":
		return StrategyCluster, true
	default:
		return "", false
	}
}

// Label returns a human readable name.
func (s Strategy) Label() string {
	switch s {
	case StrategyShelf:
		return "Shelf"
	case StrategyColumn:
		return "Column"
	case StrategyMondrian:
		return "Mondrian"
	case StrategyCluster:
		return "Mondrian-Cluster"
	default:
		return string(s)
	}
}

// Randomized reports whether the strategy depends on the run seed.
func (s Strategy) Randomized() bool {
	return s == StrategyCluster
}

// LayoutSettings holds the per-session layout configuration.
type LayoutSettings struct {
	Strategy   Strategy `json:"strategy"`
	Seed       int64    `json:"seed"`        // 0 draws a fresh seed on every run
	FillerRate float64  `json:"filler_rate"` // Price per square metre of filler panel, 0 = unpriced
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() LayoutSettings {
	return LayoutSettings{
		Strategy:   StrategyCluster,
		Seed:       0,
		FillerRate: 0,
	}
}
