package model

import "fmt"

// PlacementResult is the outcome of one packing run.
// Placed is in placement order; the 1-based position in that order is the
// display index ("P1", "P2", ...).
type PlacementResult struct {
	Strategy Strategy `json:"strategy"`
	Step     int      `json:"step"`
	Seed     int64    `json:"seed"`
	Placed   []Panel  `json:"placed"`
	Omitted  []Panel  `json:"omitted"` // Visible panels that did not fit
}

// PlacedArea returns the total area covered by placed panels in square mm.
func (pr PlacementResult) PlacedArea() int {
	var total int
	for _, p := range pr.Placed {
		total += p.Area()
	}
	return total
}

// TotalCost returns the sum of placed panel prices.
func (pr PlacementResult) TotalCost() float64 {
	var total float64
	for _, p := range pr.Placed {
		total += p.Price
	}
	return total
}

// IndexOf returns the 1-based display index of a placed panel, or 0.
func (pr PlacementResult) IndexOf(id string) int {
	for i, p := range pr.Placed {
		if p.ID == id {
			return i + 1
		}
	}
	return 0
}

// DisplayLabel returns "P<n>" for a placed panel, or "" when it was not placed.
func (pr PlacementResult) DisplayLabel(id string) string {
	if idx := pr.IndexOf(id); idx > 0 {
		return fmt.Sprintf("P%d", idx)
	}
	return ""
}

// ForcedOmitted returns forced panels that lost their place to other forced panels.
func (pr PlacementResult) ForcedOmitted() []Panel {
	var out []Panel
	for _, p := range pr.Omitted {
		if p.Forced {
			out = append(out, p)
		}
	}
	return out
}

// OmittedFrom returns the panels of input that are not in placed, keeping input order.
func OmittedFrom(input, placed []Panel) []Panel {
	seen := make(map[string]bool, len(placed))
	for _, p := range placed {
		seen[p.ID] = true
	}
	var out []Panel
	for _, p := range input {
		if !seen[p.ID] {
			out = append(out, p.Unplaced())
		}
	}
	return out
}
