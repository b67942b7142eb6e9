package model

// KindSummary aggregates the panels of one kind that must be procured.
type KindSummary struct {
	Kind   PanelKind `json:"kind"`
	Count  int       `json:"count"`
	AreaM2 float64   `json:"area_m2"`
	Cost   float64   `json:"cost"`
}

// ProcurementSummary totals what has to be bought or cut for a layout.
type ProcurementSummary struct {
	Lines       []KindSummary `json:"lines"`
	TotalCount  int           `json:"total_count"`
	TotalAreaM2 float64       `json:"total_area_m2"`
	TotalCost   float64       `json:"total_cost"`
}

// CalculateProcurement groups placed panels and fillers by kind.
// Lines are ordered by kind; kinds with no panels are left out.
func CalculateProcurement(placed, fillers []Panel) ProcurementSummary {
	kinds := []PanelKind{KindUserStock, KindSourcedUsed, KindSourcedNew, KindFiller}
	byKind := make(map[PanelKind]*KindSummary, len(kinds))
	for _, k := range kinds {
		byKind[k] = &KindSummary{Kind: k}
	}

	add := func(p Panel) {
		line := byKind[p.Kind]
		line.Count++
		line.AreaM2 += p.AreaM2()
		line.Cost += p.Price
	}
	for _, p := range placed {
		add(p)
	}
	for _, f := range fillers {
		add(f)
	}

	var summary ProcurementSummary
	for _, k := range kinds {
		line := byKind[k]
		if line.Count == 0 {
			continue
		}
		summary.Lines = append(summary.Lines, *line)
		summary.TotalCount += line.Count
		summary.TotalAreaM2 += line.AreaM2
		summary.TotalCost += line.Cost
	}
	return summary
}
