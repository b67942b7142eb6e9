package layout

import "github.com/piwi3910/PatchWall/internal/model"

// Metrics are derived from a single run and never stored.
type Metrics struct {
	TotalCost  float64 `json:"total_cost"`  // Placed panels only
	FillerCost float64 `json:"filler_cost"` // Zero unless a filler rate is configured
	WallArea   int     `json:"wall_area"`   // mm²
	PlacedArea int     `json:"placed_area"` // mm²
	FillerArea int     `json:"filler_area"` // mm²
	FillRatio  float64 `json:"fill_ratio"`  // PlacedArea / WallArea
}

// WallAreaM2 returns the wall area in square metres.
func (m Metrics) WallAreaM2() float64 { return float64(m.WallArea) / 1e6 }

// PlacedAreaM2 returns the placed panel area in square metres.
func (m Metrics) PlacedAreaM2() float64 { return float64(m.PlacedArea) / 1e6 }

// FillerAreaM2 returns the filler area in square metres.
func (m Metrics) FillerAreaM2() float64 { return float64(m.FillerArea) / 1e6 }

// FillPercent returns FillRatio as a percentage.
func (m Metrics) FillPercent() float64 { return m.FillRatio * 100 }

func computeMetrics(wall model.Wall, placed, fillers []model.Panel) Metrics {
	m := Metrics{WallArea: wall.Area()}
	for _, p := range placed {
		m.TotalCost += p.Price
		m.PlacedArea += p.Area()
	}
	for _, f := range fillers {
		m.FillerCost += f.Price
		m.FillerArea += f.Area()
	}
	if m.WallArea > 0 {
		m.FillRatio = float64(m.PlacedArea) / float64(m.WallArea)
	}
	return m
}

// Result is everything the presentation layer needs for one run.
type Result struct {
	Wall        model.Wall               `json:"wall"`
	Strategy    model.Strategy           `json:"strategy"`
	Step        int                      `json:"step"`
	Seed        int64                    `json:"seed"`
	Placed      []model.Panel            `json:"placed"`
	Omitted     []model.Panel            `json:"omitted"`
	Hidden      []model.Panel            `json:"hidden"`
	Fillers     []model.Panel            `json:"fillers"`
	Inventory   []model.Panel            `json:"-"` // Snapshot in procurement matrix order
	Metrics     Metrics                  `json:"metrics"`
	Procurement model.ProcurementSummary `json:"procurement"`
}

// Placement returns the packing part of the result.
func (r *Result) Placement() model.PlacementResult {
	return model.PlacementResult{
		Strategy: r.Strategy,
		Step:     r.Step,
		Seed:     r.Seed,
		Placed:   r.Placed,
		Omitted:  r.Omitted,
	}
}

// ForcedOmitted returns forced panels that did not get a place.
func (r *Result) ForcedOmitted() []model.Panel {
	return r.Placement().ForcedOmitted()
}

// DisplayLabel returns "P<n>" for a placed panel, or "".
func (r *Result) DisplayLabel(id string) string {
	return r.Placement().DisplayLabel(id)
}

// Status is the per-panel outcome shown in the procurement matrix.
type Status int

const (
	StatusUnknown Status = iota
	StatusPlaced
	StatusOmitted // Visible but did not fit
	StatusHidden
	StatusFiller
)

func (s Status) String() string {
	switch s {
	case StatusPlaced:
		return "placed"
	case StatusOmitted:
		return "doesn't fit"
	case StatusHidden:
		return "hidden"
	case StatusFiller:
		return "needed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusPlaced, StatusOmitted, StatusHidden, StatusFiller} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	*s = StatusUnknown
	return nil
}

// StatusOf reports what happened to the panel with the given ID in this run.
func (r *Result) StatusOf(id string) Status {
	for _, p := range r.Placed {
		if p.ID == id {
			return StatusPlaced
		}
	}
	for _, p := range r.Omitted {
		if p.ID == id {
			return StatusOmitted
		}
	}
	for _, p := range r.Hidden {
		if p.ID == id {
			return StatusHidden
		}
	}
	for _, f := range r.Fillers {
		if f.ID == id {
			return StatusFiller
		}
	}
	return StatusUnknown
}

// Row is one line of the procurement matrix.
type Row struct {
	Panel  model.Panel `json:"panel"`
	Status Status      `json:"status"`
	Label  string      `json:"label"` // "P<n>" for placed panels, "Gap" for fillers
}

// Rows returns the procurement matrix: every inventory panel in inventory
// order (user stock first) followed by the fillers. Placed rows carry their
// position.
func (r *Result) Rows() []Row {
	placed := make(map[string]model.Panel, len(r.Placed))
	for _, p := range r.Placed {
		placed[p.ID] = p
	}

	rows := make([]Row, 0, len(r.Inventory)+len(r.Fillers))
	for _, p := range r.Inventory {
		row := Row{Panel: p, Status: r.StatusOf(p.ID)}
		if q, ok := placed[p.ID]; ok {
			row.Panel = q
			row.Label = r.DisplayLabel(p.ID)
		}
		rows = append(rows, row)
	}
	for _, f := range r.Fillers {
		rows = append(rows, Row{Panel: f, Status: StatusFiller, Label: "Gap"})
	}
	return rows
}
