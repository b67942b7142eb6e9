package model

// Inventory holds every panel known to a session.
//
// Discovered panels come from a search or import and are replaced wholesale
// each time. UserAdded panels are the user's own stock and are only ever
// appended to or explicitly removed.
type Inventory struct {
	UserAdded  []Panel `json:"user_added"`
	Discovered []Panel `json:"discovered"`
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		UserAdded:  []Panel{},
		Discovered: []Panel{},
	}
}

// ReplaceDiscovered swaps out all discovered panels.
func (inv *Inventory) ReplaceDiscovered(panels []Panel) {
	inv.Discovered = append([]Panel(nil), panels...)
}

// AddUserStock appends a panel to the user's own stock.
func (inv *Inventory) AddUserStock(p Panel) {
	inv.UserAdded = append(inv.UserAdded, p)
}

// All returns a snapshot of every panel, user stock first.
func (inv *Inventory) All() []Panel {
	out := make([]Panel, 0, len(inv.UserAdded)+len(inv.Discovered))
	out = append(out, inv.UserAdded...)
	out = append(out, inv.Discovered...)
	for i := range out {
		out[i].Position = nil
	}
	return out
}

// Visible returns a snapshot of the panels that take part in packing.
func (inv *Inventory) Visible() []Panel {
	var out []Panel
	for _, p := range inv.All() {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// Hidden returns a snapshot of the panels excluded from packing.
func (inv *Inventory) Hidden() []Panel {
	var out []Panel
	for _, p := range inv.All() {
		if !p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the total number of panels.
func (inv *Inventory) Len() int {
	return len(inv.UserAdded) + len(inv.Discovered)
}

// FindByID returns a pointer to the panel with the given ID, or nil.
func (inv *Inventory) FindByID(id string) *Panel {
	for i := range inv.UserAdded {
		if inv.UserAdded[i].ID == id {
			return &inv.UserAdded[i]
		}
	}
	for i := range inv.Discovered {
		if inv.Discovered[i].ID == id {
			return &inv.Discovered[i]
		}
	}
	return nil
}

// SetVisible includes or excludes a panel from future layout runs.
func (inv *Inventory) SetVisible(id string, visible bool) error {
	p := inv.FindByID(id)
	if p == nil {
		return ErrPanelNotFound
	}
	p.Visible = visible
	return nil
}

// SetForced toggles placement priority for a panel.
func (inv *Inventory) SetForced(id string, forced bool) error {
	p := inv.FindByID(id)
	if p == nil {
		return ErrPanelNotFound
	}
	p.Forced = forced
	return nil
}

// Remove deletes a panel permanently.
func (inv *Inventory) Remove(id string) error {
	for i := range inv.UserAdded {
		if inv.UserAdded[i].ID == id {
			inv.UserAdded = append(inv.UserAdded[:i], inv.UserAdded[i+1:]...)
			return nil
		}
	}
	for i := range inv.Discovered {
		if inv.Discovered[i].ID == id {
			inv.Discovered = append(inv.Discovered[:i], inv.Discovered[i+1:]...)
			return nil
		}
	}
	return ErrPanelNotFound
}

// MinDiscoveredPanels is the smallest search result that is used as is.
// Smaller results are topped up with FallbackPanels.
const MinDiscoveredPanels = 3

// FallbackPanels returns the reserve stock offered when a search finds too
// little. Each reserve unit is repeated five times.
func FallbackPanels(useReuse, useNew bool) []Panel {
	reserve := []struct {
		w, h  int
		kind  PanelKind
		price float64
	}{
		{1200, 1400, KindSourcedUsed, 85.0},
		{2000, 2100, KindSourcedNew, 350.0},
		{800, 600, KindSourcedUsed, 40.0},
	}

	var out []Panel
	for i := 0; i < 5; i++ {
		for _, r := range reserve {
			if r.kind == KindSourcedNew && !useNew {
				continue
			}
			if r.kind == KindSourcedUsed && !useReuse {
				continue
			}
			out = append(out, NewPanel(r.kind, r.w, r.h, r.price,
				Provenance{Label: "Emergency reserve", Link: "https://ebay.de"}))
		}
	}
	return out
}

// WithFallback tops up a short search result with FallbackPanels.
func WithFallback(found []Panel, useReuse, useNew bool) []Panel {
	if len(found) >= MinDiscoveredPanels {
		return found
	}
	return append(found, FallbackPanels(useReuse, useNew)...)
}
