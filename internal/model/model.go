package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PanelKind classifies where a panel comes from.
type PanelKind int

const (
	KindSourcedUsed PanelKind = iota // Salvaged unit found on a marketplace
	KindSourcedNew                   // New unit offered by a retailer
	KindUserStock                    // Unit the user already owns
	KindFiller                       // Custom-cut panel covering leftover wall area
)

func (k PanelKind) String() string {
	switch k {
	case KindSourcedNew:
		return "new"
	case KindUserStock:
		return "stock"
	case KindFiller:
		return "filler"
	default:
		return "used"
	}
}

// MarshalText encodes the kind by name so stored inventories stay readable.
func (k PanelKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *PanelKind) UnmarshalText(text []byte) error {
	parsed, ok := ParsePanelKind(string(text))
	if !ok {
		return fmt.Errorf("unknown panel kind %q", string(text))
	}
	*k = parsed
	return nil
}

// ParsePanelKind converts a kind name or common alias to a PanelKind.
func ParsePanelKind(s string) (PanelKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "used", "re-use", "reuse", "salvaged":
		return KindSourcedUsed, true
	case "new":
		return KindSourcedNew, true
	case "stock", "own", "user":
		return KindUserStock, true
	case "filler", "fill":
		return KindFiller, true
	default:
		return KindSourcedUsed, false
	}
}

// Panel size limits for sourced and user panels, in mm.
const (
	MinPanelSize = 300
	MaxPanelSize = 12000
)

// Provenance records where a panel came from. It is opaque to the layout engine.
type Provenance struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// Panel is one physical unit: a window, a user stock item or a filler panel.
type Panel struct {
	ID         string     `json:"id"`
	Width      int        `json:"width"`  // mm
	Height     int        `json:"height"` // mm
	Kind       PanelKind  `json:"kind"`
	Price      float64    `json:"price"`
	Provenance Provenance `json:"provenance"`
	Visible    bool       `json:"visible"`
	Forced     bool       `json:"forced"`
	Position   *Point     `json:"position,omitempty"` // nil until placed by a layout run
}

// NewPanel creates a visible, non-forced panel with a fresh ID.
// User stock panels are forced by default.
func NewPanel(kind PanelKind, w, h int, price float64, prov Provenance) Panel {
	return Panel{
		ID:         uuid.New().String()[:8],
		Width:      w,
		Height:     h,
		Kind:       kind,
		Price:      price,
		Provenance: prov,
		Visible:    true,
		Forced:     kind == KindUserStock,
	}
}

// NewUserStock creates a forced, zero-priced panel the user already owns.
func NewUserStock(w, h int) Panel {
	return NewPanel(KindUserStock, w, h, 0, Provenance{Label: "My stock"})
}

// NewFiller creates a filler panel covering r, priced at unitRate per square metre.
func NewFiller(r Rect, unitRate float64) Panel {
	p := NewPanel(KindFiller, r.Width, r.Height, 0, Provenance{Label: "Sheet material"})
	p.Price = p.AreaM2() * unitRate
	p.Position = &Point{X: r.X, Y: r.Y}
	return p
}

// Area returns the panel area in square mm.
func (p Panel) Area() int {
	return p.Width * p.Height
}

// AreaM2 returns the panel area in square metres.
func (p Panel) AreaM2() float64 {
	return float64(p.Area()) / 1e6
}

// Placed reports whether the panel carries a position.
func (p Panel) Placed() bool {
	return p.Position != nil
}

// Rect returns the panel footprint. Unplaced panels are reported at the origin.
func (p Panel) Rect() Rect {
	r := Rect{Width: p.Width, Height: p.Height}
	if p.Position != nil {
		r.X, r.Y = p.Position.X, p.Position.Y
	}
	return r
}

// At returns a copy of the panel positioned at x, y.
func (p Panel) At(x, y int) Panel {
	p.Position = &Point{X: x, Y: y}
	return p
}

// Unplaced returns a copy of the panel without a position.
func (p Panel) Unplaced() Panel {
	p.Position = nil
	return p
}

// Dimensions returns the "W x H" label used in tables and drawings.
func (p Panel) Dimensions() string {
	return fmt.Sprintf("%d x %d", p.Width, p.Height)
}

// Validate checks the size limits for the panel's kind.
func (p Panel) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return NewConfigurationError("panel "+p.ID, p.Dimensions(), "width and height must be positive")
	}
	if p.Kind == KindFiller {
		return nil
	}
	if p.Width < MinPanelSize || p.Width > MaxPanelSize || p.Height < MinPanelSize || p.Height > MaxPanelSize {
		return NewConfigurationError("panel "+p.ID, p.Dimensions(),
			fmt.Sprintf("dimensions must be within [%d, %d] mm", MinPanelSize, MaxPanelSize))
	}
	if p.Price < 0 {
		return NewConfigurationError("panel "+p.ID, fmt.Sprintf("%.2f", p.Price), "price must not be negative")
	}
	return nil
}
