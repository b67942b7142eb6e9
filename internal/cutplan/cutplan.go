// Package cutplan nests filler panels onto stock boards so they can be cut.
package cutplan

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/piwi3910/PatchWall/internal/model"
)

// Board is the stock sheet filler panels are cut from.
type Board struct {
	Width  int     `json:"width"`  // mm
	Height int     `json:"height"` // mm
	Price  float64 `json:"price"`  // per board
}

// Area returns the board area in square mm.
func (b Board) Area() int {
	return b.Width * b.Height
}

// Settings controls how fillers are nested.
type Settings struct {
	Board         Board `json:"board"`
	Kerf          int   `json:"kerf"` // Blade width in mm
	AllowRotation bool  `json:"allow_rotation"`
	MinOffcut     int   `json:"min_offcut"` // Smallest side of a reusable remnant, mm
}

// DefaultSettings returns a standard 2500 x 1250 board with a 4 mm blade.
func DefaultSettings() Settings {
	return Settings{
		Board:         Board{Width: 2500, Height: 1250},
		Kerf:          4,
		AllowRotation: true,
		MinOffcut:     300,
	}
}

// Validate checks that at least one piece can be cut from a board.
func (s Settings) Validate() error {
	if s.Board.Width <= 0 || s.Board.Height <= 0 {
		return model.NewConfigurationError("cutplan.board", fmt.Sprintf("%d x %d", s.Board.Width, s.Board.Height), "board dimensions must be positive")
	}
	if s.Kerf < 0 {
		return model.NewConfigurationError("cutplan.kerf", fmt.Sprint(s.Kerf), "must not be negative")
	}
	if s.Kerf >= s.Board.Width || s.Kerf >= s.Board.Height {
		return model.NewConfigurationError("cutplan.kerf", fmt.Sprint(s.Kerf), "must be smaller than the board")
	}
	if s.Board.Price < 0 {
		return model.NewConfigurationError("cutplan.board.price", fmt.Sprint(s.Board.Price), "must not be negative")
	}
	return nil
}

// Piece is one rectangle to cut. A filler larger than a board is split into
// several pieces that share its FillerID.
type Piece struct {
	FillerID string `json:"filler_id"`
	Label    string `json:"label"` // "F3", or "F3.2" for the second tile of filler 3
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Area returns the piece area in square mm.
func (p Piece) Area() int {
	return p.Width * p.Height
}

// Cut is a piece positioned on a board.
type Cut struct {
	Piece   Piece `json:"piece"`
	X       int   `json:"x"`
	Y       int   `json:"y"`
	Rotated bool  `json:"rotated"`
}

// Rect returns the footprint of the cut on its board.
func (c Cut) Rect() model.Rect {
	if c.Rotated {
		return model.Rect{X: c.X, Y: c.Y, Width: c.Piece.Height, Height: c.Piece.Width}
	}
	return model.Rect{X: c.X, Y: c.Y, Width: c.Piece.Width, Height: c.Piece.Height}
}

// Sheet is one board with the cuts nested on it.
type Sheet struct {
	ID      string       `json:"id"`
	Board   Board        `json:"board"`
	Cuts    []Cut        `json:"cuts"`
	Offcuts []model.Rect `json:"offcuts"`
}

// UsedArea returns the area covered by cuts in square mm.
func (s Sheet) UsedArea() int {
	var total int
	for _, c := range s.Cuts {
		total += c.Piece.Area()
	}
	return total
}

// Efficiency returns the used share of the board, 0..100.
func (s Sheet) Efficiency() float64 {
	if s.Board.Area() == 0 {
		return 0
	}
	return float64(s.UsedArea()) / float64(s.Board.Area()) * 100
}

// Plan is the result of nesting a set of fillers.
type Plan struct {
	Settings Settings `json:"settings"`
	Sheets   []Sheet  `json:"sheets"`
	Unplaced []Piece  `json:"unplaced"`
}

// BoardCount returns the number of boards to buy.
func (p Plan) BoardCount() int {
	return len(p.Sheets)
}

// TotalCost returns the price of all boards.
func (p Plan) TotalCost() float64 {
	return float64(len(p.Sheets)) * p.Settings.Board.Price
}

// Efficiency returns the used share of all boards, 0..100.
func (p Plan) Efficiency() float64 {
	var used, total int
	for _, s := range p.Sheets {
		used += s.UsedArea()
		total += s.Board.Area()
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// Offcuts returns the reusable remnants of every sheet.
func (p Plan) Offcuts() []model.Rect {
	var all []model.Rect
	for _, s := range p.Sheets {
		all = append(all, s.Offcuts...)
	}
	return all
}

// Build nests fillers onto as few boards as the heuristic manages.
// Pieces are packed largest first; each board tries several rotation
// policies and keeps the one that places the most pieces.
func Build(fillers []model.Panel, settings Settings) (Plan, error) {
	if err := settings.Validate(); err != nil {
		return Plan{}, err
	}

	pieces := Pieces(fillers, settings)
	sort.SliceStable(pieces, func(i, j int) bool {
		return pieces[i].Area() > pieces[j].Area()
	})

	plan := Plan{Settings: settings}
	remaining := pieces
	for len(remaining) > 0 {
		sheet, unplaced := packBestPolicy(settings, remaining)
		if len(sheet.Cuts) == 0 {
			break
		}
		sheet.Offcuts = DetectOffcuts(sheet, settings.Kerf, settings.MinOffcut)
		plan.Sheets = append(plan.Sheets, sheet)
		remaining = unplaced
	}
	plan.Unplaced = remaining
	return plan, nil
}

// rotationPolicy controls how pieces are turned during packing.
type rotationPolicy int

const (
	rotBestFit    rotationPolicy = iota // Compare both orientations, pick the tighter fit
	rotAllNormal                        // Normal orientation, rotated only as a fallback
	rotAllRotated                       // Rotated orientation, normal only as a fallback
)

func packBestPolicy(settings Settings, pieces []Piece) (Sheet, []Piece) {
	policies := []rotationPolicy{rotAllNormal}
	if settings.AllowRotation {
		policies = []rotationPolicy{rotBestFit, rotAllNormal, rotAllRotated}
	}

	var best Sheet
	var bestUnplaced []Piece
	bestPlaced := -1
	for _, policy := range policies {
		sheet, unplaced := packSheet(settings, pieces, policy)
		placed := len(sheet.Cuts)
		if placed > bestPlaced || (placed == bestPlaced && placed > 0 && sheet.Efficiency() > best.Efficiency()) {
			best, bestUnplaced, bestPlaced = sheet, unplaced, placed
		}
	}
	best.ID = uuid.New().String()[:8]
	return best, bestUnplaced
}

func packSheet(settings Settings, pieces []Piece, policy rotationPolicy) (Sheet, []Piece) {
	sheet := Sheet{Board: settings.Board}
	packer := newBoardPacker(settings.Board.Width, settings.Board.Height, settings.Kerf)
	canRotate := settings.AllowRotation
	var unplaced []Piece

	place := func(p Piece, rotated bool) bool {
		w, h := p.Width, p.Height
		if rotated {
			w, h = h, w
		}
		ok, x, y := packer.insert(w, h)
		if ok {
			sheet.Cuts = append(sheet.Cuts, Cut{Piece: p, X: x, Y: y, Rotated: rotated})
		}
		return ok
	}

	for _, p := range pieces {
		square := p.Width == p.Height
		placed := false

		switch policy {
		case rotAllRotated:
			if canRotate && !square {
				placed = place(p, true)
			}
			if !placed {
				placed = place(p, false)
			}
		case rotBestFit:
			if canRotate && !square {
				normalFit := packer.bestFit(p.Width, p.Height)
				rotatedFit := packer.bestFit(p.Height, p.Width)
				if rotatedFit >= 0 && (normalFit < 0 || rotatedFit < normalFit) {
					placed = place(p, true)
				}
			}
			if !placed {
				placed = place(p, false)
			}
			if !placed && canRotate && !square {
				placed = place(p, true)
			}
		default:
			placed = place(p, false)
			if !placed && canRotate && !square {
				placed = place(p, true)
			}
		}

		if !placed {
			unplaced = append(unplaced, p)
		}
	}
	return sheet, unplaced
}
