package cutplan

import (
	"fmt"

	"github.com/piwi3910/PatchWall/internal/model"
)

// Pieces turns fillers into cuttable pieces. Fillers that fit a board become
// one piece each; larger fillers are tiled in a grid of board-sized pieces.
// Unplaced or non-filler panels are skipped.
func Pieces(fillers []model.Panel, settings Settings) []Piece {
	maxW := settings.Board.Width - settings.Kerf
	maxH := settings.Board.Height - settings.Kerf

	var pieces []Piece
	n := 0
	for _, f := range fillers {
		if f.Kind != model.KindFiller {
			continue
		}
		n++
		label := fmt.Sprintf("F%d", n)

		fitsNormal := f.Width <= maxW && f.Height <= maxH
		fitsRotated := settings.AllowRotation && f.Height <= maxW && f.Width <= maxH
		if fitsNormal || fitsRotated {
			pieces = append(pieces, Piece{FillerID: f.ID, Label: label, Width: f.Width, Height: f.Height})
			continue
		}

		tw, th := maxW, maxH
		if settings.AllowRotation && tileCount(f.Width, f.Height, maxH, maxW) < tileCount(f.Width, f.Height, maxW, maxH) {
			tw, th = maxH, maxW
		}
		pieces = append(pieces, tile(f, label, tw, th)...)
	}
	return pieces
}

func tileCount(w, h, tw, th int) int {
	return ceilDiv(w, tw) * ceilDiv(h, th)
}

func tile(f model.Panel, label string, tw, th int) []Piece {
	var out []Piece
	k := 0
	for y := 0; y < f.Height; y += th {
		for x := 0; x < f.Width; x += tw {
			k++
			out = append(out, Piece{
				FillerID: f.ID,
				Label:    fmt.Sprintf("%s.%d", label, k),
				Width:    min(tw, f.Width-x),
				Height:   min(th, f.Height-y),
			})
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
