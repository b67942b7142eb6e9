package cutplan

import "github.com/piwi3910/PatchWall/internal/model"

// boardPacker implements maximal-rectangles packing on a single board.
// It keeps a list of free rectangles and splits every one the placed piece touches.
type boardPacker struct {
	freeRects []model.Rect
	kerf      int
}

func newBoardPacker(width, height, kerf int) *boardPacker {
	return &boardPacker{
		freeRects: []model.Rect{{Width: width, Height: height}},
		kerf:      kerf,
	}
}

// insert places a w x h piece using Best Area Fit. The kerf is added to the
// right and bottom of every piece.
func (bp *boardPacker) insert(w, h int) (bool, int, int) {
	bestIdx := -1
	bestAreaFit := -1
	wk := w + bp.kerf
	hk := h + bp.kerf

	for i, r := range bp.freeRects {
		if fits(wk, hk, r) {
			areaFit := r.Area() - w*h
			if bestIdx < 0 || areaFit < bestAreaFit {
				bestIdx = i
				bestAreaFit = areaFit
			}
		}
	}

	if bestIdx < 0 {
		return false, 0, 0
	}

	chosen := bp.freeRects[bestIdx]
	bp.splitAroundPlacement(model.Rect{X: chosen.X, Y: chosen.Y, Width: wk, Height: hk})
	return true, chosen.X, chosen.Y
}

func fits(wk, hk int, r model.Rect) bool {
	return wk <= r.Width && hk <= r.Height
}

// bestFit returns the area waste for a w x h piece without placing it, or -1.
func (bp *boardPacker) bestFit(w, h int) int {
	wk := w + bp.kerf
	hk := h + bp.kerf
	best := -1
	for _, r := range bp.freeRects {
		if fits(wk, hk, r) {
			areaFit := r.Area() - w*h
			if best < 0 || areaFit < best {
				best = areaFit
			}
		}
	}
	return best
}

func (bp *boardPacker) splitAroundPlacement(placed model.Rect) {
	var next []model.Rect

	for _, r := range bp.freeRects {
		if !model.Overlaps(r, placed) {
			next = append(next, r)
			continue
		}
		if placed.X > r.X {
			next = append(next, model.Rect{X: r.X, Y: r.Y, Width: placed.X - r.X, Height: r.Height})
		}
		if placed.Right() < r.Right() {
			next = append(next, model.Rect{X: placed.Right(), Y: r.Y, Width: r.Right() - placed.Right(), Height: r.Height})
		}
		if placed.Y > r.Y {
			next = append(next, model.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: placed.Y - r.Y})
		}
		if placed.Bottom() < r.Bottom() {
			next = append(next, model.Rect{X: r.X, Y: placed.Bottom(), Width: r.Width, Height: r.Bottom() - placed.Bottom()})
		}
	}

	bp.freeRects = pruneContained(next)
}

// pruneContained removes any rect that lies inside another. Of two identical
// rects only the first is kept.
func pruneContained(rects []model.Rect) []model.Rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]model.Rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !b.Contains(a) {
				continue
			}
			if a != b || j < i {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}
