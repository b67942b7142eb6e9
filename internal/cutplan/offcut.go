package cutplan

import (
	"sort"

	"github.com/piwi3910/PatchWall/internal/model"
)

// DetectOffcuts finds the reusable remnants of a sheet: the strip right of
// all cuts and the strip below them. Remnants with a side shorter than
// minSide are waste and left out. Results are ordered largest first.
func DetectOffcuts(sheet Sheet, kerf, minSide int) []model.Rect {
	boardW, boardH := sheet.Board.Width, sheet.Board.Height
	if len(sheet.Cuts) == 0 {
		return []model.Rect{{Width: boardW, Height: boardH}}
	}

	var maxRight, maxBottom int
	for _, c := range sheet.Cuts {
		r := c.Rect()
		maxRight = max(maxRight, r.Right()+kerf)
		maxBottom = max(maxBottom, r.Bottom()+kerf)
	}
	maxRight = min(maxRight, boardW)
	maxBottom = min(maxBottom, boardH)

	var offcuts []model.Rect
	right := model.Rect{X: maxRight, Y: 0, Width: boardW - maxRight, Height: boardH}
	if right.Width >= minSide && right.Height >= minSide && right.Width > 0 {
		offcuts = append(offcuts, right)
	}
	bottom := model.Rect{X: 0, Y: maxBottom, Width: maxRight, Height: boardH - maxBottom}
	if bottom.Width >= minSide && bottom.Height >= minSide && bottom.Height > 0 {
		offcuts = append(offcuts, bottom)
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}
