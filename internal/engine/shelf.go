package engine

import "github.com/piwi3910/PatchWall/internal/model"

// packShelf fills the wall row by row, tallest panels first.
// A row is closed as soon as the next panel does not fit its remaining width.
func packShelf(wall model.Wall, panels []model.Panel) []model.Panel {
	var placed []model.Panel
	x, y, shelfHeight := 0, 0, 0

	for _, p := range orderForced(panels, byHeight) {
		if p.Width > wall.Width {
			continue
		}
		if x+p.Width > wall.Width {
			y += shelfHeight
			x = 0
			shelfHeight = 0
		}
		if y+p.Height > wall.Height {
			continue
		}
		placed = append(placed, p.At(x, y))
		x += p.Width
		shelfHeight = max(shelfHeight, p.Height)
	}
	return placed
}

// packColumn is packShelf with the axes swapped: widest panels first,
// filling columns top to bottom.
func packColumn(wall model.Wall, panels []model.Panel) []model.Panel {
	var placed []model.Panel
	x, y, columnWidth := 0, 0, 0

	for _, p := range orderForced(panels, byWidth) {
		if p.Height > wall.Height {
			continue
		}
		if y+p.Height > wall.Height {
			x += columnWidth
			y = 0
			columnWidth = 0
		}
		if x+p.Width > wall.Width {
			continue
		}
		placed = append(placed, p.At(x, y))
		y += p.Height
		columnWidth = max(columnWidth, p.Width)
	}
	return placed
}
