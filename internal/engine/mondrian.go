package engine

import "github.com/piwi3910/PatchWall/internal/model"

// scanPlace places panels in order at the first free step-aligned origin,
// scanning rows top to bottom and each row left to right.
func scanPlace(wall model.Wall, panels []model.Panel, step int) []model.Panel {
	var placed []model.Panel
	var occupied []model.Rect

	for _, p := range panels {
		x, y, ok := findSlot(wall, occupied, p.Width, p.Height, step)
		if !ok {
			continue
		}
		q := p.At(x, y)
		placed = append(placed, q)
		occupied = append(occupied, q.Rect())
	}
	return placed
}

func findSlot(wall model.Wall, occupied []model.Rect, w, h, step int) (int, int, bool) {
	for y := 0; y <= wall.Height-h; y += step {
		for x := 0; x <= wall.Width-w; x += step {
			candidate := model.Rect{X: x, Y: y, Width: w, Height: h}
			if !collides(candidate, occupied) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func collides(r model.Rect, occupied []model.Rect) bool {
	for _, o := range occupied {
		if model.Overlaps(r, o) {
			return true
		}
	}
	return false
}

// centerCluster moves the placed group so its bounding box sits in the middle
// of the wall. The scan starts at the origin, so the box always begins at (0,0).
func centerCluster(wall model.Wall, placed []model.Panel) []model.Panel {
	if len(placed) == 0 {
		return placed
	}
	maxX, maxY := 0, 0
	for _, p := range placed {
		r := p.Rect()
		maxX = max(maxX, r.Right())
		maxY = max(maxY, r.Bottom())
	}
	dx := (wall.Width - maxX) / 2
	dy := (wall.Height - maxY) / 2

	out := make([]model.Panel, len(placed))
	for i, p := range placed {
		r := p.Rect().Translate(dx, dy)
		out[i] = p.At(r.X, r.Y)
	}
	return out
}
