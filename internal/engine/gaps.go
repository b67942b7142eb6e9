package engine

import (
	"fmt"

	"github.com/piwi3910/PatchWall/internal/model"
)

// occupancy is a row-major boolean grid of step-sized wall cells.
type occupancy struct {
	cols, rows int
	cells      []bool
}

func newOccupancy(cols, rows int) *occupancy {
	return &occupancy{cols: cols, rows: rows, cells: make([]bool, cols*rows)}
}

func (g *occupancy) taken(x, y int) bool { return g.cells[y*g.cols+x] }

func (g *occupancy) fill(x0, y0, x1, y1 int) {
	for y := max(y0, 0); y < min(y1, g.rows); y++ {
		for x := max(x0, 0); x < min(x1, g.cols); x++ {
			g.cells[y*g.cols+x] = true
		}
	}
}

// ComputeGaps covers the free wall area with non-overlapping filler panels.
//
// Placed panels are rasterised onto a step grid; every cell a panel touches is
// occupied, so fillers never overlap a panel even when centering left it off
// the grid. Free cells are grown greedily into rectangles, row-major: first
// along the row, then downwards while the full row slice stays free.
//
// Only whole cells are covered. When a wall dimension is not a multiple of
// step the remainder strip along the right or bottom edge gets no filler.
func ComputeGaps(wall model.Wall, placed []model.Panel, step int, unitRate float64) ([]model.Panel, error) {
	if step <= 0 {
		return nil, model.NewConfigurationError("step", fmt.Sprint(step), "must be positive")
	}
	if wall.Width <= 0 || wall.Height <= 0 {
		return nil, model.NewConfigurationError("wall", wall.String(), "width and height must be positive")
	}

	grid := newOccupancy(wall.Width/step, wall.Height/step)
	for _, p := range placed {
		if !p.Placed() {
			continue
		}
		r := p.Rect()
		grid.fill(r.X/step, r.Y/step, ceilDiv(r.Right(), step), ceilDiv(r.Bottom(), step))
	}

	var fillers []model.Panel
	for y := 0; y < grid.rows; y++ {
		for x := 0; x < grid.cols; x++ {
			if grid.taken(x, y) {
				continue
			}
			cw := 1
			for x+cw < grid.cols && !grid.taken(x+cw, y) {
				cw++
			}
			ch := 1
			for y+ch < grid.rows && rowFree(grid, x, x+cw, y+ch) {
				ch++
			}
			grid.fill(x, y, x+cw, y+ch)

			r := model.Rect{X: x * step, Y: y * step, Width: cw * step, Height: ch * step}
			fillers = append(fillers, model.NewFiller(r, unitRate))
		}
	}
	return fillers, nil
}

func rowFree(g *occupancy, x0, x1, y int) bool {
	for x := x0; x < x1; x++ {
		if g.taken(x, y) {
			return false
		}
	}
	return true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
