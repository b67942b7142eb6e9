package model

import "fmt"

// Point is a position in mm measured from the top-left corner of the wall.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an axis-aligned rectangle in mm.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Area returns the area in square mm.
func (r Rect) Area() int { return r.Width * r.Height }

// Translate returns a copy moved by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Contains reports whether inner lies entirely within r.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X && inner.Y >= r.Y &&
		inner.Right() <= r.Right() && inner.Bottom() <= r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.Width, r.Height, r.X, r.Y)
}

// Overlaps returns true if two rectangles share interior area.
// Rectangles that only touch along an edge do not overlap.
func Overlaps(a, b Rect) bool {
	return !(a.Right() <= b.X || b.Right() <= a.X ||
		a.Bottom() <= b.Y || b.Bottom() <= a.Y)
}
