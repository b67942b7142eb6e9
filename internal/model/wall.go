package model

import "fmt"

// Wall opening limits, in mm.
const (
	MinWallSize = 1000
	MaxWallSize = 12000
)

// Grid steps used for placement search and gap rasterisation.
const (
	FineStep            = 50
	CoarseStep          = 100
	CoarseStepThreshold = 6000 // walls wider than this use CoarseStep
)

// Wall is the rectangular opening to be filled.
type Wall struct {
	Width  int `json:"width"`  // mm
	Height int `json:"height"` // mm
}

// Area returns the wall area in square mm.
func (w Wall) Area() int {
	return w.Width * w.Height
}

// AreaM2 returns the wall area in square metres.
func (w Wall) AreaM2() float64 {
	return float64(w.Area()) / 1e6
}

// Bounds returns the wall as a rectangle anchored at the origin.
func (w Wall) Bounds() Rect {
	return Rect{Width: w.Width, Height: w.Height}
}

// Step returns the grid step for this wall.
func (w Wall) Step() int {
	return GridStep(w.Width)
}

// GridStep returns the scan resolution for a wall of the given width.
// Wide walls use a coarser grid to bound the number of candidate positions.
func GridStep(wallWidth int) int {
	if wallWidth <= CoarseStepThreshold {
		return FineStep
	}
	return CoarseStep
}

// Validate checks that both dimensions lie within the supported range.
func (w Wall) Validate() error {
	if w.Width < MinWallSize || w.Width > MaxWallSize {
		return NewConfigurationError("wall.width", fmt.Sprint(w.Width),
			fmt.Sprintf("must be within [%d, %d] mm", MinWallSize, MaxWallSize))
	}
	if w.Height < MinWallSize || w.Height > MaxWallSize {
		return NewConfigurationError("wall.height", fmt.Sprint(w.Height),
			fmt.Sprintf("must be within [%d, %d] mm", MinWallSize, MaxWallSize))
	}
	return nil
}

func (w Wall) String() string {
	return fmt.Sprintf("%d x %d mm", w.Width, w.Height)
}
