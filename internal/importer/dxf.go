package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PatchWall/internal/model"
)

// vertex is a drawing coordinate in mm.
type vertex struct {
	X, Y float64
}

// segment is a line between two vertices, used for chaining loose LINE
// entities into closed outlines.
type segment struct {
	start vertex
	end   vertex
}

// chainTolerance is the maximum endpoint distance for two segments to join.
const chainTolerance = 0.5

// ImportDXF reads opening sizes from a DXF drawing. Every closed outline
// (LWPOLYLINE or a loop of LINEs) contributes one panel sized to its bounding
// box, rounded to whole mm. Outlines that are not axis-aligned rectangles are
// imported with a warning.
func ImportDXF(path string, kind model.PanelKind) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]vertex
	var segments []segment
	skipped := 0

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := make([]vertex, 0, len(e.Vertices))
			for _, v := range e.Vertices {
				outline = append(outline, vertex{X: v[0], Y: v[1]})
			}
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: vertex{X: e.Start[0], Y: e.Start[1]},
				end:   vertex{X: e.End[0], Y: e.End[1]},
			})

		default:
			skipped++
		}
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}

	outlines = append(outlines, chainSegments(segments, chainTolerance)...)
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})

	for n, outline := range outlines {
		lo, hi := boundingBox(outline)
		width := int(math.Round(hi.X - lo.X))
		height := int(math.Round(hi.Y - lo.Y))
		rowLabel := fmt.Sprintf("Outline %d", n+1)

		if width <= 0 || height <= 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Skipped degenerate shape (%d x %d mm)", rowLabel, width, height))
			continue
		}
		if !isRectangle(outline, lo, hi) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Not a rectangle, using its %d x %d mm bounding box", rowLabel, width, height))
		}

		prov := model.Provenance{Label: fmt.Sprintf("DXF outline %d", n+1)}
		p := model.NewPanel(kind, width, height, 0, prov)
		if err := p.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rowLabel, err))
			continue
		}
		result.Panels = append(result.Panels, p)
	}

	return result
}

// chainSegments connects individual segments into closed outlines.
// Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) [][]vertex {
	used := make([]bool, len(segs))
	var outlines [][]vertex

	for start := range segs {
		if used[start] {
			continue
		}
		chain := []vertex{segs[start].start, segs[start].end}
		used[start] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}
	return outlines
}

func pointsClose(a, b vertex, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

func boundingBox(o []vertex) (vertex, vertex) {
	lo := vertex{X: math.Inf(1), Y: math.Inf(1)}
	hi := vertex{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range o {
		lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
		hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// isRectangle reports whether every vertex lies on a corner of the bounding box.
func isRectangle(o []vertex, lo, hi vertex) bool {
	for _, v := range o {
		onX := math.Abs(v.X-lo.X) <= chainTolerance || math.Abs(v.X-hi.X) <= chainTolerance
		onY := math.Abs(v.Y-lo.Y) <= chainTolerance || math.Abs(v.Y-hi.Y) <= chainTolerance
		if !onX || !onY {
			return false
		}
	}
	return true
}

// outlineArea computes the absolute polygon area using the shoelace formula.
func outlineArea(o []vertex) float64 {
	var area float64
	for i := range o {
		j := (i + 1) % len(o)
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}
