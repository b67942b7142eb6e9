package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/PatchWall/internal/layout"
	"github.com/piwi3910/PatchWall/internal/model"
)

// DXF layer names written by ExportDXF.
const (
	LayerWall    = "WALL"
	LayerPanels  = "PANELS"
	LayerFillers = "FILLERS"
	LayerLabels  = "LABELS"
)

// dxfTextHeight is the label height in drawing units (mm).
const dxfTextHeight = 60.0

// ExportDXF writes the wall outline, every placed panel and every filler as
// rectangles on separate layers, in mm with the origin at the bottom-left
// corner of the wall.
func ExportDXF(path string, res *layout.Result) error {
	if res == nil || (len(res.Placed) == 0 && len(res.Fillers) == 0) {
		return ErrNothingToExport
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerWall, color.White},
		{LayerPanels, color.Blue},
		{LayerFillers, color.Yellow},
		{LayerLabels, color.Green},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	w := dxfWriter{d: d, wallHeight: res.Wall.Height}
	w.rect(LayerWall, res.Wall.Bounds())
	for _, p := range res.Placed {
		w.rect(LayerPanels, p.Rect())
		w.label(p.Rect(), res.DisplayLabel(p.ID))
	}
	for i, f := range res.Fillers {
		w.rect(LayerFillers, f.Rect())
		w.label(f.Rect(), FillerLabel(i))
	}
	if w.err != nil {
		return w.err
	}

	return d.SaveAs(path)
}

// dxfWriter converts wall coordinates (origin top-left, y down) to drawing
// coordinates (origin bottom-left, y up) and keeps the first error.
type dxfWriter struct {
	d          *drawing.Drawing
	wallHeight int
	err        error
}

func (w *dxfWriter) flip(y int) float64 {
	return float64(w.wallHeight - y)
}

func (w *dxfWriter) rect(layer string, r model.Rect) {
	if w.err != nil {
		return
	}
	if w.err = w.d.ChangeLayer(layer); w.err != nil {
		return
	}
	x0, x1 := float64(r.X), float64(r.Right())
	y0, y1 := w.flip(r.Y), w.flip(r.Bottom())
	corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := w.d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			w.err = err
			return
		}
	}
}

func (w *dxfWriter) label(r model.Rect, text string) {
	if w.err != nil || text == "" {
		return
	}
	if w.err = w.d.ChangeLayer(LayerLabels); w.err != nil {
		return
	}
	x := float64(r.X) + dxfTextHeight/2
	y := w.flip(r.Y) - 1.5*dxfTextHeight
	if _, err := w.d.Text(fmt.Sprintf("%s %dx%d", text, r.Width, r.Height), x, y, 0, dxfTextHeight); err != nil {
		w.err = err
	}
}
