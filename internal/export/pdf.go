// Package export writes layout results to PDF, label sheets, Excel and DXF.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/PatchWall/internal/cutplan"
	"github.com/piwi3910/PatchWall/internal/layout"
	"github.com/piwi3910/PatchWall/internal/model"
)

// ErrNothingToExport is returned when a result has no panels and no fillers.
var ErrNothingToExport = errors.New("nothing to export")

// rgb is a fill colour.
type rgb struct {
	R, G, B int
}

// kindColors gives each panel kind a distinct fill in drawings.
var kindColors = map[model.PanelKind]rgb{
	model.KindUserStock:   {R: 76, G: 175, B: 80},  // green
	model.KindSourcedUsed: {R: 33, G: 150, B: 243}, // blue
	model.KindSourcedNew:  {R: 255, G: 152, B: 0},  // orange
	model.KindFiller:      {R: 224, G: 224, B: 224},
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// FillerLabel returns the short name used for the i-th filler (0-based) in
// drawings, labels and the cut plan.
func FillerLabel(i int) string {
	return fmt.Sprintf("F%d", i+1)
}

// ExportPDF writes a layout report: the wall drawing, the procurement matrix
// with metrics, and one page per board of the cut plan when plan is non-nil.
func ExportPDF(path string, res *layout.Result, plan *cutplan.Plan) error {
	if res == nil || (len(res.Placed) == 0 && len(res.Fillers) == 0) {
		return ErrNothingToExport
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderWallPage(pdf, res)

	pdf.AddPage()
	renderMatrixPage(pdf, res, plan)

	if plan != nil {
		for i, sheet := range plan.Sheets {
			pdf.AddPage()
			renderBoardPage(pdf, sheet, plan.Settings, i+1)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// fitScale returns the scale and origin that fit a w x h mm drawing into the
// page's drawing area, centred horizontally.
func fitScale(w, h int) (scale, offsetX, offsetY float64) {
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale = math.Min(contentWidth/float64(w), drawHeight/float64(h))
	offsetX = marginLeft + (contentWidth-float64(w)*scale)/2
	return scale, offsetX, drawAreaTop
}

func renderWallPage(pdf *fpdf.Fpdf, res *layout.Result) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Wall %s - %s layout", res.Wall, res.Strategy.Label())
	pdf.CellFormat(contentWidth, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	m := res.Metrics
	stats := fmt.Sprintf("Panels: %d | Fillers: %d | Filled: %.1f%% | Cost: %.2f EUR | Seed: %d",
		len(res.Placed), len(res.Fillers), m.FillPercent(), m.TotalCost, res.Seed)
	pdf.CellFormat(contentWidth, 5, stats, "", 0, "L", false, 0, "")

	scale, offsetX, offsetY := fitScale(res.Wall.Width, res.Wall.Height)
	canvasW := float64(res.Wall.Width) * scale
	canvasH := float64(res.Wall.Height) * scale

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.6)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, f := range res.Fillers {
		r := f.Rect()
		drawPanel(pdf, r, f.Kind, FillerLabel(i), scale, offsetX, offsetY)
		drawHatchPattern(pdf, offsetX+float64(r.X)*scale, offsetY+float64(r.Y)*scale,
			float64(r.Width)*scale, float64(r.Height)*scale)
	}
	for _, p := range res.Placed {
		drawPanel(pdf, p.Rect(), p.Kind, res.DisplayLabel(p.ID), scale, offsetX, offsetY)
	}

	drawDimensionAnnotations(pdf, res.Wall.Width, res.Wall.Height, offsetX, offsetY, canvasW, canvasH)
	drawKindLegend(pdf, offsetY+canvasH+6)
}

// drawPanel renders one placed rectangle with its label and dimensions.
func drawPanel(pdf *fpdf.Fpdf, r model.Rect, kind model.PanelKind, label string, scale, offsetX, offsetY float64) {
	px := offsetX + float64(r.X)*scale
	py := offsetY + float64(r.Y)*scale
	pw := float64(r.Width) * scale
	ph := float64(r.Height) * scale

	col := kindColors[kind]
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Rect(px, py, pw, ph, "FD")

	if pw <= 10 || ph <= 6 {
		return
	}
	pdf.SetFont("Helvetica", "B", labelFontSize(pw, ph))
	pdf.SetTextColor(0, 0, 0)
	if lw := pdf.GetStringWidth(label); lw < pw-2 {
		pdf.SetXY(px+(pw-lw)/2, py+ph/2-4)
		pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", labelFontSize(pw, ph)-1)
	dims := fmt.Sprintf("%dx%d", r.Width, r.Height)
	if dw := pdf.GetStringWidth(dims); ph > 12 && dw < pw-2 {
		pdf.SetXY(px+(pw-dw)/2, py+ph/2)
		pdf.CellFormat(dw, 4, dims, "", 0, "C", false, 0, "")
	}
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark filler areas.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.1)

	spacing := 3.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside a drawing.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, width, height int, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d mm", width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d mm", height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func drawKindLegend(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "", 8)
	x := marginLeft
	for _, k := range []model.PanelKind{model.KindUserStock, model.KindSourcedUsed, model.KindSourcedNew, model.KindFiller} {
		col := kindColors[k]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(25, 4, kindName(k), "", 0, "L", false, 0, "")
		x += 30
	}
}

func kindName(k model.PanelKind) string {
	switch k {
	case model.KindUserStock:
		return "Own stock"
	case model.KindSourcedUsed:
		return "Re-use"
	case model.KindSourcedNew:
		return "New"
	default:
		return "Filler"
	}
}

// renderMatrixPage draws the procurement matrix, totals and cut plan summary.
func renderMatrixPage(pdf *fpdf.Fpdf, res *layout.Result, plan *cutplan.Plan) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, 10, "Procurement", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	y := marginTop + 16
	colWidths := []float64{15, 25, 70, 35, 25, 30, 30, 37}
	headers := []string{"#", "Position", "Source", "Size (mm)", "Kind", "Price", "Status", "Area (m²)"}

	drawRow := func(cells []string, fill bool, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		x := marginLeft
		for i, cell := range cells {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[i], 5, tr(cell), "1", 0, "C", fill, 0, "")
			x += colWidths[i]
		}
		y += 5
	}

	pdf.SetFillColor(230, 230, 230)
	drawRow(headers, true, true)

	rowLimit := pageHeight - marginBottom - 55
	rows := res.Rows()
	for i, row := range rows {
		if y > rowLimit {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(contentWidth, 5, fmt.Sprintf("... %d more rows", len(rows)-i), "", 0, "L", false, 0, "")
			y += 5
			break
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		p := row.Panel
		drawRow([]string{
			fmt.Sprintf("%d", i+1),
			row.Label,
			truncate(p.Provenance.Label, 40),
			p.Dimensions(),
			kindName(p.Kind),
			fmt.Sprintf("%.2f", p.Price),
			row.Status.String(),
			fmt.Sprintf("%.2f", p.AreaM2()),
		}, true, false)
	}

	y += 6
	m := res.Metrics
	items := []struct {
		label string
		value string
	}{
		{"Wall area", fmt.Sprintf("%.2f m²", m.WallAreaM2())},
		{"Covered by panels", fmt.Sprintf("%.2f m² (%.1f%%)", m.PlacedAreaM2(), m.FillPercent())},
		{"Covered by fillers", fmt.Sprintf("%.2f m²", m.FillerAreaM2())},
		{"Panel cost", fmt.Sprintf("%.2f EUR", m.TotalCost)},
		{"Filler cost", fmt.Sprintf("%.2f EUR", m.FillerCost)},
	}
	if plan != nil {
		items = append(items, struct {
			label string
			value string
		}{"Boards to cut", fmt.Sprintf("%d x %dx%d mm (%.1f%% used, %.2f EUR)",
			plan.BoardCount(), plan.Settings.Board.Width, plan.Settings.Board.Height, plan.Efficiency(), plan.TotalCost())})
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(100, 5, tr(item.value), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		y += 5
	}

	if forced := res.ForcedOmitted(); len(forced) > 0 {
		y += 3
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 5, fmt.Sprintf("WARNING: %d forced panel(s) could not be placed", len(forced)), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(contentWidth, 4, "Generated by PatchWall", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderBoardPage draws one board of the filler cut plan.
func renderBoardPage(pdf *fpdf.Fpdf, sheet cutplan.Sheet, settings cutplan.Settings, n int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Board %d (%d x %d mm)", n, sheet.Board.Width, sheet.Board.Height)
	pdf.CellFormat(contentWidth, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Efficiency: %.1f%% | Kerf: %d mm | Offcuts: %d",
		len(sheet.Cuts), sheet.Efficiency(), settings.Kerf, len(sheet.Offcuts))
	pdf.CellFormat(contentWidth, 5, stats, "", 0, "L", false, 0, "")

	scale, offsetX, offsetY := fitScale(sheet.Board.Width, sheet.Board.Height)
	canvasW := float64(sheet.Board.Width) * scale
	canvasH := float64(sheet.Board.Height) * scale

	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, o := range sheet.Offcuts {
		pdf.SetFillColor(235, 220, 190)
		pdf.SetDrawColor(160, 140, 100)
		pdf.SetLineWidth(0.2)
		pdf.Rect(offsetX+float64(o.X)*scale, offsetY+float64(o.Y)*scale, float64(o.Width)*scale, float64(o.Height)*scale, "FD")
	}

	for _, c := range sheet.Cuts {
		label := c.Piece.Label
		if c.Rotated {
			label += " R"
		}
		drawPanel(pdf, c.Rect(), model.KindFiller, label, scale, offsetX, offsetY)
	}

	drawDimensionAnnotations(pdf, sheet.Board.Width, sheet.Board.Height, offsetX, offsetY, canvasW, canvasH)
}

// labelFontSize returns a font size that fits a rectangle of the given size.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 9
	case minDim > 20:
		return 8
	default:
		return 7
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
