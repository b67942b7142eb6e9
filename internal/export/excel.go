package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PatchWall/internal/cutplan"
	"github.com/piwi3910/PatchWall/internal/layout"
)

// Worksheet names written by ExportExcel.
const (
	SheetMatrix  = "Matrix"
	SheetSummary = "Summary"
	SheetCutPlan = "Cut plan"
)

var matrixHeaders = []interface{}{
	"Position", "ID", "Source", "Link", "Kind", "Width (mm)", "Height (mm)",
	"X (mm)", "Y (mm)", "Price", "Status", "Visible", "Forced",
}

// ExportExcel writes the procurement matrix, the summary and, when plan is
// non-nil, the filler cut list to an .xlsx workbook.
func ExportExcel(path string, res *layout.Result, plan *cutplan.Plan) error {
	if res == nil {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetMatrix); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	w := sheetWriter{f: f, sheet: SheetMatrix}
	w.row(header, matrixHeaders...)
	fillerIdx := 0
	for _, row := range res.Rows() {
		p := row.Panel
		label := row.Label
		if row.Status == layout.StatusFiller {
			label = FillerLabel(fillerIdx)
			fillerIdx++
		}
		var x, y interface{}
		if p.Placed() {
			x, y = p.Position.X, p.Position.Y
		}
		w.row(0, label, p.ID, p.Provenance.Label, p.Provenance.Link, kindName(p.Kind),
			p.Width, p.Height, x, y, p.Price, row.Status.String(), p.Visible, p.Forced)
	}
	_ = f.SetColWidth(SheetMatrix, "C", "D", 32)
	if w.err != nil {
		return fmt.Errorf("failed to write %s: %w", w.sheet, w.err)
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	w = sheetWriter{f: f, sheet: SheetSummary}
	m := res.Metrics
	w.row(header, "Metric", "Value")
	w.row(0, "Wall", res.Wall.String())
	w.row(0, "Strategy", res.Strategy.Label())
	w.row(0, "Seed", res.Seed)
	w.row(0, "Grid step (mm)", res.Step)
	w.row(0, "Wall area (m²)", m.WallAreaM2())
	w.row(0, "Panel area (m²)", m.PlacedAreaM2())
	w.row(0, "Filler area (m²)", m.FillerAreaM2())
	w.row(0, "Fill ratio", m.FillRatio)
	w.row(0, "Panel cost", m.TotalCost)
	w.row(0, "Filler cost", m.FillerCost)
	w.skip()
	w.row(header, "Kind", "Count", "Area (m²)", "Cost")
	for _, line := range res.Procurement.Lines {
		w.row(0, kindName(line.Kind), line.Count, line.AreaM2, line.Cost)
	}
	w.row(header, "Total", res.Procurement.TotalCount, res.Procurement.TotalAreaM2, res.Procurement.TotalCost)
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	if w.err != nil {
		return fmt.Errorf("failed to write %s: %w", w.sheet, w.err)
	}

	if plan != nil {
		if _, err := f.NewSheet(SheetCutPlan); err != nil {
			return err
		}
		w = sheetWriter{f: f, sheet: SheetCutPlan}
		w.row(header, "Board", "Piece", "Width (mm)", "Height (mm)", "X (mm)", "Y (mm)", "Rotated")
		for i, sheet := range plan.Sheets {
			for _, c := range sheet.Cuts {
				w.row(0, i+1, c.Piece.Label, c.Piece.Width, c.Piece.Height, c.X, c.Y, c.Rotated)
			}
		}
		for _, p := range plan.Unplaced {
			w.row(0, "unplaced", p.Label, p.Width, p.Height)
		}
		w.skip()
		w.row(header, "Boards", plan.BoardCount())
		w.row(0, "Board cost", plan.TotalCost())
		w.row(0, "Efficiency (%)", plan.Efficiency())
		if w.err != nil {
			return fmt.Errorf("failed to write %s: %w", w.sheet, w.err)
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// sheetWriter appends rows to a worksheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func (w *sheetWriter) row(style int, values ...interface{}) {
	w.next++
	if w.err != nil {
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.next)
		if err != nil {
			w.err = err
			return
		}
		if v == nil {
			continue
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
	if style != 0 && len(values) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, w.next)
		last, _ := excelize.CoordinatesToCellName(len(values), w.next)
		w.err = w.f.SetCellStyle(w.sheet, first, last, style)
	}
}

func (w *sheetWriter) skip() { w.next++ }
