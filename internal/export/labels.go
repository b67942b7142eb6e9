package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PatchWall/internal/layout"
)

// LabelInfo holds the data encoded into each panel label's QR code.
type LabelInfo struct {
	Position string `json:"position"` // "P3" or "F2"
	PanelID  string `json:"id"`
	Kind     string `json:"kind"`
	Width    int    `json:"width_mm"`
	Height   int    `json:"height_mm"`
	X        int    `json:"x_mm"`
	Y        int    `json:"y_mm"`
	Source   string `json:"source,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos lists one label per placed panel followed by one per filler.
func CollectLabelInfos(res *layout.Result) []LabelInfo {
	if res == nil {
		return nil
	}
	labels := make([]LabelInfo, 0, len(res.Placed)+len(res.Fillers))
	for _, p := range res.Placed {
		r := p.Rect()
		labels = append(labels, LabelInfo{
			Position: res.DisplayLabel(p.ID),
			PanelID:  p.ID,
			Kind:     p.Kind.String(),
			Width:    r.Width,
			Height:   r.Height,
			X:        r.X,
			Y:        r.Y,
			Source:   p.Provenance.Label,
			Link:     p.Provenance.Link,
		})
	}
	for i, f := range res.Fillers {
		r := f.Rect()
		labels = append(labels, LabelInfo{
			Position: FillerLabel(i),
			PanelID:  f.ID,
			Kind:     f.Kind.String(),
			Width:    r.Width,
			Height:   r.Height,
			X:        r.X,
			Y:        r.Y,
			Source:   f.Provenance.Label,
		})
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels for every placed panel and
// filler, laid out on Avery 5160 sheets. The QR code carries the label as JSON.
func ExportLabels(path string, res *layout.Result) error {
	labels := CollectLabelInfos(res)
	if len(labels) == 0 {
		return ErrNothingToExport
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %s: %w", label.Position, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.PanelID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 5, info.Position, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5.5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d mm (%s)", info.Width, info.Height, info.Kind), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9.5)
	pdf.CellFormat(textW, 3, fmt.Sprintf("@ (%d, %d) id %s", info.X, info.Y, info.PanelID), "", 1, "L", false, 0, "")

	source := []rune(info.Source)
	if pdf.GetStringWidth(tr(string(source))) > textW {
		for len(source) > 0 && pdf.GetStringWidth(tr(string(source))+"...") > textW {
			source = source[:len(source)-1]
		}
		source = append(source, []rune("...")...)
	}
	if len(source) > 0 {
		pdf.SetXY(textX, y+labelPadding+13)
		pdf.CellFormat(textW, 3, tr(string(source)), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
