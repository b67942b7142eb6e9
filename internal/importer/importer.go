// Package importer reads panel lists from CSV, Excel and DXF files.
// CSV delimiters are detected automatically and columns are mapped from
// case-insensitive header aliases.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PatchWall/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Panels   []model.Panel
	Errors   []string
	Warnings []string
}

// OK reports whether the import produced panels without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Panels) > 0
}

// ColumnMapping maps column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
	Price    int
	Link     int
	Kind     int
	Forced   int
	Visible  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "title", "source", "description", "desc", "listing", "item"},
	"width":    {"width", "w", "breite", "x"},
	"height":   {"height", "h", "hoehe", "höhe", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"price":    {"price", "cost", "eur", "€", "preis"},
	"link":     {"link", "url", "href", "shop"},
	"kind":     {"kind", "type", "condition"},
	"forced":   {"forced", "force", "must", "required", "priority"},
	"visible":  {"visible", "show", "enabled", "active"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (label, width, height, quantity, price, link) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label: -1, Width: -1, Height: -1, Quantity: -1,
		Price: -1, Link: -1, Kind: -1, Forced: -1, Visible: -1,
	}
	slots := map[string]*int{
		"label":    &mapping.Label,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"quantity": &mapping.Quantity,
		"price":    &mapping.Price,
		"link":     &mapping.Link,
		"kind":     &mapping.Kind,
		"forced":   &mapping.Forced,
		"visible":  &mapping.Visible,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Label: 0, Width: 1, Height: 2, Quantity: 3, Price: 4, Link: 5,
			Kind: -1, Forced: -1, Visible: -1,
		}, false
	}
	return mapping, true
}

// parseFlag accepts the usual spreadsheet spellings of a boolean.
func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "x", "ja":
		return true, true
	case "0", "false", "no", "n", "-", "nein":
		return false, true
	default:
		return false, false
	}
}

// parseMillimetres reads a dimension and rounds it to whole mm.
func parseMillimetres(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(v)), nil
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow builds the panels described by one row. A quantity above one
// yields that many independent panels.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, kind model.PanelKind) ([]model.Panel, string, []string) {
	var warnings []string

	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return nil, fmt.Sprintf("%s: Missing width value", rowLabel), nil
	}
	width, err := parseMillimetres(widthStr)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr), nil
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return nil, fmt.Sprintf("%s: Missing height value", rowLabel), nil
	}
	height, err := parseMillimetres(heightStr)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr), nil
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil || qty <= 0 {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
		}
	}

	if kindStr := getCell(row, mapping.Kind); kindStr != "" {
		parsed, ok := model.ParsePanelKind(kindStr)
		if ok && parsed != model.KindFiller {
			kind = parsed
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown kind '%s', using %s", rowLabel, kindStr, kind))
		}
	}

	var price float64
	if priceStr := getCell(row, mapping.Price); priceStr != "" {
		priceStr = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(priceStr, "€"), "€"))
		price, err = strconv.ParseFloat(strings.ReplaceAll(priceStr, ",", "."), 64)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid price '%s'", rowLabel, priceStr), nil
		}
	}
	if kind == model.KindUserStock && price != 0 {
		warnings = append(warnings, fmt.Sprintf("%s: Price ignored for own stock", rowLabel))
		price = 0
	}

	prov := model.Provenance{
		Label: getCell(row, mapping.Label),
		Link:  getCell(row, mapping.Link),
	}
	if prov.Label == "" && kind == model.KindUserStock {
		prov.Label = "My stock"
	}

	template := model.NewPanel(kind, width, height, price, prov)
	if flag := getCell(row, mapping.Forced); flag != "" {
		if v, ok := parseFlag(flag); ok {
			template.Forced = v
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown forced value '%s', ignoring", rowLabel, flag))
		}
	}
	if flag := getCell(row, mapping.Visible); flag != "" {
		if v, ok := parseFlag(flag); ok {
			template.Visible = v
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown visible value '%s', ignoring", rowLabel, flag))
		}
	}
	if err := template.Validate(); err != nil {
		return nil, fmt.Sprintf("%s: %v", rowLabel, err), warnings
	}

	panels := make([]model.Panel, 0, qty)
	for i := 0; i < qty; i++ {
		p := template
		if i > 0 {
			p.ID = model.NewPanel(kind, width, height, price, prov).ID
		}
		panels = append(panels, p)
	}
	return panels, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports panels of the given kind from a CSV file. A kind column
// in the file overrides kind per row.
func ImportCSV(path string, kind model.PanelKind) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	return importCSV(bytes.NewReader(data), delimiter, kind, result.Warnings)
}

// ImportCSVFromReader imports panels from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune, kind model.PanelKind) ImportResult {
	return importCSV(reader, delimiter, kind, nil)
}

func importCSV(reader io.Reader, delimiter rune, kind model.PanelKind, warnings []string) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}, Warnings: warnings}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}, Warnings: warnings}
	}
	return importFromRows(records, "Line", kind, warnings)
}

// ImportExcel imports panels from the first sheet of an Excel workbook.
func ImportExcel(path string, kind model.PanelKind) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", kind, nil)
}

// ImportFile dispatches on the file extension.
func ImportFile(path string, kind model.PanelKind) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path, kind)
	case ".dxf":
		return ImportDXF(path, kind)
	default:
		return ImportCSV(path, kind)
	}
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, kind model.PanelKind, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// Unrecognised header: the width column is not numeric.
		if _, err := parseMillimetres(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		panels, errMsg, warnings := parseRow(row, mapping, rowLabel, kind)
		result.Warnings = append(result.Warnings, warnings...)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Panels = append(result.Panels, panels...)
	}

	return result
}
