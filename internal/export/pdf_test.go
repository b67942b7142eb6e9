package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PatchWall/internal/cutplan"
	"github.com/piwi3910/PatchWall/internal/layout"
	"github.com/piwi3910/PatchWall/internal/model"
)

// buildTestResult runs a real layout on a small inventory.
func buildTestResult(t *testing.T) *layout.Result {
	t.Helper()
	inv := model.NewInventory()
	inv.AddUserStock(model.NewUserStock(1000, 1000))
	inv.ReplaceDiscovered([]model.Panel{
		model.NewPanel(model.KindSourcedUsed, 1200, 1400, 80, model.Provenance{Label: "Kleinanzeigen: Holzfenster", Link: "https://example.com/w1"}),
		model.NewPanel(model.KindSourcedNew, 600, 800, 140, model.Provenance{Label: "Baumarkt"}),
		model.NewPanel(model.KindSourcedUsed, 4000, 4000, 10, model.Provenance{Label: "Too big"}),
	})

	settings := model.LayoutSettings{Strategy: model.StrategyShelf, FillerRate: 25}
	res, err := layout.NewSession(inv, settings, nil).Run(model.Wall{Width: 3000, Height: 2000}, "")
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	if len(res.Placed) == 0 || len(res.Fillers) == 0 {
		t.Fatalf("fixture should have panels and fillers, got %d/%d", len(res.Placed), len(res.Fillers))
	}
	return res
}

func buildTestPlan(t *testing.T, res *layout.Result) *cutplan.Plan {
	t.Helper()
	plan, err := cutplan.Build(res.Fillers, cutplan.DefaultSettings())
	if err != nil {
		t.Fatalf("cut plan failed: %v", err)
	}
	return &plan
}

func assertFileWritten(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	res := buildTestResult(t)
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := ExportPDF(path, res, buildTestPlan(t, res)); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportPDF_WithoutCutPlan(t *testing.T) {
	res := buildTestResult(t)
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := ExportPDF(path, res, nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportPDF(path, nil, nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if err := ExportPDF(path, &layout.Result{}, nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty result")
	}
}

func TestExportPDF_ForcedOmittedWarning(t *testing.T) {
	inv := model.NewInventory()
	inv.AddUserStock(model.NewUserStock(2000, 2000))
	inv.AddUserStock(model.NewUserStock(2000, 2000))
	res, err := layout.NewSession(inv, model.DefaultSettings(), nil).Run(model.Wall{Width: 2000, Height: 2000}, model.StrategyShelf)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ForcedOmitted()) != 1 {
		t.Fatalf("expected one omitted forced panel, got %d", len(res.ForcedOmitted()))
	}

	path := filepath.Join(t.TempDir(), "forced.pdf")
	if err := ExportPDF(path, res, nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertFileWritten(t, path, 500)
}

func TestFillerLabel(t *testing.T) {
	if got := FillerLabel(0); got != "F1" {
		t.Errorf("expected F1, got %q", got)
	}
	if got := FillerLabel(9); got != "F10" {
		t.Errorf("expected F10, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncate("Kleinanzeigen Holzfenster", 10); got != "Kleinan..." {
		t.Errorf("expected truncated string, got %q", got)
	}
}
