package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PatchWall/internal/engine"
	"github.com/piwi3910/PatchWall/internal/model"
)

func TestExportComparisonChart(t *testing.T) {
	wall := model.Wall{Width: 3000, Height: 2000}
	panels := []model.Panel{
		model.NewPanel(model.KindSourcedUsed, 1200, 1400, 80, model.Provenance{Label: "a"}),
		model.NewPanel(model.KindSourcedUsed, 1000, 1000, 40, model.Provenance{Label: "b"}),
	}
	results, err := engine.CompareStrategies(wall, panels, 5, 0)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "compare.html")
	if err := ExportComparisonChart(path, wall, results); err != nil {
		t.Fatalf("chart export failed: %v", err)
	}
	assertFileWritten(t, path, 200)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range model.Strategies() {
		if !strings.Contains(string(data), s.Label()) {
			t.Errorf("chart does not mention strategy %s", s.Label())
		}
	}
}

func TestExportComparisonChart_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compare.html")
	err := ExportComparisonChart(path, model.Wall{Width: 3000, Height: 2000}, nil)
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
}
