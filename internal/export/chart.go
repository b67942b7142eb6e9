package export

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/PatchWall/internal/engine"
	"github.com/piwi3910/PatchWall/internal/model"
)

// ExportComparisonChart writes an HTML bar chart comparing the fill ratio and
// filler area of every strategy run on the same wall.
func ExportComparisonChart(path string, wall model.Wall, results []engine.StrategyComparison) error {
	if len(results) == 0 {
		return ErrNothingToExport
	}

	subtitle := fmt.Sprintf("Wall %s, seed %d", wall, results[0].Result.Seed)
	if best, ok := engine.BestByFill(results); ok {
		subtitle += ", best: " + best.Strategy.Label()
	}

	names := make([]string, 0, len(results))
	fill := make([]opts.BarData, 0, len(results))
	filler := make([]opts.BarData, 0, len(results))
	for _, r := range results {
		names = append(names, r.Strategy.Label())
		fill = append(fill, opts.BarData{Value: round1(r.FillRatio * 100)})
		filler = append(filler, opts.BarData{Value: round1(float64(r.FillerArea) / float64(wall.Area()) * 100)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Strategy comparison", Subtitle: subtitle}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of wall"}),
	)
	bar.SetXAxis(names).
		AddSeries("Covered by panels", fill).
		AddSeries("Covered by fillers", filler)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := bar.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
