package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PatchWall/internal/engine"
	"github.com/piwi3910/PatchWall/internal/export"
	"github.com/piwi3910/PatchWall/internal/model"
)

type compareEntry struct {
	Strategy    model.Strategy `json:"strategy"`
	Placed      int            `json:"placed"`
	Omitted     int            `json:"omitted"`
	FillRatio   float64        `json:"fill_ratio"`
	TotalCost   float64        `json:"total_cost"`
	FillerCount int            `json:"filler_count"`
	FillerArea  int            `json:"filler_area"`
}

type compareOutput struct {
	Seed       int64          `json:"seed"`
	Best       model.Strategy `json:"best"`
	Strategies []compareEntry `json:"strategies"`
}

func newCompareCmd() *cobra.Command {
	var (
		width, height int
		seed          int64
		jsonOut       bool
		htmlPath      string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every strategy on the same wall and compare the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInventory(cmd, func(cliCtx *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
				wall, settings, err := resolveRun(cmd, cliCtx, width, height, "", seed, 0)
				if err != nil {
					return false, err
				}
				runSeed := engine.SeedOrNow(settings.Seed)

				results, err := engine.CompareStrategies(wall, inv.Visible(), runSeed, settings.FillerRate)
				if err != nil {
					return false, err
				}
				out := compareOutput{Seed: runSeed}
				if best, ok := engine.BestByFill(results); ok {
					out.Best = best.Strategy
				}
				for _, r := range results {
					out.Strategies = append(out.Strategies, compareEntry{
						Strategy:    r.Strategy,
						Placed:      r.PlacedCount,
						Omitted:     r.OmittedCount,
						FillRatio:   r.FillRatio,
						TotalCost:   r.TotalCost,
						FillerCount: r.FillerCount,
						FillerArea:  r.FillerArea,
					})
				}

				if htmlPath != "" {
					if err := export.ExportComparisonChart(htmlPath, wall, results); err != nil {
						return false, fmt.Errorf("chart export failed: %w", err)
					}
					if !jsonOut {
						PrintSuccess(cmd, "chart written to "+htmlPath)
					}
				}

				if jsonOut {
					return false, printJSON(cmd, out)
				}
				printComparison(cmd, wall, out)
				return false, nil
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&width, "width", 0, "wall width in mm (default from config)")
	f.IntVar(&height, "height", 0, "wall height in mm (default from config)")
	f.Int64Var(&seed, "seed", 0, "seed shared by randomised strategies, 0 draws a fresh one")
	f.BoolVar(&jsonOut, "json", false, "print the comparison as JSON")
	f.StringVar(&htmlPath, "html", "", "write an HTML bar chart of the comparison")
	return cmd
}

func printComparison(cmd *cobra.Command, wall model.Wall, out compareOutput) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wall %s, seed %d\n\n", wall, out.Seed)

	var rows [][]string
	for _, e := range out.Strategies {
		mark := ""
		if e.Strategy == out.Best {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			e.Strategy.Label(),
			fmt.Sprintf("%d", e.Placed),
			fmt.Sprintf("%d", e.Omitted),
			fmt.Sprintf("%.1f%%", e.FillRatio*100),
			fmt.Sprintf("%.2f", e.TotalCost),
			fmt.Sprintf("%d", e.FillerCount),
			fmt.Sprintf("%.2f", float64(e.FillerArea)/1e6),
		})
	}
	fmt.Fprint(w, FormatTable([]string{"", "STRATEGY", "PLACED", "OMITTED", "FILL", "COST", "FILLERS", "FILLER M²"}, rows))
}
