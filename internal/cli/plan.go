package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/cutplan"
	"github.com/piwi3910/PatchWall/internal/export"
	"github.com/piwi3910/PatchWall/internal/layout"
	"github.com/piwi3910/PatchWall/internal/model"
)

type planOptions struct {
	width      int
	height     int
	strategy   string
	seed       int64
	fillerRate float64
	fallback   bool
	cutPlan    bool
	jsonOut    bool
	pdfPath    string
	xlsxPath   string
	dxfPath    string
	labelsPath string
}

type planOutput struct {
	Result        *layout.Result `json:"result"`
	Rows          []layout.Row   `json:"rows"`
	ForcedOmitted []model.Panel  `json:"forced_omitted"`
	CutPlan       *cutplan.Plan  `json:"cut_plan,omitempty"`
}

func newPlanCmd() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Lay out the visible inventory on a wall",
		Long: "Packs the visible inventory onto the wall, partitions the remaining gaps into\n" +
			"filler panels and prints the procurement matrix. Optional exports write the\n" +
			"drawing and matrix to PDF, Excel, DXF or a sheet of QR labels.",
		Example: "  patchwall plan --width 5200 --height 2700 --strategy shelf\n" +
			"  patchwall plan --seed 42 --cutplan --pdf wall.pdf --xlsx wall.xlsx",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.width, "width", 0, "wall width in mm (default from config)")
	f.IntVar(&opts.height, "height", 0, "wall height in mm (default from config)")
	f.StringVarP(&opts.strategy, "strategy", "s", "", "layout strategy: "+strategyNames())
	f.Int64Var(&opts.seed, "seed", 0, "random seed for randomised strategies, 0 draws a fresh one")
	f.Float64Var(&opts.fillerRate, "filler-rate", 0, "filler price per square metre")
	f.BoolVar(&opts.fallback, "fallback", false, "top up a short discovered list with reserve panels")
	f.BoolVar(&opts.cutPlan, "cutplan", false, "compute the board cut plan for the fillers")
	f.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	f.StringVar(&opts.pdfPath, "pdf", "", "write the drawing and matrix to a PDF file")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "write the matrix to an Excel workbook")
	f.StringVar(&opts.dxfPath, "dxf", "", "write the drawing to a DXF file")
	f.StringVar(&opts.labelsPath, "labels", "", "write QR panel labels to a PDF file")
	return cmd
}

func strategyNames() string {
	var names []string
	for _, s := range model.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// resolveRun merges the command flags over the configured wall and settings.
func resolveRun(cmd *cobra.Command, cliCtx *CLIContext, width, height int, strategy string, seed int64, fillerRate float64) (model.Wall, model.LayoutSettings, error) {
	settings, err := cliCtx.Config.LayoutSettings()
	if err != nil {
		return model.Wall{}, settings, err
	}
	wall := cliCtx.Config.WallModel()

	f := cmd.Flags()
	if f.Changed("width") {
		wall.Width = width
	}
	if f.Changed("height") {
		wall.Height = height
	}
	if f.Changed("strategy") {
		s, ok := model.ParseStrategy(strategy)
		if !ok {
			return wall, settings, model.NewConfigurationError("strategy", strategy, "unknown strategy")
		}
		settings.Strategy = s
	}
	if f.Changed("seed") {
		settings.Seed = seed
	}
	if f.Changed("filler-rate") {
		if fillerRate < 0 {
			return wall, settings, model.NewConfigurationError("filler_rate", fmt.Sprint(fillerRate), "must not be negative")
		}
		settings.FillerRate = fillerRate
	}
	return wall, settings, nil
}

func runPlan(cmd *cobra.Command, opts *planOptions) error {
	return withInventory(cmd, func(cliCtx *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
		wall, settings, err := resolveRun(cmd, cliCtx, opts.width, opts.height, opts.strategy, opts.seed, opts.fillerRate)
		if err != nil {
			return false, err
		}

		if opts.fallback {
			// The reserve only applies to this run and is never persisted.
			session := *inv
			session.Discovered = model.WithFallback(append([]model.Panel(nil), inv.Discovered...), true, true)
			inv = &session
		}

		res, err := layout.NewSession(inv, settings, cliCtx.Logger.Named("layout")).Run(wall, "")
		if err != nil {
			return false, err
		}

		var plan *cutplan.Plan
		if opts.cutPlan {
			p, err := cutplan.Build(res.Fillers, cliCtx.Config.CutPlanSettings())
			if err != nil {
				return false, fmt.Errorf("building cut plan: %w", err)
			}
			plan = &p
		}

		if err := writeExports(cmd, cliCtx, opts, res, plan); err != nil {
			return false, err
		}

		if opts.jsonOut {
			return false, printJSON(cmd, planOutput{
				Result:        res,
				Rows:          res.Rows(),
				ForcedOmitted: res.ForcedOmitted(),
				CutPlan:       plan,
			})
		}
		printPlan(cmd.OutOrStdout(), res, plan)
		return false, nil
	})
}

func writeExports(cmd *cobra.Command, cliCtx *CLIContext, opts *planOptions, res *layout.Result, plan *cutplan.Plan) error {
	exports := []struct {
		path  string
		kind  string
		write func(string) error
	}{
		{opts.pdfPath, "PDF", func(p string) error { return export.ExportPDF(p, res, plan) }},
		{opts.xlsxPath, "Excel", func(p string) error { return export.ExportExcel(p, res, plan) }},
		{opts.dxfPath, "DXF", func(p string) error { return export.ExportDXF(p, res) }},
		{opts.labelsPath, "labels", func(p string) error { return export.ExportLabels(p, res) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path); err != nil {
			return fmt.Errorf("%s export failed: %w", e.kind, err)
		}
		cliCtx.Logger.Info("export written", zap.String("format", e.kind), zap.String("path", e.path))
		if !opts.jsonOut {
			PrintSuccess(cmd, fmt.Sprintf("%s written to %s", e.kind, e.path))
		}
	}
	return nil
}

func printPlan(w io.Writer, res *layout.Result, plan *cutplan.Plan) {
	fmt.Fprintf(w, "Wall %s, strategy %s, grid %d mm, seed %d\n\n", res.Wall, res.Strategy.Label(), res.Step, res.Seed)

	var rows [][]string
	for _, row := range res.Rows() {
		p := row.Panel
		pos := "-"
		if p.Position != nil {
			pos = fmt.Sprintf("%d,%d", p.Position.X, p.Position.Y)
		}
		rows = append(rows, []string{
			row.Label,
			p.ID,
			p.Kind.String(),
			p.Dimensions(),
			pos,
			fmt.Sprintf("%.2f", p.Price),
			row.Status.String(),
			p.Provenance.Label,
		})
	}
	fmt.Fprint(w, FormatTable([]string{"#", "ID", "KIND", "SIZE", "POSITION", "PRICE", "STATUS", "SOURCE"}, rows))

	m := res.Metrics
	fmt.Fprintf(w, "\nWall area:   %.2f m²\n", m.WallAreaM2())
	fmt.Fprintf(w, "Placed area: %.2f m² (%.1f%%)\n", m.PlacedAreaM2(), m.FillPercent())
	fmt.Fprintf(w, "Filler area: %.2f m² in %d panels\n", m.FillerAreaM2(), len(res.Fillers))
	fmt.Fprintf(w, "Panel cost:  %.2f\n", m.TotalCost)
	if m.FillerCost > 0 {
		fmt.Fprintf(w, "Filler cost: %.2f\n", m.FillerCost)
	}
	if plan != nil {
		fmt.Fprintf(w, "Boards:      %d x %dx%d mm, %.1f%% used, %.2f\n",
			plan.BoardCount(), plan.Settings.Board.Width, plan.Settings.Board.Height, plan.Efficiency(), plan.TotalCost())
	}
	for _, p := range res.ForcedOmitted() {
		fmt.Fprintf(w, "WARNING: forced panel %s (%s) did not fit\n", p.ID, p.Dimensions())
	}
}
