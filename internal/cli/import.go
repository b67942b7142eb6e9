package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/importer"
	"github.com/piwi3910/PatchWall/internal/model"
	"github.com/piwi3910/PatchWall/internal/project"
)

func newImportCmd() *cobra.Command {
	var (
		as         string
		appendMode bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import panels from a CSV, Excel, DXF or inventory JSON file",
		Long: "Imports panels into the inventory. Discovered panels replace the current\n" +
			"discovered list unless --append is given; stock is always added to the\n" +
			"user's own panels. A .json file is merged as a saved inventory.",
		Example: "  patchwall import windows.csv\n" +
			"  patchwall import garage.xlsx --as stock\n" +
			"  patchwall import facade.dxf --append",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return withInventory(cmd, func(cliCtx *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
				if strings.EqualFold(filepath.Ext(path), ".json") {
					added, err := project.ImportInventory(path, inv)
					if err != nil {
						return false, fmt.Errorf("importing inventory: %w", err)
					}
					PrintSuccess(cmd, fmt.Sprintf("merged %d panels from %s", added, path))
					return added > 0, nil
				}

				kind, err := parseImportKind(as)
				if err != nil {
					return false, err
				}

				result := importer.ImportFile(path, kind)
				for _, w := range result.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				}
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
				}
				if len(result.Panels) == 0 {
					return false, fmt.Errorf("no panels imported from %s", path)
				}

				// A kind column may route single rows to the user's stock.
				var discovered []model.Panel
				for _, p := range result.Panels {
					if p.Kind == model.KindUserStock {
						inv.AddUserStock(p)
						continue
					}
					discovered = append(discovered, p)
				}
				if appendMode {
					inv.Discovered = append(inv.Discovered, discovered...)
				} else if len(discovered) > 0 || kind != model.KindUserStock {
					inv.ReplaceDiscovered(discovered)
				}

				cliCtx.Logger.Info("panels imported",
					zap.String("path", path),
					zap.String("kind", kind.String()),
					zap.Int("panels", len(result.Panels)),
					zap.Int("errors", len(result.Errors)),
					zap.Int("warnings", len(result.Warnings)))
				PrintSuccess(cmd, fmt.Sprintf("imported %d panels from %s", len(result.Panels), path))
				return true, nil
			})
		},
	}

	cmd.Flags().StringVar(&as, "as", "discovered", "import as discovered (used), new or stock panels")
	cmd.Flags().BoolVar(&appendMode, "append", false, "append to the discovered list instead of replacing it")
	return cmd
}

func parseImportKind(as string) (model.PanelKind, error) {
	switch strings.ToLower(as) {
	case "discovered", "used", "":
		return model.KindSourcedUsed, nil
	case "new":
		return model.KindSourcedNew, nil
	case "stock":
		return model.KindUserStock, nil
	default:
		return 0, model.NewConfigurationError("as", as, "must be discovered, new or stock")
	}
}
