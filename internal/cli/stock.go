package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PatchWall/internal/model"
)

func newStockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Manage the panel inventory",
	}
	cmd.AddCommand(newStockAddCmd(), newStockListCmd(), newStockToggleCmd(), newStockRemoveCmd())
	return cmd
}

func newStockAddCmd() *cobra.Command {
	var label, link string

	cmd := &cobra.Command{
		Use:     "add WIDTH HEIGHT",
		Short:   "Add a panel the user already owns",
		Example: "  patchwall stock add 1200 1400 --label \"Shed window\"",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseMillimetres("width", args[0])
			if err != nil {
				return err
			}
			h, err := parseMillimetres("height", args[1])
			if err != nil {
				return err
			}
			p := model.NewUserStock(w, h)
			if label != "" {
				p.Provenance.Label = label
			}
			p.Provenance.Link = link
			if err := p.Validate(); err != nil {
				return err
			}

			return withInventory(cmd, func(_ *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
				inv.AddUserStock(p)
				PrintSuccess(cmd, fmt.Sprintf("added %s (%s)", p.ID, p.Dimensions()))
				return true, nil
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "description shown in the matrix")
	cmd.Flags().StringVar(&link, "link", "", "reference URL")
	return cmd
}

func newStockListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every panel in the inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInventory(cmd, func(_ *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
				if jsonOut {
					return false, printJSON(cmd, inv)
				}
				var rows [][]string
				for _, p := range inv.All() {
					rows = append(rows, []string{
						p.ID,
						p.Kind.String(),
						p.Dimensions(),
						fmt.Sprintf("%.2f", p.Price),
						yesNo(p.Visible),
						yesNo(p.Forced),
						p.Provenance.Label,
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"ID", "KIND", "SIZE", "PRICE", "VISIBLE", "FORCED", "SOURCE"}, rows))
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d panels (%d own, %d discovered)\n", inv.Len(), len(inv.UserAdded), len(inv.Discovered))
				return false, nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the inventory as JSON")
	return cmd
}

func newStockToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle ID visible|forced",
		Short:     "Flip a panel's visible or forced flag",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"visible", "forced"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, field := args[0], args[1]
			return withInventory(cmd, func(_ *CLIContext, s InventoryStore, inv *model.Inventory) (bool, error) {
				p := inv.FindByID(id)
				if p == nil {
					return false, fmt.Errorf("%w: %s", model.ErrPanelNotFound, id)
				}

				var err error
				switch field {
				case "visible":
					err = inv.SetVisible(id, !p.Visible)
				case "forced":
					err = inv.SetForced(id, !p.Forced)
				default:
					return false, model.NewConfigurationError("field", field, "must be visible or forced")
				}
				if err != nil {
					return false, err
				}

				p = inv.FindByID(id)
				PrintSuccess(cmd, fmt.Sprintf("%s visible=%s forced=%s", id, yesNo(p.Visible), yesNo(p.Forced)))

				if fs, ok := s.(flagSetter); ok {
					return false, fs.SetFlags(cmd.Context(), id, p.Visible, p.Forced)
				}
				return true, nil
			})
		},
	}
}

func newStockRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a panel from the inventory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withInventory(cmd, func(_ *CLIContext, s InventoryStore, inv *model.Inventory) (bool, error) {
				if err := inv.Remove(id); err != nil {
					return false, fmt.Errorf("%w: %s", err, id)
				}
				PrintSuccess(cmd, "removed "+id)

				if d, ok := s.(deleter); ok {
					return false, d.Delete(cmd.Context(), id)
				}
				return true, nil
			})
		},
	}
}

func parseMillimetres(field, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, model.NewConfigurationError(field, s, "must be a whole number of millimetres")
	}
	return v, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
