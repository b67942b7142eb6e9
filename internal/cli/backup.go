package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/model"
	"github.com/piwi3910/PatchWall/internal/project"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the wall, settings and inventory",
	}
	cmd.AddCommand(newBackupCreateCmd(), newBackupRestoreCmd())
	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create FILE",
		Short: "Write a JSON backup of the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInventory(cmd, func(cliCtx *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
				settings, err := cliCtx.Config.LayoutSettings()
				if err != nil {
					return false, err
				}
				if err := project.ExportAllData(args[0], cliCtx.Config.WallModel(), settings, inv); err != nil {
					return false, err
				}
				PrintSuccess(cmd, fmt.Sprintf("backup of %d panels written to %s", inv.Len(), args[0]))
				return false, nil
			})
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace the inventory with the one stored in a backup",
		Long: "Replaces the stored inventory with the backup's. The wall and layout\n" +
			"settings of the backup are printed but not written to the config file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			return withInventory(cmd, func(cliCtx *CLIContext, _ InventoryStore, inv *model.Inventory) (bool, error) {
				restored := backup.Inventory
				if restored == nil {
					restored = model.NewInventory()
				}
				inv.UserAdded = restored.UserAdded
				inv.Discovered = restored.Discovered

				cliCtx.Logger.Info("backup restored",
					zap.String("path", args[0]),
					zap.String("version", backup.Version),
					zap.String("created_at", backup.CreatedAt),
					zap.Int("panels", inv.Len()))
				PrintSuccess(cmd, fmt.Sprintf("restored %d panels from %s (wall %s, strategy %s)",
					inv.Len(), args[0], backup.Wall, backup.Settings.Strategy))
				return true, nil
			})
		},
	}
}
