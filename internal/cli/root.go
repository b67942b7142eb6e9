// Package cli implements the patchwall command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/config"
	"github.com/piwi3910/PatchWall/internal/model"
	"github.com/piwi3910/PatchWall/internal/project"
	"github.com/piwi3910/PatchWall/internal/store"
	"github.com/piwi3910/PatchWall/pkg/logger"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config *config.Config
	Logger *zap.Logger
}

// InventoryStore persists the inventory between runs.
type InventoryStore interface {
	Load(ctx context.Context) (*model.Inventory, error)
	Save(ctx context.Context, inv *model.Inventory) error
	Close() error
}

// flagSetter and deleter are implemented by stores that can update a single
// panel in place.
type flagSetter interface {
	SetFlags(ctx context.Context, id string, visible, forced bool) error
}

type deleter interface {
	Delete(ctx context.Context, id string) error
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "patchwall",
		Short:   "PatchWall lays out salvaged windows and panels on a wall",
		Long:    "PatchWall packs a heterogeneous set of rectangular panels onto a wall opening,\npartitions the remaining gaps into filler panels and reports what to buy and cut.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./patchwall.yaml or ~/.patchwall/patchwall.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")

	cmd.AddCommand(
		newPlanCmd(),
		newCompareCmd(),
		newImportCmd(),
		newStockCmd(),
		newBackupCmd(),
		newServeCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &CLIContext{Config: cfg, Logger: log}))
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// OpenStore opens the inventory store selected by the configuration.
func OpenStore(ctx context.Context, cfg *config.Config) (InventoryStore, error) {
	switch cfg.Inventory.Driver {
	case config.DriverSQLite:
		path := cfg.Inventory.Path
		if path == "" {
			path = filepath.Join(project.DefaultDir(), "inventory.db")
		}
		s, err := store.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("opening inventory database: %w", err)
		}
		return s, nil
	default:
		return project.NewFileStore(cfg.Inventory.Path), nil
	}
}

// withInventory loads the inventory, runs fn and closes the store. The
// inventory is saved afterwards when fn reports a change.
func withInventory(cmd *cobra.Command, fn func(cliCtx *CLIContext, s InventoryStore, inv *model.Inventory) (bool, error)) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	s, err := OpenStore(ctx, cliCtx.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			cliCtx.Logger.Warn("failed closing inventory store", zap.Error(err))
		}
	}()

	inv, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}

	changed, err := fn(cliCtx, s, inv)
	if err != nil {
		return err
	}
	if changed {
		if err := s.Save(ctx, inv); err != nil {
			return fmt.Errorf("saving inventory: %w", err)
		}
	}
	return nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}
