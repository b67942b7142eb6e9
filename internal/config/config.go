// Package config loads PatchWall settings from YAML, .env files and
// PATCHWALL_* environment variables.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/cutplan"
	"github.com/piwi3910/PatchWall/internal/model"
)

// Config represents the full application configuration surface.
type Config struct {
	Wall      WallConfig      `mapstructure:"wall"`
	Layout    LayoutConfig    `mapstructure:"layout"`
	CutPlan   CutPlanConfig   `mapstructure:"cutplan"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// WallConfig is the wall used when a command does not name one.
type WallConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// LayoutConfig holds the engine settings.
type LayoutConfig struct {
	Strategy   string  `mapstructure:"strategy"`
	Seed       int64   `mapstructure:"seed"`
	FillerRate float64 `mapstructure:"filler_rate"`
}

// CutPlanConfig describes the boards filler panels are cut from.
type CutPlanConfig struct {
	BoardWidth  int     `mapstructure:"board_width"`
	BoardHeight int     `mapstructure:"board_height"`
	BoardPrice  float64 `mapstructure:"board_price"`
	Kerf        int     `mapstructure:"kerf"`
	FixedGrain  bool    `mapstructure:"fixed_grain"` // Disallow rotating pieces on the board
	MinOffcut   int     `mapstructure:"min_offcut"`
}

// InventoryConfig selects where the inventory is persisted.
type InventoryConfig struct {
	Driver string `mapstructure:"driver"` // json or sqlite
	Path   string `mapstructure:"path"`
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Inventory drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Default returns a Config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Wall.Width == 0 {
		cfg.Wall.Width = 4000
	}
	if cfg.Wall.Height == 0 {
		cfg.Wall.Height = 2500
	}
	if cfg.Layout.Strategy == "" {
		cfg.Layout.Strategy = string(model.StrategyCluster)
	}

	board := cutplan.DefaultSettings()
	if cfg.CutPlan.BoardWidth == 0 {
		cfg.CutPlan.BoardWidth = board.Board.Width
	}
	if cfg.CutPlan.BoardHeight == 0 {
		cfg.CutPlan.BoardHeight = board.Board.Height
	}
	if cfg.CutPlan.Kerf == 0 {
		cfg.CutPlan.Kerf = board.Kerf
	}
	if cfg.CutPlan.MinOffcut == 0 {
		cfg.CutPlan.MinOffcut = board.MinOffcut
	}

	if cfg.Inventory.Driver == "" {
		cfg.Inventory.Driver = DriverJSON
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate ensures every section holds usable values.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.WallModel().Validate(); err != nil {
		return err
	}
	if _, err := c.LayoutSettings(); err != nil {
		return err
	}
	if err := c.CutPlanSettings().Validate(); err != nil {
		return err
	}

	switch c.Inventory.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return model.NewConfigurationError("inventory.driver", c.Inventory.Driver, "must be json or sqlite")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return model.NewConfigurationError("server.port", fmt.Sprint(c.Server.Port), "must be within [1, 65535]")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return model.NewConfigurationError("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return model.NewConfigurationError("log.format", c.Log.Format, "must be json or console")
	}
	return nil
}

// WallModel returns the configured default wall.
func (c *Config) WallModel() model.Wall {
	return model.Wall{Width: c.Wall.Width, Height: c.Wall.Height}
}

// LayoutSettings converts the layout section to engine settings.
func (c *Config) LayoutSettings() (model.LayoutSettings, error) {
	strategy, ok := model.ParseStrategy(c.Layout.Strategy)
	if !ok {
		return model.LayoutSettings{}, model.NewConfigurationError("layout.strategy", c.Layout.Strategy, "unknown layout strategy")
	}
	if c.Layout.FillerRate < 0 {
		return model.LayoutSettings{}, model.NewConfigurationError("layout.filler_rate", fmt.Sprint(c.Layout.FillerRate), "must not be negative")
	}
	return model.LayoutSettings{
		Strategy:   strategy,
		Seed:       c.Layout.Seed,
		FillerRate: c.Layout.FillerRate,
	}, nil
}

// CutPlanSettings converts the cutplan section to nesting settings.
func (c *Config) CutPlanSettings() cutplan.Settings {
	return cutplan.Settings{
		Board: cutplan.Board{
			Width:  c.CutPlan.BoardWidth,
			Height: c.CutPlan.BoardHeight,
			Price:  c.CutPlan.BoardPrice,
		},
		Kerf:          c.CutPlan.Kerf,
		AllowRotation: !c.CutPlan.FixedGrain,
		MinOffcut:     c.CutPlan.MinOffcut,
	}
}
