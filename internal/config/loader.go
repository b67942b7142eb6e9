package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/piwi3910/PatchWall/internal/project"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "PATCHWALL"

// newViper builds a Viper instance reading YAML, with PATCHWALL_ env
// overrides where nested keys like "wall.width" map to PATCHWALL_WALL_WIDTH.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// setDefaults registers every key so that environment variables are picked up
// by Unmarshal even when the config file does not mention them.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("wall.width", d.Wall.Width)
	v.SetDefault("wall.height", d.Wall.Height)
	v.SetDefault("layout.strategy", d.Layout.Strategy)
	v.SetDefault("layout.seed", d.Layout.Seed)
	v.SetDefault("layout.filler_rate", d.Layout.FillerRate)
	v.SetDefault("cutplan.board_width", d.CutPlan.BoardWidth)
	v.SetDefault("cutplan.board_height", d.CutPlan.BoardHeight)
	v.SetDefault("cutplan.board_price", d.CutPlan.BoardPrice)
	v.SetDefault("cutplan.kerf", d.CutPlan.Kerf)
	v.SetDefault("cutplan.fixed_grain", d.CutPlan.FixedGrain)
	v.SetDefault("cutplan.min_offcut", d.CutPlan.MinOffcut)
	v.SetDefault("inventory.driver", d.Inventory.Driver)
	v.SetDefault("inventory.path", d.Inventory.Path)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads an optional .env file, then the YAML file at configPath, merges
// PATCHWALL_* environment overrides, applies defaults and validates the result.
// With an empty configPath, patchwall.yaml is looked up in the working
// directory and in ~/.patchwall; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	// A missing .env file is fine; settings may come from the environment directly.
	_ = godotenv.Load()

	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	} else {
		v.SetConfigName("patchwall")
		v.AddConfigPath(".")
		v.AddConfigPath(project.DefaultDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: failed to read config file: %w", err)
			}
		}
	}

	return unmarshalAndFinalize(v)
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
