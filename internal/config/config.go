package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	World   WorldConfig   `toml:"world"`
	Sim     SimConfig     `toml:"sim"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

type WorldConfig struct {
	Seed           string  `toml:"seed"`
	Level          string  `toml:"level"`           // level name from the level table ("" = first)
	ChunkSize      float64 `toml:"chunk_size"`      // world units per chunk edge
	RenderDistance int     `toml:"render_distance"` // Chebyshev radius in chunks
	GridCellSize   float64 `toml:"grid_cell_size"`  // spatial index cell edge
	ScriptsDir     string  `toml:"scripts_dir"`     // level-tuning Lua scripts ("" = none)
}

type SimConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	ObserverSpeed float64       `toml:"observer_speed"` // world units per second along +Z
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Enabled    bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr"`
	SnapshotHz int    `toml:"snapshot_hz"` // max websocket snapshot rate per client
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Seed == "" {
		return fmt.Errorf("world.seed must not be empty")
	}
	if c.World.ChunkSize <= 0 {
		return fmt.Errorf("world.chunk_size must be positive, got %v", c.World.ChunkSize)
	}
	if c.World.RenderDistance < 0 {
		return fmt.Errorf("world.render_distance must not be negative, got %d", c.World.RenderDistance)
	}
	if c.World.GridCellSize <= 0 {
		return fmt.Errorf("world.grid_cell_size must be positive, got %v", c.World.GridCellSize)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Seed:           "open-runner-seed",
			ChunkSize:      100,
			RenderDistance: 4,
			GridCellSize:   25,
			ScriptsDir:     "scripts",
		},
		Sim: SimConfig{
			TickRate:      50 * time.Millisecond,
			ObserverSpeed: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1:6060",
			SnapshotHz: 10,
		},
	}
}
