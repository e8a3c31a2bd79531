package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Reconciliation policies for a saved grid whose size no longer matches
// its map.
const (
	MismatchReject = "reject" // refuse to boot
	MismatchReset  = "reset"  // log, discard the snapshot, start empty
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Grid      GridConfig      `toml:"grid"`
	Database  DatabaseConfig  `toml:"database"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name     string        `toml:"name"`
	TickRate time.Duration `toml:"tick_rate"`
}

type GridConfig struct {
	MapList             string `toml:"map_list"`
	SnapshotInterval    int    `toml:"snapshot_interval"` // ticks between auto-saves
	KeepSnapshots       int    `toml:"keep_snapshots"`    // per map; 0 = keep all
	OnDimensionMismatch string `toml:"on_dimension_mismatch"`
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver"`
	DSN             string        `toml:"dsn"` // postgres URL or sqlite file path
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("config: server.tick_rate must be positive, got %s", c.Server.TickRate)
	}
	if c.Grid.SnapshotInterval <= 0 {
		return fmt.Errorf("config: grid.snapshot_interval must be positive, got %d", c.Grid.SnapshotInterval)
	}
	if c.Grid.KeepSnapshots < 0 {
		return fmt.Errorf("config: grid.keep_snapshots must not be negative, got %d", c.Grid.KeepSnapshots)
	}
	switch c.Grid.OnDimensionMismatch {
	case MismatchReject, MismatchReset:
	default:
		return fmt.Errorf("config: grid.on_dimension_mismatch %q (want %q or %q)",
			c.Grid.OnDimensionMismatch, MismatchReject, MismatchReset)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: database.driver %q (want %q or %q)",
			c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is empty")
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "pheromoned",
			TickRate: 200 * time.Millisecond,
		},
		Grid: GridConfig{
			MapList:             "data/yaml/map_list.yaml",
			SnapshotInterval:    1500, // 5 minutes at 200ms/tick
			KeepSnapshots:       12,
			OnDimensionMismatch: MismatchReject,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			DSN:             "data/pheromone.db",
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
