package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Defaults().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
tick_rate = "50ms"

[grid]
snapshot_interval = 20
on_dimension_mismatch = "reset"

[database]
driver = "postgres"
dsn = "postgres://u:p@localhost:5432/ph?sslmode=disable"
max_open_conns = 8

[logging]
format = "json"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate)
	assert.Equal(t, "pheromoned", cfg.Server.Name, "untouched keys keep defaults")
	assert.Equal(t, 20, cfg.Grid.SnapshotInterval)
	assert.Equal(t, MismatchReset, cfg.Grid.OnDimensionMismatch)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Scripting.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		toml string
	}{
		{"zero tick", "[server]\ntick_rate = \"0s\""},
		{"zero interval", "[grid]\nsnapshot_interval = 0"},
		{"negative keep", "[grid]\nkeep_snapshots = -1"},
		{"bad policy", "[grid]\non_dimension_mismatch = \"truncate\""},
		{"bad driver", "[database]\ndriver = \"mysql\""},
		{"empty dsn", "[database]\ndsn = \"\""},
		{"bad toml", "[server"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			assert.Error(t, err)
		})
	}
}
