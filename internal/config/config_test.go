package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10000.0, cfg.Trading.StartingBalance)
	assert.Equal(t, int64(60000), cfg.Discipline.RevengeWindowMS)
	assert.Equal(t, 0.5, cfg.Discipline.OverLeverageFraction)
	assert.Equal(t, 0.005, cfg.Discipline.AdherenceTolerance)
	assert.Equal(t, 8, cfg.Replication.HoldingsCount)
	assert.Equal(t, "v1", cfg.Replication.BasketVersion)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.Trading.StartingBalance)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `[trading]
starting_balance = 25000.0

[discipline]
revenge_window_ms = 120000

[replication]
holdings_count = 5
basket_version = "v2"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 25000.0, cfg.Trading.StartingBalance)
	assert.Equal(t, int64(120000), cfg.Discipline.RevengeWindowMS)
	assert.Equal(t, 5, cfg.Replication.HoldingsCount)
	assert.Equal(t, "v2", cfg.Replication.BasketVersion)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.5, cfg.Discipline.OverLeverageFraction)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	content := `[discipline]
over_leverage_fraction = 1.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COACH_STARTING_BALANCE", "5000")
	t.Setenv("COACH_LOG_LEVEL", "debug")
	t.Setenv("COACH_HOLDINGS_COUNT", "12")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5000.0, cfg.Trading.StartingBalance)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12, cfg.Replication.HoldingsCount)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative starting balance", func(c *Config) { c.Trading.StartingBalance = -1 }},
		{"zero revenge window", func(c *Config) { c.Discipline.RevengeWindowMS = 0 }},
		{"leverage fraction above one", func(c *Config) { c.Discipline.OverLeverageFraction = 1.01 }},
		{"negative tolerance", func(c *Config) { c.Discipline.AdherenceTolerance = -0.1 }},
		{"zero holdings count", func(c *Config) { c.Replication.HoldingsCount = 0 }},
		{"empty basket version", func(c *Config) { c.Replication.BasketVersion = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
