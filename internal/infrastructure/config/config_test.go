package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharronesofer/worldchaos/internal/infrastructure/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.Simulation.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.Simulation.ScoreTimeout)
	assert.Equal(t, 0.02, cfg.Pressure.DecayRate)
	assert.Equal(t, 1.2, cfg.Pressure.Weights["political"])
	assert.Equal(t, 0.8, cfg.Mitigation.Ceiling)
	assert.Equal(t, 3, cfg.Trigger.MaxEventsPerHour)
	assert.Equal(t, 9091, cfg.Metrics.Port)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadFrom_FileOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
simulation:
  tick_interval: 30s
trigger:
  max_events_per_day: 4
`)

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Simulation.TickInterval)
	assert.Equal(t, 4, cfg.Trigger.MaxEventsPerDay)
	// Fields the file omits keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Simulation.ScoreTimeout)
	assert.Equal(t, 3, cfg.Trigger.MaxEventsPerHour)
}

func TestLoadFrom_MalformedFileErrors(t *testing.T) {
	path := writeConfigFile(t, "simulation: [not: a: mapping\n")

	cfg, err := config.LoadFrom(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "loading config file")
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CHAOS_ENVIRONMENT", "production")
	t.Setenv("CHAOS_METRICS_PORT", "7070")

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 7070, cfg.Metrics.Port)
}

func TestLoadFrom_InvalidSectionFallsBackToDefaults(t *testing.T) {
	path := writeConfigFile(t, `
simulation:
  tick_interval: 30s
pressure:
  decay_rate: 3.0
`)

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)

	// The out-of-range pressure section resets wholesale; the valid
	// simulation override survives.
	assert.Equal(t, 0.02, cfg.Pressure.DecayRate)
	assert.Equal(t, 24*time.Hour, cfg.Pressure.Window)
	assert.Equal(t, 30*time.Second, cfg.Simulation.TickInterval)
}

func TestSourceWeight_Fallback(t *testing.T) {
	p := config.PressureConfig{Weights: map[string]float64{"economic": 1.3}}

	assert.Equal(t, 1.3, p.SourceWeight("economic"))
	assert.Equal(t, 1.0, p.SourceWeight("arcane"))
}
