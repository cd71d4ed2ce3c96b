package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/patrolsim/core/sim"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `storage:
  path: "/tmp/crimes.db"
simulation:
  speed_kmh: 40
  late_threshold_minutes: 20
  seed: 7
  concurrency: 2
metrics:
  sinks:
    - type: "nop"
    - type: "mqtt"
      conf:
        broker: "tcp://localhost:1883"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"storage.path", cfg.Storage.Path, "/tmp/crimes.db"},
		{"storage.batch_size", cfg.Storage.BatchSize, 1000},
		{"speed_kmh", cfg.Simulation.SpeedKMH, 40.0},
		{"late_threshold_minutes", cfg.Simulation.LateThresholdMinutes, 20},
		{"misc_category", cfg.Simulation.MiscCategory, "all_other_crimes"},
		{"handling_long_minutes", cfg.Simulation.HandlingLongMinutes, 3},
		{"handling_short_minutes", cfg.Simulation.HandlingShortMinutes, 2},
		{"seed", cfg.Simulation.Seed, int64(7)},
		{"concurrency", cfg.Simulation.Concurrency, 2},
		{"trials", cfg.Simulation.Trials, 10},
		{"metrics_sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics_sink_type", cfg.Metrics.Sinks[1].Type, "mqtt"},
		{"metrics_sink_conf", cfg.Metrics.Sinks[1].Conf["broker"], "tcp://localhost:1883"},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"simulation": {"speed_kmh": 50}}`)
	t.Setenv("K_SIMULATION__SPEED_KMH", "30")
	t.Setenv("K_STORAGE__PATH", "env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Simulation.SpeedKMH != 30 {
		t.Fatalf("speed not overridden: %v", cfg.Simulation.SpeedKMH)
	}
	if cfg.Storage.Path != "env.db" {
		t.Fatalf("storage path not overridden: %s", cfg.Storage.Path)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Simulation.SpeedKMH != sim.DefaultSpeedKMH || cfg.Storage.Path != "denver_crimes.db" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	p := cfg.Simulation.DurationPolicy()
	if p != sim.DefaultDurationPolicy() {
		t.Fatalf("duration policy %+v differs from default", p)
	}
	if len(cfg.Simulation.Options()) != 3 {
		t.Fatalf("unexpected option count")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", "")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := Load(writeConfig(t, "bad.yaml", "simulation:\n  speed_kmh: -1\n")); err == nil {
		t.Fatalf("expected invalid speed error")
	}
	if _, err := Load(writeConfig(t, "bad.yaml", "logging:\n  level: loud\n")); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestSimulationDurationPolicy(t *testing.T) {
	c := SimulationConfig{HandlingLongMinutes: 5, MiscCategory: "noise"}
	c.SetDefaults()
	p := c.DurationPolicy()
	if p.Long != 5*time.Minute || p.Short != 2*time.Minute || p.MiscCategory != "noise" {
		t.Fatalf("unexpected policy %+v", p)
	}
}
