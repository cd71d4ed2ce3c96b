package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/patrolsim/core/model"
	"github.com/kilianp07/patrolsim/core/sim"
)

// SimulationConfig holds the dispatch model parameters and the sweep
// execution settings.
type SimulationConfig struct {
	SpeedKMH             float64 `json:"speed_kmh"`
	LateThresholdMinutes int     `json:"late_threshold_minutes"`
	MiscCategory         string  `json:"misc_category"`
	HandlingLongMinutes  int     `json:"handling_long_minutes"`
	HandlingShortMinutes int     `json:"handling_short_minutes"`
	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed        int64 `json:"seed"`
	Concurrency int   `json:"concurrency"`
	Trials      int   `json:"trials"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.SpeedKMH == 0 {
		c.SpeedKMH = sim.DefaultSpeedKMH
	}
	if c.LateThresholdMinutes == 0 {
		c.LateThresholdMinutes = int(sim.DefaultLateThreshold / time.Minute)
	}
	if c.MiscCategory == "" {
		c.MiscCategory = model.CategoryMiscellaneous
	}
	if c.HandlingLongMinutes == 0 {
		c.HandlingLongMinutes = int(sim.DefaultHandlingLong / time.Minute)
	}
	if c.HandlingShortMinutes == 0 {
		c.HandlingShortMinutes = int(sim.DefaultHandlingShort / time.Minute)
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Trials <= 0 {
		c.Trials = 10
	}
}

func (c SimulationConfig) Validate() error {
	if c.SpeedKMH <= 0 {
		return fmt.Errorf("speed_kmh must be positive, got %v", c.SpeedKMH)
	}
	if c.LateThresholdMinutes <= 0 {
		return fmt.Errorf("late_threshold_minutes must be positive")
	}
	if c.HandlingLongMinutes <= 0 || c.HandlingShortMinutes <= 0 {
		return fmt.Errorf("handling durations must be positive")
	}
	return nil
}

// DurationPolicy converts the handling settings.
func (c SimulationConfig) DurationPolicy() sim.DurationPolicy {
	return sim.DurationPolicy{
		MiscCategory: c.MiscCategory,
		Long:         time.Duration(c.HandlingLongMinutes) * time.Minute,
		Short:        time.Duration(c.HandlingShortMinutes) * time.Minute,
	}
}

// Options returns the simulator options derived from the settings. The
// random source is chosen per run by the caller.
func (c SimulationConfig) Options() []sim.Option {
	return []sim.Option{
		sim.WithSpeed(c.SpeedKMH),
		sim.WithLateThreshold(time.Duration(c.LateThresholdMinutes) * time.Minute),
		sim.WithDurations(c.DurationPolicy()),
	}
}
