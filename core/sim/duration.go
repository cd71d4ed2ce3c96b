package sim

import (
	"math/rand"
	"time"

	"github.com/kilianp07/patrolsim/core/model"
)

const (
	// DefaultHandlingLong is the handling time of ordinary incidents.
	DefaultHandlingLong = 3 * time.Minute
	// DefaultHandlingShort is the alternative outcome for miscellaneous incidents.
	DefaultHandlingShort = 2 * time.Minute
)

// DurationPolicy decides how long an agent stays at the scene of an incident.
type DurationPolicy struct {
	MiscCategory string
	Long         time.Duration
	Short        time.Duration
}

// DefaultDurationPolicy returns the standard three/two minute policy.
func DefaultDurationPolicy() DurationPolicy {
	return DurationPolicy{
		MiscCategory: model.CategoryMiscellaneous,
		Long:         DefaultHandlingLong,
		Short:        DefaultHandlingShort,
	}
}

// Duration returns the handling time of inc. Incidents of the miscellaneous
// category take Long or Short with equal probability; every other category
// takes Long.
func (p DurationPolicy) Duration(inc *model.Incident, rng *rand.Rand) time.Duration {
	if inc.Category != p.MiscCategory {
		return p.Long
	}
	if rng.Float64() > 0.5 {
		return p.Long
	}
	return p.Short
}
