package sim

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/kilianp07/patrolsim/core/graph"
	"github.com/kilianp07/patrolsim/core/logger"
	"github.com/kilianp07/patrolsim/core/model"
)

const (
	// DefaultSpeedKMH is the travel speed of agents.
	DefaultSpeedKMH = 60.0
	// DefaultLateThreshold is the maximum delay between report and arrival.
	DefaultLateThreshold = 15 * time.Minute
)

// Observer is called after every processed event. pool must not be retained.
type Observer func(ev Event, pool *AgentPool, res Result)

// Simulator runs dispatch simulations against one district graph.
type Simulator struct {
	graph     *graph.DistrictGraph
	speedKMH  float64
	late      time.Duration
	durations DurationPolicy
	rng       *rand.Rand
	log       logger.Logger
	observer  Observer
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSpeed sets the agent travel speed in km/h.
func WithSpeed(kmh float64) Option { return func(s *Simulator) { s.speedKMH = kmh } }

// WithLateThreshold sets the delay after which an arrival is late.
func WithLateThreshold(d time.Duration) Option { return func(s *Simulator) { s.late = d } }

// WithDurations sets the handling duration policy.
func WithDurations(p DurationPolicy) Option { return func(s *Simulator) { s.durations = p } }

// WithRand sets the random source used for handling durations.
func WithRand(r *rand.Rand) Option { return func(s *Simulator) { s.rng = r } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(s *Simulator) { s.log = logger.OrNop(l) } }

// WithObserver registers a callback invoked after each event.
func WithObserver(o Observer) Option { return func(s *Simulator) { s.observer = o } }

// New returns a Simulator bound to g.
func New(g *graph.DistrictGraph, opts ...Option) (*Simulator, error) {
	if g == nil {
		return nil, ErrMissingGraph
	}
	s := &Simulator{
		graph:     g,
		speedKMH:  DefaultSpeedKMH,
		late:      DefaultLateThreshold,
		durations: DefaultDurationPolicy(),
		log:       logger.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.speedKMH <= 0 {
		return nil, fmt.Errorf("sim: speed must be positive, got %v", s.speedKMH)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s, nil
}

// Run simulates the response of n agents, initially stationed at hq, to the
// incidents of one day. Incidents do not need to be sorted.
func (s *Simulator) Run(incidents []model.Incident, hq model.DistrictID, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidAgentCount, n)
	}
	if !s.graph.Has(hq) {
		return Result{}, fmt.Errorf("headquarters: %w: %d", graph.ErrUnknownDistrict, hq)
	}

	incs := slices.Clone(incidents)
	pool := NewAgentPool(s.graph.Vertices(), hq, n)
	q := &eventQueue{items: make([]Event, 0, len(incs))}
	for i := range incs {
		q.schedule(CrimeReported, incs[i].Reported, &incs[i])
	}
	res := Result{Incidents: len(incs)}

	for {
		ev, ok := q.pop()
		if !ok {
			break
		}
		if err := s.handle(ev, pool, q, &res); err != nil {
			return res, err
		}
		if s.observer != nil {
			s.observer(ev, pool, res)
		}
	}
	s.log.Debugw("simulation finished", map[string]any{
		"incidents":  res.Incidents,
		"mishandled": res.Mishandled,
		"no_agent":   res.NoAgent,
		"late":       res.Late,
	})
	return res, nil
}

func (s *Simulator) handle(ev Event, pool *AgentPool, q *eventQueue, res *Result) error {
	inc := ev.Incident
	switch ev.Kind {
	case CrimeReported:
		from, km, ok := s.nearestIdle(pool, inc.District)
		if !ok {
			res.Mishandled++
			res.NoAgent++
			s.log.Debugf("incident %d mishandled: no idle agent", inc.ID)
			return nil
		}
		if err := pool.take(from); err != nil {
			return err
		}
		res.Dispatched++
		q.schedule(AgentArrived, ev.Time.Add(s.TravelTime(km)), inc)
	case AgentArrived:
		q.schedule(IncidentResolved, ev.Time.Add(s.durations.Duration(inc, s.rng)), inc)
		if ev.Time.After(inc.Reported.Add(s.late)) {
			res.Mishandled++
			res.Late++
			s.log.Debugf("incident %d mishandled: agent arrived after %s", inc.ID, ev.Time.Sub(inc.Reported))
		}
	case IncidentResolved:
		if err := pool.release(inc.District); err != nil {
			return err
		}
		res.Resolved++
	default:
		return fmt.Errorf("sim: unknown event kind %d", ev.Kind)
	}
	return nil
}

// nearestIdle picks the district an agent is sent from. The incident's own
// district wins whenever it has an idle agent; otherwise the closest district
// with an idle agent is chosen, ties going to the lowest district id.
func (s *Simulator) nearestIdle(pool *AgentPool, target model.DistrictID) (model.DistrictID, float64, bool) {
	if pool.Idle(target) > 0 {
		return target, 0, true
	}
	best := math.MaxFloat64
	var from model.DistrictID
	found := false
	for _, d := range pool.order {
		if pool.idle[d] == 0 {
			continue
		}
		km, ok := s.graph.Distance(target, d)
		if !ok {
			continue
		}
		if km < best {
			best, from, found = km, d, true
		}
	}
	return from, best, found
}

// TravelTime converts a distance in km to whole seconds of travel at the
// configured speed. Fractions of a second are truncated.
func (s *Simulator) TravelTime(km float64) time.Duration {
	if km <= 0 {
		return 0
	}
	secs := int64(km * 1000 / (s.speedKMH / 3.6))
	return time.Duration(secs) * time.Second
}
