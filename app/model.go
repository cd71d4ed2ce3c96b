// Package app wires the incident store, the graph builder and the dispatch
// simulator behind the operations exposed to the command line.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/patrolsim/config"
	"github.com/kilianp07/patrolsim/core/graph"
	"github.com/kilianp07/patrolsim/core/logger"
	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
	"github.com/kilianp07/patrolsim/core/model"
	"github.com/kilianp07/patrolsim/core/sim"
)

// Store is the data-access contract of the model.
type Store interface {
	graph.CentroidSource
	DistrictWithFewestIncidents(ctx context.Context, year int) (model.DistrictID, error)
	IncidentsOn(ctx context.Context, p model.Period) ([]model.Incident, error)
	Years(ctx context.Context) ([]int, error)
	Months(ctx context.Context) ([]int, error)
	Days(ctx context.Context) ([]int, error)
}

// Model orchestrates graph builds and simulation runs.
type Model struct {
	store   Store
	builder *graph.Builder
	sink    coremetrics.MetricsSink
	cfg     config.SimulationConfig
	log     logger.Logger

	mu    sync.Mutex
	seeds *rand.Rand
}

// New returns a Model. A nil sink discards records and a nil logger discards
// output. cfg defaults are applied.
func New(store Store, sink coremetrics.MetricsSink, cfg config.SimulationConfig, log logger.Logger) *Model {
	cfg.SetDefaults()
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	log = logger.OrNop(log)
	return &Model{
		store:   store,
		builder: graph.NewBuilder(store, log),
		sink:    sink,
		cfg:     cfg,
		log:     log,
		seeds:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Years lists the years present in the dataset.
func (m *Model) Years(ctx context.Context) ([]int, error) { return m.store.Years(ctx) }

// Months lists the months present in the dataset.
func (m *Model) Months(ctx context.Context) ([]int, error) { return m.store.Months(ctx) }

// Days lists the days of month present in the dataset.
func (m *Model) Days(ctx context.Context) ([]int, error) { return m.store.Days(ctx) }

// BuildGraph builds the district graph of year.
func (m *Model) BuildGraph(ctx context.Context, year int) (*graph.DistrictGraph, error) {
	g, err := m.builder.Build(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("build graph %d: %w", year, err)
	}
	m.log.Infof("graph %d: %d districts, %d edges", year, g.VertexCount(), g.EdgeCount())
	if r, ok := m.sink.(coremetrics.GraphRecorder); ok {
		if err := r.RecordGraph(coremetrics.GraphEvent{
			Year:     year,
			Vertices: g.VertexCount(),
			Edges:    g.EdgeCount(),
			Excluded: len(g.Excluded()),
			Time:     time.Now(),
		}); err != nil {
			m.log.Errorf("record graph: %v", err)
		}
	}
	return g, nil
}

// day is the input of a batch of runs on the same date.
type day struct {
	period    model.Period
	incidents []model.Incident
	hq        model.DistrictID
}

// prepare validates the request and loads the incidents and headquarters of
// the day. An empty day yields no incidents and no headquarters lookup.
func (m *Model) prepare(ctx context.Context, g *graph.DistrictGraph, p model.Period) (day, error) {
	if g == nil || g.Year() != p.Year {
		return day{}, fmt.Errorf("%w for year %d", sim.ErrMissingGraph, p.Year)
	}
	if err := p.Validate(); err != nil {
		return day{}, fmt.Errorf("%w: %v", sim.ErrInvalidPeriod, err)
	}
	incs, err := m.store.IncidentsOn(ctx, p)
	if err != nil {
		return day{}, fmt.Errorf("incidents of %s: %w", p, err)
	}
	d := day{period: p, incidents: incs}
	if len(incs) == 0 {
		m.log.Warnf("no incidents on %s, nothing to simulate", p)
		return d, nil
	}
	hq, err := m.store.DistrictWithFewestIncidents(ctx, p.Year)
	if err != nil {
		return day{}, fmt.Errorf("headquarters for %d: %w", p.Year, err)
	}
	d.hq = hq
	return d, nil
}

// newRand returns the random source of one run. With a configured seed the
// stream depends only on key, so repeated invocations reproduce results.
func (m *Model) newRand(key int64) *rand.Rand {
	if m.cfg.Seed != 0 {
		return rand.New(rand.NewSource(m.cfg.Seed + key))
	}
	m.mu.Lock()
	seed := m.seeds.Int63()
	m.mu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (m *Model) run(g *graph.DistrictGraph, d day, n int, rng *rand.Rand) (sim.Result, error) {
	if len(d.incidents) == 0 {
		return sim.Result{}, nil
	}
	opts := append(m.cfg.Options(), sim.WithRand(rng), sim.WithLogger(m.log))
	s, err := sim.New(g, opts...)
	if err != nil {
		return sim.Result{}, err
	}
	return s.Run(d.incidents, d.hq, n)
}

// RunSimulation simulates n agents on the given day against g, the graph of
// the same year, and returns the run summary.
func (m *Model) RunSimulation(ctx context.Context, g *graph.DistrictGraph, year, month, dayOfMonth, n int) (sim.Result, error) {
	if n <= 0 {
		return sim.Result{}, fmt.Errorf("%w: %d", sim.ErrInvalidAgentCount, n)
	}
	p := model.Period{Year: year, Month: month, Day: dayOfMonth}
	d, err := m.prepare(ctx, g, p)
	if err != nil {
		return sim.Result{}, err
	}

	start := time.Now()
	res, err := m.run(g, d, n, m.newRand(int64(n)))
	if err != nil {
		return res, fmt.Errorf("simulate %s with %d agents: %w", p, n, err)
	}
	if len(d.incidents) > 0 {
		m.record(d, n, res, time.Since(start))
	}
	m.log.Infof("%s with %d agents: %d of %d incidents mishandled", p, n, res.Mishandled, res.Incidents)
	return res, nil
}

func (m *Model) record(d day, n int, res sim.Result, elapsed time.Duration) {
	rec := coremetrics.RunRecord{
		RunID:      uuid.NewString(),
		Year:       d.period.Year,
		Month:      d.period.Month,
		Day:        d.period.Day,
		Agents:     n,
		HQ:         int(d.hq),
		Incidents:  res.Incidents,
		Mishandled: res.Mishandled,
		NoAgent:    res.NoAgent,
		Late:       res.Late,
		Elapsed:    elapsed,
		Time:       time.Now(),
	}
	if err := m.sink.RecordRun(rec); err != nil {
		m.log.Errorf("record run %s: %v", rec.RunID, err)
	}
}
