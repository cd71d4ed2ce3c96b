package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
	"github.com/kilianp07/patrolsim/infra/logger"
)

// PromConfig configures the Prometheus sink. When PushURL is set, Flush
// pushes the gathered metrics to a Pushgateway under Job.
type PromConfig struct {
	PushURL string `json:"push_url"`
	Job     string `json:"job"`
}

// PromSink records simulation runs in Prometheus metrics.
type PromSink struct {
	runs       prometheus.Counter
	incidents  *prometheus.CounterVec
	mishandled prometheus.Histogram
	elapsed    prometheus.Histogram
	vertices   *prometheus.GaugeVec
	edges      *prometheus.GaugeVec
	sweepMean  *prometheus.GaugeVec
	sweepStd   *prometheus.GaugeVec

	pusher *push.Pusher
	log    logger.Logger
}

// NewPromSink registers the metrics on the default Prometheus registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, nil)
}

// NewPromSinkWithRegistry registers the metrics on reg. A nil registry
// defaults to the global Prometheus registerer and gatherer.
func NewPromSinkWithRegistry(cfg PromConfig, reg *prometheus.Registry) (*PromSink, error) {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	s := &PromSink{log: logger.New("prom-sink")}
	var err error
	if s.runs, err = register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "patrolsim_runs_total",
		Help: "Number of completed simulation runs",
	})); err != nil {
		return nil, err
	}
	if s.incidents, err = register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "patrolsim_incidents_total",
		Help: "Simulated incidents by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.mishandled, err = register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "patrolsim_run_mishandled",
		Help:    "Mishandled incidents per run",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})); err != nil {
		return nil, err
	}
	if s.elapsed, err = register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "patrolsim_run_duration_seconds",
		Help:    "Wall clock duration of a simulation run",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})); err != nil {
		return nil, err
	}
	if s.vertices, err = register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "patrolsim_graph_vertices",
		Help: "Districts included in the graph of a year",
	}, []string{"year"})); err != nil {
		return nil, err
	}
	if s.edges, err = register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "patrolsim_graph_edges",
		Help: "Edges of the graph of a year",
	}, []string{"year"})); err != nil {
		return nil, err
	}
	if s.sweepMean, err = register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "patrolsim_sweep_mishandled_mean",
		Help: "Mean mishandled incidents for an agent count",
	}, []string{"agents"})); err != nil {
		return nil, err
	}
	if s.sweepStd, err = register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "patrolsim_sweep_mishandled_stddev",
		Help: "Standard deviation of mishandled incidents for an agent count",
	}, []string{"agents"})); err != nil {
		return nil, err
	}

	if cfg.PushURL != "" {
		job := cfg.Job
		if job == "" {
			job = "patrolsim"
		}
		s.pusher = push.New(cfg.PushURL, job).Gatherer(gatherer)
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counters and histograms.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.Inc()
	handled := rec.Incidents - rec.Mishandled
	if handled > 0 {
		s.incidents.WithLabelValues("handled").Add(float64(handled))
	}
	if rec.NoAgent > 0 {
		s.incidents.WithLabelValues("no_agent").Add(float64(rec.NoAgent))
	}
	if rec.Late > 0 {
		s.incidents.WithLabelValues("late").Add(float64(rec.Late))
	}
	s.mishandled.Observe(float64(rec.Mishandled))
	s.elapsed.Observe(rec.Elapsed.Seconds())
	return nil
}

// RecordGraph sets the graph size gauges for the year.
func (s *PromSink) RecordGraph(ev coremetrics.GraphEvent) error {
	y := strconv.Itoa(ev.Year)
	s.vertices.WithLabelValues(y).Set(float64(ev.Vertices))
	s.edges.WithLabelValues(y).Set(float64(ev.Edges))
	return nil
}

// RecordSweep sets one mean/stddev gauge pair per agent count.
func (s *PromSink) RecordSweep(points []coremetrics.SweepPoint) error {
	for _, p := range points {
		n := strconv.Itoa(p.Agents)
		s.sweepMean.WithLabelValues(n).Set(p.Mean)
		s.sweepStd.WithLabelValues(n).Set(p.StdDev)
	}
	return nil
}

// Flush pushes to the configured Pushgateway. Without one it does nothing.
func (s *PromSink) Flush() error {
	if s.pusher == nil {
		return nil
	}
	if err := s.pusher.Push(); err != nil {
		s.log.Errorf("pushgateway push failed: %v", err)
		return err
	}
	return nil
}
