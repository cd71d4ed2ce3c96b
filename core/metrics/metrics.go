package metrics

import "time"

// RunRecord describes one completed simulation run.
type RunRecord struct {
	RunID      string        `json:"run_id"`
	Year       int           `json:"year"`
	Month      int           `json:"month"`
	Day        int           `json:"day"`
	Agents     int           `json:"agents"`
	HQ         int           `json:"headquarters"`
	Incidents  int           `json:"incidents"`
	Mishandled int           `json:"mishandled"`
	NoAgent    int           `json:"no_agent"`
	Late       int           `json:"late"`
	Elapsed    time.Duration `json:"elapsed"`
	Time       time.Time     `json:"time"`
}

// MetricsSink records simulation runs for observability purposes.
type MetricsSink interface {
	RecordRun(rec RunRecord) error
}

// GraphEvent captures the size of a freshly built district graph.
type GraphEvent struct {
	Year     int       `json:"year"`
	Vertices int       `json:"vertices"`
	Edges    int       `json:"edges"`
	Excluded int       `json:"excluded"`
	Time     time.Time `json:"time"`
}

// GraphRecorder records graph builds.
type GraphRecorder interface {
	RecordGraph(ev GraphEvent) error
}

// SweepPoint aggregates the runs of one agent count in a sweep.
type SweepPoint struct {
	Year   int       `json:"year"`
	Month  int       `json:"month"`
	Day    int       `json:"day"`
	Agents int       `json:"agents"`
	Trials int       `json:"trials"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"stddev"`
	Time   time.Time `json:"time"`
}

// SweepRecorder records sweep aggregates.
type SweepRecorder interface {
	RecordSweep(points []SweepPoint) error
}

// Flusher is implemented by sinks that buffer and must be flushed before exit.
type Flusher interface {
	Flush() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error      { return nil }
func (NopSink) RecordGraph(GraphEvent) error   { return nil }
func (NopSink) RecordSweep([]SweepPoint) error { return nil }
func (NopSink) Flush() error                   { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordGraph forwards graph events to sinks supporting them.
func (m *MultiSink) RecordGraph(ev GraphEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(GraphRecorder); ok {
			if err := r.RecordGraph(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSweep forwards sweep aggregates to sinks supporting them.
func (m *MultiSink) RecordSweep(points []SweepPoint) error {
	for _, s := range m.Sinks {
		if r, ok := s.(SweepRecorder); ok {
			if err := r.RecordSweep(points); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every sink that buffers.
func (m *MultiSink) Flush() error {
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}
