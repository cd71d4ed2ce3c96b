package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/kilianp07/patrolsim/core/factory"
)

type recordSink struct {
	runs, graphs, sweeps, flushes int
	err                           error
}

func (r *recordSink) RecordRun(RunRecord) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordGraph(GraphEvent) error {
	r.graphs++
	return nil
}

func (r *recordSink) RecordSweep([]SweepPoint) error {
	r.sweeps++
	return nil
}

func (r *recordSink) Flush() error {
	r.flushes++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunRecord) error {
	r.runs++
	return nil
}

func TestMultiSink_Forwards(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(RunRecord{Mishandled: 3}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordGraph(GraphEvent{Vertices: 7}); err != nil {
		t.Fatalf("record graph: %v", err)
	}
	if err := m.RecordSweep([]SweepPoint{{Agents: 1}}); err != nil {
		t.Fatalf("record sweep: %v", err)
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s1.runs != 1 || s1.graphs != 1 || s1.sweeps != 1 || s1.flushes != 1 {
		t.Fatalf("records not forwarded: %+v", s1)
	}
	if s2.runs != 1 {
		t.Fatalf("run not forwarded to run-only sink")
	}
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) RecordRun(rec RunRecord) error {
	return m.Called(rec).Error(0)
}

func (m *mockSink) RecordGraph(ev GraphEvent) error {
	return m.Called(ev).Error(0)
}

func (m *mockSink) RecordSweep(points []SweepPoint) error {
	return m.Called(points).Error(0)
}

func TestMultiSink_ForwardsArguments(t *testing.T) {
	rec := RunRecord{RunID: "r1", Year: 2016, Agents: 5, Incidents: 12, Mishandled: 4}
	ev := GraphEvent{Year: 2016, Vertices: 7, Edges: 21}
	pts := []SweepPoint{{Agents: 5, Mean: 4, StdDev: 1}}

	s := &mockSink{}
	s.On("RecordRun", rec).Return(nil).Once()
	s.On("RecordGraph", ev).Return(nil).Once()
	s.On("RecordSweep", pts).Return(nil).Once()

	m := NewMultiSink(s)
	if err := m.RecordRun(rec); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordGraph(ev); err != nil {
		t.Fatalf("record graph: %v", err)
	}
	if err := m.RecordSweep(pts); err != nil {
		t.Fatalf("record sweep: %v", err)
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("flush without flusher: %v", err)
	}
	s.AssertExpectations(t)
}

func TestMultiSink_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	if err := NewMultiSink(s1, s2).RecordRun(RunRecord{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.runs != 0 {
		t.Fatalf("second sink should not be called after error")
	}
}

func TestNewMetricsSink(t *testing.T) {
	s, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create default: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	if m, ok := s.(*MultiSink); !ok || len(m.Sinks) != 2 {
		t.Fatalf("expected MultiSink with two sinks, got %T", s)
	}
	if _, err := NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
