package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/patrolsim/core/graph"
	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
	"github.com/kilianp07/patrolsim/core/model"
	"github.com/kilianp07/patrolsim/core/sim"
)

// SweepResult aggregates the trials of one agent count.
type SweepResult struct {
	Agents     int
	Mishandled []int
	Mean       float64
	StdDev     float64
}

// Sweep runs trials independent simulations of p for every agent count and
// returns, in the order of agentCounts, the mean and sample standard
// deviation of the mishandled counts. Runs execute concurrently and share g.
func (m *Model) Sweep(ctx context.Context, g *graph.DistrictGraph, p model.Period, agentCounts []int, trials int) ([]SweepResult, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", trials)
	}
	if len(agentCounts) == 0 {
		return nil, fmt.Errorf("no agent counts to sweep")
	}
	for _, n := range agentCounts {
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d", sim.ErrInvalidAgentCount, n)
		}
	}
	d, err := m.prepare(ctx, g, p)
	if err != nil {
		return nil, err
	}

	counts := make([][]int, len(agentCounts))
	for i := range counts {
		counts[i] = make([]int, trials)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(m.cfg.Concurrency)
	for i, n := range agentCounts {
		for t := 0; t < trials; t++ {
			key := int64(n)*1_000_003 + int64(t)
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := m.run(g, d, n, m.newRand(key))
				if err != nil {
					return fmt.Errorf("sweep %s with %d agents: %w", p, n, err)
				}
				counts[i][t] = res.Mishandled
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(agentCounts))
	points := make([]coremetrics.SweepPoint, len(agentCounts))
	now := time.Now()
	for i, n := range agentCounts {
		xs := make([]float64, trials)
		for t, c := range counts[i] {
			xs[t] = float64(c)
		}
		mean, std := stat.MeanStdDev(xs, nil)
		if trials == 1 {
			std = 0
		}
		out[i] = SweepResult{Agents: n, Mishandled: slices.Clone(counts[i]), Mean: mean, StdDev: std}
		points[i] = coremetrics.SweepPoint{
			Year: p.Year, Month: p.Month, Day: p.Day,
			Agents: n, Trials: trials, Mean: mean, StdDev: std, Time: now,
		}
	}
	if r, ok := m.sink.(coremetrics.SweepRecorder); ok {
		if err := r.RecordSweep(points); err != nil {
			m.log.Errorf("record sweep: %v", err)
		}
	}
	m.log.Debugw("sweep finished", map[string]any{
		"period": p.String(),
		"counts": len(agentCounts),
		"trials": trials,
	})
	return out, nil
}
