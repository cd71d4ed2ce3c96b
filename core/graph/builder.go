package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/paulmach/orb/geo"

	"github.com/kilianp07/patrolsim/core/logger"
	"github.com/kilianp07/patrolsim/core/model"
)

// CentroidSource provides the aggregates the builder needs from the incident
// dataset.
type CentroidSource interface {
	ListDistricts(ctx context.Context) ([]model.DistrictID, error)
	// AverageCentroid returns the mean incident position of the district in the
	// given year. ok is false when the district has no incident that year.
	AverageCentroid(ctx context.Context, d model.DistrictID, year int) (c model.Centroid, ok bool, err error)
}

// ErrUndefinedCentroid marks a district with no usable centroid for the
// requested year. Build excludes such districts instead of failing.
var ErrUndefinedCentroid = errors.New("graph: undefined centroid")

// Builder constructs district graphs from a CentroidSource.
type Builder struct {
	src CentroidSource
	log logger.Logger
}

// NewBuilder returns a Builder reading from src. A nil logger discards output.
func NewBuilder(src CentroidSource, log logger.Logger) *Builder {
	return &Builder{src: src, log: logger.OrNop(log)}
}

// Build returns the complete graph of the districts with a defined centroid in
// year. Districts without incidents in that year are left out of the graph.
func (b *Builder) Build(ctx context.Context, year int) (*DistrictGraph, error) {
	districts, err := b.src.ListDistricts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	seen := make(map[model.DistrictID]bool, len(districts))
	var included, excluded []model.DistrictID
	centroids := make(map[model.DistrictID]model.Centroid, len(districts))
	for _, d := range districts {
		if seen[d] {
			continue
		}
		seen[d] = true
		c, err := b.centroid(ctx, d, year)
		if errors.Is(err, ErrUndefinedCentroid) {
			b.log.Warnf("district %d has no incidents in %d, excluded from graph", d, year)
			excluded = append(excluded, d)
			continue
		}
		if err != nil {
			return nil, err
		}
		centroids[d] = c
		included = append(included, d)
	}

	g := newDistrictGraph(year, included)
	slices.Sort(excluded)
	g.excluded = excluded
	vs := g.vertices
	for i := 0; i < len(vs); i++ {
		for j := i + 1; j < len(vs); j++ {
			g.setDistance(vs[i], vs[j], GreatCircleKm(centroids[vs[i]], centroids[vs[j]]))
		}
	}
	b.log.Debugw("district graph built", map[string]any{
		"year":     year,
		"vertices": g.VertexCount(),
		"edges":    g.EdgeCount(),
		"excluded": len(excluded),
	})
	return g, nil
}

func (b *Builder) centroid(ctx context.Context, d model.DistrictID, year int) (model.Centroid, error) {
	c, ok, err := b.src.AverageCentroid(ctx, d, year)
	if err != nil {
		return model.Centroid{}, fmt.Errorf("centroid of district %d: %w", d, err)
	}
	if !ok || !c.Valid() {
		return model.Centroid{}, fmt.Errorf("%w: district %d in %d", ErrUndefinedCentroid, d, year)
	}
	return c, nil
}

// GreatCircleKm returns the haversine distance between two centroids in km.
func GreatCircleKm(a, b model.Centroid) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point()) / 1000
}

// FromDistances builds a graph directly from a distance table. Missing pairs
// default to zero. It is meant for tests and synthetic scenarios.
func FromDistances(year int, vertices []model.DistrictID, km map[[2]model.DistrictID]float64) *DistrictGraph {
	g := newDistrictGraph(year, vertices)
	for pair, d := range km {
		if pair[0] == pair[1] || !g.Has(pair[0]) || !g.Has(pair[1]) {
			continue
		}
		g.setDistance(pair[0], pair[1], d)
	}
	return g
}
