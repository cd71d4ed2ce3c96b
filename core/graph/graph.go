package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/patrolsim/core/model"
)

// ErrUnknownDistrict is returned when a district is not a vertex of the graph.
var ErrUnknownDistrict = errors.New("graph: unknown district")

// Adjacency is a neighbour of a vertex together with the edge weight.
type Adjacency struct {
	From     model.DistrictID
	To       model.DistrictID
	Distance float64 // km
}

// DistrictGraph is an immutable complete graph over the districts observed in
// a year. It is safe for concurrent use by multiple readers.
type DistrictGraph struct {
	year     int
	vertices []model.DistrictID
	index    map[model.DistrictID]int
	dist     *mat.SymDense
	excluded []model.DistrictID
}

func newDistrictGraph(year int, vertices []model.DistrictID) *DistrictGraph {
	sorted := append([]model.DistrictID(nil), vertices...)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	idx := make(map[model.DistrictID]int, len(sorted))
	for i, v := range sorted {
		idx[v] = i
	}
	g := &DistrictGraph{year: year, vertices: sorted, index: idx}
	if len(sorted) > 0 {
		g.dist = mat.NewSymDense(len(sorted), nil)
	}
	return g
}

func (g *DistrictGraph) setDistance(a, b model.DistrictID, km float64) {
	g.dist.SetSym(g.index[a], g.index[b], km)
}

// Year returns the year the graph was built for.
func (g *DistrictGraph) Year() int { return g.year }

// VertexCount returns the number of districts in the graph.
func (g *DistrictGraph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges, always n*(n-1)/2.
func (g *DistrictGraph) EdgeCount() int {
	n := len(g.vertices)
	return n * (n - 1) / 2
}

// Vertices returns the districts in ascending order.
func (g *DistrictGraph) Vertices() []model.DistrictID {
	return append([]model.DistrictID(nil), g.vertices...)
}

// Excluded returns the districts left out of the graph because they had no
// defined centroid in the year, in ascending order.
func (g *DistrictGraph) Excluded() []model.DistrictID {
	return append([]model.DistrictID(nil), g.excluded...)
}

// Has reports whether d is a vertex.
func (g *DistrictGraph) Has(d model.DistrictID) bool {
	_, ok := g.index[d]
	return ok
}

// Distance returns the edge weight between a and b in kilometres. The distance
// of a vertex to itself is zero. ok is false if either district is absent.
func (g *DistrictGraph) Distance(a, b model.DistrictID) (float64, bool) {
	i, ok := g.index[a]
	if !ok {
		return 0, false
	}
	j, ok := g.index[b]
	if !ok {
		return 0, false
	}
	if i == j {
		return 0, true
	}
	return g.dist.At(i, j), true
}

// Neighbors lists every other vertex sorted by ascending distance from d.
// Equal distances are ordered by district id.
func (g *DistrictGraph) Neighbors(d model.DistrictID) ([]Adjacency, error) {
	i, ok := g.index[d]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDistrict, d)
	}
	out := make([]Adjacency, 0, len(g.vertices)-1)
	for j, v := range g.vertices {
		if j == i {
			continue
		}
		out = append(out, Adjacency{From: d, To: v, Distance: g.dist.At(i, j)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Distance == out[b].Distance {
			return out[a].To < out[b].To
		}
		return out[a].Distance < out[b].Distance
	})
	return out, nil
}
