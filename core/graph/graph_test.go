package graph

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/patrolsim/core/model"
)

type fakeSource struct {
	districts []model.DistrictID
	centroids map[int]map[model.DistrictID]model.Centroid
	listErr   error
}

func (f *fakeSource) ListDistricts(context.Context) ([]model.DistrictID, error) {
	return f.districts, f.listErr
}

func (f *fakeSource) AverageCentroid(_ context.Context, d model.DistrictID, year int) (model.Centroid, bool, error) {
	c, ok := f.centroids[year][d]
	return c, ok, nil
}

func denverSource() *fakeSource {
	return &fakeSource{
		districts: []model.DistrictID{3, 1, 2, 4},
		centroids: map[int]map[model.DistrictID]model.Centroid{
			2016: {
				1: {Lat: 39.76, Lon: -105.02},
				2: {Lat: 39.77, Lon: -104.92},
				3: {Lat: 39.68, Lon: -104.96},
				4: {Lat: 39.71, Lon: -105.03},
			},
			2017: {
				1: {Lat: 39.76, Lon: -105.02},
				2: {Lat: 39.77, Lon: -104.92},
				4: {Lat: math.NaN(), Lon: -105.03},
			},
		},
	}
}

func TestBuild_Complete(t *testing.T) {
	g, err := NewBuilder(denverSource(), nil).Build(context.Background(), 2016)
	require.NoError(t, err)
	assert.Equal(t, 2016, g.Year())
	assert.Equal(t, 4, g.VertexCount())
	assert.Equal(t, 6, g.EdgeCount())
	assert.Equal(t, []model.DistrictID{1, 2, 3, 4}, g.Vertices())

	for _, a := range g.Vertices() {
		for _, b := range g.Vertices() {
			dab, ok := g.Distance(a, b)
			require.True(t, ok)
			dba, _ := g.Distance(b, a)
			assert.Equal(t, dab, dba, "asymmetric weight %d-%d", a, b)
			if a == b {
				assert.Zero(t, dab)
			} else {
				assert.Greater(t, dab, 0.0)
			}
		}
	}
}

func TestBuild_ExcludesUndefinedCentroids(t *testing.T) {
	g, err := NewBuilder(denverSource(), nil).Build(context.Background(), 2017)
	require.NoError(t, err)
	assert.Equal(t, []model.DistrictID{1, 2}, g.Vertices())
	assert.Equal(t, 1, g.EdgeCount())
	assert.False(t, g.Has(3))
	assert.False(t, g.Has(4))
	assert.Equal(t, []model.DistrictID{3, 4}, g.Excluded())
	_, ok := g.Distance(1, 4)
	assert.False(t, ok)
	d, ok := g.Distance(1, 2)
	require.True(t, ok)
	assert.False(t, math.IsNaN(d))
}

func TestBuild_Idempotent(t *testing.T) {
	src := denverSource()
	b := NewBuilder(src, nil)
	g1, err := b.Build(context.Background(), 2016)
	require.NoError(t, err)
	src.districts = []model.DistrictID{4, 2, 3, 1, 2}
	g2, err := b.Build(context.Background(), 2016)
	require.NoError(t, err)
	require.Equal(t, g1.Vertices(), g2.Vertices())
	for _, a := range g1.Vertices() {
		for _, c := range g1.Vertices() {
			d1, _ := g1.Distance(a, c)
			d2, _ := g2.Distance(a, c)
			assert.Equal(t, d1, d2)
		}
	}
}

func TestBuild_SourceError(t *testing.T) {
	src := &fakeSource{listErr: errors.New("boom")}
	_, err := NewBuilder(src, nil).Build(context.Background(), 2016)
	require.Error(t, err)
}

func TestNeighbors_SortedByDistance(t *testing.T) {
	g := FromDistances(2016, []model.DistrictID{1, 2, 3, 4}, map[[2]model.DistrictID]float64{
		{1, 2}: 5, {1, 3}: 2, {1, 4}: 2, {2, 3}: 1, {2, 4}: 7, {3, 4}: 3,
	})
	ns, err := g.Neighbors(1)
	require.NoError(t, err)
	require.Len(t, ns, 3)
	assert.Equal(t, model.DistrictID(3), ns[0].To)
	assert.Equal(t, model.DistrictID(4), ns[1].To)
	assert.Equal(t, model.DistrictID(2), ns[2].To)
	assert.Equal(t, 5.0, ns[2].Distance)

	_, err = g.Neighbors(9)
	assert.ErrorIs(t, err, ErrUnknownDistrict)
}

func TestGreatCircleKm(t *testing.T) {
	// One degree of latitude is roughly 111 km.
	d := GreatCircleKm(model.Centroid{Lat: 39, Lon: -105}, model.Centroid{Lat: 40, Lon: -105})
	assert.InDelta(t, 111.3, d, 0.5)
}

func TestBuilderCentroid_Undefined(t *testing.T) {
	b := NewBuilder(denverSource(), nil)
	_, err := b.centroid(context.Background(), 3, 2017)
	assert.ErrorIs(t, err, ErrUndefinedCentroid)
	_, err = b.centroid(context.Background(), 4, 2017)
	assert.ErrorIs(t, err, ErrUndefinedCentroid)
	c, err := b.centroid(context.Background(), 1, 2017)
	require.NoError(t, err)
	assert.Equal(t, 39.76, c.Lat)
}
