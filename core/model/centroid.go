package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Centroid is the mean position of the incidents of a district in a year.
type Centroid struct {
	Lat float64
	Lon float64
}

// Valid returns false when either coordinate is not a finite number.
func (c Centroid) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}

// Point converts the centroid to an orb point (lon, lat order).
func (c Centroid) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}
