package model

import "time"

// DistrictID identifies a city district. It is a vertex of the distance graph
// and the key of the agent pool.
type DistrictID int

// CategoryMiscellaneous is the offense category whose handling time is drawn at
// random.
const CategoryMiscellaneous = "all_other_crimes"

// Incident represents a reported crime as stored in the events dataset.
type Incident struct {
	ID                   int64
	OffenseCode          int
	OffenseCodeExtension int
	OffenseType          string
	Category             string
	Reported             time.Time
	Address              string
	Lon                  float64
	Lat                  float64
	District             DistrictID
	Precinct             int
	Neighborhood         string
	IsCrime              bool
	IsTraffic            bool
}

// IsMiscellaneous reports whether the incident belongs to the catch-all category.
func (i Incident) IsMiscellaneous() bool {
	return i.Category == CategoryMiscellaneous
}
