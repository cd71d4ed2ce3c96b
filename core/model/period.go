package model

import (
	"fmt"
	"time"
)

// Period is a single calendar day of the dataset.
type Period struct {
	Year  int
	Month int
	Day   int
}

// Validate checks that the period forms a real calendar date.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Day < 1 {
		return fmt.Errorf("invalid date %s", p)
	}
	d := time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
	if d.Year() != p.Year || int(d.Month()) != p.Month || d.Day() != p.Day {
		return fmt.Errorf("invalid date %s", p)
	}
	return nil
}

// Start returns midnight UTC of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
}
