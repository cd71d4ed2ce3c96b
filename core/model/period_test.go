package model

import (
	"math"
	"testing"
)

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{Period{2016, 2, 29}, true},
		{Period{2017, 2, 29}, false},
		{Period{2017, 4, 31}, false},
		{Period{2017, 13, 1}, false},
		{Period{2017, 1, 0}, false},
		{Period{2017, 12, 31}, true},
	}
	for _, c := range cases {
		err := c.p.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.p, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error", c.p)
		}
	}
}

func TestCentroidValid(t *testing.T) {
	if !(Centroid{Lat: 39.7, Lon: -104.9}).Valid() {
		t.Fatalf("expected valid centroid")
	}
	if (Centroid{Lat: math.NaN(), Lon: -104.9}).Valid() {
		t.Fatalf("NaN latitude must be invalid")
	}
	p := Centroid{Lat: 1, Lon: 2}.Point()
	if p.Lon() != 2 || p.Lat() != 1 {
		t.Fatalf("unexpected point %v", p)
	}
}

func TestIncidentIsMiscellaneous(t *testing.T) {
	if !(Incident{Category: CategoryMiscellaneous}).IsMiscellaneous() {
		t.Fatalf("expected miscellaneous")
	}
	if (Incident{Category: "burglary"}).IsMiscellaneous() {
		t.Fatalf("burglary is not miscellaneous")
	}
}
