package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/kilianp07/patrolsim/core/model"
)

const (
	yearExpr  = `CAST(strftime('%Y', reported_date) AS INTEGER)`
	monthExpr = `CAST(strftime('%m', reported_date) AS INTEGER)`
	dayExpr   = `CAST(strftime('%d', reported_date) AS INTEGER)`

	// geolocated restricts a query to the incidents that contribute to a
	// district centroid, so headquarters, graph and simulated days share one
	// population.
	geolocated = `geo_lat IS NOT NULL AND geo_lon IS NOT NULL`
)

// ListDistricts returns every district present in the dataset, ascending.
func (s *SQLiteStore) ListDistricts(ctx context.Context) ([]model.DistrictID, error) {
	var ids []model.DistrictID
	err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT district_id FROM events ORDER BY district_id`)
	return ids, eris.Wrap(err, "store: list districts")
}

// AverageCentroid returns the mean coordinates of the district's incidents in
// year. ok is false when no geolocated incident exists.
func (s *SQLiteStore) AverageCentroid(ctx context.Context, d model.DistrictID, year int) (model.Centroid, bool, error) {
	var row struct {
		Lat sql.NullFloat64 `db:"lat"`
		Lon sql.NullFloat64 `db:"lon"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT AVG(geo_lat) AS lat, AVG(geo_lon) AS lon
		FROM events
		WHERE `+yearExpr+` = ? AND district_id = ? AND `+geolocated, year, int(d))
	if err != nil {
		return model.Centroid{}, false, eris.Wrapf(err, "store: centroid of district %d", d)
	}
	if !row.Lat.Valid || !row.Lon.Valid {
		return model.Centroid{}, false, nil
	}
	return model.Centroid{Lat: row.Lat.Float64, Lon: row.Lon.Float64}, true, nil
}

// DistrictWithFewestIncidents returns the district with the lowest count of
// geolocated incidents in year. Ties go to the lowest district id.
func (s *SQLiteStore) DistrictWithFewestIncidents(ctx context.Context, year int) (model.DistrictID, error) {
	var id model.DistrictID
	err := s.db.GetContext(ctx, &id, `SELECT district_id
		FROM events
		WHERE `+yearExpr+` = ? AND `+geolocated+`
		GROUP BY district_id
		ORDER BY COUNT(*) ASC, district_id ASC
		LIMIT 1`, year)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, eris.Wrapf(ErrNoIncidents, "store: year %d", year)
	}
	return id, eris.Wrapf(err, "store: fewest incidents in %d", year)
}

// IncidentsOn returns the geolocated incidents reported on the given day
// ordered by report time, then incident id.
func (s *SQLiteStore) IncidentsOn(ctx context.Context, p model.Period) ([]model.Incident, error) {
	var rows []incidentRow
	err := s.db.SelectContext(ctx, &rows, `SELECT incident_id, offense_code, offense_code_extension,
		offense_type_id, offense_category_id, reported_date, incident_address, geo_lon, geo_lat,
		district_id, precinct_id, neighborhood_id, is_crime, is_traffic
		FROM events
		WHERE `+yearExpr+` = ? AND `+monthExpr+` = ? AND `+dayExpr+` = ? AND `+geolocated+`
		ORDER BY reported_date, incident_id`, p.Year, p.Month, p.Day)
	if err != nil {
		return nil, eris.Wrapf(err, "store: incidents on %s", p)
	}
	out := make([]model.Incident, 0, len(rows))
	for _, r := range rows {
		inc, err := r.incident()
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, nil
}

// Years lists the years present in the dataset.
func (s *SQLiteStore) Years(ctx context.Context) ([]int, error) {
	return s.distinct(ctx, yearExpr)
}

// Months lists the months present in the dataset, any year.
func (s *SQLiteStore) Months(ctx context.Context) ([]int, error) {
	return s.distinct(ctx, monthExpr)
}

// Days lists the days of month present in the dataset, any year or month.
func (s *SQLiteStore) Days(ctx context.Context) ([]int, error) {
	return s.distinct(ctx, dayExpr)
}

func (s *SQLiteStore) distinct(ctx context.Context, expr string) ([]int, error) {
	var out []int
	err := s.db.SelectContext(ctx, &out, `SELECT DISTINCT `+expr+` AS v FROM events ORDER BY v`)
	return out, eris.Wrap(err, "store: distinct values")
}
