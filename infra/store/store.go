// Package store is the SQLite backed incident dataset. It answers the
// aggregate queries of the graph builder and the day listings of the
// simulator.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/patrolsim/core/model"
)

// TimeLayout is the textual layout of reported_date in the events table.
const TimeLayout = "2006-01-02 15:04:05"

// ErrNoIncidents is returned when a query needs at least one incident and the
// selection is empty.
var ErrNoIncidents = errors.New("store: no incidents")

// SQLiteStore persists incidents in the events table.
type SQLiteStore struct {
	db *sqlx.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, eris.Wrapf(err, "store: open %s", path)
	}
	// SQLite allows a single writer; one connection also keeps in-memory
	// databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		incident_id INTEGER NOT NULL,
		offense_code INTEGER NOT NULL DEFAULT 0,
		offense_code_extension INTEGER NOT NULL DEFAULT 0,
		offense_type_id TEXT NOT NULL DEFAULT '',
		offense_category_id TEXT NOT NULL,
		reported_date TEXT NOT NULL,
		incident_address TEXT NOT NULL DEFAULT '',
		geo_lon REAL,
		geo_lat REAL,
		district_id INTEGER NOT NULL,
		precinct_id INTEGER NOT NULL DEFAULT 0,
		neighborhood_id TEXT NOT NULL DEFAULT '',
		is_crime INTEGER NOT NULL DEFAULT 0,
		is_traffic INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_events_reported ON events(reported_date);
	CREATE INDEX IF NOT EXISTS idx_events_district ON events(district_id);
	`
	_, err := s.db.Exec(schema)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type incidentRow struct {
	IncidentID           int64           `db:"incident_id"`
	OffenseCode          int             `db:"offense_code"`
	OffenseCodeExtension int             `db:"offense_code_extension"`
	OffenseType          string          `db:"offense_type_id"`
	Category             string          `db:"offense_category_id"`
	ReportedDate         string          `db:"reported_date"`
	Address              string          `db:"incident_address"`
	Lon                  sql.NullFloat64 `db:"geo_lon"`
	Lat                  sql.NullFloat64 `db:"geo_lat"`
	District             int             `db:"district_id"`
	Precinct             int             `db:"precinct_id"`
	Neighborhood         string          `db:"neighborhood_id"`
	IsCrime              bool            `db:"is_crime"`
	IsTraffic            bool            `db:"is_traffic"`
}

func toRow(i model.Incident) incidentRow {
	r := incidentRow{
		IncidentID:           i.ID,
		OffenseCode:          i.OffenseCode,
		OffenseCodeExtension: i.OffenseCodeExtension,
		OffenseType:          i.OffenseType,
		Category:             i.Category,
		ReportedDate:         i.Reported.Format(TimeLayout),
		Address:              i.Address,
		Lon:                  sql.NullFloat64{Float64: i.Lon, Valid: i.Lon != 0 || i.Lat != 0},
		Lat:                  sql.NullFloat64{Float64: i.Lat, Valid: i.Lon != 0 || i.Lat != 0},
		District:             int(i.District),
		Precinct:             i.Precinct,
		Neighborhood:         i.Neighborhood,
		IsCrime:              i.IsCrime,
		IsTraffic:            i.IsTraffic,
	}
	return r
}

func (r incidentRow) incident() (model.Incident, error) {
	ts, err := time.ParseInLocation(TimeLayout, r.ReportedDate, time.UTC)
	if err != nil {
		return model.Incident{}, eris.Wrapf(err, "store: incident %d reported_date", r.IncidentID)
	}
	return model.Incident{
		ID:                   r.IncidentID,
		OffenseCode:          r.OffenseCode,
		OffenseCodeExtension: r.OffenseCodeExtension,
		OffenseType:          r.OffenseType,
		Category:             r.Category,
		Reported:             ts,
		Address:              r.Address,
		Lon:                  r.Lon.Float64,
		Lat:                  r.Lat.Float64,
		District:             model.DistrictID(r.District),
		Precinct:             r.Precinct,
		Neighborhood:         r.Neighborhood,
		IsCrime:              r.IsCrime,
		IsTraffic:            r.IsTraffic,
	}, nil
}

const insertIncident = `INSERT INTO events (
	incident_id, offense_code, offense_code_extension, offense_type_id,
	offense_category_id, reported_date, incident_address, geo_lon, geo_lat,
	district_id, precinct_id, neighborhood_id, is_crime, is_traffic
) VALUES (
	:incident_id, :offense_code, :offense_code_extension, :offense_type_id,
	:offense_category_id, :reported_date, :incident_address, :geo_lon, :geo_lat,
	:district_id, :precinct_id, :neighborhood_id, :is_crime, :is_traffic
)`

// InsertIncidents writes the incidents in a single transaction.
func (s *SQLiteStore) InsertIncidents(ctx context.Context, incidents []model.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, insertIncident)
	if err != nil {
		return eris.Wrap(err, "store: prepare insert")
	}
	defer func() { _ = stmt.Close() }()
	for _, inc := range incidents {
		if _, err := stmt.ExecContext(ctx, toRow(inc)); err != nil {
			return eris.Wrapf(err, "store: insert incident %d", inc.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit")
}

// Count returns the number of stored incidents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM events`)
	return n, eris.Wrap(err, "store: count")
}
