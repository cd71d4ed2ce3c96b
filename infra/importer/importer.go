// Package importer loads the Denver crime CSV export into the incident store.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/kilianp07/patrolsim/core/logger"
	"github.com/kilianp07/patrolsim/core/model"
)

// DefaultBatchSize is the number of incidents written per store transaction.
const DefaultBatchSize = 1000

// Sink receives decoded incidents.
type Sink interface {
	InsertIncidents(ctx context.Context, incidents []model.Incident) error
}

// Stats summarises an import.
type Stats struct {
	Imported int
	Skipped  int
}

// row mirrors one line of the export. Columns the simulator never reads
// (first/last occurrence, geo_x/geo_y) are ignored by the decoder.
type row struct {
	IncidentID           int64    `csv:"incident_id"`
	OffenseCode          int      `csv:"offense_code"`
	OffenseCodeExtension int      `csv:"offense_code_extension"`
	OffenseType          string   `csv:"offense_type_id"`
	Category             string   `csv:"offense_category_id"`
	Reported             string   `csv:"reported_date"`
	Address              string   `csv:"incident_address"`
	Lon                  *float64 `csv:"geo_lon"`
	Lat                  *float64 `csv:"geo_lat"`
	District             *int     `csv:"district_id"`
	Precinct             *int     `csv:"precinct_id"`
	Neighborhood         string   `csv:"neighborhood_id"`
	IsCrime              int      `csv:"is_crime"`
	IsTraffic            int      `csv:"is_traffic"`
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006 3:04:05 PM",
}

func parseReported(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognised reported_date %q", s)
}

func (r row) incident() (model.Incident, error) {
	if r.District == nil {
		return model.Incident{}, eris.New("missing district_id")
	}
	if strings.TrimSpace(r.Category) == "" {
		return model.Incident{}, eris.New("missing offense_category_id")
	}
	if r.Lon == nil || r.Lat == nil || (*r.Lon == 0 && *r.Lat == 0) {
		return model.Incident{}, eris.New("missing geo_lon/geo_lat")
	}
	reported, err := parseReported(r.Reported)
	if err != nil {
		return model.Incident{}, err
	}
	inc := model.Incident{
		ID:                   r.IncidentID,
		OffenseCode:          r.OffenseCode,
		OffenseCodeExtension: r.OffenseCodeExtension,
		OffenseType:          r.OffenseType,
		Category:             r.Category,
		Reported:             reported,
		Address:              r.Address,
		Lon:                  *r.Lon,
		Lat:                  *r.Lat,
		District:             model.DistrictID(*r.District),
		Neighborhood:         r.Neighborhood,
		IsCrime:              r.IsCrime != 0,
		IsTraffic:            r.IsTraffic != 0,
	}
	if r.Precinct != nil {
		inc.Precinct = *r.Precinct
	}
	return inc, nil
}

// Importer streams CSV rows into a Sink.
type Importer struct {
	sink  Sink
	batch int
	log   logger.Logger
}

// New returns an importer writing batches of batchSize incidents. A
// non-positive batchSize selects DefaultBatchSize.
func New(sink Sink, batchSize int, log logger.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{sink: sink, batch: batchSize, log: logger.OrNop(log)}
}

// Import decodes r and writes every valid row. Rows that fail to decode or
// carry an unusable date, district or position are skipped and counted.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	src := &sourceReader{r: r}
	cr := csv.NewReader(src)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(cr)
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, eris.Wrap(err, "importer: read header")
	}

	buf := make([]model.Incident, 0, im.batch)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := im.sink.InsertIncidents(ctx, buf); err != nil {
			return eris.Wrapf(err, "importer: write batch of %d", len(buf))
		}
		stats.Imported += len(buf)
		im.log.Debugf("imported %d incidents", stats.Imported)
		buf = buf[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		var rec row
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if src.err != nil {
				return stats, eris.Wrap(src.err, "importer: read")
			}
			stats.Skipped++
			im.log.Debugf("skipping row: %v", err)
			continue
		}
		inc, err := rec.incident()
		if err != nil {
			stats.Skipped++
			im.log.Debugf("skipping incident %d: %v", rec.IncidentID, err)
			continue
		}
		buf = append(buf, inc)
		if len(buf) == im.batch {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	if stats.Skipped > 0 {
		im.log.Warnf("import finished: %d incidents, %d rows skipped", stats.Imported, stats.Skipped)
	} else {
		im.log.Infof("import finished: %d incidents", stats.Imported)
	}
	return stats, nil
}

// sourceReader remembers the first read failure of the input so that it can
// be told apart from malformed records.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}
