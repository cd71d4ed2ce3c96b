// Package export writes sweep results in machine readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
)

// SweepRow is one agent count of a sweep.
type SweepRow struct {
	Year   int     `csv:"year" json:"year"`
	Month  int     `csv:"month" json:"month"`
	Day    int     `csv:"day" json:"day"`
	Agents int     `csv:"agents" json:"agents"`
	Trials int     `csv:"trials" json:"trials"`
	Mean   float64 `csv:"mean" json:"mean"`
	StdDev float64 `csv:"stddev" json:"stddev"`
}

// Formats supported by Write.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// WriteJSON writes rows to w as a JSON array.
func WriteJSON(w io.Writer, rows []SweepRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if rows == nil {
		rows = []SweepRow{}
	}
	return enc.Encode(rows)
}

// WriteCSV writes rows to w with a header line.
func WriteCSV(w io.Writer, rows []SweepRow) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(SweepRow{}); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format.
func Write(w io.Writer, format string, rows []SweepRow) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
