// Package household turns the wide KOSIS household-member table into tidy
// long records and derives the per-year gender and age-bucket views, their
// CSV/PNG outputs and the text report.
package household

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"wrangle/internal/config"
	"wrangle/internal/csvio"
)

// idColumns is the number of leading identifier columns (region, gender, age bucket).
const idColumns = 3

var (
	ErrTooFewIDColumns = errors.New("wide table needs region, gender and age columns")
	ErrNoYearColumns   = errors.New("wide table has no year columns")
	ErrNoMetricRow     = errors.New("wide table has no metric-name row")
)

// WideTable is the source layout: three identifier columns followed by
// year-tagged columns. Rows[0] holds the metric name of each year column.
type WideTable struct {
	Header []string
	Rows   [][]string
}

// Record is one tidy observation.
type Record struct {
	Region    string
	Gender    string
	AgeBucket string
	Year      int
	Metric    string
	Value     float64
}

// ReadWide parses a wide table from r, decoding it from enc first.
func ReadWide(r io.Reader, enc string) (*WideTable, error) {
	dr, err := csvio.NewDecoder(r, enc)
	if err != nil {
		return nil, err
	}
	t, err := csvio.Read(dr)
	if err != nil {
		return nil, err
	}
	return &WideTable{Header: t.Header, Rows: t.Rows}, nil
}

// Tidy melts the year columns of wide into long records. Cells matching one
// of s.Sentinels, empty cells and cells that don't parse as a finite number
// are dropped. Records are emitted column by column, rows in source order.
func Tidy(wide *WideTable, s config.Schema) ([]Record, error) {
	if len(wide.Header) < idColumns {
		return nil, fmt.Errorf("%w: got %d columns", ErrTooFewIDColumns, len(wide.Header))
	}
	if len(wide.Header) == idColumns {
		return nil, ErrNoYearColumns
	}
	if len(wide.Rows) == 0 {
		return nil, ErrNoMetricRow
	}

	years := make([]int, len(wide.Header)-idColumns)
	for i, name := range wide.Header[idColumns:] {
		y, err := yearOf(name)
		if err != nil {
			return nil, err
		}
		years[i] = y
	}

	sentinels := make(map[string]struct{}, len(s.Sentinels))
	for _, v := range s.Sentinels {
		sentinels[v] = struct{}{}
	}

	metrics := wide.Rows[0]
	body := wide.Rows[1:]
	var recs []Record
	for i, year := range years {
		col := idColumns + i
		metric := cell(metrics, col)
		for _, row := range body {
			v, ok := parseValue(cell(row, col), sentinels)
			if !ok {
				continue
			}
			recs = append(recs, Record{
				Region:    cell(row, 0),
				Gender:    cell(row, 1),
				AgeBucket: cell(row, 2),
				Year:      year,
				Metric:    metric,
				Value:     v,
			})
		}
	}
	return recs, nil
}

// yearOf extracts the year from a column name such as "2015" or "2015.3".
// pandas de-duplicates repeated headers by appending ".N", so only the part
// before the first dot counts.
func yearOf(name string) (int, error) {
	prefix, _, _ := strings.Cut(strings.TrimSpace(name), ".")
	y, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("column %q is not year-tagged: %w", name, err)
	}
	return y, nil
}

func parseValue(s string, sentinels map[string]struct{}) (float64, bool) {
	if _, ok := sentinels[s]; ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// cell returns row[i], or "" for short rows.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
