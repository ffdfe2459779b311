package household

import (
	"fmt"
	"math"
	"sort"

	"wrangle/internal/chart"
	"wrangle/internal/config"
)

// PlotGenderAge draws one line per gender across the age buckets of the latest
// year in rows and writes it to path. Summary buckets are left out.
//
// It returns false without touching path when rows is empty or nothing is
// left to plot after filtering.
func PlotGenderAge(path string, rows []GenderAgeTotal, order BucketOrder, s config.Schema, opts chart.Options) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}

	year := rows[0].Year
	for _, r := range rows[1:] {
		if r.Year > year {
			year = r.Year
		}
	}

	values := make(map[string]map[string]float64) // gender -> bucket -> value
	for _, r := range rows {
		if r.Year != year || s.IsSummaryBucket(r.AgeBucket) {
			continue
		}
		if values[r.Gender] == nil {
			values[r.Gender] = make(map[string]float64)
		}
		values[r.Gender][r.AgeBucket] = r.Value
	}
	if len(values) == 0 {
		return false, nil
	}

	present := make(map[string]bool)
	for _, m := range values {
		for b := range m {
			present[b] = true
		}
	}
	var buckets []string
	for _, b := range order {
		if present[b] {
			buckets = append(buckets, b)
		}
	}
	// Buckets missing from the order go last, as they do in the views.
	var extra []string
	for b := range present {
		if order.rank(b) == len(order) {
			extra = append(extra, b)
		}
	}
	sort.Strings(extra)
	buckets = append(buckets, extra...)

	genders := make([]string, 0, len(values))
	for g := range values {
		genders = append(genders, g)
	}
	sort.Strings(genders)

	series := make([]chart.Series, 0, len(genders))
	for _, g := range genders {
		ser := chart.Series{Name: g}
		for i, b := range buckets {
			v, ok := values[g][b]
			if !ok {
				v = math.NaN()
			}
			ser.Points = append(ser.Points, chart.Point{X: i, Y: v})
		}
		series = append(series, ser)
	}

	title := fmt.Sprintf("%d년 %s·%s 연령별 %s", year, s.MaleGender, s.FemaleGender, s.Indicator)
	yLabel := s.Indicator + " 수"
	if err := chart.Lines(path, title, s.AgeColumn, yLabel, buckets, series, opts); err != nil {
		return false, err
	}
	return true, nil
}
