// Package passenger analyses the merged Spaceship Titanic table: outcome rate
// and passenger counts per age decade.
package passenger

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"wrangle/internal/chart"
	"wrangle/internal/csvio"
)

// decadeColumn is the derived age-bucket column added by Load.
const decadeColumn = "AgeGroup"

// RateChartName is the file PlotRate is conventionally given.
const RateChartName = "age_group_rate.png"

// Columns names the inputs the analysis reads.
type Columns struct {
	Target   string // True/False outcome, any of pandas' spellings
	Age      string
	Category string
}

// Analyzer holds the loaded frame. The target column is numeric (1, 0 or
// NaN) and an AgeGroup column holds each row's decade, NaN when age is
// missing.
type Analyzer struct {
	df   dataframe.DataFrame
	cols Columns
}

// DecadeRate is the mean outcome of one decade over N rows with a known
// outcome.
type DecadeRate struct {
	Decade int
	Rate   float64
	N      int
}

type DecadeCount struct {
	Decade int
	Count  int
}

// CategoryCounts is the decade histogram of one category value.
type CategoryCounts struct {
	Category string
	Counts   []DecadeCount
}

// Decade buckets age into its decade: 0-9 is 0, 73 is 70. Missing ages have
// no bucket.
func Decade(age float64) (int, bool) {
	if math.IsNaN(age) || math.IsInf(age, 0) {
		return 0, false
	}
	return int(math.Floor(age/10) * 10), true
}

// Load reads the merged CSV at path. Short rows, such as test rows without an
// outcome column, are padded with empty cells. A row longer than the header
// is an error.
func Load(path string, cols Columns) (*Analyzer, error) {
	t, err := csvio.ReadFile(path, "utf-8")
	if err != nil {
		return nil, err
	}
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	for i, row := range t.Rows {
		if len(row) > len(t.Header) {
			return nil, fmt.Errorf("%v: row %d has %d fields, header has %d", path, i+2, len(row), len(t.Header))
		}
		rec := make([]string, len(t.Header))
		copy(rec, row)
		records = append(records, rec)
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, fmt.Errorf("read %v: %w", path, df.Err)
	}
	return newAnalyzer(df, cols)
}

func newAnalyzer(df dataframe.DataFrame, cols Columns) (*Analyzer, error) {
	for _, c := range []string{cols.Target, cols.Age, cols.Category} {
		if !hasColumn(df, c) {
			return nil, fmt.Errorf("column %q not found", c)
		}
	}

	raw := df.Col(cols.Target).Records()
	target := make([]float64, len(raw))
	for i, v := range raw {
		switch v {
		case "True", "TRUE", "true":
			target[i] = 1
		case "False", "FALSE", "false":
			target[i] = 0
		default:
			target[i] = math.NaN()
		}
	}

	ages := df.Col(cols.Age).Records()
	decades := make([]float64, len(ages))
	for i, v := range ages {
		decades[i] = math.NaN()
		age, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		if d, ok := Decade(age); ok {
			decades[i] = float64(d)
		}
	}

	df = df.Mutate(series.New(target, series.Float, cols.Target)).
		Mutate(series.New(decades, series.Float, decadeColumn))
	if df.Err != nil {
		return nil, df.Err
	}
	return &Analyzer{df: df, cols: cols}, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Rows is the number of loaded rows.
func (a *Analyzer) Rows() int {
	return a.df.Nrow()
}

// RateByDecade returns the mean outcome per decade, ascending. Rows without
// an age or outcome are left out, as are decades with no known outcome.
func (a *Analyzer) RateByDecade() []DecadeRate {
	decades := a.df.Col(decadeColumn).Float()
	target := a.df.Col(a.cols.Target).Float()

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, d := range decades {
		if math.IsNaN(d) || math.IsNaN(target[i]) {
			continue
		}
		sums[int(d)] += target[i]
		counts[int(d)]++
	}

	out := make([]DecadeRate, 0, len(counts))
	for d, n := range counts {
		out = append(out, DecadeRate{Decade: d, Rate: sums[d] / float64(n), N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out
}

// CountsByCategory returns the decade histogram of every non-empty category
// value, in order of first appearance.
func (a *Analyzer) CountsByCategory() []CategoryCounts {
	var cats []string
	seen := make(map[string]struct{})
	for _, v := range a.df.Col(a.cols.Category).Records() {
		if v == "" || v == "NaN" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
	}

	out := make([]CategoryCounts, 0, len(cats))
	for _, c := range cats {
		subset := a.df.Filter(dataframe.F{Colname: a.cols.Category, Comparator: series.Eq, Comparando: c})
		counts := make(map[int]int)
		for _, d := range subset.Col(decadeColumn).Float() {
			if !math.IsNaN(d) {
				counts[int(d)]++
			}
		}
		cc := CategoryCounts{Category: c}
		for d, n := range counts {
			cc.Counts = append(cc.Counts, DecadeCount{Decade: d, Count: n})
		}
		sort.Slice(cc.Counts, func(i, j int) bool { return cc.Counts[i].Decade < cc.Counts[j].Decade })
		out = append(out, cc)
	}
	return out
}

// PlotRate draws RateByDecade as a bar chart at path. It reports false and
// writes nothing when there is no rate to draw.
func (a *Analyzer) PlotRate(path string, opts chart.Options) (bool, error) {
	rates := a.RateByDecade()
	if len(rates) == 0 {
		return false, nil
	}
	labels := make([]string, len(rates))
	values := make([]float64, len(rates))
	for i, r := range rates {
		labels[i] = strconv.Itoa(r.Decade)
		values[i] = r.Rate
	}
	title := fmt.Sprintf("Age Group vs %s", a.cols.Target)
	if err := chart.Bar(path, title, "Age Group", a.cols.Target+" Ratio", labels, values, opts); err != nil {
		return false, err
	}
	return true, nil
}

// PlotCategoryCounts draws one decade histogram per category value into dir
// and returns the files written. Categories without any aged passenger are
// skipped.
func (a *Analyzer) PlotCategoryCounts(dir string, opts chart.Options) ([]string, error) {
	var written []string
	for _, cc := range a.CountsByCategory() {
		if len(cc.Counts) == 0 {
			continue
		}
		labels := make([]string, len(cc.Counts))
		values := make([]float64, len(cc.Counts))
		for i, c := range cc.Counts {
			labels[i] = strconv.Itoa(c.Decade)
			values[i] = float64(c.Count)
		}
		path := filepath.Join(dir, CategoryChartName(a.cols.Category, cc.Category))
		title := fmt.Sprintf("Age Distribution for %s %s", a.cols.Category, cc.Category)
		if err := chart.Bar(path, title, "Age Group", "Count", labels, values, opts); err != nil {
			return written, fmt.Errorf("plot %v: %w", cc.Category, err)
		}
		written = append(written, path)
	}
	return written, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// CategoryChartName is the file name used for one category's histogram.
func CategoryChartName(column, value string) string {
	return fmt.Sprintf("age_by_%s_%s.png", unsafeName.ReplaceAllString(column, "_"), unsafeName.ReplaceAllString(value, "_"))
}
