package passenger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangle/internal/chart"
	"wrangle/internal/config"
)

var cols = Columns{Target: "Transported", Age: "Age", Category: "Destination"}

// Test rows at the end have no Transported column, as in the merged file.
const merged = "PassengerId,Destination,Age,Transported\r\n" +
	"0001_01,TRAPPIST-1e,39.0,False\r\n" +
	"0002_01,TRAPPIST-1e,24.0,True\r\n" +
	"0003_01,55 Cancri e,58.0,False\r\n" +
	"0003_02,TRAPPIST-1e,33.0,True\r\n" +
	"0004_01,,5.0,True\r\n" +
	"0005_01,PSO J318.5-22,,True\r\n" +
	"0006_01,TRAPPIST-1e,0.0,False\r\n" +
	"0007_01,55 Cancri e,73.0\r\n" +
	"0008_01,TRAPPIST-1e,38.0\r\n"

func load(t *testing.T) *Analyzer {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte(merged), 0o644))
	a, err := Load(p, cols)
	require.NoError(t, err)
	return a
}

func TestDecade(t *testing.T) {
	tests := []struct {
		age  float64
		want int
	}{
		{0, 0}, {9, 0}, {9.9, 0}, {10, 10}, {73, 70}, {79.5, 70},
	}
	for _, tt := range tests {
		got, ok := Decade(tt.age)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "age %v", tt.age)
	}
}

func TestRateByDecade(t *testing.T) {
	a := load(t)
	assert.Equal(t, 9, a.Rows())

	want := []DecadeRate{
		{Decade: 0, Rate: 0.5, N: 2},
		{Decade: 20, Rate: 1, N: 1},
		{Decade: 30, Rate: 0.5, N: 2},
		{Decade: 50, Rate: 0, N: 1},
	}
	if diff := cmp.Diff(want, a.RateByDecade()); diff != "" {
		t.Errorf("RateByDecade() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountsByCategory(t *testing.T) {
	a := load(t)

	want := []CategoryCounts{
		{Category: "TRAPPIST-1e", Counts: []DecadeCount{{0, 1}, {20, 1}, {30, 3}}},
		{Category: "55 Cancri e", Counts: []DecadeCount{{50, 1}, {70, 1}}},
		{Category: "PSO J318.5-22"},
	}
	if diff := cmp.Diff(want, a.CountsByCategory()); diff != "" {
		t.Errorf("CountsByCategory() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte("PassengerId,Age\n1,20\n"), 0o644))
	_, err := Load(p, cols)
	assert.ErrorContains(t, err, `"Transported"`)
}

func TestLoad_RowLongerThanHeader(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte("Destination,Age,Transported\nA,30,True,EXTRA\n"), 0o644))
	_, err := Load(p, cols)
	assert.ErrorContains(t, err, "row 2 has 4 fields, header has 3")
}

func TestLoad_BooleanSpellings(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte("Destination,Age,Transported\n"+
		"A,21,TRUE\nA,22,true\nA,23,FALSE\nA,24,false\nA,25,yes\n"), 0o644))
	a, err := Load(p, cols)
	require.NoError(t, err)
	assert.Equal(t, []DecadeRate{{Decade: 20, Rate: 0.5, N: 4}}, a.RateByDecade())
}

func TestPlots(t *testing.T) {
	a := load(t)
	dir := t.TempDir()
	opts := chart.OptionsFrom(config.ChartConfig{DPI: 40, WidthIn: 4, HeightIn: 3})

	ok, err := a.PlotRate(filepath.Join(dir, RateChartName), opts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, filepath.Join(dir, RateChartName))

	written, err := a.PlotCategoryCounts(dir, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "age_by_Destination_TRAPPIST-1e.png"),
		filepath.Join(dir, "age_by_Destination_55_Cancri_e.png"),
	}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}
}

func TestPlots_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte("Destination,Age,Transported\nTRAPPIST-1e,,\n"), 0o644))
	a, err := Load(p, cols)
	require.NoError(t, err)

	dir := t.TempDir()
	opts := chart.OptionsFrom(config.ChartConfig{DPI: 40, WidthIn: 4, HeightIn: 3})
	ok, err := a.PlotRate(filepath.Join(dir, RateChartName), opts)
	require.NoError(t, err)
	assert.False(t, ok)

	written, err := a.PlotCategoryCounts(dir, opts)
	require.NoError(t, err)
	assert.Empty(t, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
