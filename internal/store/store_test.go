package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}

func TestSaveRun_AppendsPerRun(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	tbl := Table{
		Name:    "by_gender_year",
		Columns: []Column{{"year", Integer}, {"gender", Text}, {"value", Real}},
		Rows: [][]any{
			{2020, "남자", 10.5},
			{2020, "여자", 12.0},
		},
	}
	run1, err := s.SaveRun(ctx, "gender_list.csv", tbl)
	require.NoError(t, err)
	run2, err := s.SaveRun(ctx, "gender_list.csv", tbl)
	require.NoError(t, err)
	assert.NotEqual(t, run1, run2)

	var runs int
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 2, runs)

	var n int
	var sum float64
	require.NoError(t, s.DB().QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(value) FROM by_gender_year WHERE run_id = ?`, run2).Scan(&n, &sum))
	assert.Equal(t, 2, n)
	assert.InDelta(t, 22.5, sum, 1e-9)

	var gender string
	require.NoError(t, s.DB().QueryRowContext(ctx,
		`SELECT gender FROM by_gender_year WHERE run_id = ? AND value = 12.0`, run1).Scan(&gender))
	assert.Equal(t, "여자", gender)
}

func TestSaveRun_RollsBackOnBadRow(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	good := Table{Name: "ok", Columns: []Column{{"v", Integer}}, Rows: [][]any{{1}}}
	bad := Table{Name: "broken", Columns: []Column{{"a", Text}, {"b", Text}}, Rows: [][]any{{"only one"}}}

	_, err := s.SaveRun(ctx, "src", good, bad)
	require.Error(t, err)

	var n int
	err = s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	// The runs table was created inside the failed transaction, so it's gone too.
	assert.Error(t, err)
}
