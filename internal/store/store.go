// Package store persists pipeline tables into SQLite or Postgres, tagging
// every row with the id of the run that produced it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ColumnType is the portable type of a stored column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Real
)

type Column struct {
	Name string
	Type ColumnType
}

// Table is a batch of rows for one destination table. Row values must line up
// with Columns.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

type dialect struct {
	types       map[ColumnType]string
	placeholder func(i int) string // i is 1-based
}

var dialects = map[string]dialect{
	"sqlite": {
		types:       map[ColumnType]string{Text: "TEXT", Integer: "INTEGER", Real: "REAL"},
		placeholder: func(int) string { return "?" },
	},
	"pgx": {
		types:       map[ColumnType]string{Text: "TEXT", Integer: "BIGINT", Real: "DOUBLE PRECISION"},
		placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
	},
}

// Store writes runs to a database.
type Store struct {
	db *sql.DB
	d  dialect
}

// Open connects to dsn with driver "sqlite" or "pgx".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, d: d}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection for read-back queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveRun records a run for source and appends all tables in one
// transaction. Tables are created on first use. The new run id is returned.
func (s *Store) SaveRun(ctx context.Context, source string, tables ...Table) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() // no-op after Commit

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS "runs" ("run_id" TEXT PRIMARY KEY, "source" TEXT, "created_at" TEXT)`); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO "runs" ("run_id", "source", "created_at") VALUES (%s, %s, %s)`,
			s.d.placeholder(1), s.d.placeholder(2), s.d.placeholder(3)),
		runID, source, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", err
	}

	for _, t := range tables {
		if err := s.insert(ctx, tx, runID, t); err != nil {
			return "", fmt.Errorf("table %v: %w", t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, runID string, t Table) error {
	defs := []string{`"run_id" TEXT NOT NULL`}
	cols := []string{`"run_id"`}
	for _, c := range t.Columns {
		defs = append(defs, fmt.Sprintf("%q %s", c.Name, s.d.types[c.Type]))
		cols = append(cols, fmt.Sprintf("%q", c.Name))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%s)`, t.Name, strings.Join(defs, ", "))); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q ("run_id")`, "idx_"+t.Name+"_run_id", t.Name)); err != nil {
		return err
	}

	ph := make([]string, len(cols))
	for i := range ph {
		ph[i] = s.d.placeholder(i + 1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		t.Name, strings.Join(cols, ", "), strings.Join(ph, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row has %d values for %d columns", len(row), len(t.Columns))
		}
		args := make([]any, 0, len(row)+1)
		args = append(args, runID)
		args = append(args, row...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}
