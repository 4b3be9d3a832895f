// Package storage persists feature matrices to SQLite so descriptor sets
// can be inspected and reused outside a pipeline run. The store is a
// record, not the source of truth: the pipeline treats write failures as
// non-fatal.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"
)

// DescriptorStore writes rows of [identifier, feature..., target] to a
// named table. Train and test partitions use separate database files so
// they can never cross-contaminate.
type DescriptorStore struct {
	db   *sqlx.DB
	path string
}

// OpenPartition opens the store for one partition tag ("train" or
// "test") of a named database, creating the file and its directory as
// needed. The partition tag becomes a filename prefix, matching the
// layout existing datasets use.
func OpenPartition(partition, dbName string) (*DescriptorStore, error) {
	if partition == "" {
		return nil, fmt.Errorf("storage: empty partition tag")
	}
	dir := filepath.Dir(dbName)
	base := filepath.Base(dbName)
	path := filepath.Join(dir, partition+"_"+base)
	return Open(path)
}

// Open opens a descriptor store at an explicit path.
func Open(path string) (*DescriptorStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: enable WAL: %w", err)
	}
	return &DescriptorStore{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *DescriptorStore) Close() error { return s.db.Close() }

// Path returns the database file location.
func (s *DescriptorStore) Path() string { return s.path }

// Write replaces the named table with the given feature matrix. Row i is
// stored as [ids[i], matrix row i..., targets[i]]; names label the
// feature columns and must match the matrix width.
func (s *DescriptorStore) Write(ctx context.Context, table string, names, ids []string, m *mat.Dense, targets []float64) error {
	n, d := m.Dims()
	if len(ids) != n || len(targets) != n {
		return fmt.Errorf("storage: %d rows but %d ids and %d targets", n, len(ids), len(targets))
	}
	if len(names) != d {
		return fmt.Errorf("storage: %d feature names for %d columns", len(names), d)
	}

	cols := make([]string, 0, d+2)
	cols = append(cols, `"id" TEXT PRIMARY KEY`)
	for _, name := range names {
		cols = append(cols, quoteIdent(name)+" REAL")
	}
	cols = append(cols, `"target" REAL`)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	qt := quoteIdent(table)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+qt); err != nil {
		return fmt.Errorf("storage: drop %s: %w", table, err)
	}
	ddl := "CREATE TABLE " + qt + " (" + strings.Join(cols, ", ") + ")"
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("storage: create %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", d+2), ", ")
	stmt, err := tx.PreparexContext(ctx, "INSERT INTO "+qt+" VALUES ("+placeholders+")")
	if err != nil {
		return fmt.Errorf("storage: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, d+2)
	for i := 0; i < n; i++ {
		args[0] = ids[i]
		row := m.RawRowView(i)
		for j, v := range row {
			args[j+1] = v
		}
		args[d+1] = targets[i]
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("storage: insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Read loads a table written by Write, returning the feature names,
// identifiers, matrix, and targets in stored row order.
func (s *DescriptorStore) Read(ctx context.Context, table string) (names, ids []string, m *mat.Dense, targets []float64, err error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+quoteIdent(table)+" ORDER BY rowid")
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("storage: query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("storage: columns: %w", err)
	}
	if len(cols) < 2 {
		return nil, nil, nil, nil, fmt.Errorf("storage: table %s has no feature columns", table)
	}
	names = cols[1 : len(cols)-1]

	var data []float64
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("storage: scan: %w", err)
		}
		id, ok := vals[0].(string)
		if !ok {
			return nil, nil, nil, nil, fmt.Errorf("storage: row identifier is %T, want string", vals[0])
		}
		ids = append(ids, id)
		for _, v := range vals[1 : len(vals)-1] {
			f, ok := v.(float64)
			if !ok {
				return nil, nil, nil, nil, fmt.Errorf("storage: feature value is %T, want float64", v)
			}
			data = append(data, f)
		}
		f, ok := vals[len(vals)-1].(float64)
		if !ok {
			return nil, nil, nil, nil, fmt.Errorf("storage: target value is %T, want float64", vals[len(vals)-1])
		}
		targets = append(targets, f)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("storage: iterate: %w", err)
	}
	if len(ids) == 0 {
		return names, nil, mat.NewDense(0, len(names), nil), nil, nil
	}

	m = mat.NewDense(len(ids), len(names), data)
	return names, ids, m, targets, nil
}

// quoteIdent wraps an identifier in double quotes; derived feature names
// contain arithmetic characters that are not bare-identifier safe.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
