// Package repository is the relational store of the timing data.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/stephenafamo/bob"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/db/sqlite"
)

var (
	ErrStore        = errors.New("store error")
	ErrUnknownTable = errors.New("unknown table")
	ErrMissingPK    = errors.New("primary key column missing")
)

type Store struct {
	sqlDB  *sql.DB
	db     bob.DB
	log    *log.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	columns map[string][]string
}

// Open opens the store file at path. With newDB set an existing file is
// dropped and the schema is created from scratch.
func Open(ctx context.Context, path string, newDB bool) (*Store, error) {
	db, err := sqlite.Open(ctx, path, sqlite.WithNewDB(newDB))
	if err != nil {
		return nil, storeError("open", err)
	}
	return New(db), nil
}

// New wraps an opened (and migrated) database
func New(db *sql.DB) *Store {
	return &Store{
		sqlDB:   db,
		db:      bob.NewDB(db),
		log:     log.Default().Named("store"),
		tracer:  otel.Tracer("wrct"),
		columns: map[string][]string{},
	}
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// DB returns the bob database for callers building their own queries
func (s *Store) DB() bob.DB {
	return s.db
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Tables returns the names of the user tables
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.getExecutor(ctx).QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table'
		AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations' ORDER BY name`)
	if err != nil {
		return nil, storeError("tables", err)
	}
	defer rows.Close()
	ret := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storeError("tables", err)
		}
		ret = append(ret, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("tables", err)
	}
	return ret, nil
}

// Columns returns the column names of table as declared in the schema.
// Results are cached per store.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	s.mu.Lock()
	cols, ok := s.columns[table]
	s.mu.Unlock()
	if ok {
		return cols, nil
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	rows, err := s.getExecutor(ctx).QueryContext(ctx,
		"SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, storeError("columns "+table, err)
	}
	defer rows.Close()
	cols = make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storeError("columns "+table, err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("columns "+table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	s.mu.Lock()
	s.columns[table] = cols
	s.mu.Unlock()
	return cols, nil
}

// Clear removes all rows of table
func (s *Store) Clear(ctx context.Context, table string) error {
	if _, err := s.Columns(ctx, table); err != nil {
		return err
	}
	if _, err := s.getExecutor(ctx).ExecContext(ctx, "DELETE FROM "+quote(table)); err != nil {
		return storeError("clear "+table, err)
	}
	return nil
}

// DeleteWhere removes the rows of table where col equals value.
//
//nolint:whitespace // editor/linter issue
func (s *Store) DeleteWhere(
	ctx context.Context, table, col string, value any,
) (int64, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return 0, err
	}
	if !slices.Contains(cols, col) {
		return 0, fmt.Errorf("delete %s: unknown column %q", table, col)
	}
	res, err := s.getExecutor(ctx).ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quote(table), quote(col)), value)
	if err != nil {
		return 0, storeError("delete "+table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
