package repository

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/sqlite"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

// Read runs an arbitrary query and returns the result as table
func (s *Store) Read(ctx context.Context, query string, args ...any) (*tabular.Table, error) {
	rows, err := s.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("read", err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, storeError("read", err)
	}
	t := tabular.New(cols...)
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storeError("read", err)
		}
		for i, c := range cells {
			cells[i] = fromDB(c)
		}
		t.Append(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("read", err)
	}
	return t, nil
}

func fromDB(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case int:
		return int64(val)
	default:
		return val
	}
}

// Select maps the rows of query onto T (by `db` struct tags).
//
//nolint:whitespace // editor/linter issue
func Select[T any](
	ctx context.Context, s *Store, query string, args ...any,
) ([]T, error) {
	ret, err := bob.All(ctx, s.getExecutor(ctx),
		sqlite.RawQuery(query, args...), scan.StructMapper[T]())
	if err != nil {
		return nil, storeError("select", err)
	}
	return ret, nil
}

// SelectOne is Select for a single row. Returns false if no row matches.
//
//nolint:whitespace // editor/linter issue
func SelectOne[T any](
	ctx context.Context, s *Store, query string, args ...any,
) (T, bool, error) {
	var zero T
	ret, err := Select[T](ctx, s, query, args...)
	if err != nil || len(ret) == 0 {
		return zero, false, err
	}
	return ret[0], true, nil
}
