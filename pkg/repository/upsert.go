package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

// Upsert inserts or replaces the rows of t in table.
// Columns unknown to the table schema are dropped. With pk given, existing
// rows are updated by primary key (columns not delivered keep their value),
// without pk rows are replaced as a whole. Rows lacking a pk value are skipped.
// All rows are written in one transaction. Returns the number of rows written.
//
//nolint:whitespace,funlen // editor/linter issue
func (s *Store) Upsert(
	ctx context.Context, table string, t *tabular.Table, pk ...string,
) (int, error) {
	ctx, span := s.tracer.Start(ctx, "store.Upsert",
		trace.WithAttributes(attribute.String("table", table), attribute.Int("rows", t.Len())))
	defer span.End()

	schema, err := s.Columns(ctx, table)
	if err != nil {
		return 0, err
	}
	if t.IsEmpty() {
		return 0, nil
	}
	cols := lo.Filter(t.Columns, func(c string, _ int) bool {
		return slices.Contains(schema, c)
	})
	if dropped := lo.Without(t.Columns, cols...); len(dropped) > 0 {
		s.log.Debug("dropping unknown columns",
			log.String("table", table), log.Strings("columns", dropped))
	}
	for _, k := range pk {
		if !slices.Contains(cols, k) {
			return 0, fmt.Errorf("upsert %s: %w: %s", table, ErrMissingPK, k)
		}
	}
	if len(cols) == 0 {
		return 0, nil
	}
	stmt := upsertStatement(table, cols, pk)

	written := 0
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		exec := s.getExecutor(ctx)
		for i := range t.Rows {
			r := t.Row(i)
			if lo.SomeBy(pk, func(k string) bool { return isMissing(r.Get(k)) }) {
				s.log.Warn("skipping row without primary key",
					log.String("table", table), log.Int("row", i))
				continue
			}
			args := lo.Map(cols, func(c string, _ int) any { return dbValue(r.Get(c)) })
			if _, err := exec.ExecContext(ctx, stmt, args...); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, storeError("upsert "+table, err)
	}
	s.log.Debug("upserted", log.String("table", table), log.Int("rows", written))
	return written, nil
}

func upsertStatement(table string, cols, pk []string) string {
	quoted := lo.Map(cols, func(c string, _ int) string { return quote(c) })
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	if len(pk) == 0 {
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
			quote(table), strings.Join(quoted, ","), placeholders)
	}
	updates := lo.FilterMap(cols, func(c string, _ int) (string, bool) {
		return fmt.Sprintf("%s=excluded.%s", quote(c), quote(c)), !slices.Contains(pk, c)
	})
	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ",")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) %s",
		quote(table), strings.Join(quoted, ","), placeholders,
		strings.Join(lo.Map(pk, func(c string, _ int) string { return quote(c) }), ","),
		conflict)
}

func isMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

// dbValue maps normalized cells to driver values. Empty strings (padding of
// short upstream rows) are stored as NULL.
func dbValue(v any) any {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return val
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case map[string]any, []any:
		return nil
	default:
		return val
	}
}
