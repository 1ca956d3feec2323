package ingest

import (
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

// matches returns the JSON values matched by path
func matches(data any, path string) []any {
	return jp.MustParseString(path).Get(data)
}

// objects returns the JSON objects matched by path
func objects(data any, path string) []map[string]any {
	ret := make([]map[string]any, 0)
	for _, v := range matches(data, path) {
		if obj, ok := v.(map[string]any); ok {
			ret = append(ret, obj)
		}
	}
	return ret
}

// records converts a list (or a single object) of JSON objects
// and broadcasts the constants
func records(data any, constants map[string]any, flatten ...string) *tabular.Table {
	t := tabular.FromRecords(data, flatten...)
	return withConstants(t, constants)
}

// table normalizes both response shapes: "fields+values" documents of the
// results family and lists of objects of the timing family
func table(data any, constants map[string]any) *tabular.Table {
	if tabular.IsFlat(data) {
		return withConstants(tabular.Flat(data, "eventId"), constants)
	}
	return records(data, constants)
}

func withConstants(t *tabular.Table, constants map[string]any) *tabular.Table {
	if t.IsEmpty() {
		return t
	}
	for k, v := range constants {
		// keep values delivered by upstream
		if t.Has(k) {
			fillMissing(t, k, v)
			continue
		}
		t.WithConstant(k, v)
	}
	return t
}

func fillMissing(t *tabular.Table, col string, v any) {
	idx := t.Index(col)
	for i := range t.Rows {
		if c := t.Rows[i][idx]; c == nil || c == "" {
			t.Rows[i][idx] = v
		}
	}
}

// subTable extracts the flattened "<prefix>.<col>" columns into a table of
// their own. Rows without any value are dropped.
func subTable(t *tabular.Table, prefix string) *tabular.Table {
	cols := make([]string, 0)
	for _, c := range t.Columns {
		if strings.HasPrefix(c, prefix+".") {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return tabular.Empty()
	}
	ret := t.Select(cols...).Filter(func(r tabular.Row) bool {
		for _, c := range cols {
			if r.Get(c) != nil {
				return true
			}
		}
		return false
	})
	mapping := make(map[string]string, len(cols))
	for _, c := range cols {
		mapping[c] = strings.TrimPrefix(c, prefix+".")
	}
	return ret.Rename(mapping)
}

// unprefix renames "<prefix>.<col>" to "<col>" unless col already exists
func unprefix(t *tabular.Table, prefix string) *tabular.Table {
	mapping := map[string]string{}
	for _, c := range t.Columns {
		if name, ok := strings.CutPrefix(c, prefix+"."); ok && !t.Has(name) {
			mapping[c] = name
		}
	}
	return t.Rename(mapping)
}

func int64Of(obj map[string]any, key string) (int64, bool) {
	return tabular.AsInt64(obj[key])
}
