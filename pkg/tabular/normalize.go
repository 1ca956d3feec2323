package tabular

import (
	"slices"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Flat converts the upstream "fields+values" shape into a table.
// Rows shorter than fields are right-padded with empty strings. The columns
// named in addCols are appended (nil cells) for the caller to fill.
// A missing or malformed fields list yields an empty table.
func Flat(data any, addCols ...string) *Table {
	fields, values, ok := fieldsAndValues(data)
	if !ok {
		return Empty()
	}
	t := New(withAddCols(fields, addCols)...)
	for _, v := range values {
		if row, ok := v.([]any); ok {
			cells := make([]any, len(t.Columns))
			copy(cells, padRow(row, len(fields)))
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

// IsFlat reports whether data has the "fields+values" shape
func IsFlat(data any) bool {
	_, _, ok := fieldsAndValues(data)
	return ok
}

func withAddCols(fields, addCols []string) []string {
	cols := slices.Clone(fields)
	for _, c := range addCols {
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Nested converts {fields, values: [{subCol: [row...], k1: v1, ...}]} into a table.
// Rows in subCol are exploded, the keys named in addCols are broadcast to
// each exploded row. addCols not present in a value object yield nil cells.
func Nested(data any, subCol string, addCols ...string) *Table {
	fields, values, ok := fieldsAndValues(data)
	if !ok {
		return Empty()
	}
	cols := withAddCols(fields, addCols)
	t := New(cols...)
	for _, v := range values {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		sub, _ := obj[subCol].([]any)
		for _, s := range sub {
			rawRow, ok := s.([]any)
			if !ok {
				continue
			}
			row := make([]any, len(cols))
			copy(row, padRow(rawRow, len(fields)))
			for _, c := range addCols {
				row[t.lookup[c]] = obj[c]
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func fieldsAndValues(data any) (fields []string, values []any, ok bool) {
	m, isMap := data.(map[string]any)
	if !isMap {
		return nil, nil, false
	}
	rawFields, isList := m["fields"].([]any)
	if !isList {
		return nil, nil, false
	}
	fields = make([]string, len(rawFields))
	for i, f := range rawFields {
		fields[i] = AsString(f)
	}
	values, _ = m["values"].([]any)
	return fields, values, true
}

func padRow(row []any, n int) []any {
	ret := make([]any, n)
	for i := range ret {
		if i < len(row) {
			ret[i] = row[i]
		} else {
			ret[i] = ""
		}
	}
	return ret
}

// FromRecords converts a JSON array of objects into a table.
// Columns are the union of the scalar keys (sorted per record, records in order).
// Nested objects are skipped unless their key is listed in flatten, in which
// case their scalar keys become columns named "<key>.<subkey>".
// A single object is treated as a one-element array.
func FromRecords(data any, flatten ...string) *Table {
	var records []any
	switch v := data.(type) {
	case []any:
		records = v
	case map[string]any:
		records = []any{v}
	default:
		return Empty()
	}
	t := New()
	for _, r := range records {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		flat := flattenObject(obj, flatten)
		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AddColumn(k)
		}
		t.AppendMap(flat)
	}
	return t
}

// FlattenObjects is FromRecords applied to the elements matched by a JSONPath
// expression, e.g. "$.itineraryLegs[*].itinerarySections[*].stages[*]".
func FlattenObjects(data any, path string, flatten ...string) (*Table, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, err
	}
	return FromRecords(expr.Get(data), flatten...), nil
}

func flattenObject(obj map[string]any, flatten []string) map[string]any {
	ret := make(map[string]any, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case map[string]any:
			if !slices.Contains(flatten, k) {
				continue
			}
			for sk, sv := range val {
				if isScalar(sv) {
					ret[strings.Join([]string{k, sk}, ".")] = sv
				}
			}
		case []any:
			continue
		default:
			ret[k] = val
		}
	}
	return ret
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}
