package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() *Table {
	t := New("entryId", "time")
	t.Append(int64(1), 10.5)
	t.Append(int64(2), "12.0")
	t.Append(int64(3))
	return t
}

func TestTableAccess(t *testing.T) {
	tab := sampleTable()
	assert.Equal(t, 3, tab.Len())
	assert.Equal(t, 1, tab.Index("time"))
	assert.Equal(t, -1, tab.Index("unknown"))
	assert.Nil(t, tab.Value(0, "unknown"))

	f, ok := tab.Row(1).Float64("time")
	assert.True(t, ok)
	assert.InEpsilon(t, 12.0, f, 1e-9)
	_, ok = tab.Row(2).Float64("time")
	assert.False(t, ok)
}

func TestTableTransform(t *testing.T) {
	tab := sampleTable().WithConstant("stageId", int64(5))
	assert.Equal(t, []any{int64(5), int64(5), int64(5)}, tab.Column("stageId"))

	filtered := tab.Filter(func(r Row) bool {
		id, _ := r.Int64("entryId")
		return id > 1
	})
	assert.Equal(t, 2, filtered.Len())

	sel := tab.Select("time", "missing")
	assert.Equal(t, []string{"time", "missing"}, sel.Columns)
	assert.Equal(t, []any{10.5, nil}, sel.Rows[0])

	tab.Rename(map[string]string{"time": "elapsed"})
	assert.True(t, tab.Has("elapsed"))
	assert.False(t, tab.Has("time"))

	other := New("entryId", "extra")
	other.Append(int64(9), "x")
	tab.Concat(other)
	assert.Equal(t, 4, tab.Len())
	assert.Equal(t, "x", tab.Row(3).String("extra"))
	assert.Nil(t, tab.Row(0).Get("extra"))
}

func TestConvert(t *testing.T) {
	i, ok := AsInt64(3.0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	_, ok = AsInt64(3.5)
	assert.False(t, ok)
	i, ok = AsInt64(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)
	assert.Equal(t, "1.5", AsString(1.5))
	assert.Equal(t, "", AsString(nil))
	assert.True(t, AsBool("true"))
}
