package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WithFilter(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, DebugLevel)
	l, err := base.WithFilter("*:fetch")
	require.NoError(t, err)

	l.Named("fetch").Info("kept", String("url", "x"))
	l.Named("store").Info("dropped")

	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestLogger_WithFilterEmpty(t *testing.T) {
	base := New(&bytes.Buffer{}, InfoLevel)
	l, err := base.WithFilter("")
	require.NoError(t, err)
	assert.Same(t, base, l)
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.SetLevel(InfoLevel)
	l.Info("visible")
	assert.Contains(t, buf.String(), "visible")
}
