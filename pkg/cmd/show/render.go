package show

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

type renderConfig struct {
	format string
	raw    bool
	// highlight marks best (green) and worst (red) value of these columns
	highlight []string
	// reversePalette swaps the highlight colors
	reversePalette bool
}

// render writes t to w. Unless raw is set, millisecond columns are shown
// as formatted times and diff columns carry a sign.
func render(w io.Writer, t *tabular.Table, cfg renderConfig) error {
	tw := table.NewWriter()
	header := make(table.Row, len(t.Columns))
	colCfgs := make([]table.ColumnConfig, 0, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
		if isTimeColumn(c) && !cfg.raw {
			colCfgs = append(colCfgs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(colCfgs)
	marks := extremes(t, cfg.highlight)
	best, worst := text.Colors{text.FgGreen}, text.Colors{text.FgRed}
	if cfg.reversePalette {
		best, worst = worst, best
	}
	t.Each(func(r tabular.Row) {
		row := make(table.Row, len(t.Columns))
		for i, c := range t.Columns {
			s := cellText(c, r.Get(c), cfg.raw)
			if m, ok := marks[c]; ok && cfg.format != "csv" {
				switch r.Index() {
				case m.best:
					s = best.Sprint(s)
				case m.worst:
					s = worst.Sprint(s)
				}
			}
			row[i] = s
		}
		tw.AppendRow(row)
	})

	var out string
	switch cfg.format {
	case "csv":
		out = tw.RenderCSV()
	case "markdown", "md":
		out = tw.RenderMarkdown()
	case "table", "":
		tw.SetStyle(table.StyleLight)
		out = tw.Render()
	default:
		return fmt.Errorf("unknown output format %q", cfg.format)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

type extreme struct{ best, worst int }

// extremes finds the rows holding the min and max numeric value per column
func extremes(t *tabular.Table, cols []string) map[string]extreme {
	ret := map[string]extreme{}
	for _, c := range cols {
		if !t.Has(c) {
			continue
		}
		e := extreme{best: -1, worst: -1}
		var lo, hi float64
		for i := range t.Len() {
			v, ok := tabular.AsFloat64(t.Value(i, c))
			if !ok {
				continue
			}
			if e.best < 0 || v < lo {
				e.best, lo = i, v
			}
			if e.worst < 0 || v > hi {
				e.worst, hi = i, v
			}
		}
		if e.best >= 0 && e.best != e.worst {
			ret[c] = e
		}
	}
	return ret
}

func isTimeColumn(col string) bool {
	return strings.HasSuffix(col, "Ms")
}

func cellText(col string, v any, raw bool) string {
	if v == nil {
		return ""
	}
	if !raw && isTimeColumn(col) {
		if ms, ok := tabular.AsInt64(v); ok {
			return timing.FormatSeconds(timing.MsToSeconds(ms), strings.HasPrefix(col, "diff"))
		}
	}
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f", f)
	}
	return tabular.AsString(v)
}
