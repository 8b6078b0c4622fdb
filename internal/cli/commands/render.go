package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/apidash/internal/cli/output"
	"github.com/leapstack-labs/apidash/internal/insights"
	"github.com/leapstack-labs/apidash/internal/session"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

const sampleFieldCount = 5

// renderResult writes the table in the requested format. The format string
// accepts the renderer modes plus "csv".
func renderResult(w io.Writer, t *tabular.Table, format string) error {
	switch format {
	case "json":
		return renderJSON(w, t)
	case "csv":
		return tabular.WriteCSV(w, t)
	case "md", "markdown":
		return renderMarkdown(w, t)
	default:
		return renderTable(w, t)
	}
}

func renderTable(w io.Writer, t *tabular.Table) error {
	if t.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		headerRow[i] = col
	}
	tw.AppendHeader(headerRow)

	for _, row := range t.Rows {
		tr := make(table.Row, len(t.Columns))
		for i, col := range t.Columns {
			tr[i] = tabular.FormatCell(row[col])
		}
		tw.AppendRow(tr)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", t.Len())
	return nil
}

func renderJSON(w io.Writer, t *tabular.Table) error {
	rows := t.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderMarkdown(w io.Writer, t *tabular.Table) error {
	if t.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(t.Columns, " | "))
	seps := make([]string, len(t.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	values := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			values[i] = tabular.FormatCell(row[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// renderOverview prints the record/field summary block shown above tables.
func renderOverview(r *output.Renderer, state *session.State) {
	styles := r.Styles()

	r.Println(styles.Header1.Render(state.Resource.Name + " Data"))
	r.Printf("%s %d\n", styles.Bold.Render("Total Records:"), state.Table.Len())
	if state.Table.Len() > 0 {
		r.Printf("%s %d\n", styles.Bold.Render("Fields per Record:"), len(state.Table.Columns))
		r.Printf("%s %s\n", styles.Bold.Render("Sample Fields:"), state.Table.SampleColumns(sampleFieldCount))
	}
	r.Println("")
}

// renderInsights prints the resource-specific summaries with textual bar
// charts for grouped counts.
func renderInsights(r *output.Renderer, list []insights.Insight) {
	styles := r.Styles()

	if len(list) == 0 {
		r.Println(styles.Muted.Render("No insights available for this data."))
		return
	}

	for _, in := range list {
		r.Println(styles.Header2.Render(in.Title))
		switch {
		case in.Value != "":
			r.Printf("  %s\n", in.Value)
		case in.Buckets != nil:
			renderBuckets(r, in.Buckets)
		default:
			for _, line := range in.Lines {
				r.Printf("  %s\n", line)
			}
		}
		r.Println("")
	}
}

// barWidth is the width of the largest bar in bucket charts.
const barWidth = 40

func renderBuckets(r *output.Renderer, buckets []insights.Bucket) {
	maxCount := 0
	labelWidth := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		if len(b.Label) > labelWidth {
			labelWidth = len(b.Label)
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, b := range buckets {
		bar := strings.Repeat("█", b.Count*barWidth/maxCount)
		r.Printf("  %-*s %s %d\n", labelWidth, b.Label, r.Styles().Info.Render(bar), b.Count)
	}
}

// renderRaw pretty-prints the raw payload.
func renderRaw(w io.Writer, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Raw view is best effort; show what came over the wire.
		_, _ = w.Write(raw)
		_, _ = fmt.Fprintln(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
