package stats

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

type column struct {
	header string
	right  bool
}

func left(header string) column  { return column{header: header} }
func right(header string) column { return column{header: header, right: true} }

// table is a titled plain-text report block. Widths are measured in
// terminal cells, so scenario names in wide scripts stay aligned.
type table struct {
	title string
	cols  []column
	rows  [][]string
}

func newTable(title string, cols ...column) *table {
	return &table{title: title, cols: cols}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.cols))
	for i, c := range t.cols {
		widths[i] = runewidth.StringWidth(c.header)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	return widths
}

func (t *table) line(cells []string, widths []int) string {
	parts := make([]string, len(t.cols))
	for i, c := range t.cols {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if c.right {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// lines renders the header and rows without the title.
func (t *table) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	widths := t.widths()
	headers := make([]string, len(t.cols))
	for i, c := range t.cols {
		headers[i] = c.header
	}
	out := []string{t.line(headers, widths)}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

// writeTo prints the title, the table and a trailing blank line.
func (t *table) writeTo(w io.Writer) error {
	var b strings.Builder
	b.WriteString(t.title)
	b.WriteByte('\n')
	for _, l := range t.lines() {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
