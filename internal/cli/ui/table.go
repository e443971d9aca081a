package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows of cells as aligned columns under an underlined header.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// TableOptions configures table rendering
type TableOptions struct {
	NoColor bool
}

// NewTable creates a table that renders to w with the given column headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.noColor = opts.NoColor
	}
	return t
}

// AddRow appends one row. Cells beyond the header's column count are
// dropped; missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the header, a rule, and every row. A table with no headers
// renders nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := t.columnWidths()

	headerPaint := color.New(color.Bold, color.FgCyan)
	rulePaint := color.New(color.FgHiBlack)
	if t.noColor {
		headerPaint.DisableColor()
		rulePaint.DisableColor()
	}

	t.writeLine(t.headers, widths, headerPaint)

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("─", width)
	}
	t.writeLine(rule, widths, rulePaint)

	for _, row := range t.rows {
		t.writeLine(row, widths, nil)
	}
}

// columnWidths sizes each column to its widest cell. Widths count runes,
// not bytes, so cells like "─" and "•" align correctly.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// writeLine assembles one output line from padded cells and writes it,
// painted when paint is non-nil. Trailing padding is trimmed so the last
// column never emits dangling spaces.
func (t *Table) writeLine(cells []string, widths []int, paint *color.Color) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = padRight(cell, width)
	}
	line := strings.TrimRight(strings.Join(parts, "  "), " ")
	if paint != nil {
		paint.Fprintln(t.writer, line)
	} else {
		fmt.Fprintln(t.writer, line)
	}
}

// padRight fills s with spaces up to width display runes
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// KeyValueTable renders labeled values with the values aligned on the
// widest label
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow appends one labeled value
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs as "key: value" lines
func (t *KeyValueTable) Render() {
	widest := 0
	for _, key := range t.keys {
		if n := utf8.RuneCountInString(key); n > widest {
			widest = n
		}
	}

	keyPaint := color.New(color.FgCyan)
	if t.noColor {
		keyPaint.DisableColor()
	}
	for i, key := range t.keys {
		keyPaint.Fprint(t.writer, padRight(key+":", widest+1))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Divider writes a horizontal rule. A width of zero or less draws the full
// default 80 columns.
func Divider(w io.Writer, width int, noColor bool) {
	if width <= 0 {
		width = 80
	}
	paint := color.New(color.FgHiBlack)
	if noColor {
		paint.DisableColor()
	}
	paint.Fprintln(w, strings.Repeat("─", width))
}

// Header writes a bold title underlined to its own width
func Header(w io.Writer, title string, noColor bool) {
	paint := color.New(color.Bold, color.FgCyan)
	if noColor {
		paint.DisableColor()
	}
	paint.Fprintln(w, title)
	Divider(w, utf8.RuneCountInString(title), noColor)
}
