package markdown

import (
	"regexp"
	"strings"
)

var (
	tableLineRe = regexp.MustCompile(`\|.+\|`)
	separatorRe = regexp.MustCompile(`^\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?$`)
)

// isTableLine reports whether line holds a pair of pipes enclosing at least
// one character.
func isTableLine(line string) bool {
	return tableLineRe.MatchString(line)
}

// isSeparator reports whether line is a header/body separator such as
// "| --- | :-: |". Only content is judged, never position.
func isSeparator(line string) bool {
	return separatorRe.MatchString(strings.TrimSpace(line))
}

// splitRow splits a table line into cells. Empty fragments produced by the
// outer pipes are dropped; interior empty cells are kept.
func splitRow(line string) []Cell {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) > 1 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]Cell, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, Cell(parseInline(strings.TrimSpace(p))))
	}
	return cells
}

// tableBuilder accumulates one table while the scanner is inside it.
type tableBuilder struct {
	t Table
}

// add consumes the table line at lines[i] and reports how many lines were
// used. The first row becomes the header when the following line is a
// separator; that separator is consumed with it.
func (tb *tableBuilder) add(lines []string, i int, first bool) int {
	if first && i+1 < len(lines) && isSeparator(lines[i+1]) {
		tb.t.Header = splitRow(lines[i])
		return 2
	}
	tb.t.Rows = append(tb.t.Rows, splitRow(lines[i]))
	return 1
}

func writeTable(b *strings.Builder, t Table) {
	b.WriteString("<table>")
	if t.Header != nil {
		b.WriteString("<thead><tr>")
		for _, c := range t.Header {
			b.WriteString("<th>")
			writeInlines(b, c)
			b.WriteString("</th>")
		}
		b.WriteString("</tr></thead>")
	}
	if len(t.Rows) > 0 {
		b.WriteString("<tbody>")
		for _, row := range t.Rows {
			b.WriteString("<tr>")
			for _, c := range row {
				b.WriteString("<td>")
				writeInlines(b, c)
				b.WriteString("</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody>")
	}
	b.WriteString("</table>")
}
