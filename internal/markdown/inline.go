package markdown

import "strings"

// parseInline scans a single line for code spans and star emphasis.
// Code spans are claimed before emphasis, so markers inside backticks stay
// literal. Unmatched markers are kept as text.
func parseInline(text string) []Inline {
	var out []Inline
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Inline{Kind: InlineText, Text: plain.String()})
			plain.Reset()
		}
	}

	spans := codeSpans(text)
	i := 0
	for i < len(text) {
		if end, ok := spans[i]; ok {
			flush()
			out = append(out, Inline{Kind: InlineCode, Text: text[i+1 : end]})
			i = end + 1
			continue
		}
		if text[i] != '*' {
			plain.WriteByte(text[i])
			i++
			continue
		}

		run := starRun(text, i)
		matched := false
		for _, k := range markerOrder(run) {
			closeAt := findCloser(text, i+k, k, spans)
			if closeAt < 0 {
				continue
			}
			flush()
			children := parseInline(text[i+k : closeAt])
			out = append(out, Inline{Kind: emphasisKind(k), Children: children})
			i = closeAt + k
			matched = true
			break
		}
		if !matched {
			plain.WriteByte('*')
			i++
		}
	}
	flush()
	return out
}

// codeSpans pairs backticks left to right. The returned map goes from the
// opening backtick index to the closing one. Empty spans are not code.
func codeSpans(text string) map[int]int {
	spans := map[int]int{}
	open := -1
	for i := 0; i < len(text); i++ {
		if text[i] != '`' {
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		if i == open+1 {
			// "``" is literal
			open = -1
			continue
		}
		spans[open] = i
		open = -1
	}
	return spans
}

func starRun(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == '*' {
		n++
	}
	return n
}

// markerOrder lists the marker widths to try for a run, longest first.
func markerOrder(run int) []int {
	switch {
	case run >= 3:
		return []int{3, 2, 1}
	case run == 2:
		return []int{2, 1}
	default:
		return []int{1}
	}
}

// findCloser returns the index of the earliest closing marker of width k
// starting at or after from. The content between opener and closer must be
// non-empty and the closer may not sit inside a code span. A single star
// closer must stand alone so that "*a **b** c*" keeps the inner pair.
func findCloser(text string, from, k int, spans map[int]int) int {
	for j := from; j < len(text); j++ {
		if end, ok := spans[j]; ok {
			j = end
			continue
		}
		if text[j] != '*' {
			continue
		}
		run := starRun(text, j)
		if j == from {
			j += run - 1
			continue
		}
		if k == 1 {
			if run == 1 {
				return j
			}
			j += run - 1
			continue
		}
		if run >= k {
			return j
		}
		j += run - 1
	}
	return -1
}

func emphasisKind(k int) InlineKind {
	switch k {
	case 3:
		return InlineStrongEmphasis
	case 2:
		return InlineStrong
	default:
		return InlineEmphasis
	}
}

func writeInlines(b *strings.Builder, in []Inline) {
	for _, n := range in {
		switch n.Kind {
		case InlineText:
			b.WriteString(n.Text)
		case InlineCode:
			b.WriteString("<code>")
			b.WriteString(n.Text)
			b.WriteString("</code>")
		case InlineEmphasis:
			b.WriteString("<em>")
			writeInlines(b, n.Children)
			b.WriteString("</em>")
		case InlineStrong:
			b.WriteString("<strong>")
			writeInlines(b, n.Children)
			b.WriteString("</strong>")
		case InlineStrongEmphasis:
			b.WriteString("<strong><em>")
			writeInlines(b, n.Children)
			b.WriteString("</em></strong>")
		}
	}
}

func plainInlines(b *strings.Builder, in []Inline) {
	for _, n := range in {
		if n.Kind == InlineText || n.Kind == InlineCode {
			b.WriteString(n.Text)
			continue
		}
		plainInlines(b, n.Children)
	}
}
