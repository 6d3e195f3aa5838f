package markdown

import (
	"strconv"
	"strings"
)

// Render converts the response dialect into HTML markup. It never fails:
// empty input yields "". Output is not escaped and re-rendering markup is
// not expected to round trip.
func Render(text string) string {
	return Parse(text).HTML()
}

// HTML renders the document. Blocks are separated by a newline.
func (d Document) HTML() string {
	var b strings.Builder
	for i, blk := range d.Blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeBlock(&b, blk)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, blk Block) {
	switch v := blk.(type) {
	case Heading:
		tag := "h" + strconv.Itoa(v.Level)
		b.WriteString("<" + tag + ">")
		writeInlines(b, v.Inlines)
		b.WriteString("</" + tag + ">")
	case Paragraph:
		b.WriteString("<p>")
		for i, l := range v.Lines {
			if i > 0 {
				b.WriteString("<br>")
			}
			writeInlines(b, l)
		}
		b.WriteString("</p>")
	case List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for _, it := range v.Items {
			b.WriteString("<li>")
			writeInlines(b, it)
			b.WriteString("</li>")
		}
		b.WriteString("</" + tag + ">")
	case CodeBlock:
		if v.Info != "" {
			b.WriteString(`<pre><code class="language-` + v.Info + `">`)
		} else {
			b.WriteString("<pre><code>")
		}
		b.WriteString(strings.Join(v.Lines, "\n"))
		b.WriteString("</code></pre>")
	case Table:
		writeTable(b, v)
	}
}

// Headings returns the plain text of every heading in document order.
func (d Document) Headings() []string {
	var out []string
	for _, blk := range d.Blocks {
		h, ok := blk.(Heading)
		if !ok {
			continue
		}
		var b strings.Builder
		plainInlines(&b, h.Inlines)
		out = append(out, b.String())
	}
	return out
}

// Title returns the first heading, or the first line of text when the
// document has no headings.
func (d Document) Title() string {
	if hs := d.Headings(); len(hs) > 0 {
		return hs[0]
	}
	first, _, _ := strings.Cut(d.PlainText(), "\n")
	return strings.TrimSpace(first)
}

// PlainText strips all markers, keeping list bullets and table pipes.
func PlainText(text string) string {
	return Parse(text).PlainText()
}

func (d Document) PlainText() string {
	var b strings.Builder
	for i, blk := range d.Blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch v := blk.(type) {
		case Heading:
			plainInlines(&b, v.Inlines)
		case Paragraph:
			for j, l := range v.Lines {
				if j > 0 {
					b.WriteByte('\n')
				}
				plainInlines(&b, l)
			}
		case List:
			for j, it := range v.Items {
				if j > 0 {
					b.WriteByte('\n')
				}
				if v.Ordered {
					b.WriteString(strconv.Itoa(j+1) + ". ")
				} else {
					b.WriteString("- ")
				}
				plainInlines(&b, it)
			}
		case CodeBlock:
			b.WriteString(strings.Join(v.Lines, "\n"))
		case Table:
			rows := v.Rows
			if v.Header != nil {
				rows = append([][]Cell{v.Header}, rows...)
			}
			for j, row := range rows {
				if j > 0 {
					b.WriteByte('\n')
				}
				for k, c := range row {
					if k > 0 {
						b.WriteString(" | ")
					}
					plainInlines(&b, c)
				}
			}
		}
	}
	return b.String()
}
