package markdown

import (
	"regexp"
	"slices"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,3}) (.*)$`)
	bulletRe    = regexp.MustCompile(`^\s*[*-] (.+)$`)
	numberedRe  = regexp.MustCompile(`^\s*\d+\. (.+)$`)
	infoRe      = regexp.MustCompile(`^[\w.+#-]*$`)
	fencePrefix = "```"
)

// Parse scans text line by line into a Document. Block precedence is
// fence, heading, list item, table line, then paragraph text. A blank line
// closes whatever block is open. Fences need not start a line: text around
// a fence on the same line is split off and parsed on its own.
func Parse(text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return Document{}
	}
	lines := strings.Split(text, "\n")

	var (
		doc   Document
		para  *Paragraph
		list  *List
		table *tableBuilder
		code  *CodeBlock
	)

	closePara := func() {
		if para != nil && len(para.Lines) > 0 {
			doc.Blocks = append(doc.Blocks, *para)
		}
		para = nil
	}
	closeList := func() {
		if list != nil {
			doc.Blocks = append(doc.Blocks, *list)
		}
		list = nil
	}
	closeTable := func() {
		if table != nil {
			doc.Blocks = append(doc.Blocks, table.t)
		}
		table = nil
	}
	closeAll := func() {
		closePara()
		closeList()
		closeTable()
	}

	for i := 0; i < len(lines); {
		line := lines[i]
		// resume reparses what follows a closing fence on the same line.
		resume := func(rest string) {
			if rest = strings.TrimLeft(rest, " \t"); rest == "" {
				i++
			} else {
				lines[i] = rest
			}
		}

		if code != nil {
			idx := strings.Index(line, fencePrefix)
			if idx < 0 {
				code.Lines = append(code.Lines, line)
				i++
				continue
			}
			if before := line[:idx]; strings.TrimSpace(before) != "" {
				code.Lines = append(code.Lines, before)
			}
			code.Closed = true
			doc.Blocks = append(doc.Blocks, *code)
			code = nil
			resume(line[idx+len(fencePrefix):])
			continue
		}

		if idx := strings.Index(line, fencePrefix); idx > 0 && strings.TrimSpace(line[:idx]) != "" {
			lines = slices.Insert(lines, i+1, line[idx:])
			lines[i] = strings.TrimRight(line[:idx], " \t")
			line = lines[i]
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeAll()
			i++

		case strings.HasPrefix(trimmed, fencePrefix):
			closeAll()
			rest := trimmed[len(fencePrefix):]
			if end := strings.Index(rest, fencePrefix); end >= 0 {
				doc.Blocks = append(doc.Blocks, CodeBlock{Lines: []string{rest[:end]}, Closed: true})
				resume(rest[end+len(fencePrefix):])
				break
			}
			code = openFence(rest)
			i++

		case headingRe.MatchString(line):
			closeAll()
			m := headingRe.FindStringSubmatch(line)
			doc.Blocks = append(doc.Blocks, Heading{
				Level:   len(m[1]),
				Inlines: parseInline(strings.TrimRight(m[2], " \t")),
			})
			i++

		case bulletRe.MatchString(line) || numberedRe.MatchString(line):
			closePara()
			closeTable()
			item, ordered := listItem(line)
			if list == nil {
				list = &List{Ordered: true}
			}
			list.Ordered = list.Ordered && ordered
			list.Items = append(list.Items, parseInline(item))
			i++

		case isTableLine(line):
			closePara()
			closeList()
			first := table == nil
			if first {
				table = &tableBuilder{}
			}
			i += table.add(lines, i, first)

		default:
			closeList()
			closeTable()
			if para == nil {
				para = &Paragraph{}
			}
			para.Lines = append(para.Lines, parseInline(line))
			i++
		}
	}

	if code != nil {
		doc.Blocks = append(doc.Blocks, *code)
	}
	closeAll()
	return doc
}

// openFence starts a block. A bare word after the fence is the info
// string; anything else is the first line of code.
func openFence(rest string) *CodeBlock {
	rest = strings.TrimSpace(rest)
	if infoRe.MatchString(rest) {
		return &CodeBlock{Info: rest}
	}
	return &CodeBlock{Lines: []string{rest}}
}

func listItem(line string) (string, bool) {
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	m := bulletRe.FindStringSubmatch(line)
	return m[1], false
}
