package markdown

// InlineKind identifies the formatting applied to an inline span.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineEmphasis
	InlineStrong
	InlineStrongEmphasis
	InlineCode
)

// Inline is a run of text inside a block. Code and text spans carry Text;
// the emphasis kinds carry Children.
type Inline struct {
	Kind     InlineKind
	Text     string
	Children []Inline
}

// Block is one top level element of a Document.
type Block interface {
	block()
}

type Heading struct {
	Level   int
	Inlines []Inline
}

// Paragraph holds consecutive text lines; they render joined by a line break.
type Paragraph struct {
	Lines [][]Inline
}

type List struct {
	Ordered bool
	Items   [][]Inline
}

// CodeBlock is a fenced block. Closed is false when the input ended before
// the closing fence.
type CodeBlock struct {
	Info   string
	Lines  []string
	Closed bool
}

// Cell is a single table cell.
type Cell []Inline

// Table has an optional header row followed by body rows.
type Table struct {
	Header []Cell
	Rows   [][]Cell
}

func (Heading) block()   {}
func (Paragraph) block() {}
func (List) block()      {}
func (CodeBlock) block() {}
func (Table) block()     {}

// Document is the parsed form of a response.
type Document struct {
	Blocks []Block
}
