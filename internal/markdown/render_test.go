package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fragment parses rendered markup as an HTML body fragment.
func fragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	require.NoError(t, err)
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return body
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(""))
	assert.Equal(t, "", Render("   \n\t\n"))
}

func TestRender_PlainText(t *testing.T) {
	for _, in := range []string{
		"hello world",
		"Students will sing a simple song.",
		"grade 4 fractions, 45 minutes (with review)",
	} {
		assert.Equal(t, "<p>"+in+"</p>", Render(in), in)
	}
}

func TestRender_Headings(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"# Title", "<h1>Title</h1>"},
		{"## Objectives", "<h2>Objectives</h2>"},
		{"### Materials", "<h3>Materials</h3>"},
		{"#### Deep", "<p>#### Deep</p>"},
		{"#NoSpace", "<p>#NoSpace</p>"},
		{"## **Warm-Up** (5 min)", "<h2><strong>Warm-Up</strong> (5 min)</h2>"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Render(tc.in), tc.in)
	}
}

func TestRender_Emphasis(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"**bold**", "<p><strong>bold</strong></p>"},
		{"*it*", "<p><em>it</em></p>"},
		{"***both***", "<p><strong><em>both</em></strong></p>"},
		{"a **b** c *d*", "<p>a <strong>b</strong> c <em>d</em></p>"},
		{"**a *b* c**", "<p><strong>a <em>b</em> c</strong></p>"},
		{"*a **b** c*", "<p><em>a <strong>b</strong> c</em></p>"},
		{"**open only", "<p>**open only</p>"},
		{"5 * 3 = 15", "<p>5 * 3 = 15</p>"},
		{"****", "<p>****</p>"},
		{"**a** and **b**", "<p><strong>a</strong> and <strong>b</strong></p>"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Render(tc.in), tc.in)
	}
}

func TestRender_BothNestsCorrectly(t *testing.T) {
	root := fragment(t, Render("***both***"))
	strong := findAll(root, atom.Strong)
	require.Len(t, strong, 1)
	em := findAll(strong[0], atom.Em)
	require.Len(t, em, 1)
	assert.Equal(t, "both", textOf(em[0]))
}

func TestRender_Code(t *testing.T) {
	assert.Equal(t, "<p>use <code>x</code> now</p>", Render("use `x` now"))
	assert.Equal(t, "<p><code>*not em*</code></p>", Render("`*not em*`"))
	assert.Equal(t, "<p><em>a <code>b</code> c</em></p>", Render("*a `b` c*"))
	assert.Equal(t, "<p>``</p>", Render("``"))
	assert.Equal(t, "<p>`dangling</p>", Render("`dangling"))
}

func TestRender_FencedBlock(t *testing.T) {
	in := "intro\n```go\nfunc main() {}\n**raw**\n```\nafter"
	want := "<p>intro</p>\n<pre><code class=\"language-go\">func main() {}\n**raw**</code></pre>\n<p>after</p>"
	assert.Equal(t, want, Render(in))

	assert.Equal(t, "<pre><code>x</code></pre>", Render("```\nx\n```"))
}

func TestRender_FenceMidLine(t *testing.T) {
	assert.Equal(t, "<pre><code>foo</code></pre>\n<p>after</p>", Render("```\nfoo```\nafter"))
	assert.Equal(t, "<p>use</p>\n<pre><code>x</code></pre>\n<p>here</p>", Render("use ```x``` here"))
	assert.Equal(t, "<pre><code>a\nb</code></pre>\n<p>tail</p>", Render("```\na\nb``` tail"))
	assert.Equal(t, "<p>run</p>\n<pre><code class=\"language-sh\">ls</code></pre>", Render("run ```sh\nls\n```"))

	doc := Parse("```x```")
	require.Len(t, doc.Blocks, 1)
	cb, ok := doc.Blocks[0].(CodeBlock)
	require.True(t, ok)
	assert.True(t, cb.Closed)
	assert.Equal(t, []string{"x"}, cb.Lines)
}

func TestParse_UnclosedFenceSwallowsRest(t *testing.T) {
	doc := Parse("```\n# not a heading\n- not a list\n\nstill code")
	require.Len(t, doc.Blocks, 1)
	cb, ok := doc.Blocks[0].(CodeBlock)
	require.True(t, ok)
	assert.False(t, cb.Closed)
	assert.Equal(t, []string{"# not a heading", "- not a list", "", "still code"}, cb.Lines)
}

func TestRender_ListsHaveSingleContainer(t *testing.T) {
	out := Render("- a\n- b\n- c")
	assert.Equal(t, "<ul><li>a</li><li>b</li><li>c</li></ul>", out)

	assert.Equal(t, 1, strings.Count(out, "<ul>"))
	assert.Equal(t, 1, strings.Count(out, "</ul>"))

	root := fragment(t, out)
	lists := findAll(root, atom.Ul)
	require.Len(t, lists, 1)
	items := findAll(lists[0], atom.Li)
	require.Len(t, items, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, textOf(items[i]))
	}
}

func TestRender_ListKinds(t *testing.T) {
	assert.Equal(t, "<ol><li>one</li><li>two</li></ol>", Render("1. one\n2. two"))
	assert.Equal(t, "<ul><li>one</li><li>two</li></ul>", Render("1. one\n* two"))
	assert.Equal(t, "<ul><li>a</li></ul>\n<ul><li>b</li></ul>", Render("- a\n\n- b"))
	assert.Equal(t, "<p>- </p>", Render("- "))
	assert.Equal(t, "<p>1. </p>", Render("1. "))
	assert.Equal(t, "<p>intro</p>\n<ul><li><strong>Materials:</strong> drum</li></ul>\n<p>outro</p>",
		Render("intro\n- **Materials:** drum\noutro"))
}

func TestRender_Paragraphs(t *testing.T) {
	assert.Equal(t, "<p>a<br>b</p>\n<p>c</p>", Render("a\nb\n\nc"))
	assert.Equal(t, "<p>a</p>\n<p>b</p>", Render("a\n   \n\n\nb"))
	assert.NotContains(t, Render("\n\na\n\n"), "<p></p>")
	assert.Equal(t, "<p>a<br>b</p>", Render("a\r\nb"))
}

func TestRender_Table(t *testing.T) {
	in := "| A | B |\n| - | - |\n| 1 | 2 |"
	out := Render(in)
	assert.Equal(t,
		"<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>",
		out)

	root := fragment(t, out)
	require.Len(t, findAll(root, atom.Table), 1)
	thead := findAll(root, atom.Thead)
	require.Len(t, thead, 1)
	require.Len(t, findAll(thead[0], atom.Tr), 1)
	ths := findAll(thead[0], atom.Th)
	require.Len(t, ths, 2)
	assert.Equal(t, "A", textOf(ths[0]))
	assert.Equal(t, "B", textOf(ths[1]))

	tbody := findAll(root, atom.Tbody)
	require.Len(t, tbody, 1)
	require.Len(t, findAll(tbody[0], atom.Tr), 1)
	tds := findAll(tbody[0], atom.Td)
	require.Len(t, tds, 2)
	assert.Equal(t, "1", textOf(tds[0]))
	assert.Equal(t, "2", textOf(tds[1]))
}

func TestRender_TableWithoutHeader(t *testing.T) {
	out := Render("| 1 | 2 |\n| 3 | 4 |")
	assert.Equal(t, "<table><tbody><tr><td>1</td><td>2</td></tr><tr><td>3</td><td>4</td></tr></tbody></table>", out)
	assert.NotContains(t, out, "<th>")
}

func TestRender_TableEdges(t *testing.T) {
	t.Run("late separator is a body row", func(t *testing.T) {
		out := Render("| A |\n|---|\n| 1 |\n|---|\n| 2 |")
		assert.Equal(t, "<table><thead><tr><th>A</th></tr></thead><tbody><tr><td>1</td></tr><tr><td>---</td></tr><tr><td>2</td></tr></tbody></table>", out)
	})
	t.Run("interior empty cells kept", func(t *testing.T) {
		out := Render("| a |  | c |")
		assert.Equal(t, "<table><tbody><tr><td>a</td><td></td><td>c</td></tr></tbody></table>", out)
	})
	t.Run("alignment separators", func(t *testing.T) {
		out := Render("| L | C | R |\n|:--|:-:|--:|\n| 1 | 2 | 3 |")
		assert.Contains(t, out, "<thead><tr><th>L</th><th>C</th><th>R</th></tr></thead>")
		assert.NotContains(t, out, ":-")
	})
	t.Run("inline formatting in cells", func(t *testing.T) {
		out := Render("| **Time** | *Activity* |\n|---|---|\n| 5 | `warm-up` |")
		assert.Contains(t, out, "<th><strong>Time</strong></th><th><em>Activity</em></th>")
		assert.Contains(t, out, "<td><code>warm-up</code></td>")
	})
	t.Run("text line closes table", func(t *testing.T) {
		out := Render("| a | b |\nafter")
		assert.Equal(t, "<table><tbody><tr><td>a</td><td>b</td></tr></tbody></table>\n<p>after</p>", out)
	})
	t.Run("two tables separated by blank line", func(t *testing.T) {
		out := Render("| a |\n\n| b |")
		assert.Equal(t, 2, strings.Count(out, "<table>"))
	})
	t.Run("header only", func(t *testing.T) {
		out := Render("| A | B |\n|---|---|")
		assert.Equal(t, "<table><thead><tr><th>A</th><th>B</th></tr></thead></table>", out)
	})
}

func TestRender_Precedence(t *testing.T) {
	assert.Equal(t, "<h2>a | b |</h2>", Render("## a | b |"))
	assert.Equal(t, "<ul><li>| a | b |</li></ul>", Render("- | a | b |"))
}

// Rendering markup a second time is out of contract; it is not expected to
// reproduce the first result.
func TestRender_NotIdempotent(t *testing.T) {
	once := Render("a\nb")
	twice := Render(once)
	assert.NotEqual(t, once, twice)
}

func TestRender_Deterministic(t *testing.T) {
	in := "# Plan\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n- x\n- y\n\ntext **b**"
	assert.Equal(t, Render(in), Render(in))
}

func TestRender_LessonSample(t *testing.T) {
	in := strings.Join([]string{
		"### 📚 Based on District Documents:",
		"",
		"## Lesson Plan: Rhythm",
		"**Duration:** 30 minutes",
		"",
		"1. Warm-up",
		"2. Clapping",
		"",
		"| Time | Activity |",
		"|------|----------|",
		"| 5 min | Warm-up |",
	}, "\n")
	want := strings.Join([]string{
		"<h3>📚 Based on District Documents:</h3>",
		"<h2>Lesson Plan: Rhythm</h2>",
		"<p><strong>Duration:</strong> 30 minutes</p>",
		"<ol><li>Warm-up</li><li>Clapping</li></ol>",
		"<table><thead><tr><th>Time</th><th>Activity</th></tr></thead><tbody><tr><td>5 min</td><td>Warm-up</td></tr></tbody></table>",
	}, "\n")
	assert.Equal(t, want, Render(in))
}

func TestDocument_HeadingsTitleAndPlainText(t *testing.T) {
	doc := Parse("# **Music** Lesson\ntext\n## Goals\n- *sing*\n| a | b |")
	assert.Equal(t, []string{"Music Lesson", "Goals"}, doc.Headings())
	assert.Equal(t, "Music Lesson", doc.Title())
	assert.Equal(t, "Music Lesson\n\ntext\n\nGoals\n\n- sing\n\na | b", doc.PlainText())

	assert.Equal(t, "first line", Parse("first *line*\nsecond").Title())
	assert.Equal(t, "", Parse("").Title())
}
