package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Markdown extension names accepted in descriptors.
const (
	ExtFencedCode     = "fenced_code"
	ExtTables         = "tables"
	ExtTOC            = "toc"
	ExtStrikethrough  = "strikethrough"
	ExtTaskList       = "tasklist"
	ExtLinkify        = "linkify"
	ExtFootnote       = "footnote"
	ExtDefinitionList = "definition_list"
	ExtTypographer    = "typographer"
	ExtGFM            = "gfm"
)

// DefaultExtensions is used when a descriptor names none.
var DefaultExtensions = []string{ExtFencedCode, ExtTables, ExtTOC}

var extensions = map[string]goldmark.Extender{
	ExtTables:         extension.Table,
	ExtStrikethrough:  extension.Strikethrough,
	ExtTaskList:       extension.TaskList,
	ExtLinkify:        extension.Linkify,
	ExtFootnote:       extension.Footnote,
	ExtDefinitionList: extension.DefinitionList,
	ExtTypographer:    extension.Typographer,
	ExtGFM:            extension.GFM,
}

// Document is converted markdown.
type Document struct {
	HTML     template.HTML
	Title    string
	Headings []Heading
}

// Markdown converts markdown to HTML. Raw HTML in sources is not passed
// through.
type Markdown struct {
	md  goldmark.Markdown
	toc bool
}

// NewMarkdown builds a converter with the named extensions. Fenced code is
// part of CommonMark and always on; the name is accepted for compatibility.
func NewMarkdown(names []string) (*Markdown, error) {
	if len(names) == 0 {
		names = DefaultExtensions
	}
	m := &Markdown{}
	var (
		exts    []goldmark.Extender
		unknown []string
	)
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case ExtFencedCode:
		case ExtTOC:
			m.toc = true
		default:
			ext, ok := extensions[name]
			if !ok {
				unknown = append(unknown, name)
				continue
			}
			exts = append(exts, ext)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown markdown extensions: %s", strings.Join(unknown, ", "))
	}

	m.md = goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return m, nil
}

// Convert renders src. Title is the first level-one heading, if any;
// Headings is filled only when the toc extension is enabled.
func (m *Markdown) Convert(src []byte) (*Document, error) {
	root := m.md.Parser().Parse(text.NewReader(src))

	doc := &Document{}
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		label := nodeText(h, src)
		if doc.Title == "" && h.Level == 1 {
			doc.Title = label
		}
		if m.toc {
			id := ""
			if v, ok := h.AttributeString("id"); ok {
				if b, ok := v.([]byte); ok {
					id = string(b)
				}
			}
			doc.Headings = append(doc.Headings, Heading{Level: h.Level, ID: id, Text: label})
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := m.md.Renderer().Render(&buf, src, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	doc.HTML = template.HTML(buf.String()) //nolint:gosec // goldmark escapes raw HTML
	return doc, nil
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}
