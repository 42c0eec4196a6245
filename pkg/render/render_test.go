package render

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mphost/mph/pkg/resolve"
)

func TestTemplatesParse(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{PageHome, PageList, PageProject, PageDoc, PageTable, PageError},
		tpl.Names())
}

func TestRenderHome(t *testing.T) {
	tpl := MustTemplates()
	rec := httptest.NewRecorder()

	err := tpl.Render(rec, http.StatusOK, PageHome, HomeData{Backends: []Backend{{
		Label:     "Docs",
		URLPrefix: "/docs",
		Projects:  []Project{{ID: "guide", Name: "Guide", Emoji: "📘", URL: "/docs/guide"}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `href="/docs/guide"`)
	assert.Contains(t, rec.Body.String(), "📘 Guide")
}

func TestRenderPageTree(t *testing.T) {
	tpl := MustTemplates()
	rec := httptest.NewRecorder()

	tree := &resolve.Node{
		Files: []resolve.File{{Name: "tutorial.md", Path: "tutorial.md", Slug: "tutorial"}},
		Folders: []resolve.Folder{{Name: "advanced", Path: "advanced", Node: &resolve.Node{
			Files: []resolve.File{{Name: "deep.md", Path: "advanced/deep.md", Slug: "advanced/deep"}},
		}}},
	}
	err := tpl.Render(rec, http.StatusOK, PageDoc, PageData{
		Backend: Backend{Label: "Docs", URLPrefix: "/docs"},
		Project: Project{ID: "guide", Name: "Guide"},
		Title:   "Tutorial",
		Path:    "tutorial.md",
		Content: "<h1>Tutorial</h1>",
		Tree:    tree,
		BaseURL: "/docs/guide",
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Tutorial</h1>")
	assert.Contains(t, body, `href="/docs/guide/tutorial" class="current"`)
	assert.Contains(t, body, `href="/docs/guide/advanced/deep"`)
	assert.Contains(t, body, "<summary>advanced</summary>")
}

func TestRenderTableAndNilTree(t *testing.T) {
	tpl := MustTemplates()
	rec := httptest.NewRecorder()

	err := tpl.Render(rec, http.StatusOK, PageTable, PageData{
		Title: "people",
		Table: &Table{Filename: "people.csv", Headers: []string{"name", "role"}, Rows: [][]string{{"Ada", "<admin>"}}},
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, "<th>role</th>")
	assert.Contains(t, body, "&lt;admin&gt;")
	assert.Contains(t, body, "1 rows")
}

func TestRenderUnknownPage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := MustTemplates().Render(rec, http.StatusOK, "nope", nil)
	assert.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(MustTemplates(), rec, http.StatusNotFound, "no such page", "req-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 Not Found")
	assert.Contains(t, rec.Body.String(), "req-1")

	rec = httptest.NewRecorder()
	WriteError(nil, rec, http.StatusInternalServerError, "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "500 Internal Server Error")
}

func TestMarkdownConvert(t *testing.T) {
	md, err := NewMarkdown(nil)
	require.NoError(t, err)

	doc, err := md.Convert([]byte("# Getting *started*\n\nIntro.\n\n## Install\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<script>alert(1)</script>\n"))
	require.NoError(t, err)
	assert.Equal(t, "Getting started", doc.Title)
	assert.Equal(t, []Heading{
		{Level: 1, ID: "getting-started", Text: "Getting started"},
		{Level: 2, ID: "install", Text: "Install"},
	}, doc.Headings)
	assert.Contains(t, string(doc.HTML), "<table>")
	assert.Contains(t, string(doc.HTML), `<h2 id="install">Install</h2>`)
	assert.NotContains(t, string(doc.HTML), "<script>")
}

func TestMarkdownExtensions(t *testing.T) {
	md, err := NewMarkdown([]string{"strikethrough", "TaskList"})
	require.NoError(t, err)
	doc, err := md.Convert([]byte("~~old~~\n\n- [x] done\n"))
	require.NoError(t, err)
	assert.Contains(t, string(doc.HTML), "<del>old</del>")
	assert.Contains(t, string(doc.HTML), `type="checkbox"`)
	assert.Empty(t, doc.Headings)

	plain, err := NewMarkdown([]string{"fenced_code"})
	require.NoError(t, err)
	doc, err = plain.Convert([]byte("~~old~~\n"))
	require.NoError(t, err)
	assert.NotContains(t, string(doc.HTML), "<del>")

	_, err = NewMarkdown([]string{"tables", "mermaid", "emoji"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emoji, mermaid")
}
