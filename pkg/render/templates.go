package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/mphost/mph/pkg/resolve"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names understood by Templates.
const (
	PageHome    = "home"
	PageList    = "list"
	PageProject = "project"
	PageDoc     = "page"
	PageTable   = "table"
	PageError   = "error"
)

const layoutFile = "templates/layout.html"

// Pages renders named pages.
type Pages interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// Templates is the embedded Pages implementation.
type Templates struct {
	pages map[string]*template.Template
}

var _ Pages = (*Templates)(nil)

// NewTemplates parses the embedded page set.
func NewTemplates() (*Templates, error) {
	funcs := template.FuncMap{
		"treeArgs": treeArgs,
	}
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templatesFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	t := &Templates{pages: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(templatesFS, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		t.pages[strings.TrimSuffix(path.Base(file), ".html")] = page
	}
	return t, nil
}

// MustTemplates is NewTemplates for package-level initialization.
func MustTemplates() *Templates {
	t, err := NewTemplates()
	if err != nil {
		panic("render: " + err.Error())
	}
	return t
}

// Render executes the page into a buffer and writes it with status. Nothing
// is written when execution fails.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, path.Base(layoutFile), data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Names returns the known page names.
func (t *Templates) Names() []string {
	names := make([]string, 0, len(t.pages))
	for name := range t.pages {
		names = append(names, name)
	}
	return names
}

type treeContext struct {
	Node    *resolve.Node
	BaseURL string
	Current string
}

func treeArgs(node *resolve.Node, baseURL, current string) treeContext {
	return treeContext{Node: node, BaseURL: baseURL, Current: current}
}

// WriteError renders the error page, falling back to plain text.
func WriteError(p Pages, w http.ResponseWriter, status int, message, requestID string) {
	data := ErrorData{
		Status:    status,
		Title:     http.StatusText(status),
		Message:   message,
		RequestID: requestID,
	}
	if p != nil && p.Render(w, status, PageError, data) == nil {
		return
	}
	http.Error(w, fmt.Sprintf("%d %s", status, data.Title), status)
}
