package render

import (
	"html/template"

	"github.com/mphost/mph/pkg/resolve"
)

// Backend summarizes one loaded backend for navigation.
type Backend struct {
	Identifier  string
	Label       string
	Description string
	URLPrefix   string
	Projects    []Project
}

// Project is a link to one project.
type Project struct {
	ID    string
	Name  string
	Emoji string
	URL   string
}

// HomeData feeds the "home" page.
type HomeData struct {
	Backends []Backend
}

// ListData feeds the "list" page: the projects of one backend.
type ListData struct {
	Backend Backend
}

// ProjectData feeds the "project" page: a flat listing used when a project
// has no default document.
type ProjectData struct {
	Backend Backend
	Project Project
	Files   []Link
}

// Link is a titled URL.
type Link struct {
	Title string
	URL   string
}

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// PageData feeds the "page" and "table" pages.
type PageData struct {
	Backend  Backend
	Project  Project
	Title    string
	Path     string
	Content  template.HTML
	Headings []Heading
	Table    *Table
	Tree     *resolve.Node
	BaseURL  string
}

// Table is a tabular document.
type Table struct {
	Filename string
	Headers  []string
	Rows     [][]string
}

// ErrorData feeds the "error" page.
type ErrorData struct {
	Status    int
	Title     string
	Message   string
	RequestID string
}
