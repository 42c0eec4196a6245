package docs

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/logging"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/resolve"
)

// Backend serves the projects of one docs variant.
type Backend struct {
	*backend.Base

	variant  Variant
	resolver *resolve.Resolver
	markdown *render.Markdown
	pages    render.Pages
}

var _ backend.Backend = (*Backend)(nil)

// New returns the Factory for variant v.
func New(v Variant) backend.Factory {
	return func(host *backend.Host, desc config.Descriptor) (backend.Backend, error) {
		return NewBackend(host, desc, v)
	}
}

// NewBackend builds a docs backend. Unknown markdown extensions are an error.
func NewBackend(host *backend.Host, desc config.Descriptor, v Variant) (*Backend, error) {
	base, err := backend.NewBase(host, desc, nil)
	if err != nil {
		return nil, err
	}
	md, err := render.NewMarkdown(desc.Options.Strings(OptionExtensions))
	if err != nil {
		return nil, err
	}
	pages := base.Host.Pages
	if pages == nil {
		if pages, err = render.NewTemplates(); err != nil {
			return nil, err
		}
	}
	return &Backend{
		Base:     base,
		variant:  v,
		resolver: resolve.New(v.Suffixes...).WithKinds(v.Kinds),
		markdown: md,
		pages:    pages,
	}, nil
}

// Resolver exposes the path resolver of this backend.
func (b *Backend) Resolver() *resolve.Resolver { return b.resolver }

// RegisterRoutes implements backend.Backend.
func (b *Backend) RegisterRoutes(r backend.Router) error {
	p := b.Prefix()
	r.Handle("GET "+p, http.HandlerFunc(b.handleList))
	r.Handle("GET "+p+"/{$}", http.HandlerFunc(b.handleList))
	r.Handle("GET "+p+"/{project}", http.HandlerFunc(b.handleProject))
	r.Handle("GET "+p+"/{project}/{page...}", http.HandlerFunc(b.handlePage))
	return nil
}

// Hidden returns the hidden sets of a project, read from its sidecar now.
func (b *Backend) Hidden(id string) resolve.Hidden {
	cfg := b.LoadProjectConfig(id)
	return resolve.Hidden{
		Files:   cfg.HiddenFiles(b.variant.Section),
		Folders: cfg.HiddenFolders(b.variant.Section),
	}
}

// Tree builds the navigation tree of a project.
func (b *Backend) Tree(id string) (*resolve.Node, error) {
	dir, err := b.ProjectDir(id)
	if err != nil {
		return nil, err
	}
	return b.resolver.Tree(dir, b.Hidden(id)), nil
}

// ResolvePage maps a fragment to a document of project id.
func (b *Backend) ResolvePage(id, fragment string) (string, error) {
	dir, err := b.ProjectDir(id)
	if err != nil {
		return "", err
	}
	return b.resolver.Resolve(dir, fragment)
}

// PageSlug returns the URL fragment the project's pages link to for rel.
func (b *Backend) PageSlug(id, rel string) (string, error) {
	dir, err := b.ProjectDir(id)
	if err != nil {
		return "", err
	}
	return b.resolver.Slug(dir, rel), nil
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	if err := b.pages.Render(w, http.StatusOK, render.PageList, render.ListData{Backend: backend.Summary(b)}); err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
	}
}

func (b *Backend) handleProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("project")
	dir, err := b.ProjectDir(id)
	if err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
		return
	}

	if rel, err := b.resolver.Resolve(dir, ""); err == nil {
		target := b.ProjectURL(id) + "/" + escapePath(b.resolver.Slug(dir, rel))
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	files := b.resolver.List(dir, b.Hidden(id))
	links := make([]render.Link, 0, len(files))
	for _, f := range files {
		links = append(links, render.Link{Title: f, URL: b.ProjectURL(id) + "/" + escapePath(b.resolver.Slug(dir, f))})
	}
	data := render.ProjectData{
		Backend: backend.Summary(b),
		Project: backend.ProjectLink(b.Info(), b.Project(id)),
		Files:   links,
	}
	if err := b.pages.Render(w, http.StatusOK, render.PageProject, data); err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
	}
}

func (b *Backend) handlePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("project")
	page := r.PathValue("page")
	if page == "" {
		b.handleProject(w, r)
		return
	}

	dir, err := b.ProjectDir(id)
	if err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
		return
	}
	rel, err := b.resolver.Resolve(dir, page)
	if err != nil {
		backend.WriteError(w, r, b.pages, b.Log, backend.NotFound(err))
		return
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		backend.WriteError(w, r, b.pages, b.Log, backend.Internal(fmt.Errorf("read %s: %w", rel, err)))
		return
	}

	view := render.PageData{
		Backend: backend.Summary(b),
		Project: backend.ProjectLink(b.Info(), b.Project(id)),
		Title:   strings.TrimSuffix(path.Base(rel), path.Ext(rel)),
		Path:    rel,
		Tree:    b.resolver.Tree(dir, b.Hidden(id)),
		BaseURL: b.ProjectURL(id),
	}

	name := render.PageDoc
	if strings.EqualFold(path.Ext(rel), ".csv") {
		name = render.PageTable
		view.Table = parseTableLogged(rel, data, b.Log.With(logging.KeyProject, id))
	} else {
		doc, err := b.markdown.Convert(data)
		if err != nil {
			backend.WriteError(w, r, b.pages, b.Log, backend.Internal(fmt.Errorf("convert %s: %w", rel, err)))
			return
		}
		view.Content = doc.HTML
		view.Headings = doc.Headings
		if doc.Title != "" {
			view.Title = doc.Title
		}
	}

	if err := b.pages.Render(w, http.StatusOK, name, view); err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
	}
}

// escapePath percent-encodes each segment of a slash-separated path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
