// Package static serves self-contained static sites, one per project.
//
// A directory qualifies as a project when it holds the index file
// (index.html unless the descriptor's index_file option says otherwise).
// Every file below the project is reachable by path; paths that leave the
// project, including through symbolic links, are answered with 404.
package static

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/resolve"
)

// Type is the descriptor type of this backend.
const Type = "static"

// Descriptor options.
const (
	OptionIndexFile  = "index_file"
	DefaultIndexFile = "index.html"
)

// Backend serves static projects.
type Backend struct {
	*backend.Base

	indexFile string
	pages     render.Pages
}

var _ backend.Backend = (*Backend)(nil)

// New is the backend.Factory for static descriptors.
func New(host *backend.Host, desc config.Descriptor) (backend.Backend, error) {
	return NewBackend(host, desc)
}

// NewBackend builds a static backend.
func NewBackend(host *backend.Host, desc config.Descriptor) (*Backend, error) {
	index := desc.Options.String(OptionIndexFile, DefaultIndexFile)
	if index == "" || !filepath.IsLocal(index) {
		return nil, fmt.Errorf("invalid %s %q", OptionIndexFile, index)
	}

	b := &Backend{indexFile: index}
	base, err := backend.NewBase(host, desc, b.qualifies)
	if err != nil {
		return nil, err
	}
	b.Base = base
	b.pages = base.Host.Pages
	if b.pages == nil {
		if b.pages, err = render.NewTemplates(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Backend) qualifies(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, b.indexFile))
	return err == nil && info.Mode().IsRegular()
}

// RegisterRoutes implements backend.Backend.
func (b *Backend) RegisterRoutes(r backend.Router) error {
	p := b.Prefix()
	r.Handle("GET "+p, http.HandlerFunc(b.handleList))
	r.Handle("GET "+p+"/{$}", http.HandlerFunc(b.handleList))
	r.Handle("GET "+p+"/{project}", http.HandlerFunc(b.handleProjectRedirect))
	r.Handle("GET "+p+"/{project}/{file...}", http.HandlerFunc(b.handleFile))
	return nil
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	if err := b.pages.Render(w, http.StatusOK, render.PageList, render.ListData{Backend: backend.Summary(b)}); err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
	}
}

// Relative links inside the site only work below the trailing slash.
func (b *Backend) handleProjectRedirect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("project")
	if _, err := b.ProjectDir(id); err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
		return
	}
	target := b.ProjectURL(id) + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func (b *Backend) handleFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("project")
	dir, err := b.ProjectDir(id)
	if err != nil {
		backend.WriteError(w, r, b.pages, b.Log, err)
		return
	}
	file := r.PathValue("file")
	if file == "" {
		file = b.indexFile
	}

	full, err := resolve.Contain(dir, file)
	if err != nil {
		backend.WriteError(w, r, b.pages, b.Log, backend.NotFound(err))
		return
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			backend.WriteError(w, r, b.pages, b.Log, backend.NotFound(err))
		} else {
			backend.WriteError(w, r, b.pages, b.Log, backend.Internal(err))
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		backend.WriteError(w, r, b.pages, b.Log, backend.NotFound(err))
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
