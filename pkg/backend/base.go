package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/logging"
)

// DefaultEmoji is shown for projects whose sidecar sets none.
const DefaultEmoji = "📦"

// ErrMissingIdentifier is returned for descriptors without identifier and type.
var ErrMissingIdentifier = errors.New("descriptor requires an 'identifier' or 'type' field")

// Base applies the descriptor defaults shared by every backend. Concrete
// backends embed it and add RegisterRoutes.
type Base struct {
	Host       *Host
	Descriptor config.Descriptor
	Log        *slog.Logger

	info        Info
	sidecarName string
	projectsDir string
	qualifies   func(dir string) bool
}

// NewBase resolves the common descriptor fields. qualifies decides whether a
// directory below the projects directory is a project; nil accepts every
// directory.
func NewBase(host *Host, desc config.Descriptor, qualifies func(dir string) bool) (*Base, error) {
	if host == nil {
		host = &Host{}
	}
	id := desc.ID()
	if id == "" {
		return nil, ErrMissingIdentifier
	}
	if strings.ContainsAny(id, "/{}") || id == "." || id == ".." {
		return nil, fmt.Errorf("invalid identifier %q", id)
	}

	b := &Base{
		Host:        host,
		Descriptor:  desc,
		Log:         logging.ForBackend(host.Logger, id),
		sidecarName: desc.ProjectConfigFilename,
		qualifies:   qualifies,
	}
	if b.sidecarName == "" {
		b.sidecarName = config.DefaultProjectConfigFilename
	}

	label := desc.Label
	if label == "" {
		label = cases.Title(language.Und).String(id)
	}
	prefix, err := NormalizePrefix(desc.URLPrefix, id)
	if err != nil {
		return nil, err
	}

	b.projectsDir = desc.ProjectsDir
	switch {
	case b.projectsDir == "":
		b.projectsDir = filepath.Join(host.ProjectsBaseDir, id)
	case !filepath.IsAbs(b.projectsDir):
		b.projectsDir = filepath.Join(host.RootDir, b.projectsDir)
	}

	emoji := desc.DefaultEmoji
	if emoji == "" {
		emoji = DefaultEmoji
	}

	b.info = Info{
		Identifier:   id,
		Type:         desc.Type,
		Label:        label,
		Description:  desc.Description,
		URLPrefix:    prefix,
		ProjectsDir:  b.projectsDir,
		DefaultEmoji: emoji,
	}
	return b, nil
}

// NormalizePrefix returns prefix with one leading slash and no trailing
// slash, defaulting to "/"+id.
func NormalizePrefix(prefix, id string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		prefix = id
	}
	p := path.Clean("/" + strings.Trim(prefix, "/"))
	if p == "/" {
		return "", fmt.Errorf("url_prefix %q would claim the host root", prefix)
	}
	if strings.ContainsAny(p, "{}") {
		return "", fmt.Errorf("url_prefix %q contains pattern characters", prefix)
	}
	return p, nil
}

// Info implements Backend.
func (b *Base) Info() Info { return b.info }

// ID is the backend identifier.
func (b *Base) ID() string { return b.info.Identifier }

// Prefix is the normalized URL prefix.
func (b *Base) Prefix() string { return b.info.URLPrefix }

// ProjectsDir is the resolved projects directory.
func (b *Base) ProjectsDir() string { return b.projectsDir }

// EnsureEnvironment implements Backend.
func (b *Base) EnsureEnvironment() error {
	if err := os.MkdirAll(b.projectsDir, 0o755); err != nil {
		return fmt.Errorf("create projects dir: %w", err)
	}
	return nil
}

// ProjectDir returns the directory of project id. Identifiers that are not a
// single path element, and directories that do not qualify, are ErrNotFound.
func (b *Base) ProjectDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || !filepath.IsLocal(id) {
		return "", ErrNotFound
	}
	dir := filepath.Join(b.projectsDir, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", ErrNotFound
	}
	if b.qualifies != nil && !b.qualifies(dir) {
		return "", ErrNotFound
	}
	return dir, nil
}

// LoadProjectConfig implements Backend. It reads the sidecar fresh on every call.
func (b *Base) LoadProjectConfig(id string) config.ProjectConfig {
	if id == "" || strings.ContainsAny(id, `/\`) || !filepath.IsLocal(id) {
		return config.ProjectConfig{Values: config.Values{}}
	}
	return config.LoadProjectConfig(filepath.Join(b.projectsDir, id, b.sidecarName), b.Log.With(logging.KeyProject, id))
}

// Project builds the listing entry of id from its sidecar.
func (b *Base) Project(id string) Project {
	cfg := b.LoadProjectConfig(id)
	return Project{ID: id, Name: cfg.Name(id), Emoji: cfg.Emoji(b.info.DefaultEmoji)}
}

// ListProjects implements Backend: qualifying subdirectories sorted by name.
// A missing or unreadable projects directory yields an empty list.
func (b *Base) ListProjects() []Project {
	entries, err := os.ReadDir(b.projectsDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.Log.Warn("cannot list projects", "dir", b.projectsDir, "error", err)
		}
		return []Project{}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if b.qualifies != nil && !b.qualifies(filepath.Join(b.projectsDir, e.Name())) {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)

	projects := make([]Project, 0, len(ids))
	for _, id := range ids {
		projects = append(projects, b.Project(id))
	}
	return projects
}

// ProjectURL is the URL of a project's landing page.
func (b *Base) ProjectURL(id string) string {
	return b.info.URLPrefix + "/" + id
}
