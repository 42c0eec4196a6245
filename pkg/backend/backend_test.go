package backend

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/render"
	"github.com/mphost/mph/pkg/resolve"
)

func testHost(t *testing.T) *Host {
	t.Helper()
	root := t.TempDir()
	return &Host{RootDir: root, ProjectsBaseDir: filepath.Join(root, "projects")}
}

func TestNewBaseDefaults(t *testing.T) {
	host := testHost(t)

	b, err := NewBase(host, config.Descriptor{Type: "document"}, nil)
	require.NoError(t, err)

	info := b.Info()
	assert.Equal(t, "document", info.Identifier)
	assert.Equal(t, "Document", info.Label)
	assert.Equal(t, "/document", info.URLPrefix)
	assert.Equal(t, filepath.Join(host.ProjectsBaseDir, "document"), info.ProjectsDir)
	assert.Equal(t, DefaultEmoji, info.DefaultEmoji)
}

func TestNewBaseExplicit(t *testing.T) {
	host := testHost(t)
	abs := filepath.Join(t.TempDir(), "elsewhere")

	b, err := NewBase(host, config.Descriptor{
		Type:         "document",
		Identifier:   "guides",
		Label:        "User Guides",
		URLPrefix:    "help/guides/",
		ProjectsDir:  "content/guides",
		DefaultEmoji: "📘",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "User Guides", b.Info().Label)
	assert.Equal(t, "/help/guides", b.Prefix())
	assert.Equal(t, filepath.Join(host.RootDir, "content", "guides"), b.ProjectsDir())
	assert.Equal(t, "📘", b.Info().DefaultEmoji)

	b, err = NewBase(host, config.Descriptor{Type: "static", ProjectsDir: abs}, nil)
	require.NoError(t, err)
	assert.Equal(t, abs, b.ProjectsDir())
}

func TestNewBaseErrors(t *testing.T) {
	host := testHost(t)

	_, err := NewBase(host, config.Descriptor{}, nil)
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, err = NewBase(host, config.Descriptor{Type: "x", Identifier: "a/b"}, nil)
	assert.Error(t, err)

	_, err = NewBase(host, config.Descriptor{Type: "x", URLPrefix: "/"}, nil)
	assert.Error(t, err)
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		prefix, id, want string
	}{
		{"", "docs", "/docs"},
		{"docs", "x", "/docs"},
		{"/docs/", "x", "/docs"},
		{"//a//b/", "x", "/a/b"},
	}
	for _, tt := range tests {
		got, err := NormalizePrefix(tt.prefix, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.prefix)
	}
	_, err := NormalizePrefix("/{id}", "x")
	assert.Error(t, err)
}

func TestListProjects(t *testing.T) {
	host := testHost(t)
	b, err := NewBase(host, config.Descriptor{Type: "apps"}, func(dir string) bool {
		_, err := os.Stat(filepath.Join(dir, "app.yaml"))
		return err == nil
	})
	require.NoError(t, err)

	assert.Empty(t, b.ListProjects(), "missing directory lists nothing")
	require.NoError(t, b.EnsureEnvironment())
	assert.DirExists(t, b.ProjectsDir())

	for _, name := range []string{"zeta", "alpha", "nope"} {
		require.NoError(t, os.MkdirAll(filepath.Join(b.ProjectsDir(), name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(b.ProjectsDir(), "zeta", "app.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(b.ProjectsDir(), "alpha", "app.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(b.ProjectsDir(), "alpha", ".mph-config"), []byte("name: Alpha App\nemoji: 🅰\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(b.ProjectsDir(), "stray.yaml"), nil, 0o644))

	first := b.ListProjects()
	assert.Equal(t, []Project{
		{ID: "alpha", Name: "Alpha App", Emoji: "🅰"},
		{ID: "zeta", Name: "zeta", Emoji: DefaultEmoji},
	}, first)
	assert.Equal(t, first, b.ListProjects())

	require.NoError(t, os.RemoveAll(filepath.Join(b.ProjectsDir(), "zeta")))
	assert.Len(t, b.ListProjects(), 1, "listing reflects the filesystem on every call")
}

func TestProjectDir(t *testing.T) {
	host := testHost(t)
	b, err := NewBase(host, config.Descriptor{Type: "document"}, nil)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(b.ProjectsDir(), "guide"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(b.ProjectsDir(), "file.md"), nil, 0o644))

	dir, err := b.ProjectDir("guide")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(b.ProjectsDir(), "guide"), dir)

	for _, id := range []string{"", ".", "..", "../document", "guide/sub", `a\b`, "missing", "file.md"} {
		_, err := b.ProjectDir(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestLoadProjectConfigCustomSidecar(t *testing.T) {
	host := testHost(t)
	b, err := NewBase(host, config.Descriptor{Type: "document", ProjectConfigFilename: "project.toml"}, nil)
	require.NoError(t, err)
	dir := filepath.Join(b.ProjectsDir(), "guide")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.toml"), []byte("name = \"The Guide\"\n"), 0o644))

	assert.Equal(t, "The Guide", b.LoadProjectConfig("guide").Name(""))
	assert.Empty(t, b.LoadProjectConfig("../guide").Values)
}

func TestImplementations(t *testing.T) {
	name := "example.com/wiki:Backend"
	t.Cleanup(func() {
		implMu.Lock()
		delete(implementations, name)
		implMu.Unlock()
	})

	factory := func(*Host, config.Descriptor) (Backend, error) { return nil, errors.New("unused") }
	require.NoError(t, RegisterImplementation(name, factory))
	assert.ErrorIs(t, RegisterImplementation(name, factory), ErrImplementationExists)
	assert.Error(t, RegisterImplementation("", factory))

	got, err := LookupImplementation(name)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Contains(t, Implementations(), name)

	_, err = LookupImplementation("example.com/missing:Backend")
	assert.ErrorIs(t, err, ErrUnknownImplementation)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrNotFound))
	assert.Equal(t, http.StatusNotFound, StatusOf(fmt.Errorf("page: %w", resolve.ErrEscape)))
	assert.Equal(t, http.StatusBadRequest, StatusOf(&RequestError{Status: http.StatusBadRequest}))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.ErrorIs(t, Internal(os.ErrPermission), os.ErrPermission)
}

func TestWriteError(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	pages := render.MustTemplates()

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/docs/x", nil), pages, log, resolve.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgNotFound)
	assert.Empty(t, logs.String())

	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/docs/x", nil), pages, log, errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInternal)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
	assert.Contains(t, logs.String(), "disk on fire")
}
