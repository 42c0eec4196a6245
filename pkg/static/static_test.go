package static

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/render"
)

func setup(t *testing.T, options config.Values) (*Backend, *http.ServeMux, string) {
	t.Helper()
	root := t.TempDir()
	host := &backend.Host{RootDir: root, ProjectsBaseDir: filepath.Join(root, "projects"), Pages: render.MustTemplates()}
	b, err := NewBackend(host, config.Descriptor{Type: Type, Identifier: "sites", Options: options})
	require.NoError(t, err)
	require.NoError(t, b.EnsureEnvironment())

	write := func(name, content string) {
		p := filepath.Join(b.ProjectsDir(), filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	write("landing/index.html", "<h1>Landing</h1>")
	write("landing/js/app.js", "console.log('hi')")
	write("landing/.mph-config", "name: Landing Page\n")
	write("drafts/readme.txt", "not a site")
	write("secret.txt", "top secret")

	mux := http.NewServeMux()
	require.NoError(t, b.RegisterRoutes(mux))
	return b, mux, root
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListOnlyQualifyingProjects(t *testing.T) {
	b, mux, _ := setup(t, nil)

	projects := b.ListProjects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Landing Page", projects[0].Name)

	rec := get(mux, "/sites")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/sites/landing"`)
	assert.NotContains(t, rec.Body.String(), "drafts")
}

func TestServeFiles(t *testing.T) {
	_, mux, _ := setup(t, nil)

	rec := get(mux, "/sites/landing")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/sites/landing/", rec.Header().Get("Location"))

	rec = get(mux, "/sites/landing/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Landing</h1>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = get(mux, "/sites/landing/js/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")

	for _, p := range []string{"/sites/landing/missing.css", "/sites/landing/js", "/sites/drafts/", "/sites/drafts/readme.txt", "/sites/nope/"} {
		assert.Equal(t, http.StatusNotFound, get(mux, p).Code, p)
	}
}

func TestContainment(t *testing.T) {
	b, _, root := setup(t, nil)
	outside := filepath.Join(root, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("outside"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(b.ProjectsDir(), "landing", "leak.txt")))

	for _, file := range []string{"../secret.txt", "../../outside.txt", "leak.txt", "/../secret.txt"} {
		req := httptest.NewRequest(http.MethodGet, "/sites/landing/x", nil)
		req.SetPathValue("project", "landing")
		req.SetPathValue("file", file)
		rec := httptest.NewRecorder()
		b.handleFile(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, file)
		assert.NotContains(t, rec.Body.String(), "secret", file)
		assert.NotContains(t, rec.Body.String(), "outside", file)
	}
}

func TestCustomIndexFile(t *testing.T) {
	root := t.TempDir()
	host := &backend.Host{RootDir: root, ProjectsBaseDir: root}
	b, err := NewBackend(host, config.Descriptor{Type: Type, Options: config.Values{OptionIndexFile: "home.htm"}})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(b.ProjectsDir(), "site"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(b.ProjectsDir(), "site", "home.htm"), []byte("home"), 0o644))

	require.Len(t, b.ListProjects(), 1)

	_, err = NewBackend(host, config.Descriptor{Type: Type, Options: config.Values{OptionIndexFile: "../index.html"}})
	assert.Error(t, err)
}
