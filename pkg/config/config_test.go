package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"docs.yml", FormatYAML, false},
		{"docs.YAML", FormatYAML, false},
		{"docs.json", FormatJSON, false},
		{"docs.toml", FormatTOML, false},
		{".mph-config", FormatYAML, false},
		{"/a/b/sidecar", FormatYAML, false},
		{"notes.txt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Formats(t *testing.T) {
	yamlDoc := "type: document\nmarkdown:\n  extensions: [tables, toc]\n"
	jsonDoc := `{"type": "document", "markdown": {"extensions": ["tables", "toc"]}}`
	tomlDoc := "type = \"document\"\n[markdown]\nextensions = [\"tables\", \"toc\"]\n"

	for name, tc := range map[string]struct {
		data   string
		format Format
	}{
		"yaml": {yamlDoc, FormatYAML},
		"json": {jsonDoc, FormatJSON},
		"toml": {tomlDoc, FormatTOML},
	} {
		t.Run(name, func(t *testing.T) {
			v, err := Decode([]byte(tc.data), tc.format)
			require.NoError(t, err)
			assert.Equal(t, "document", v.String("type", ""))
			assert.Equal(t, []string{"tables", "toc"}, v.Strings("markdown.extensions"))
			assert.Equal(t, "toc", v.String("$.markdown.extensions[1]", ""))
		})
	}
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	v, err := Decode([]byte("   \n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = Decode([]byte("~\n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = Decode([]byte("- a\n- b\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrNotMapping)

	_, err = Decode([]byte("type: [unclosed"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode([]byte("type = "), FormatTOML)
	assert.Error(t, err)
}

func TestValues_Accessors(t *testing.T) {
	v := Values{
		"name":    "Guide",
		"count":   3,
		"enabled": true,
		"single":  "only.md",
		"nested":  map[string]any{"deep": map[string]any{"key": "value"}},
	}

	assert.Equal(t, "Guide", v.String("name", "x"))
	assert.Equal(t, "3", v.String("count", "x"))
	assert.Equal(t, "x", v.String("missing", "x"))
	assert.Equal(t, "x", v.String("nested", "x"))
	assert.Equal(t, 3, v.Int("count", 0))
	assert.True(t, v.Bool("enabled", false))
	assert.False(t, v.Bool("name", false))
	assert.Equal(t, []string{"only.md"}, v.Strings("single"))
	assert.Nil(t, v.Strings("missing"))
	assert.Equal(t, "value", v.Map("nested.deep").String("key", ""))
	assert.Empty(t, v.Map("name"))

	_, ok := v.Lookup("nested..deep")
	assert.False(t, ok)
}

func TestParseDescriptor(t *testing.T) {
	raw := Values{
		"type":                "document",
		"label":               "Docs",
		"url_prefix":          "/md",
		"projects_dir":        "projects/docs",
		"project_config_file": ".docs",
		"markdown":            map[string]any{"extensions": []any{"tables"}},
		"entry_point":         "app.yaml",
	}

	d := ParseDescriptor(raw)
	assert.Equal(t, "document", d.Type)
	assert.Equal(t, "document", d.ID())
	assert.Equal(t, "Docs", d.Label)
	assert.Equal(t, "/md", d.URLPrefix)
	assert.Equal(t, "projects/docs", d.ProjectsDir)
	assert.Equal(t, ".docs", d.ProjectConfigFilename)
	assert.Contains(t, d.Options, "markdown")
	assert.Contains(t, d.Options, "entry_point")
	assert.NotContains(t, d.Options, "type")

	d = ParseDescriptor(Values{"type": "app", "identifier": "tools"})
	assert.Equal(t, "tools", d.ID())
	assert.Empty(t, ParseDescriptor(nil).ID())
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	t.Run("missing file is empty without logging", func(t *testing.T) {
		cfg := LoadProjectConfig(filepath.Join(dir, "absent", DefaultProjectConfigFilename), log)
		assert.Empty(t, cfg.Values)
		assert.Equal(t, "absent", cfg.Name("absent"))
		assert.Empty(t, logs.String())
	})

	t.Run("malformed file is empty and logged", func(t *testing.T) {
		path := writeFile(t, dir, "broken/.mph-config", "name: [oops")
		cfg := LoadProjectConfig(path, log)
		assert.Empty(t, cfg.Values)
		assert.Contains(t, logs.String(), "ignoring unreadable project config")
	})

	t.Run("valid sidecar", func(t *testing.T) {
		path := writeFile(t, dir, "guide/.mph-config", `
name: User Guide
emoji: "📘"
markdown:
  hidden_files: [drafts/todo.md]
  hidden_folders: [private]
`)
		cfg := LoadProjectConfig(path, log)
		assert.Equal(t, "User Guide", cfg.Name("guide"))
		assert.Equal(t, "📘", cfg.Emoji("📦"))
		assert.Equal(t, []string{"drafts/todo.md"}, cfg.HiddenFiles("markdown"))
		assert.Equal(t, []string{"private"}, cfg.HiddenFolders("markdown"))
		assert.Nil(t, cfg.HiddenFiles("records"))
	})
}

func TestDirectoryLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20-apps.yaml", "type: app\n")
	writeFile(t, dir, "10-docs.yml", "type: document\n")
	writeFile(t, dir, "30-static.toml", "type = \"static\"\n")
	writeFile(t, dir, "40-broken.yml", "type: [")
	writeFile(t, dir, "README.md", "# not a descriptor")
	writeFile(t, dir, "nested/50-ignored.yml", "type: document\n")

	result, err := NewDirectoryLoader(dir).Load()
	require.NoError(t, err)

	var names []string
	for _, f := range result.Files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"10-docs.yml", "20-apps.yaml", "30-static.toml"}, names)
	assert.Equal(t, "static", result.Files[2].Values.String("type", ""))

	require.Len(t, result.Errors, 1)
	assert.Equal(t, filepath.Join(dir, "40-broken.yml"), result.Errors[0].Path)
	assert.Contains(t, result.Errors[0].Error(), "failed to load")
}

func TestDirectoryLoader_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")

	result, err := NewDirectoryLoader(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.DirExists(t, dir)
}

func TestDirectoryLoader_NotADirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "file.yml", "type: app\n")

	_, err := (&DirectoryLoader{Path: path}).Load()
	assert.ErrorContains(t, err, "not a directory")
}
