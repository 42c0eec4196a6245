package backend

import (
	"log/slog"
	"net/http"

	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/render"
)

// Backend is one loaded backend instance.
type Backend interface {
	// Info describes the backend after defaults were applied.
	Info() Info

	// ListProjects scans the filesystem on every call and returns the
	// qualifying projects sorted by identifier.
	ListProjects() []Project

	// RegisterRoutes adds the backend's handlers. It is called once at startup.
	RegisterRoutes(r Router) error

	// EnsureEnvironment creates the projects directory if missing.
	EnsureEnvironment() error

	// LoadProjectConfig reads the sidecar of one project.
	LoadProjectConfig(id string) config.ProjectConfig
}

// Info is the resolved identity of a backend.
type Info struct {
	Identifier   string `json:"identifier"`
	Type         string `json:"type"`
	Label        string `json:"label"`
	Description  string `json:"description,omitempty"`
	URLPrefix    string `json:"url_prefix"`
	ProjectsDir  string `json:"projects_dir"`
	DefaultEmoji string `json:"default_emoji"`
}

// Project is one listed project.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Router accepts http.ServeMux patterns.
type Router interface {
	Handle(pattern string, h http.Handler)
}

// Host is the handle a backend receives from the host application.
type Host struct {
	// RootDir anchors relative projects_dir values.
	RootDir string

	// ProjectsBaseDir is the parent of default projects directories.
	ProjectsBaseDir string

	Logger *slog.Logger
	Pages  render.Pages
}

// Factory builds a backend from its descriptor. Validation failures are
// returned as errors and cause the descriptor to be skipped.
type Factory func(host *Host, desc config.Descriptor) (Backend, error)
