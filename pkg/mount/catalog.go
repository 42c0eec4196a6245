package mount

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mphost/mph/pkg/config"
)

// Env is everything a sub-application may see. It is built per request.
type Env struct {
	// Namespace is "<module_prefix>.<project>", unique per project.
	Namespace string
	ProjectID string
	// Dir is the project directory.
	Dir      string
	Manifest config.Values
	Project  config.ProjectConfig
	Logger   *slog.Logger
}

// Factory builds the Application of one project.
type Factory func(env *Env) (Application, error)

// Catalog maps application names to factories.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory. Names are unique.
func (c *Catalog) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register application: empty name or nil factory")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.factories[name]; ok {
		return fmt.Errorf("application %q already registered", name)
	}
	c.factories[name] = f
	return nil
}

// Lookup returns the factory registered under name.
func (c *Catalog) Lookup(name string) (Factory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApplication, name)
	}
	return f, nil
}

// Names lists registered applications, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultCatalog is used by backends built through New.
var DefaultCatalog = NewCatalog()

// Register adds f to DefaultCatalog and panics on a duplicate name.
// Call it from an init function.
func Register(name string, f Factory) {
	if err := DefaultCatalog.Register(name, f); err != nil {
		panic(err)
	}
}
