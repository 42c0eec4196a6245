package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/config"
	"github.com/mphost/mph/pkg/logging"
	"github.com/mphost/mph/pkg/metrics"
)

// Load reads every descriptor in dir, builds the backends and registers
// their routes on router. Routers implementing Patterner have their
// existing patterns taken into account; routers implementing Freezer are
// frozen once loading is done.
//
// Only a problem with dir itself yields an empty Set; it is reported as a
// skip of dir.
func Load(host *backend.Host, dir string, router backend.Router) (*Set, *Report) {
	if host == nil {
		host = &backend.Host{}
	}
	if host.Logger == nil {
		host.Logger = logging.Nop()
	}
	l := &loader{
		host:   host,
		log:    host.Logger,
		router: router,
		set:    newSet(),
		report: &Report{Files: []string{}, Loaded: []string{}},
	}
	if p, ok := router.(Patterner); ok {
		l.routes.patterns = append(l.routes.patterns, p.Patterns()...)
	}

	l.loadDir(dir)

	if f, ok := router.(Freezer); ok {
		f.Freeze()
	}
	metrics.SetBackendsLoaded(l.set.Len())
	l.log.Info("backends loaded", "dir", dir, "loaded", l.set.Len(), "skipped", len(l.report.Skips))
	return l.set, l.report
}

type loader struct {
	host   *backend.Host
	log    *slog.Logger
	router backend.Router
	routes routeSet
	set    *Set
	report *Report
}

func (l *loader) loadDir(dir string) {
	result, err := config.NewDirectoryLoader(dir).Load()
	if err != nil {
		l.skip(dir, ReasonLoadError, err)
		return
	}

	// Decoded files and decode failures are interleaved back into
	// filename order so the report reads like the directory.
	failed := make(map[string]error, len(result.Errors))
	for i := range result.Errors {
		failed[result.Errors[i].Path] = &result.Errors[i]
	}
	files := make(map[string]config.DescriptorFile, len(result.Files))
	for _, f := range result.Files {
		files[f.Path] = f
	}
	for _, path := range sortedPaths(result) {
		l.report.Files = append(l.report.Files, path)
		if err, ok := failed[path]; ok {
			l.skip(path, ReasonLoadError, err)
			continue
		}
		l.loadFile(files[path])
	}
}

func (l *loader) loadFile(f config.DescriptorFile) {
	desc := config.ParseDescriptor(f.Values)
	desc.Source = f.Path

	if desc.Type == "" && desc.Implementation == "" {
		l.skip(f.Path, ReasonMissingType, ErrMissingType)
		return
	}
	factory, reason, err := factoryFor(desc.Implementation, desc.Type)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			err = fmt.Errorf("%w: %q", err, desc.Type)
		}
		l.skip(f.Path, reason, err)
		return
	}

	b, err := construct(factory, l.host, desc)
	if err != nil {
		l.skip(f.Path, ReasonConstructor, err)
		return
	}
	id := b.Info().Identifier
	if l.set.has(id) {
		l.skip(f.Path, ReasonDuplicateIdentifier, fmt.Errorf("%w: %q", ErrDuplicateIdentifier, id))
		return
	}

	if err := b.EnsureEnvironment(); err != nil {
		l.skip(f.Path, ReasonEnvironment, err)
		return
	}
	st := &stage{}
	if err := registerRoutes(b, st); err != nil {
		l.skip(f.Path, ReasonRoutes, err)
		return
	}
	if err := l.routes.check(st); err != nil {
		l.skip(f.Path, ReasonRoutes, err)
		return
	}
	l.routes.commit(l.router, st)

	l.set.add(b)
	l.report.Loaded = append(l.report.Loaded, id)
	info := b.Info()
	l.log.Info("backend registered",
		"file", f.Path,
		logging.KeyBackend, id,
		"type", info.Type,
		"prefix", info.URLPrefix,
		"projects_dir", info.ProjectsDir,
	)
}

func (l *loader) skip(file, reason string, err error) {
	l.report.Skips = append(l.report.Skips, &Skip{File: file, Reason: reason, Err: err})
	metrics.RecordSkip(reason)
	l.log.Warn("skipping backend descriptor", "file", file, "reason", reason, "error", err)
}

// construct runs a factory, turning a panic into an error.
func construct(factory backend.Factory, host *backend.Host, desc config.Descriptor) (b backend.Backend, err error) {
	defer func() {
		if p := recover(); p != nil {
			b = nil
			err = fmt.Errorf("constructor panicked: %v\n%s", p, debug.Stack())
		}
	}()
	b, err = factory(host, desc)
	if err == nil && b == nil {
		err = errors.New("constructor returned no backend")
	}
	return b, err
}

func registerRoutes(b backend.Backend, st *stage) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("register routes panicked: %v", p)
		}
	}()
	return b.RegisterRoutes(st)
}

func sortedPaths(r *config.LoadResult) []string {
	paths := make([]string, 0, len(r.Files)+len(r.Errors))
	for _, f := range r.Files {
		paths = append(paths, f.Path)
	}
	for _, e := range r.Errors {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	return paths
}
