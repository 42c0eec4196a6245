package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/cli/internal/output"
	"github.com/mphost/mph/pkg/registry"
)

type backendRow struct {
	backend.Info
	Projects int `json:"projects"`
}

type skipRow struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

type backendsResult struct {
	Backends []backendRow `json:"backends"`
	Skipped  []skipRow    `json:"skipped"`
}

func (a *app) backendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the backends the descriptors define",
		Long: `Load every descriptor the way serve does and list the backends that were
registered. Descriptors that were skipped are listed with the reason.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			set, report, err := a.loadRegistry()
			if err != nil {
				return err
			}

			result := backendsResult{Backends: []backendRow{}, Skipped: []skipRow{}}
			for _, b := range set.List() {
				result.Backends = append(result.Backends, backendRow{Info: b.Info(), Projects: len(b.ListProjects())})
			}
			for _, s := range report.Skips {
				result.Skipped = append(result.Skipped, skipRow{File: s.File, Reason: s.Reason, Error: fmt.Sprint(s.Err)})
			}

			return a.print(result, func() {
				t := output.NewTable("IDENTIFIER", "TYPE", "PREFIX", "PROJECTS", "DIRECTORY")
				for _, b := range result.Backends {
					t.Row(b.Identifier, b.Type, b.URLPrefix, b.Projects, b.ProjectsDir)
				}
				_ = t.Write(a.stdout)
				for _, s := range result.Skipped {
					output.Warn(a.stderr, "skipped %s (%s): %s", s.File, s.Reason, s.Error)
				}
			})
		},
	}
}

func (a *app) loadRegistry() (*registry.Set, *registry.Report, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := a.newServer(cfg, true)
	if err != nil {
		return nil, nil, err
	}
	return s.Backends(), s.Report(), nil
}

func (a *app) lookupBackend(id string) (backend.Backend, error) {
	set, _, err := a.loadRegistry()
	if err != nil {
		return nil, err
	}
	b, ok := set.Get(id)
	if !ok {
		return nil, &exitError{code: 2, err: fmt.Errorf("unknown backend %q (loaded: %v)", id, set.IDs())}
	}
	return b, nil
}

// print writes data as JSON under --json, otherwise runs text.
func (a *app) print(data any, text func()) error {
	if a.jsonOutput {
		return output.JSON(a.stdout, data)
	}
	text()
	return nil
}
