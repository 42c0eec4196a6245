package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/cli/internal/output"
	"github.com/mphost/mph/pkg/resolve"
)

type projectRow struct {
	backend.Project
	URL string `json:"url"`
}

func (a *app) projectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects <backend>",
		Short: "List the projects of one backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := a.lookupBackend(args[0])
			if err != nil {
				return err
			}
			rows := []projectRow{}
			for _, p := range b.ListProjects() {
				rows = append(rows, projectRow{Project: p, URL: backend.ProjectLink(b.Info(), p).URL})
			}
			return a.print(rows, func() {
				if len(rows) == 0 {
					fmt.Fprintf(a.stdout, "No projects in %s\n", b.Info().ProjectsDir)
					return
				}
				t := output.NewTable("ID", "NAME", "URL")
				for _, p := range rows {
					t.Row(p.ID, p.Emoji+" "+p.Name, p.URL)
				}
				_ = t.Write(a.stdout)
			})
		},
	}
}

// documentBackend is implemented by backends serving resolvable documents.
type documentBackend interface {
	backend.Backend
	ResolvePage(id, fragment string) (string, error)
	PageSlug(id, rel string) (string, error)
	Tree(id string) (*resolve.Node, error)
}

func (a *app) documentBackend(id string) (documentBackend, error) {
	b, err := a.lookupBackend(id)
	if err != nil {
		return nil, err
	}
	d, ok := b.(documentBackend)
	if !ok {
		return nil, &exitError{code: 2, err: fmt.Errorf("backend %q (type %s) does not serve documents", id, b.Info().Type)}
	}
	return d, nil
}

type resolveResult struct {
	Backend  string `json:"backend"`
	Project  string `json:"project"`
	Fragment string `json:"fragment"`
	Path     string `json:"path"`
	Slug     string `json:"slug"`
}

func (a *app) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <backend> <project> [fragment]",
		Short: "Show which document a page path resolves to",
		Long: `Run the document resolver for a page path the way a request would. Without
a fragment the project's default document is shown.`,
		Example: `  mph resolve docs guide tutorial
  mph resolve docs guide chapters/one`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			d, err := a.documentBackend(args[0])
			if err != nil {
				return err
			}
			fragment := ""
			if len(args) == 3 {
				fragment = args[2]
			}
			rel, err := d.ResolvePage(args[1], fragment)
			if err != nil {
				if errors.Is(err, resolve.ErrNotFound) || errors.Is(err, backend.ErrNotFound) {
					return fmt.Errorf("%s/%s: %q not found", args[0], args[1], fragment)
				}
				return err
			}
			res := resolveResult{Backend: args[0], Project: args[1], Fragment: fragment, Path: rel, Slug: rel}
			if slug, err := d.PageSlug(args[1], rel); err == nil {
				res.Slug = slug
			}
			return a.print(res, func() {
				fmt.Fprintln(a.stdout, res.Path)
			})
		},
	}
}

func (a *app) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <backend> <project>",
		Short: "Print the navigation tree of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			d, err := a.documentBackend(args[0])
			if err != nil {
				return err
			}
			tree, err := d.Tree(args[1])
			if err != nil {
				return fmt.Errorf("%s/%s: %w", args[0], args[1], err)
			}
			return a.print(tree, func() {
				a.printNode(tree, "")
			})
		},
	}
}

func (a *app) printNode(n *resolve.Node, indent string) {
	for _, f := range n.Folders {
		fmt.Fprintf(a.stdout, "%s%s/\n", indent, f.Name)
		a.printNode(f.Node, indent+"  ")
	}
	for _, f := range n.Files {
		fmt.Fprintf(a.stdout, "%s%s -> %s\n", indent, f.Name, f.Slug)
	}
}
