package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mphost/mph/pkg/hostconfig"
	"github.com/mphost/mph/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	lookup hostconfig.LookupFunc

	flags      hostconfig.HostConfig
	jsonOutput bool
	logFile    string
	tee        io.Writer
}

// NewRootCommand builds the mph command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, lookup: os.LookupEnv}

	root := &cobra.Command{
		Use:   "mph",
		Short: "mph hosts many independently authored projects behind one server",
		Long: `mph is a multi-project host. Backend descriptors in the descriptor directory
each bind a URL prefix to a directory of projects: mounted applications,
markdown handbooks, record collections or static sites.

Configuration can be provided via flags, environment variables (MPH_*),
a .env file, .mphrc.yaml in the working directory, or
$XDG_CONFIG_HOME/mph/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.RootDir, "root", "", "Root directory that relative paths resolve against")
	pf.StringVar(&a.flags.DescriptorDir, "descriptors", "", "Directory holding backend descriptors (default \""+hostconfig.DefaultDescriptorDir+"\")")
	pf.StringVar(&a.flags.ProjectsDir, "projects", "", "Parent directory of default project directories (default \""+hostconfig.DefaultProjectsDir+"\")")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "Log format: text or json")
	pf.BoolVar(&a.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		a.serveCommand(),
		a.backendsCommand(),
		a.projectsCommand(),
		a.resolveCommand(),
		a.treeCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		return 1
	}
	return 0
}

// loadConfig merges every config source with the flags given on the
// command line.
func (a *app) loadConfig() (*hostconfig.HostConfig, error) {
	flags := a.flags
	return hostconfig.LoadAll(hostconfig.LoadOptions{
		Lookup: a.lookup,
		Flags:  &flags,
	})
}

// logger builds the process logger. Inspection commands only surface
// warnings unless a level was configured explicitly.
func (a *app) logger(cfg *hostconfig.HostConfig, inspect bool) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if inspect && cfg.Sources["logLevel"] == hostconfig.SourceDefault {
		level = logging.LevelWarn
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: a.stderr,
		Tee:    a.tee,
	})
}
