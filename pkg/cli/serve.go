package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mphost/mph/pkg/backend"
	"github.com/mphost/mph/pkg/hostconfig"
	"github.com/mphost/mph/pkg/server"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load every backend and serve them (foreground)",
		Example: `  # Serve with defaults (0.0.0.0:5000)
  mph serve

  # Serve another tree on a custom port
  mph serve --root /srv/mph --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if a.logFile != "" {
				f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				a.tee = f
			}
			s, err := a.newServer(cfg, false)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx)
		},
	}
	f := cmd.Flags()
	f.StringVar(&a.flags.Host, "host", "", "Interface to listen on (default \""+hostconfig.DefaultHost+"\")")
	f.IntVarP(&a.flags.Port, "port", "p", 0, "HTTP port (default 5000)")
	f.IntVar(&a.flags.ReadTimeout, "read-timeout", 0, "Read timeout in seconds")
	f.IntVar(&a.flags.WriteTimeout, "write-timeout", 0, "Write timeout in seconds")
	f.StringVar(&a.logFile, "log-file", "", "Also append logs to this file")
	return cmd
}

// newServer loads the registry exactly as serve does. Inspection commands
// use it without starting the listener.
func (a *app) newServer(cfg *hostconfig.HostConfig, inspect bool) (*server.Server, error) {
	log := a.logger(cfg, inspect)
	host := &backend.Host{
		RootDir:         cfg.Root(),
		ProjectsBaseDir: cfg.ProjectsPath(),
		Logger:          log,
	}
	return server.New(server.Config{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.ReadTimeoutDuration(),
		WriteTimeout:    cfg.WriteTimeoutDuration(),
		ShutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, host, cfg.DescriptorPath())
}

