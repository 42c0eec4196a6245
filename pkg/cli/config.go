package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mphost/mph/pkg/cli/internal/output"
	"github.com/mphost/mph/pkg/hostconfig"
)

type configEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective host configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			values := configValues(cfg)
			entries := make([]configEntry, 0, len(values))
			for _, key := range hostconfig.Keys() {
				entries = append(entries, configEntry{Key: key, Value: values[key], Source: cfg.Sources[key]})
			}
			return a.print(entries, func() {
				t := output.NewTable("KEY", "VALUE", "SOURCE")
				for _, e := range entries {
					t.Row(e.Key, e.Value, e.Source)
				}
				_ = t.Write(a.stdout)
			})
		},
	}
}

func configValues(c *hostconfig.HostConfig) map[string]string {
	return map[string]string{
		"host":            c.Host,
		"port":            strconv.Itoa(c.Port),
		"rootDir":         c.RootDir,
		"descriptorDir":   c.DescriptorDir,
		"projectsDir":     c.ProjectsDir,
		"logLevel":        c.LogLevel,
		"logFormat":       c.LogFormat,
		"readTimeout":     strconv.Itoa(c.ReadTimeout),
		"writeTimeout":    strconv.Itoa(c.WriteTimeout),
		"shutdownTimeout": strconv.Itoa(c.ShutdownTimeout),
	}
}
