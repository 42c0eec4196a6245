package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	Go        string `json:"go"`
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			v := versionInfo{Version: Version, Commit: Commit, BuildDate: BuildDate, Go: runtime.Version()}
			return a.print(v, func() {
				fmt.Fprintf(a.stdout, "mph %s (commit %s, built %s, %s)\n", v.Version, v.Commit, v.BuildDate, v.Go)
			})
		},
	}
}
