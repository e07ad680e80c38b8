package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/africanmarketos/amos-mvr-go/mvr"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mvrctl version %s\n", version)
			fmt.Fprintf(out, "Client library %s (%s)\n", mvr.Version, mvr.DefaultUserAgent)
			fmt.Fprintf(out, "Built with %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
