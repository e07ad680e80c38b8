package commands

import (
	"github.com/spf13/cobra"

	"github.com/africanmarketos/amos-mvr-go/executor"
)

// NewHealthCommand creates the health command.
func NewHealthCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the scoring service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealth(cmd, global)
		},
	}
}

func runHealth(cmd *cobra.Command, global *GlobalOptions) error {
	s, err := openSession(cmd, global)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.client.Health(commandContext(cmd))
	if err != nil {
		return reportFailure(cmd.OutOrStdout(), executor.NormalizeError(err))
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}
