package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the fork's branches and feature chain",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, actions.ListAction)
		},
	}
}
