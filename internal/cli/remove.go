package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/runtime"
)

// newRemoveCmd creates the remove command
func newRemoveCmd() *cobra.Command {
	var opts actions.RemoveOptions

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a feature from the chain",
		Long: `Remove a feature from the chain and rebuild its dependents without it.

Removing a feature under review (merging) needs --force, or a confirmation on
interactive terminals. The feature's own branches are left on the remote.`,
		Aliases:           []string{"rm"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFeatures,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.RemoveAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Remove the feature even if it is under review")
	addRunFlags(cmd, &opts.RunFlags)
	return cmd
}
