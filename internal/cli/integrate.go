package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/runtime"
)

// newIntegrateCmd creates the integrate command
func newIntegrateCmd() *cobra.Command {
	var opts actions.IntegrateOptions

	cmd := &cobra.Command{
		Use:   "integrate <name>",
		Short: "Mark a feature as merged upstream",
		Long: `Mark a feature as integrated once upstream accepted it, and rebuild the chain
without it. With --sync the chain is then rebuilt on the new upstream.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFeatures,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.IntegrateAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Sync, "sync", false, "Run sync afterwards")
	addRunFlags(cmd, &opts.RunFlags)
	return cmd
}
