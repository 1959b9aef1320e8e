package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/runtime"
)

// newAddCmd creates the add command
func newAddCmd() *cobra.Command {
	var opts actions.AddOptions

	cmd := &cobra.Command{
		Use:   "add <name> <after-feature|end>",
		Short: "Add a pending feature to the chain",
		Long: `Add a pending feature after an existing feature, or at the end of the chain.

The feature branch must already be pushed. Every feature after it is rebased on
top of it and the target branch is rebuilt; the config is saved once that succeeded.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeFeatures,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name, opts.After = args[0], args[1]
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.AddAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Remote, "remote", "", "Remote holding the feature branch (default: the target's remote)")
	cmd.Flags().StringVar(&opts.PR, "pr", "", "Link to the feature's pull request")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "One-line description of the feature")
	addRunFlags(cmd, &opts.RunFlags)
	return cmd
}
