package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/runtime"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var opts actions.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the feature chain on top of upstream",
		Long: `Rebuild the feature chain on top of upstream (or source when no upstream is configured).

Integrated features are skipped, merging features are replaced by their reviewing
branch and every other feature is rebased onto the one before it. The source branch
is moved to upstream and the target branch to the last feature, then every
rewritten branch is pushed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.SyncAction(ctx, opts)
			})
		},
	}

	addRunFlags(cmd, &opts.RunFlags)
	return cmd
}
