package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/status"
)

// newUpdateCmd creates the update command
func newUpdateCmd() *cobra.Command {
	var (
		opts       actions.UpdateOptions
		statusFlag string
		pr         string
		summary    string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change a feature's status, PR link or content",
		Long: `Change a feature's status, PR link or content and rebuild the chain.

Statuses only move forward: pending -> merging -> integrated, or pending -> integrated.
With --from the feature's content is taken from another ref, e.g. a branch that
addressed review comments.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFeatures,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			if cmd.Flags().Changed("status") {
				s, err := status.Parse(statusFlag)
				if err != nil {
					return err
				}
				opts.Status = &s
			}
			if cmd.Flags().Changed("pr") {
				opts.PR = &pr
			}
			if cmd.Flags().Changed("summary") {
				opts.Summary = &summary
			}
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.UpdateAction(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "New status: pending, merging or integrated")
	cmd.Flags().StringVar(&pr, "pr", "", "Link to the feature's pull request")
	cmd.Flags().StringVar(&summary, "summary", "", "One-line description of the feature")
	cmd.Flags().StringVar(&opts.From, "from", "", "Ref to take the feature's content from, e.g. origin/feature-v2")
	addRunFlags(cmd, &opts.RunFlags)

	_ = cmd.RegisterFlagCompletionFunc("status", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(status.All))
		for _, s := range status.All {
			names = append(names, s.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
