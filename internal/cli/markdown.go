package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/runtime"
)

// newMarkdownCmd creates the markdown command
func newMarkdownCmd() *cobra.Command {
	var opts actions.MarkdownOptions

	cmd := &cobra.Command{
		Use:   "markdown",
		Short: "Print the feature chain as a markdown list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.MarkdownAction(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print markdown source instead of rendering it")
	return cmd
}
