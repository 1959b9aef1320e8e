package cli

import (
	"github.com/spf13/cobra"

	"guw.dev/guw/internal/config"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guw",
		Short: "guw keeps a fork's feature branches rebased on top of each other and of upstream",
		Long: `guw keeps a fork's feature branches rebased on top of each other and of upstream.

The fork is described by a TOML file listing its remotes, the source, target and
upstream branches and the ordered chain of features with their review status.
Every command rebuilds the target branch from that chain; a failure anywhere
restores every local branch and pushes nothing.`,
		Version:       version + " (" + commit + ", " + date + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the fork's TOML config")
	rootCmd.PersistentFlags().Bool("debug", false, "Show debug output")

	rootCmd.AddCommand(
		newSyncCmd(),
		newAddCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newIntegrateCmd(),
		newMarkdownCmd(),
		newListCmd(),
	)

	return rootCmd
}
