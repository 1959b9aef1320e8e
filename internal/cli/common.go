package cli

import (
	"os"

	"github.com/spf13/cobra"

	"guw.dev/guw/internal/actions"
	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/tui"
)

// run builds the runtime context from the global flags and runs fn with it
func run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{
		Writer:  cmd.OutOrStdout(),
		LogFile: tui.GetLogFilePath(),
		Debug:   debug || os.Getenv("DEBUG") != "",
	})
	if err != nil {
		// the log file is optional
		splog, _ = tui.NewSplogWithOptions(tui.SplogOptions{Writer: cmd.OutOrStdout(), Debug: debug})
		splog.Debug("File logging disabled: %v", err)
	}
	defer func() { _ = splog.Close() }()

	splog.Debug("guw %s", cmd.CommandPath())
	return fn(runtime.NewContext(cmd.Context(), splog, configPath))
}

// addRunFlags registers the flags shared by every command that rebuilds the chain
func addRunFlags(cmd *cobra.Command, flags *actions.RunFlags) {
	cmd.Flags().BoolVarP(&flags.Local, "local", "l", false, "Rebuild locally without pushing anything")
	cmd.Flags().BoolVarP(&flags.Backup, "backup", "b", false, "Push a dated copy of every rewritten branch first")
	cmd.Flags().BoolVarP(&flags.Keep, "keep", "k", false, "Keep the temporary working copy")
	cmd.Flags().StringVarP(&flags.Dir, "dir", "d", "", "Working copy to use instead of a temporary clone")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Print the plan without touching any repository")
}

// completeFeatures is a cobra.ValidArgsFunction returning the feature names of the config
func completeFeatures(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(cfg.Features))
	for _, f := range cfg.Features {
		names = append(names, f.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
