package actions

import (
	"fmt"
	"strings"

	"guw.dev/guw/internal/runtime"
	"guw.dev/guw/internal/tui"
)

// ListAction prints the branches of the fork and the feature chain in order
func ListAction(ctx *runtime.Context) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}
	splog := ctx.Splog

	if cfg.Upstream != nil {
		splog.Info("upstream  %s", tui.ColorBranchName(cfg.Upstream.Ref()))
	}
	splog.Info("source    %s", tui.ColorBranchName(cfg.Source.Ref()))
	splog.Info("target    %s", tui.ColorBranchName(cfg.Target.Ref()))
	splog.Newline()

	if len(cfg.Features) == 0 {
		splog.Info("No features. Add one with %s.", tui.ColorCyan("guw add <name> end"))
		return nil
	}

	width := 0
	for _, f := range cfg.Features {
		width = max(width, len(f.ActiveBranch()))
	}
	for i, f := range cfg.Features {
		branch := f.ActiveBranch()
		line := fmt.Sprintf("%2d. %s%s %s", i+1, tui.ColorBranchName(branch), strings.Repeat(" ", width-len(branch)), tui.ColorStatus(f.Status))
		if f.Summary != "" {
			line += " " + tui.ColorDim(f.Summary)
		}
		splog.Info("%s", line)
	}
	return nil
}
