package actions

import (
	"fmt"
	"strings"

	guwerrors "guw.dev/guw/internal/errors"
	"guw.dev/guw/internal/plan"
	"guw.dev/guw/internal/tui"
)

// PrintConflictStatus displays conflict information and instructions to the user
func PrintConflictStatus(splog *tui.Splog, conflict *guwerrors.ConflictError, p *plan.Plan) {
	splog.Info("%s", tui.ColorRed(fmt.Sprintf("Hit conflict rebasing %s", conflict.Branch)))
	splog.Newline()

	if len(conflict.Files) > 0 {
		splog.Info("%s", tui.ColorYellow("Unmerged files:"))
		for _, file := range conflict.Files {
			splog.Info("%s", tui.ColorRed(file))
		}
		splog.Newline()
	}

	if conflict.Commit != "" {
		splog.Info("%s", tui.ColorYellow(fmt.Sprintf("Stopped while applying %s", guwerrors.ShortSHA(conflict.Commit))))
		splog.Newline()
	}

	var step plan.Step
	for _, s := range p.Rebases() {
		if s.Branch == conflict.Branch {
			step = s
		}
	}

	splog.Info("%s", tui.ColorYellow("Every local branch was restored and nothing was pushed. To fix it:"))
	if step.Branch != "" {
		splog.Info("(1) rebase %s onto the rebuilt %s and resolve the listed conflicts",
			tui.ColorBranchName(step.Branch), tui.ColorBranchName(strings.TrimPrefix(step.Onto, step.Remote+"/")))
		splog.Info("(2) push the result to %s", tui.ColorCyan(step.Remote+"/"+step.Branch))
	} else {
		splog.Info("(1) resolve the listed conflicts on %s", tui.ColorBranchName(conflict.Branch))
		splog.Info("(2) push the result")
	}
	splog.Info("(3) run the same %s command again", tui.ColorCyan("guw"))
}
