package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY reports whether stdin and stdout are both attached to a usable terminal
func IsTTY() bool {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return false
	}
	// CI runners sometimes expose terminal fds without a controlling tty
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsInteractive reports whether prompts may be shown.
// GUW_NON_INTERACTIVE disables prompts even on a terminal.
func IsInteractive() bool {
	if os.Getenv("GUW_NON_INTERACTIVE") != "" {
		return false
	}
	return IsTTY()
}
