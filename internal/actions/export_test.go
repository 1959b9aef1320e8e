package actions

import "guw.dev/guw/internal/tui"

// SetProgressView replaces the interactive progress view and returns a restore func
func SetProgressView(view func(title string, descriptions []string, updates <-chan tui.ProgressUpdate) error) func() {
	old := progressView
	progressView = view
	return func() { progressView = old }
}
