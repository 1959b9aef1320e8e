// Package output renders the feature chain for humans: a markdown list for
// issue trackers and READMEs, optionally styled for the terminal.
package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"guw.dev/guw/internal/config"
	"guw.dev/guw/internal/status"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

var statusIcons = map[status.Status]string{
	status.Integrated: "🟢",
	status.Merging:    "🔄",
	status.Pending:    "⏳",
}

// StatusIcon returns the emoji used for a status in the feature list
func StatusIcon(s status.Status) string {
	return statusIcons[s]
}

// BranchURL derives a browsable URL for a branch from a remote URL.
// It returns "" for remotes that are not hosted over https or scp-style ssh.
func BranchURL(remoteURL, branch string) string {
	base := remoteURL
	switch {
	case strings.HasPrefix(base, "https://"):
	case strings.HasPrefix(base, "git@"):
		// git@host:owner/repo.git
		host, path, ok := strings.Cut(strings.TrimPrefix(base, "git@"), ":")
		if !ok {
			return ""
		}
		base = "https://" + host + "/" + path
	default:
		return ""
	}
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), ".git")
	return base + "/tree/" + branch
}

// FeatureList renders the chain as a markdown bullet list, one feature per line
// with its status icon, summary and a PR link (or a branch link when no PR is set)
func FeatureList(cfg *config.Config) string {
	var b strings.Builder
	for _, f := range cfg.Features {
		fmt.Fprintf(&b, "* %s `%s`", StatusIcon(f.Status), f.Name)
		if f.Summary != "" {
			fmt.Fprintf(&b, ": %s", f.Summary)
		}
		if f.PR != "" {
			fmt.Fprintf(&b, " [(PR link)](%s)", f.PR)
		} else if remote, ok := cfg.Remote(f.Remote); ok {
			if url := BranchURL(remote.URL, f.Name); url != "" {
				fmt.Fprintf(&b, " [(Branch link)](%s)", url)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// TerminalWidth returns the current terminal width or a fallback when unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// RenderMarkdown renders markdown using Glamour with terminal-aware wrapping.
func RenderMarkdown(text string) (string, error) {
	return RenderMarkdownWithWidth(text, TerminalWidth(defaultMarkdownWidth))
}

// RenderMarkdownWithWidth renders markdown using Glamour with explicit wrapping.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(rendered, "\n"), nil
}
