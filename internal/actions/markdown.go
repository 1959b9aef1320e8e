package actions

import (
	"guw.dev/guw/internal/output"
	"guw.dev/guw/internal/runtime"
)

// MarkdownOptions contains options for the markdown command
type MarkdownOptions struct {
	// Raw prints the markdown source even on a terminal
	Raw bool
}

// MarkdownAction prints the feature chain as a markdown list
func MarkdownAction(ctx *runtime.Context, opts MarkdownOptions) error {
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	text := output.FeatureList(cfg)
	if opts.Raw || !ctx.Interactive {
		ctx.Splog.Page(text)
		return nil
	}

	rendered, err := output.RenderMarkdown(text)
	if err != nil {
		ctx.Splog.Debug("Failed to render markdown: %v", err)
		ctx.Splog.Page(text)
		return nil
	}
	ctx.Splog.Page(rendered + "\n")
	return nil
}
