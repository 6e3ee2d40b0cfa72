package docx2md

import "log/slog"

// Option configures a Converter.
type Option func(*Converter)

// WithImageMode sets the image handling policy (default: ImageSeparate).
func WithImageMode(mode ImageMode) Option {
	return func(c *Converter) {
		c.mode = mode
	}
}

// WithLogger sets the logger used for stage and warning messages
// (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFrontMatter prepends YAML front matter with the document properties
// to the Markdown output.
func WithFrontMatter(enabled bool) Option {
	return func(c *Converter) {
		c.frontMatter = enabled
	}
}
