package renderer

import "pkt.systems/pslog"

// DefaultImageMaxWidth is the max-width in pixels applied to images.
const DefaultImageMaxWidth = 200

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithImageMaxWidth sets the max-width applied to every <img>.
// Non-positive values are ignored.
func WithImageMaxWidth(px int) Option {
	return func(p *Pipeline) {
		if px > 0 {
			p.imageMaxWidth = px
		}
	}
}

// WithHighlighting enables or disables chroma highlighting of fenced code.
func WithHighlighting(enabled bool) Option {
	return func(p *Pipeline) {
		p.highlight = enabled
	}
}

// WithMath adds the MathJax loader to the document head.
func WithMath(enabled bool) Option {
	return func(p *Pipeline) {
		p.math = enabled
	}
}

// WithLogger sets the logger used to report degraded renders.
func WithLogger(logger pslog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}
