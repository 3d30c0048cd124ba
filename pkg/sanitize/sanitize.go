// Package sanitize filters unescaped template output through bluemonday
// policies.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce   sync.Once
	ugcPolicy *bluemonday.Policy

	svgOnce   sync.Once
	svgPolicy *bluemonday.Policy
)

// Sanitizer applies a bluemonday policy. It satisfies render.Sanitizer.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// Option adjusts a policy while it is built.
type Option func(*bluemonday.Policy)

// WithElements allows extra elements.
func WithElements(elements ...string) Option {
	return func(p *bluemonday.Policy) {
		if len(elements) > 0 {
			p.AllowElements(elements...)
		}
	}
}

// WithAttrs allows attrs on elements. An empty element list allows them
// globally.
func WithAttrs(attrs []string, elements ...string) Option {
	return func(p *bluemonday.Policy) {
		if len(attrs) == 0 {
			return
		}
		if len(elements) == 0 {
			p.AllowAttrs(attrs...).Globally()
			return
		}
		p.AllowAttrs(attrs...).OnElements(elements...)
	}
}

// WithSVG allows inline SVG icons.
func WithSVG() Option {
	return allowSVG
}

// New returns a sanitizer over the user generated content policy plus
// options. Without options the shared policy is reused.
func New(options ...Option) *Sanitizer {
	if len(options) == 0 {
		return &Sanitizer{policy: ugc()}
	}
	policy := bluemonday.UGCPolicy()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(policy)
	}
	return &Sanitizer{policy: policy}
}

// Strict returns a sanitizer that strips every element.
func Strict() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Icons returns a sanitizer that keeps only inline SVG.
func Icons() *Sanitizer {
	return &Sanitizer{policy: svg()}
}

// Sanitize filters markup.
func (s *Sanitizer) Sanitize(markup string) string {
	if s == nil || s.policy == nil {
		return markup
	}
	if strings.TrimSpace(markup) == "" {
		return markup
	}
	return s.policy.Sanitize(markup)
}

func ugc() *bluemonday.Policy {
	ugcOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

func svg() *bluemonday.Policy {
	svgOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		allowSVG(policy)
		svgPolicy = policy
	})
	return svgPolicy
}

func allowSVG(policy *bluemonday.Policy) {
	policy.AllowElements(
		"svg", "g", "path", "circle", "rect", "line", "polyline", "polygon",
		"ellipse", "title", "desc", "defs", "use", "clipPath",
	)

	policy.AllowAttrs(
		"xmlns", "viewBox", "width", "height", "fill", "stroke",
		"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
		"role", "focusable", "class",
	).OnElements("svg")

	policy.AllowAttrs("href", "xlink:href", "clip-path").OnElements("use")

	for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"} {
		policy.AllowAttrs(
			"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
			"points", "rx", "ry", "fill", "stroke", "stroke-width",
			"stroke-linecap", "stroke-linejoin", "class",
		).OnElements(el)
	}

	policy.AllowAttrs("id", "clipPathUnits").OnElements("clipPath")
	policy.AllowAttrs("id").OnElements("defs", "g")
}
