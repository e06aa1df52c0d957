// Package retrieval extracts resume passages relevant to an interview topic.
// It is a deliberately simple keyword index: the resume is split into
// paragraphs once, and lookups do case-insensitive containment matching.
package retrieval

import (
	"strings"
)

const defaultMaxSnippets = 3

// Provider serves resume snippets by topic keyword.
type Provider struct {
	paragraphs []string
	lowered    []string
	max        int
}

// Option configures a Provider.
type Option func(*Provider)

// WithMaxSnippets bounds the number of snippets returned per lookup.
func WithMaxSnippets(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.max = n
		}
	}
}

// New builds a provider over the given resume text. Empty text yields a
// provider that always returns nil, which is a valid degraded mode.
func New(resume string, opts ...Option) *Provider {
	p := &Provider{max: defaultMaxSnippets}
	for _, opt := range opts {
		opt(p)
	}

	for _, para := range splitParagraphs(resume) {
		p.paragraphs = append(p.paragraphs, para)
		p.lowered = append(p.lowered, strings.ToLower(para))
	}

	return p
}

// Snippets returns up to the configured number of resume paragraphs that
// mention the topic, in document order. No match returns nil.
func (p *Provider) Snippets(topic string) []string {
	needle := strings.ToLower(strings.TrimSpace(topic))
	if needle == "" {
		return nil
	}

	var out []string
	for i, lowered := range p.lowered {
		if strings.Contains(lowered, needle) {
			out = append(out, p.paragraphs[i])
			if len(out) >= p.max {
				break
			}
		}
	}

	return out
}

// Empty reports whether the provider holds no resume content.
func (p *Provider) Empty() bool {
	return len(p.paragraphs) == 0
}

// splitParagraphs breaks text on blank lines, collapsing internal line breaks
// so each snippet reads as one passage.
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		lines := make([]string, 0, 4)
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, " "))
		}
	}
	return out
}
