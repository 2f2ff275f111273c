package rewrite

import (
	"context"
	"strings"
	"unicode"

	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
)

// Text expands standalone short and live links in raw post text.
type Text struct {
	resolver    Resolver
	matcher     *linkid.Matcher
	concurrency int
}

// NewText creates a text rewriter.
func NewText(resolver Resolver, matcher *linkid.Matcher) *Text {
	return &Text{
		resolver:    resolver,
		matcher:     matcher,
		concurrency: DefaultConcurrency,
	}
}

// WithConcurrency sets how many links of one text resolve in parallel.
func (t *Text) WithConcurrency(n int) *Text {
	t.concurrency = n

	return t
}

type line struct {
	lead, core, trail, eol string
	candidate              bool
}

// ExpandShortLinks replaces every line whose trimmed content is a short link
// or a live link with the canonical long-form URL. Whitespace around the
// link and line terminators are kept byte for byte. A line whose link cannot
// be resolved is left as is, so applying it twice equals applying it once.
func (t *Text) ExpandShortLinks(ctx context.Context, text string) string {
	lines := t.split(text)

	var urls []string

	for _, l := range lines {
		if l.candidate {
			urls = append(urls, l.core)
		}
	}

	if len(urls) == 0 {
		return text
	}

	resolved := resolveAll(ctx, t.resolver, urls, t.concurrency)

	var b strings.Builder

	b.Grow(len(text))

	for _, l := range lines {
		core := l.core

		if link, ok := resolved[core]; ok && l.candidate {
			core = t.matcher.CanonicalURL(link)
		}

		b.WriteString(l.lead)
		b.WriteString(core)
		b.WriteString(l.trail)
		b.WriteString(l.eol)
	}

	return b.String()
}

func (t *Text) split(text string) []line {
	var lines []line

	for _, seg := range strings.SplitAfter(text, "\n") {
		if seg == "" {
			continue
		}

		var l line

		switch {
		case strings.HasSuffix(seg, "\r\n"):
			l.eol = "\r\n"
		case strings.HasSuffix(seg, "\n"):
			l.eol = "\n"
		}

		body := seg[:len(seg)-len(l.eol)]
		left := strings.TrimLeftFunc(body, unicode.IsSpace)
		l.lead = body[:len(body)-len(left)]
		l.core = strings.TrimRightFunc(left, unicode.IsSpace)
		l.trail = left[len(l.core):]
		l.candidate = t.expandable(l.core)

		lines = append(lines, l)
	}

	return lines
}

// expandable reports whether core is a link the rewriter owns: short links
// and live rooms. Canonical video URLs are already long form.
func (t *Text) expandable(core string) bool {
	if core == "" {
		return false
	}

	target, ok := t.matcher.Classify(core)
	if !ok {
		return false
	}

	return target.Kind != linkid.TargetVideo
}
