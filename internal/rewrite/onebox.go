package rewrite

import (
	"context"
	"strings"

	"github.com/scavin/discourse-bilibili-onebox/internal/embed"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
)

// Onebox is the single-URL render entry point.
type Onebox struct {
	resolver  Resolver
	matcher   *linkid.Matcher
	templates embed.Templates
}

// NewOnebox creates a renderer.
func NewOnebox(resolver Resolver, matcher *linkid.Matcher, templates embed.Templates) *Onebox {
	return &Onebox{resolver: resolver, matcher: matcher, templates: templates}
}

// Render returns the embed fragment for rawURL, or false when the URL is not
// a recognized link or does not resolve.
func (o *Onebox) Render(ctx context.Context, rawURL string) (string, bool) {
	link, ok := o.Lookup(ctx, rawURL)
	if !ok {
		return "", false
	}

	return o.templates.Link(link)
}

// Lookup resolves rawURL without rendering. rawURL may also be an inline
// anchor matched by the matcher's InlinePattern.
func (o *Onebox) Lookup(ctx context.Context, rawURL string) (linkid.Link, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return linkid.Link{}, false
	}

	if strings.HasPrefix(rawURL, "<") {
		id, ok := o.matcher.InlineVideoID(rawURL)
		if !ok {
			return linkid.Link{}, false
		}

		return linkid.Link{Kind: linkid.KindVideo, ID: id}, true
	}

	return o.resolver.Resolve(ctx, rawURL)
}
