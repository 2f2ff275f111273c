package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/scavin/discourse-bilibili-onebox/internal/embed"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
)

// blockParents are the elements a bare link may stand alone in.
var blockParents = map[string]bool{
	"p":   true,
	"div": true,
	"li":  true,
}

// Tree replaces eligible anchors of a rendered document with player embeds.
type Tree struct {
	resolver    Resolver
	matcher     *linkid.Matcher
	templates   embed.Templates
	markers     []string
	concurrency int
}

// NewTree creates a tree rewriter. Anchors carrying any of markers are
// always eligible; the matcher's marker class is always included.
func NewTree(resolver Resolver, matcher *linkid.Matcher, templates embed.Templates, markers ...string) *Tree {
	all := []string{matcher.Hosts().MarkerClass}

	for _, m := range markers {
		if m != "" && m != all[0] {
			all = append(all, m)
		}
	}

	return &Tree{
		resolver:    resolver,
		matcher:     matcher,
		templates:   templates,
		markers:     all,
		concurrency: DefaultConcurrency,
	}
}

// RewriteDocument replaces eligible anchors in doc and returns how many
// were replaced.
func (t *Tree) RewriteDocument(ctx context.Context, doc *goquery.Document) int {
	type candidate struct {
		anchor *goquery.Selection
		href   string
	}

	var (
		candidates []candidate
		urls       []string
	)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || !t.eligible(a, href) {
			return
		}

		if _, ok := t.matcher.Classify(href); !ok {
			return
		}

		candidates = append(candidates, candidate{anchor: a, href: href})
		urls = append(urls, href)
	})

	if len(candidates) == 0 {
		return 0
	}

	resolved := resolveAll(ctx, t.resolver, urls, t.concurrency)
	replaced := 0

	for _, c := range candidates {
		link, ok := resolved[c.href]
		if !ok {
			continue
		}

		fragment, ok := t.templates.Link(link)
		if !ok {
			continue
		}

		c.anchor.ReplaceWithHtml(fragment)
		replaced++
	}

	return replaced
}

// RewriteHTML parses an HTML fragment, rewrites it and returns the body
// markup with the number of replaced anchors.
func (t *Tree) RewriteHTML(ctx context.Context, fragment string) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", 0, fmt.Errorf("parse html: %w", err)
	}

	replaced := t.RewriteDocument(ctx, doc)
	if replaced == 0 {
		return fragment, 0, nil
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", 0, fmt.Errorf("render html: %w", err)
	}

	return out, replaced, nil
}

// eligible reports whether a is a bare block link or carries a marker class.
func (t *Tree) eligible(a *goquery.Selection, href string) bool {
	for _, m := range t.markers {
		if a.HasClass(m) {
			return true
		}
	}

	parent := a.Parent()
	if parent.Length() == 0 || !blockParents[goquery.NodeName(parent)] {
		return false
	}

	if !soleChild(parent, a) {
		return false
	}

	return strings.TrimSpace(a.Text()) == href
}

// soleChild reports whether a is the only child of parent, ignoring
// whitespace text and comments.
func soleChild(parent, a *goquery.Selection) bool {
	anchor := a.Get(0)
	sole := true

	parent.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		switch goquery.NodeName(c) {
		case "#comment":
			return true
		case "#text":
			if strings.TrimSpace(c.Text()) != "" {
				sole = false
			}
		default:
			if c.Get(0) != anchor {
				sole = false
			}
		}

		return sole
	})

	return sole
}
