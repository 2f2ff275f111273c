// Package rewrite replaces video and live links in raw post text and in
// rendered HTML. Every function here degrades to leaving input untouched
// when a link cannot be resolved.
package rewrite

import (
	"context"

	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds outbound resolutions per document.
const DefaultConcurrency = 4

// Resolver turns a link URL into its canonical link.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (linkid.Link, bool)
}

// resolveAll resolves each distinct URL once, at most limit at a time.
// Unresolved URLs are absent from the result.
func resolveAll(ctx context.Context, r Resolver, urls []string, limit int) map[string]linkid.Link {
	unique := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))

	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}

		seen[u] = struct{}{}
		unique = append(unique, u)
	}

	results := make([]linkid.Link, len(unique))
	resolved := make([]bool, len(unique))

	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, u := range unique {
		g.Go(func() error {
			results[i], resolved[i] = r.Resolve(ctx, u)

			return nil
		})
	}

	_ = g.Wait()

	out := make(map[string]linkid.Link, len(unique))

	for i, u := range unique {
		if resolved[i] {
			out[u] = results[i]
		}
	}

	return out
}
