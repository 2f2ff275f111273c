// Package revision applies an ordered chain of text transforms to raw post
// content before a revision is committed.
package revision

import (
	"context"
	"sync"
)

// Action says whether a revision creates a post or edits one.
type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
)

// Revision is the raw content about to be persisted.
type Revision struct {
	PostID string
	Action Action
	Raw    string
}

// Transform rewrites raw content. It must not fail; a transform that cannot
// do its job returns raw unchanged.
type Transform func(ctx context.Context, raw string) string

// Chain runs its transforms in registration order.
type Chain struct {
	mu         sync.RWMutex
	transforms []namedTransform
}

type namedTransform struct {
	name string
	fn   Transform
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Use appends a transform. Transforms registered under the same name are
// replaced in place so hooks can be re-registered safely.
func (c *Chain) Use(name string, fn Transform) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.transforms {
		if t.name == name {
			c.transforms[i].fn = fn

			return c
		}
	}

	c.transforms = append(c.transforms, namedTransform{name: name, fn: fn})

	return c
}

// Names lists the registered transforms in order.
func (c *Chain) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.transforms))
	for i, t := range c.transforms {
		names[i] = t.name
	}

	return names
}

// Apply returns rev with every transform applied to its raw content.
func (c *Chain) Apply(ctx context.Context, rev Revision) Revision {
	c.mu.RLock()
	transforms := append([]namedTransform(nil), c.transforms...)
	c.mu.RUnlock()

	for _, t := range transforms {
		rev.Raw = t.fn(ctx, rev.Raw)
	}

	return rev
}
