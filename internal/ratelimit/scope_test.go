package ratelimit_test

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/scavin/discourse-bilibili-onebox/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

func TestScopesFor(t *testing.T) {
	tests := []struct {
		name string
		op   *huma.Operation
		want []ratelimit.Scope
	}{
		{"nil operation", nil, nil},
		{"no metadata", &huma.Operation{}, nil},
		{"unrelated metadata", &huma.Operation{Metadata: map[string]any{"other": 1}}, nil},
		{"empty scope", &huma.Operation{Metadata: map[string]any{ratelimit.MetadataKey: ratelimit.EndpointConfig{}}}, nil},
		{
			"resolve scope",
			&huma.Operation{Metadata: ratelimit.Metadata(ratelimit.ScopeResolve)},
			[]ratelimit.Scope{ratelimit.ScopeResolve},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ratelimit.ScopesFor(tt.op))
		})
	}
}
