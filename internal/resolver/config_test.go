package resolver_test

import (
	"testing"
	"time"

	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Budget(t *testing.T) {
	tests := []struct {
		name string
		cfg  resolver.Config
		want time.Duration
	}{
		{"defaults", resolver.DefaultConfig(), 6 * resolver.DefaultHopTimeout},
		{"five redirects", resolver.Config{MaxRedirects: 5, HopTimeout: 200 * time.Millisecond}, 1200 * time.Millisecond},
		{"no redirects", resolver.Config{MaxRedirects: 0, HopTimeout: time.Second}, time.Second},
		{"negative redirects clamp to zero", resolver.Config{MaxRedirects: -3, HopTimeout: time.Second}, time.Second},
		{"missing hop timeout", resolver.Config{MaxRedirects: 1}, 2 * resolver.DefaultHopTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Budget())
		})
	}
}
