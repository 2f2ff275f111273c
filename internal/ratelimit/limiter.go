package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitConfig caps requests per window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy holds the limits applied to each scope.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy bounds how often one client can trigger outbound
// resolution. A zero max drops that window.
func DefaultPolicy(perMinute, perHour int64) *Policy {
	var limits []LimitConfig

	if perMinute > 0 {
		limits = append(limits, LimitConfig{Window: time.Minute, Max: perMinute})
	}

	if perHour > 0 {
		limits = append(limits, LimitConfig{Window: time.Hour, Max: perHour})
	}

	return &Policy{Limits: map[Scope][]LimitConfig{ScopeResolve: limits}}
}

// LimitExceeded describes the limit a request hit.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces a policy for the scopes of a request.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records one request of clientKey in every window of scopes. The
// LimitExceeded value names the first limit hit and is nil when allowed.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			count, err := l.store.Record(ctx, buildKey(clientKey, scope, limit), limit.Window)
			if err != nil {
				return false, nil, fmt.Errorf("record %s request: %w", scope, err)
			}

			if count > limit.Max {
				return false, &LimitExceeded{
					Scope:  scope,
					Config: limit,
					Count:  count,
				}, nil
			}
		}
	}

	return true, nil, nil
}

// Key combines client, scope and window so each window counts on its own.
func buildKey(clientKey string, scope Scope, limit LimitConfig) string {
	return fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())
}
