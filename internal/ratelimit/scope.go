package ratelimit

import "github.com/danielgtaylor/huma/v2"

// Scope groups operations that share a limit.
type Scope string

// ScopeResolve covers operations that may trigger requests to the short
// host or the live room API.
const ScopeResolve Scope = "resolve"

// MetadataKey is the operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig opts an operation into a scope.
type EndpointConfig struct {
	Scope Scope
}

// Metadata returns operation metadata placing the operation in scope.
func Metadata(scope Scope) map[string]any {
	return map[string]any{MetadataKey: EndpointConfig{Scope: scope}}
}

// ScopesFor returns the scopes of op. Operations without an EndpointConfig
// are not limited.
func ScopesFor(op *huma.Operation) []Scope {
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok || cfg.Scope == "" {
		return nil
	}

	return []Scope{cfg.Scope}
}
