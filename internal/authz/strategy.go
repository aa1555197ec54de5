package authz

import (
	"context"
	"fmt"
	"strings"
)

// ResourceTypeDocument is currently the only resource type with a
// fine-grained policy.
const ResourceTypeDocument = "document"

// knownResourceTypes is the closed set of types the registry must cover.
// Adding a type here without registering a strategy fails construction.
var knownResourceTypes = []string{ResourceTypeDocument}

// ResourceAccessStrategy decides whether a user may perform an operation on
// one concrete resource, independent of the user's coarse authority.
type ResourceAccessStrategy interface {
	// ResourceType names the resource kind this strategy governs.
	ResourceType() string
	// Check reports whether the user may exercise the permission code on the
	// resource. Errors indicate the decision could not be computed, never a
	// denial.
	Check(ctx context.Context, userID, resourceID, code string) (bool, error)
}

// StrategyRegistry maps resource types to their access strategies. The set is
// fixed at construction and validated for full coverage, so lookups never
// race and an unregistered known type cannot slip to runtime.
type StrategyRegistry struct {
	strategies map[string]ResourceAccessStrategy
}

// NewStrategyRegistry validates and fixes the strategy set. Every strategy
// must be non-nil, name a known resource type, and appear at most once; every
// known type must be covered.
func NewStrategyRegistry(strategies ...ResourceAccessStrategy) (*StrategyRegistry, error) {
	byType := make(map[string]ResourceAccessStrategy, len(strategies))
	for _, strategy := range strategies {
		if strategy == nil {
			return nil, fmt.Errorf("authz: nil strategy")
		}
		resourceType := strings.TrimSpace(strategy.ResourceType())
		if resourceType == "" {
			return nil, fmt.Errorf("authz: strategy with empty resource type")
		}
		if !isKnownResourceType(resourceType) {
			return nil, fmt.Errorf("authz: unknown resource type %q", resourceType)
		}
		if _, exists := byType[resourceType]; exists {
			return nil, fmt.Errorf("authz: duplicate strategy for resource type %q", resourceType)
		}
		byType[resourceType] = strategy
	}

	for _, resourceType := range knownResourceTypes {
		if _, ok := byType[resourceType]; !ok {
			return nil, fmt.Errorf("authz: no strategy registered for resource type %q", resourceType)
		}
	}

	return &StrategyRegistry{strategies: byType}, nil
}

// Get returns the strategy for the resource type, if any.
func (r *StrategyRegistry) Get(resourceType string) (ResourceAccessStrategy, bool) {
	strategy, ok := r.strategies[resourceType]
	return strategy, ok
}

func isKnownResourceType(resourceType string) bool {
	for _, known := range knownResourceTypes {
		if known == resourceType {
			return true
		}
	}
	return false
}
