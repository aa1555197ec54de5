package authz

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/docsentry/docsentry/pkg/logger"
	"github.com/docsentry/docsentry/pkg/metrics"
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
	decisionError = "error"
)

// Resource is the generic object handle accepted by DecideObject. The handle
// exists so call sites already carrying a concrete object keep a stable
// signature; per-object refinement stays behind DecideResource.
type Resource interface {
	GetID() string
	GetResourceType() string
}

// Evaluator answers permission questions with a plain bool. It never returns
// an error: a decision that cannot be computed is a denial, logged with the
// failure but indistinguishable to the caller from any other deny.
type Evaluator struct {
	cache      *PermissionCache
	store      Store
	strategies *StrategyRegistry
	log        *zap.Logger
}

// NewEvaluator wires the decision pipeline. All three collaborators are
// required.
func NewEvaluator(cache *PermissionCache, store Store, strategies *StrategyRegistry) (*Evaluator, error) {
	if cache == nil {
		return nil, errors.New("authz: permission cache is required")
	}
	if store == nil {
		return nil, errors.New("authz: permission store is required")
	}
	if strategies == nil {
		return nil, errors.New("authz: strategy registry is required")
	}
	return &Evaluator{
		cache:      cache,
		store:      store,
		strategies: strategies,
		log:        logger.WithModule("authz.evaluator"),
	}, nil
}

// Decide reports whether the user holds the coarse authority named by the
// permission code. No resource is consulted.
func (e *Evaluator) Decide(ctx context.Context, username, code string) bool {
	username = strings.TrimSpace(username)
	code = strings.TrimSpace(code)
	if username == "" || code == "" {
		return e.record(code, decisionDeny)
	}

	perms, err := e.cache.GetUserPermissions(ctx, username)
	if err != nil {
		e.log.Error("coarse authority lookup failed",
			zap.String("username", username),
			zap.String("code", code),
			zap.Error(err),
		)
		return e.record(code, decisionError)
	}
	if !perms.Has(code) {
		return e.record(code, decisionDeny)
	}
	return e.record(code, decisionAllow)
}

// DecideObject checks the permission for a call site holding a typed object.
// It applies only the coarse authority check, the same as Decide; callers
// needing per-object confirmation use DecideResource. The object parameter is
// the extension point for future per-object logic.
func (e *Evaluator) DecideObject(ctx context.Context, username string, resource Resource, code string) bool {
	return e.Decide(ctx, username, code)
}

// DecideResource answers the two-tier question: the user must hold the coarse
// authority AND pass the resource type's access strategy. Unknown resource
// types deny.
func (e *Evaluator) DecideResource(ctx context.Context, username, resourceID, resourceType, code string) bool {
	username = strings.TrimSpace(username)
	resourceID = strings.TrimSpace(resourceID)
	resourceType = strings.TrimSpace(resourceType)
	code = strings.TrimSpace(code)
	if username == "" || resourceID == "" || resourceType == "" || code == "" {
		return e.record(code, decisionDeny)
	}

	perms, err := e.cache.GetUserPermissions(ctx, username)
	if err != nil {
		e.log.Error("coarse authority lookup failed",
			zap.String("username", username),
			zap.String("code", code),
			zap.Error(err),
		)
		return e.record(code, decisionError)
	}
	if !perms.Has(code) {
		return e.record(code, decisionDeny)
	}

	strategy, ok := e.strategies.Get(resourceType)
	if !ok {
		e.log.Warn("no access strategy for resource type",
			zap.String("resource_type", resourceType),
			zap.String("code", code),
		)
		return e.record(code, decisionDeny)
	}

	userID, err := e.store.UserIDForUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			e.log.Error("username resolution failed",
				zap.String("username", username),
				zap.Error(err),
			)
			return e.record(code, decisionError)
		}
		return e.record(code, decisionDeny)
	}

	allowed, err := strategy.Check(ctx, userID, resourceID, code)
	if err != nil {
		e.log.Error("resource strategy check failed",
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.String("code", code),
			zap.Error(err),
		)
		return e.record(code, decisionError)
	}
	if !allowed {
		return e.record(code, decisionDeny)
	}
	return e.record(code, decisionAllow)
}

// record counts the decision and folds errors into denials at the boundary.
func (e *Evaluator) record(code, result string) bool {
	if code == "" {
		code = "unknown"
	}
	metrics.PermissionDecisions.WithLabelValues(code, result).Inc()
	return result == decisionAllow
}
