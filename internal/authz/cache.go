package authz

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/docsentry/docsentry/internal/cache"
	"github.com/docsentry/docsentry/internal/models"
	"github.com/docsentry/docsentry/pkg/logger"
	"github.com/docsentry/docsentry/pkg/metrics"
)

// Default staleness bounds. TTLs are a backstop for mutators that fail to
// evict, not a substitute for the eviction contract.
const (
	DefaultPermissionsTTL = 5 * time.Minute
	DefaultAssignmentsTTL = 2 * time.Minute
	DefaultVisibilityTTL  = 5 * time.Minute
)

const (
	nsPermissions = "permissions"
	nsAssignments = "assignments"
	nsVisibility  = "visibility"
)

// TTLConfig holds the per-namespace entry lifetimes.
type TTLConfig struct {
	Permissions time.Duration
	Assignments time.Duration
	Visibility  time.Duration
}

func (c TTLConfig) withDefaults() TTLConfig {
	if c.Permissions <= 0 {
		c.Permissions = DefaultPermissionsTTL
	}
	if c.Assignments <= 0 {
		c.Assignments = DefaultAssignmentsTTL
	}
	if c.Visibility <= 0 {
		c.Visibility = DefaultVisibilityTTL
	}
	return c
}

// Stats is a point-in-time snapshot of cache activity. Reading it has no
// side effects.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Fallbacks uint64 `json:"fallbacks"`
}

// BackendInfo describes the configured cache backend for the admin surface.
type BackendInfo struct {
	Kind string    `json:"kind"`
	TTL  TTLConfig `json:"ttl"`
}

// PermissionSet is the cached projection of a user's coarse authorities.
type PermissionSet map[string]struct{}

// Has reports whether the set contains the permission code.
func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// PermissionCache is a read-through, explicitly-invalidated cache over the
// permission store. Three namespaces are held: user→permission codes,
// (user,document)→assignments and document→visibility.
//
// Concurrent misses for one key may each query the store and overwrite the
// entry; store reads are idempotent and entries are last-writer-wins per key,
// so no single-flight is used. Any backend failure degrades to a direct store
// read; a broken cache can add latency, never wrong allows.
type PermissionCache struct {
	backend cache.Store // nil means every read goes to the store
	store   Store
	ttl     TTLConfig
	log     *zap.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	fallbacks atomic.Uint64
}

// NewPermissionCache wires a cache backend (may be nil) in front of the store.
func NewPermissionCache(backend cache.Store, store Store, ttl TTLConfig) (*PermissionCache, error) {
	if store == nil {
		return nil, errors.New("authz: permission store is required")
	}
	return &PermissionCache{
		backend: backend,
		store:   store,
		ttl:     ttl.withDefaults(),
		log:     logger.WithModule("authz.cache"),
	}, nil
}

// GetUserPermissions returns the user's coarse authority set, read through
// the permissions namespace.
func (c *PermissionCache) GetUserPermissions(ctx context.Context, username string) (PermissionSet, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("authz: username is required")
	}

	key := userPermissionsKey(username)
	if data, ok := c.backendGet(ctx, nsPermissions, key); ok {
		var codes []string
		if err := json.Unmarshal(data, &codes); err == nil {
			return toPermissionSet(codes), nil
		}
		c.log.Warn("discarding undecodable permission entry", zap.String("key", key))
	}

	codes, err := c.store.PermissionCodesForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	sort.Strings(codes)

	c.backendSet(ctx, nsPermissions, key, codes, c.ttl.Permissions)
	return toPermissionSet(codes), nil
}

// GetAssignments returns the user's grants on one document, read through the
// assignments namespace.
func (c *PermissionCache) GetAssignments(ctx context.Context, userID, documentID string) ([]models.DocumentAssignment, error) {
	userID = strings.TrimSpace(userID)
	documentID = strings.TrimSpace(documentID)
	if userID == "" || documentID == "" {
		return nil, errors.New("authz: user id and document id are required")
	}

	key := assignmentKey(userID, documentID)
	if data, ok := c.backendGet(ctx, nsAssignments, key); ok {
		var assignments []models.DocumentAssignment
		if err := json.Unmarshal(data, &assignments); err == nil {
			return assignments, nil
		}
		c.log.Warn("discarding undecodable assignment entry", zap.String("key", key))
	}

	assignments, err := c.store.Assignments(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	c.backendSet(ctx, nsAssignments, key, assignments, c.ttl.Assignments)
	return assignments, nil
}

// IsResourcePublic returns the document visibility flag, read through the
// visibility namespace.
func (c *PermissionCache) IsResourcePublic(ctx context.Context, resourceID string) (bool, error) {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return false, errors.New("authz: resource id is required")
	}

	key := visibilityKey(resourceID)
	if data, ok := c.backendGet(ctx, nsVisibility, key); ok {
		var public bool
		if err := json.Unmarshal(data, &public); err == nil {
			return public, nil
		}
		c.log.Warn("discarding undecodable visibility entry", zap.String("key", key))
	}

	public, err := c.store.IsResourcePublic(ctx, resourceID)
	if err != nil {
		return false, err
	}

	c.backendSet(ctx, nsVisibility, key, public, c.ttl.Visibility)
	return public, nil
}

// EvictUserPermissions drops the user's cached authority set. Evicting an
// absent entry is a no-op.
func (c *PermissionCache) EvictUserPermissions(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" || c.backend == nil {
		return nil
	}

	if err := c.backend.Delete(ctx, userPermissionsKey(username)); err != nil {
		return err
	}
	c.countEviction(nsPermissions)
	return nil
}

// EvictAssignments drops cached assignment entries for the user. With
// document IDs it removes exactly those entries; without, it clears the
// user's whole assignment namespace.
func (c *PermissionCache) EvictAssignments(ctx context.Context, userID string, documentIDs ...string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || c.backend == nil {
		return nil
	}

	if len(documentIDs) == 0 {
		if err := c.backend.DeleteByPrefix(ctx, userAssignmentsPrefix(userID)); err != nil {
			return err
		}
		c.countEviction(nsAssignments)
		return nil
	}

	keys := make([]string, 0, len(documentIDs))
	for _, id := range documentIDs {
		if id = strings.TrimSpace(id); id != "" {
			keys = append(keys, assignmentKey(userID, id))
		}
	}
	if err := c.backend.Delete(ctx, keys...); err != nil {
		return err
	}
	for range keys {
		c.countEviction(nsAssignments)
	}
	return nil
}

// EvictResourceVisibility drops the cached visibility flag for one document.
func (c *PermissionCache) EvictResourceVisibility(ctx context.Context, resourceID string) error {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" || c.backend == nil {
		return nil
	}

	if err := c.backend.Delete(ctx, visibilityKey(resourceID)); err != nil {
		return err
	}
	c.countEviction(nsVisibility)
	return nil
}

// EvictAllUserPermissions clears the entire permissions namespace. Coarse
// fallback for mutations whose affected user set cannot be resolved.
func (c *PermissionCache) EvictAllUserPermissions(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}

	if err := c.backend.DeleteByPrefix(ctx, permissionsKeyPrefix); err != nil {
		return err
	}
	c.countEviction(nsPermissions)
	return nil
}

// Stats returns a snapshot of the hit/miss/eviction/fallback counters.
func (c *PermissionCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Fallbacks: c.fallbacks.Load(),
	}
}

// Backend describes the configured backend and TTLs.
func (c *PermissionCache) Backend() BackendInfo {
	info := BackendInfo{TTL: c.ttl}
	switch c.backend.(type) {
	case nil:
		info.Kind = "none"
	case *cache.RedisClient:
		info.Kind = "redis"
	case *cache.DatabaseStore:
		info.Kind = "database"
	default:
		info.Kind = "custom"
	}
	return info
}

// backendGet reads a raw entry, absorbing backend failures: an unreachable
// backend is logged and reported as a miss so the caller falls through to the
// store. It must never turn into an allow.
func (c *PermissionCache) backendGet(ctx context.Context, namespace, key string) ([]byte, bool) {
	if c.backend == nil {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return nil, false
	}

	data, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.fallbacks.Add(1)
		metrics.CacheFallbacks.WithLabelValues(namespace).Inc()
		c.log.Warn("cache backend read failed; falling back to store",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return nil, false
	}

	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(namespace).Inc()
	return data, true
}

// backendSet populates an entry after a miss. Failures only cost the next
// reader another store round-trip, so they are logged and dropped.
func (c *PermissionCache) backendSet(ctx context.Context, namespace, key string, value any, ttl time.Duration) {
	if c.backend == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("namespace", namespace), zap.Error(err))
		return
	}
	if err := c.backend.Set(ctx, key, payload, ttl); err != nil {
		c.log.Warn("cache backend write failed",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
	}
}

func (c *PermissionCache) countEviction(namespace string) {
	c.evictions.Add(1)
	metrics.CacheEvictions.WithLabelValues(namespace).Inc()
}

func toPermissionSet(codes []string) PermissionSet {
	set := make(PermissionSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}
