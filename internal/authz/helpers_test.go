package authz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/docsentry/docsentry/internal/models"
)

// memBackend is an in-process cache.Store used to observe read-through and
// eviction behaviour without a real backend.
type memBackend struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value   []byte
	expires time.Time
}

func newMemBackend() *memBackend {
	return &memBackend{entries: make(map[string]memEntry)}
}

func (m *memBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *memBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memBackend) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memBackend) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// failingBackend fails every operation, standing in for an unreachable Redis.
type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}

func (failingBackend) Delete(context.Context, ...string) error {
	return errBackendDown
}

func (failingBackend) DeleteByPrefix(context.Context, string) error {
	return errBackendDown
}

// stubStore is an in-memory Store with per-method call counters and error
// injection.
type stubStore struct {
	mu sync.Mutex

	perms       map[string][]string // username -> codes
	assignments map[string][]models.DocumentAssignment
	public      map[string]bool
	userIDs     map[string]string   // username -> id
	roleMembers map[string][]string // roleID -> usernames

	failStore bool

	permCalls       int
	assignmentCalls int
	visibilityCalls int
}

func newStubStore() *stubStore {
	return &stubStore{
		perms:       make(map[string][]string),
		assignments: make(map[string][]models.DocumentAssignment),
		public:      make(map[string]bool),
		userIDs:     make(map[string]string),
		roleMembers: make(map[string][]string),
	}
}

func (s *stubStore) assignmentKey(userID, documentID string) string {
	return userID + "/" + documentID
}

func (s *stubStore) addUser(username, id string, codes ...string) {
	s.userIDs[username] = id
	s.perms[username] = codes
}

func (s *stubStore) addAssignment(userID, documentID string, assignmentType models.AssignmentType) {
	key := s.assignmentKey(userID, documentID)
	s.assignments[key] = append(s.assignments[key], models.DocumentAssignment{
		DocumentID:     documentID,
		UserID:         userID,
		AssignmentType: assignmentType,
		AssignedAt:     time.Now(),
	})
}

func (s *stubStore) PermissionCodesForUser(_ context.Context, username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStore {
		return nil, ErrStoreUnavailable
	}
	s.permCalls++
	return append([]string(nil), s.perms[username]...), nil
}

func (s *stubStore) Assignments(_ context.Context, userID, documentID string) ([]models.DocumentAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStore {
		return nil, ErrStoreUnavailable
	}
	s.assignmentCalls++
	return append([]models.DocumentAssignment(nil), s.assignments[s.assignmentKey(userID, documentID)]...), nil
}

func (s *stubStore) IsResourcePublic(_ context.Context, resourceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStore {
		return false, ErrStoreUnavailable
	}
	s.visibilityCalls++
	return s.public[resourceID], nil
}

func (s *stubStore) UserIDForUsername(_ context.Context, username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStore {
		return "", ErrStoreUnavailable
	}
	id, ok := s.userIDs[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return id, nil
}

func (s *stubStore) UsernamesForRole(_ context.Context, roleID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStore {
		return nil, ErrStoreUnavailable
	}
	return append([]string(nil), s.roleMembers[roleID]...), nil
}
