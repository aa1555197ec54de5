package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition describes a permission code registered by modules.
type Definition struct {
	Code        string
	Module      string
	Description string
}

type codeRegistry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

var globalRegistry = &codeRegistry{
	definitions: make(map[string]*Definition),
}

var (
	errNilDefinition = errors.New("permission: nil definition")
	errEmptyCode     = errors.New("permission: code is required")
	errDuplicateCode = errors.New("permission: already registered")
)

// Register adds a permission definition to the global registry.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	code := strings.TrimSpace(def.Code)
	if code == "" {
		return errEmptyCode
	}

	cp := *def
	cp.Code = code
	cp.Module = strings.TrimSpace(cp.Module)

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.definitions[code]; exists {
		return fmt.Errorf("%w: %s", errDuplicateCode, code)
	}

	globalRegistry.definitions[code] = &cp
	return nil
}

// Get returns a copy of the definition when registered.
func Get(code string) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.definitions[code]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// GetAll returns a copy of all registered definitions keyed by code.
func GetAll() map[string]*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Definition, len(globalRegistry.definitions))
	for code, def := range globalRegistry.definitions {
		cp := *def
		out[code] = &cp
	}
	return out
}

// GetByModule gathers definitions registered under the specified module.
func GetByModule(module string) []*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	module = strings.TrimSpace(module)
	var defs []*Definition
	for _, def := range globalRegistry.definitions {
		if def.Module == module {
			cp := *def
			defs = append(defs, &cp)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// Codes returns the sorted list of registered permission codes.
func Codes() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	codes := make([]string, 0, len(globalRegistry.definitions))
	for code := range globalRegistry.definitions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
