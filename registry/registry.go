// Package registry implements the transition kind registry.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/emit"
	"github.com/reglet-dev/reglet-transitions/schema"
)

var _ KindRegistry = (*Registry)(nil)

var (
	// ErrRegistrationConflict is returned when a kind name is registered twice.
	ErrRegistrationConflict = errors.New("transition kind already registered")

	// ErrFrozen is returned when registering after Freeze.
	ErrFrozen = errors.New("registry is frozen")
)

// ConflictError names the kind that was registered twice.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transition kind already registered: %s", e.Name)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, registry.ErrRegistrationConflict)
func (e *ConflictError) Is(target error) bool {
	return target == ErrRegistrationConflict
}

// Kind is a registered transition kind. It is immutable once registered.
type Kind struct {
	Validator *schema.Validator

	// Emit is invoked by the emission dispatcher, never by validation.
	Emit emit.Func

	Name        string
	EmitterType emit.EmitterType

	// Capability restricts the kind to hosts declaring it. Empty means the
	// kind is usable everywhere.
	Capability capability.Token
}

// Restricted reports whether the kind requires a host capability.
func (k *Kind) Restricted() bool {
	return k.Capability != ""
}

// Registry implements KindRegistry using in-memory storage.
type Registry struct {
	kinds        map[string]*Kind
	capabilities map[string]capability.Token
	logger       *slog.Logger
	mu           sync.RWMutex
	overwrite    bool
	frozen       bool
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithOverwrite lets a later registration replace an existing kind instead
// of failing with ErrRegistrationConflict.
func WithOverwrite(allow bool) RegistryOption {
	return func(r *Registry) {
		r.overwrite = allow
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// New creates a new, empty transition registry.
func New(opts ...RegistryOption) *Registry {
	r := &Registry{
		kinds:        make(map[string]*Kind),
		capabilities: make(map[string]capability.Token),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a transition kind and returns the stored copy.
func (r *Registry) Register(kind Kind) (*Kind, error) {
	if kind.Name == "" {
		return nil, fmt.Errorf("transition kind name cannot be empty")
	}
	if kind.Validator == nil {
		return nil, fmt.Errorf("transition kind %q has no validator", kind.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, fmt.Errorf("cannot register %q: %w", kind.Name, ErrFrozen)
	}
	if _, exists := r.kinds[kind.Name]; exists && !r.overwrite {
		return nil, &ConflictError{Name: kind.Name}
	}

	k := &kind
	r.kinds[k.Name] = k
	delete(r.capabilities, k.Name)
	if k.Restricted() {
		r.capabilities[k.Name] = k.Capability
	}

	r.logger.Debug("registered transition kind",
		"kind", k.Name, "emitter_type", k.EmitterType, "capability", k.Capability)
	return k, nil
}

// MustRegister is like Register but panics on error. Use it for
// registrations that run during program start.
func (r *Registry) MustRegister(kind Kind) *Kind {
	k, err := r.Register(kind)
	if err != nil {
		panic(err)
	}
	return k
}

// Freeze rejects further registrations. Call it once startup registration
// is complete.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup retrieves a kind by name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Capability returns the capability required by a kind.
func (r *Registry) Capability(name string) (capability.Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.capabilities[name]
	return t, ok
}

// Schema retrieves the JSON Schema of a kind.
func (r *Registry) Schema(name string) (string, bool) {
	k, ok := r.Lookup(name)
	if !ok {
		return "", false
	}
	return k.Validator.Document(), true
}

// Names returns all registered kind names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
