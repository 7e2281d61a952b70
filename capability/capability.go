// Package capability models what a host output can do. Hosts declare an
// explicit capability set; restricted transition kinds query it through a
// Checker predicate instead of inspecting a type hierarchy.
package capability

import (
	"slices"
	"sync"
)

// Token names a capability, e.g. AddressableOutput.
type Token string

// AddressableOutput is declared by outputs whose pixels can be set individually.
const AddressableOutput Token = "addressable_output"

// Checker reports whether the host declares a capability.
type Checker func(Token) bool

// Has calls c. A nil Checker declares nothing.
func (c Checker) Has(t Token) bool {
	return c != nil && c(t)
}

// Allow returns a Checker declaring exactly tokens.
func Allow(tokens ...Token) Checker {
	return NewSet(tokens...).Has
}

// Set is an immutable set of capability tokens.
type Set struct {
	tokens map[Token]struct{}
}

// NewSet creates a set from tokens.
func NewSet(tokens ...Token) Set {
	s := Set{tokens: make(map[Token]struct{}, len(tokens))}
	for _, t := range tokens {
		s.tokens[t] = struct{}{}
	}
	return s
}

// Has reports whether t is in the set.
func (s Set) Has(t Token) bool {
	_, ok := s.tokens[t]
	return ok
}

// Union returns a new set with the tokens of s and other.
func (s Set) Union(other Set) Set {
	out := NewSet(s.Tokens()...)
	for t := range other.tokens {
		out.tokens[t] = struct{}{}
	}
	return out
}

// Tokens returns the tokens in sorted order.
func (s Set) Tokens() []Token {
	out := make([]Token, 0, len(s.tokens))
	for t := range s.tokens {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of tokens.
func (s Set) Len() int {
	return len(s.tokens)
}

// HostType is a named host output type with the capabilities it declares.
type HostType struct {
	caps Set
	Name string
}

// NewHostType creates a host type declaring tokens plus everything its
// bases declare.
func NewHostType(name string, tokens []Token, bases ...*HostType) *HostType {
	caps := NewSet(tokens...)
	for _, b := range bases {
		if b != nil {
			caps = caps.Union(b.caps)
		}
	}
	return &HostType{Name: name, caps: caps}
}

// Has reports whether the host type declares t.
func (h *HostType) Has(t Token) bool {
	return h != nil && h.caps.Has(t)
}

// Capabilities returns the declared set.
func (h *HostType) Capabilities() Set {
	return h.caps
}

// Checker returns the predicate used by the list validator. A nil host
// type yields a Checker that declares nothing.
func (h *HostType) Checker() Checker {
	if h == nil {
		return nil
	}
	return h.Has
}

// Registry maps host type names to host types.
type Registry struct {
	hosts map[string]*HostType
	mu    sync.RWMutex
}

// NewRegistry creates a new, empty host type registry.
func NewRegistry() *Registry {
	return &Registry{
		hosts: make(map[string]*HostType),
	}
}

// Register adds host types, replacing any with the same name.
func (r *Registry) Register(hosts ...*HostType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range hosts {
		r.hosts[h.Name] = h
	}
}

// Get retrieves the host type for a given name.
// Returns nil and false if no host type is registered.
func (r *Registry) Get(name string) (*HostType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hosts[name]
	return h, ok
}

// Names returns the registered host type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.hosts))
	for n := range r.hosts {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
