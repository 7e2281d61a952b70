package transitions

import (
	"fmt"

	"github.com/reglet-dev/reglet-transitions/capability"
)

// DenialHandler is called when a host lacks a capability a transition needs.
// It allows custom logging or auditing.
type DenialHandler func(hostName string, token capability.Token)

// CapabilityChecker resolves host type names to capability predicates.
type CapabilityChecker struct {
	hosts         *capability.Registry
	denialHandler DenialHandler
}

// CapabilityCheckerOption configures a CapabilityChecker.
type CapabilityCheckerOption func(*CapabilityChecker)

// WithCapabilityDenialHandler sets the handler for denied capabilities.
func WithCapabilityDenialHandler(handler DenialHandler) CapabilityCheckerOption {
	return func(c *CapabilityChecker) {
		c.denialHandler = handler
	}
}

// NewCapabilityChecker creates a checker over the given host types.
func NewCapabilityChecker(hosts *capability.Registry, opts ...CapabilityCheckerOption) *CapabilityChecker {
	c := &CapabilityChecker{hosts: hosts}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForHost returns the predicate of a named host type. An empty name means
// no host type is known, which denies every capability.
func (c *CapabilityChecker) ForHost(name string) (capability.Checker, error) {
	if name == "" {
		return c.wrap("", nil), nil
	}
	host, ok := c.hosts.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown host type %q (known: %v)", name, c.hosts.Names())
	}
	return c.wrap(name, host.Checker()), nil
}

// ForHostType returns the predicate of host.
func (c *CapabilityChecker) ForHostType(host *capability.HostType) capability.Checker {
	if host == nil {
		return c.wrap("", nil)
	}
	return c.wrap(host.Name, host.Checker())
}

func (c *CapabilityChecker) wrap(hostName string, has capability.Checker) capability.Checker {
	if c.denialHandler == nil {
		return has
	}
	return func(t capability.Token) bool {
		if has.Has(t) {
			return true
		}
		c.denialHandler(hostName, t)
		return false
	}
}
