// Package kinds holds the declarative registration API and the built-in
// transition kinds.
package kinds

import (
	"fmt"

	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/emit"
	"github.com/reglet-dev/reglet-transitions/registry"
	"github.com/reglet-dev/reglet-transitions/schema"
)

// RegisterGeneric registers a kind usable by every host. fields are the
// kind-specific fields; "name" is injected with defaultName as default.
// checks run after the field schema, in order.
func RegisterGeneric(
	r registry.KindRegistry,
	name string,
	emitterType emit.EmitterType,
	defaultName string,
	fields schema.Fields,
	fn emit.Func,
	checks ...schema.Check,
) (*registry.Kind, error) {
	return register(r, "", name, emitterType, defaultName, fields, fn, checks)
}

// RegisterCapabilityBound registers a kind only hosts declaring token may
// use.
func RegisterCapabilityBound(
	r registry.KindRegistry,
	token capability.Token,
	name string,
	emitterType emit.EmitterType,
	defaultName string,
	fields schema.Fields,
	fn emit.Func,
	checks ...schema.Check,
) (*registry.Kind, error) {
	if token == "" {
		return nil, fmt.Errorf("capability-bound transition %q needs a capability", name)
	}
	return register(r, token, name, emitterType, defaultName, fields, fn, checks)
}

func register(
	r registry.KindRegistry,
	token capability.Token,
	name string,
	emitterType emit.EmitterType,
	defaultName string,
	fields schema.Fields,
	fn emit.Func,
	checks []schema.Check,
) (*registry.Kind, error) {
	if fn == nil {
		return nil, fmt.Errorf("transition %q has no emit function", name)
	}
	validator, err := schema.Compile(name, defaultName, fields, checks...)
	if err != nil {
		return nil, err
	}
	return r.Register(registry.Kind{
		Name:        name,
		EmitterType: emitterType,
		Validator:   validator,
		Capability:  token,
		Emit:        fn,
	})
}
