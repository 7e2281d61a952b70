package registry

import "github.com/reglet-dev/reglet-transitions/capability"

// KindRegistry manages transition kinds and their compiled validators.
type KindRegistry interface {
	// Register adds a transition kind. Registering a name twice is a
	// conflict unless the registry allows overwrites.
	Register(kind Kind) (*Kind, error)

	// Lookup returns the kind registered under name.
	Lookup(name string) (*Kind, bool)

	// Capability returns the capability a kind requires, if any.
	Capability(name string) (capability.Token, bool)

	// Schema returns the JSON schema document of a kind.
	Schema(name string) (string, bool)

	// Names returns all registered kind names, sorted.
	Names() []string
}
