package validation

import (
	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/parser"
)

// ListValidator validates ordered transition lists.
type ListValidator interface {
	// Validate checks raw against the registered kinds and the host's
	// capabilities. On failure the error is an *AggregateError.
	Validate(raw parser.RawList, has capability.Checker) (*ValidatedList, error)
}
