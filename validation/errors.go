package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/schema"
)

// Sentinel errors for the list-level error taxonomy.
// Every EntryError matches exactly one of them via errors.Is().
var (
	// ErrUnknownKind is returned for entries naming an unregistered kind.
	ErrUnknownKind = errors.New("unknown transition kind")

	// ErrCapabilityDenied is returned when a restricted kind is used by a
	// host that does not declare the required capability.
	ErrCapabilityDenied = errors.New("transition not allowed for this host")

	// ErrDuplicateName is returned when two entries resolve to the same name.
	ErrDuplicateName = errors.New("duplicate transition name")

	// ErrMalformedEntry is returned for entries that are not a single-key
	// mapping of kind name to field mapping.
	ErrMalformedEntry = errors.New("malformed transition entry")

	// ErrSchemaViolation aliases schema.ErrSchemaViolation.
	ErrSchemaViolation = schema.ErrSchemaViolation
)

// UnknownKindError names the unknown kind and the closest registered one.
type UnknownKindError struct {
	Kind       string
	Suggestion string
}

func (e *UnknownKindError) Error() string {
	msg := fmt.Sprintf("unknown transition kind '%s'", e.Kind)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, validation.ErrUnknownKind)
func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// CapabilityDeniedError names the restricted kind and the capability the
// host lacks.
type CapabilityDeniedError struct {
	Kind       string
	Capability capability.Token
}

func (e *CapabilityDeniedError) Error() string {
	return fmt.Sprintf("the transition '%s' is not allowed for this host (requires %s)", e.Kind, e.Capability)
}

// Is implements error matching for errors.Is() checks.
func (e *CapabilityDeniedError) Is(target error) bool {
	return target == ErrCapabilityDenied
}

// DuplicateNameError names the transition name found twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("found the transition name '%s' twice. All transitions must have unique names", e.Name)
}

// Is implements error matching for errors.Is() checks.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// EntryError is one rejected list entry.
type EntryError struct {
	Err error

	// Kind is the entry's kind name, empty for malformed entries.
	Kind string

	// Field is the offending field path for schema violations.
	Field string

	Index int
}

func (e *EntryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transitions[%d]", e.Index)
	if e.Kind != "" {
		b.WriteString("." + e.Kind)
	}
	if e.Field != "" {
		b.WriteString("." + e.Field)
	}

	msg := e.Err.Error()
	var v *schema.Violation
	if errors.As(e.Err, &v) {
		msg = v.Message
	}
	return b.String() + ": " + msg
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// AggregateError carries every rejected entry of one list, in index order.
type AggregateError struct {
	Errors []*EntryError
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	lines := make([]string, 0, len(e.Errors)+1)
	lines = append(lines, fmt.Sprintf("%d invalid transitions:", len(e.Errors)))
	for _, err := range e.Errors {
		lines = append(lines, "  - "+err.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes every entry error to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// Count returns how many entry errors match target.
func (e *AggregateError) Count(target error) int {
	n := 0
	for _, err := range e.Errors {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}
