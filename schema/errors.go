package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaViolation matches every *Violation via errors.Is.
var ErrSchemaViolation = errors.New("schema violation")

// Violation is a field-level failure inside one transition configuration.
type Violation struct {
	// Err is the underlying cause, if any (e.g. an error returned by a Check).
	Err error

	// Path locates the offending value, e.g. "update_interval". Empty means
	// the configuration as a whole.
	Path string

	Message string
}

func (v *Violation) Error() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, schema.ErrSchemaViolation)
func (v *Violation) Is(target error) bool {
	return target == ErrSchemaViolation
}

func (v *Violation) Unwrap() error {
	return v.Err
}

// Invalid builds a Violation at path. Checks use it to report precise paths.
func Invalid(path, format string, args ...any) *Violation {
	return &Violation{Path: path, Message: fmt.Sprintf(format, args...)}
}

// asViolation keeps an existing Violation or wraps err into one.
func asViolation(err error) *Violation {
	var v *Violation
	if errors.As(err, &v) {
		return v
	}
	return &Violation{Message: err.Error(), Err: err}
}
