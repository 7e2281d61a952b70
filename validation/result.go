package validation

import (
	"errors"

	"github.com/reglet-dev/reglet-transitions/schema"
)

// Error codes reported in a ValidationResult.
const (
	CodeMalformedEntry   = "malformed_entry"
	CodeUnknownKind      = "unknown_kind"
	CodeCapabilityDenied = "capability_denied"
	CodeSchemaViolation  = "schema_violation"
	CodeDuplicateName    = "duplicate_name"
	CodeInternal         = "internal"
)

// ValidationResult is a serializable report of one list validation.
type ValidationResult struct {
	Names  []string      `json:"names,omitempty"`
	Errors []ResultError `json:"errors,omitempty"`
	Valid  bool          `json:"valid"`
}

// ResultError describes one rejected entry.
type ResultError struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// NewValidationResult summarizes the outcome of Validate.
func NewValidationResult(list *ValidatedList, err error) *ValidationResult {
	if err == nil {
		res := &ValidationResult{Valid: true}
		if list != nil {
			res.Names = list.Names()
		}
		return res
	}

	res := &ValidationResult{}
	var agg *AggregateError
	if !errors.As(err, &agg) {
		res.Errors = []ResultError{{Code: CodeInternal, Message: err.Error(), Index: -1}}
		return res
	}

	for _, e := range agg.Errors {
		msg := e.Err.Error()
		var v *schema.Violation
		if errors.As(e.Err, &v) {
			msg = v.Message
		}
		res.Errors = append(res.Errors, ResultError{
			Code:    codeOf(e),
			Kind:    e.Kind,
			Field:   e.Field,
			Message: msg,
			Index:   e.Index,
		})
	}
	return res
}

func codeOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformedEntry):
		return CodeMalformedEntry
	case errors.Is(err, ErrUnknownKind):
		return CodeUnknownKind
	case errors.Is(err, ErrCapabilityDenied):
		return CodeCapabilityDenied
	case errors.Is(err, ErrSchemaViolation):
		return CodeSchemaViolation
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	default:
		return CodeInternal
	}
}
