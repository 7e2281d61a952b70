// Package validation validates ordered transition lists against a kind
// registry.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/agnivade/levenshtein"
	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/emit"
	"github.com/reglet-dev/reglet-transitions/parser"
	"github.com/reglet-dev/reglet-transitions/registry"
	"github.com/reglet-dev/reglet-transitions/schema"
)

var _ ListValidator = (*TransitionListValidator)(nil)

// Accepted is one validated entry.
type Accepted struct {
	Kind   *registry.Kind
	Config schema.Config

	// Index is the entry's position in the input list.
	Index int
}

// ValidatedList holds every entry of a list that passed validation, in
// input order.
type ValidatedList struct {
	Entries []Accepted
}

// Len returns the number of accepted entries.
func (l *ValidatedList) Len() int {
	return len(l.Entries)
}

// Names returns the resolved transition names in order.
func (l *ValidatedList) Names() []string {
	names := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		names[i] = e.Config.Name()
	}
	return names
}

// Raw converts the list back to raw form. Validating the result again
// yields an identical list.
func (l *ValidatedList) Raw() parser.RawList {
	out := make(parser.RawList, len(l.Entries))
	for i, e := range l.Entries {
		out[i] = parser.Entry(e.Kind.Name, e.Config.Raw())
	}
	return out
}

// Jobs returns one emission job per accepted entry.
func (l *ValidatedList) Jobs() []emit.Job {
	jobs := make([]emit.Job, len(l.Entries))
	for i, e := range l.Entries {
		jobs[i] = emit.Job{
			Index:       e.Index,
			Kind:        e.Kind.Name,
			EmitterType: e.Kind.EmitterType,
			Config:      e.Config,
			Emit:        e.Kind.Emit,
		}
	}
	return jobs
}

// TransitionListValidator implements ListValidator.
type TransitionListValidator struct {
	registry    registry.KindRegistry
	logger      *slog.Logger
	maxDistance int
}

// Option configures a TransitionListValidator.
type Option func(*TransitionListValidator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *TransitionListValidator) { v.logger = l }
}

// WithSuggestionDistance sets the maximum edit distance for "did you mean"
// suggestions on unknown kinds. Zero disables suggestions.
func WithSuggestionDistance(d int) Option {
	return func(v *TransitionListValidator) { v.maxDistance = d }
}

// NewListValidator creates a validator reading kinds from r. The registry
// must not change while validations run.
func NewListValidator(r registry.KindRegistry, opts ...Option) *TransitionListValidator {
	v := &TransitionListValidator{
		registry:    r,
		logger:      slog.Default(),
		maxDistance: 3,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every entry of raw. It never stops at the first defect:
// all rejected entries are reported together in an *AggregateError and no
// partial list is returned. has decides whether the host declares a
// capability; a nil has declares none.
func (v *TransitionListValidator) Validate(raw parser.RawList, has capability.Checker) (*ValidatedList, error) {
	var (
		accepted []Accepted
		errs     []*EntryError
		names    = make(map[string]struct{}, len(raw))
	)

	for i, item := range raw {
		kindName, fields, err := splitEntry(item)
		if err != nil {
			errs = append(errs, &EntryError{Index: i, Err: err})
			continue
		}

		kind, ok := v.registry.Lookup(kindName)
		if !ok {
			errs = append(errs, &EntryError{Index: i, Kind: kindName, Err: v.unknownKind(kindName)})
			continue
		}

		// Restricted kinds are rejected before their fields are looked at.
		if kind.Restricted() && !has.Has(kind.Capability) {
			errs = append(errs, &EntryError{
				Index: i,
				Kind:  kindName,
				Err:   &CapabilityDeniedError{Kind: kindName, Capability: kind.Capability},
			})
			continue
		}

		cfg, err := kind.Validator.Validate(fields)
		if err != nil {
			entryErr := &EntryError{Index: i, Kind: kindName, Err: err}
			var violation *schema.Violation
			if errors.As(err, &violation) {
				entryErr.Field = violation.Path
			}
			errs = append(errs, entryErr)
			continue
		}

		name := cfg.Name()
		if _, dup := names[name]; dup {
			errs = append(errs, &EntryError{Index: i, Kind: kindName, Field: schema.NameField, Err: &DuplicateNameError{Name: name}})
			continue
		}
		names[name] = struct{}{}

		accepted = append(accepted, Accepted{Index: i, Kind: kind, Config: cfg})
	}

	if len(errs) > 0 {
		v.logger.Debug("transition list rejected", "entries", len(raw), "errors", len(errs))
		return nil, &AggregateError{Errors: errs}
	}

	v.logger.Debug("transition list validated", "entries", len(accepted))
	return &ValidatedList{Entries: accepted}, nil
}

// splitEntry extracts the single kind key of a raw entry. A bare string is
// a kind with no fields and a null field mapping is an empty one.
func splitEntry(item any) (string, map[string]any, error) {
	switch e := item.(type) {
	case string:
		if e == "" {
			return "", nil, fmt.Errorf("%w: empty transition kind", ErrMalformedEntry)
		}
		return e, map[string]any{}, nil
	case map[string]any:
		if len(e) != 1 {
			keys := make([]string, 0, len(e))
			for k := range e {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			return "", nil, fmt.Errorf("%w: expected exactly one transition kind per entry, got %d %v", ErrMalformedEntry, len(e), keys)
		}
		for kind, value := range e {
			switch fields := value.(type) {
			case nil:
				return kind, map[string]any{}, nil
			case map[string]any:
				return kind, fields, nil
			default:
				return "", nil, fmt.Errorf("%w: transition '%s' expects a mapping, got %T", ErrMalformedEntry, kind, value)
			}
		}
	}
	return "", nil, fmt.Errorf("%w: expected a mapping, got %T", ErrMalformedEntry, item)
}

func (v *TransitionListValidator) unknownKind(kind string) error {
	err := &UnknownKindError{Kind: kind}
	if v.maxDistance <= 0 {
		return err
	}

	best := v.maxDistance + 1
	for _, candidate := range v.registry.Names() {
		if d := levenshtein.ComputeDistance(kind, candidate); d < best {
			best = d
			err.Suggestion = candidate
		}
	}
	return err
}
