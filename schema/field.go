// Package schema compiles declarative per-kind field descriptions into
// validators for raw transition configuration.
//
// A kind declares its fields once; Compile injects the common "name" field,
// renders a JSON Schema document and compiles it. The resulting Validator
// checks presence, types, coercions and any extra Checks, in that order,
// and reports the first failure as a *Violation.
package schema

import "fmt"

// NameField is the key every transition configuration carries.
const NameField = "name"

// FieldType selects the JSON type and the coercion applied to a field.
type FieldType int

const (
	// String is a plain string value.
	String FieldType = iota
	// Expression is opaque source text forwarded verbatim to the expression compiler.
	Expression
	// Duration is a time period with a unit, e.g. "16ms", "1s" or "never".
	Duration
	// Bool is a boolean value.
	Bool
	// Int is an integral number.
	Int
	// Float is any number.
	Float
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Expression:
		return "expression"
	case Duration:
		return "duration"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// Field describes one configuration key of a transition kind.
type Field struct {
	// Default is the raw value substituted when an optional field is omitted.
	// It goes through the same coercion as user input.
	Default any

	// Name is the configuration key.
	Name string

	// Description is rendered into the schema document.
	Description string

	Type FieldType

	// Required fields have no default and must be present.
	Required bool
}

// Fields is an ordered field list; declaration order is schema order.
type Fields []Field

// Required declares a mandatory field.
func Required(name string, t FieldType) Field {
	return Field{Name: name, Type: t, Required: true}
}

// Optional declares a field substituted by def when omitted. A nil def leaves
// the field absent from the validated config.
func Optional(name string, t FieldType, def any) Field {
	return Field{Name: name, Type: t, Default: def}
}

// Describe returns a copy of f with a description attached.
func (f Field) Describe(desc string) Field {
	f.Description = desc
	return f
}

// withName returns fs prefixed by the injected name field. A non-empty
// defaultName makes the name optional.
func (fs Fields) withName(defaultName string) (Fields, error) {
	nameField := Required(NameField, String).Describe("Unique name of this transition.")
	if defaultName != "" {
		nameField = Optional(NameField, String, defaultName).Describe("Unique name of this transition.")
	}

	out := make(Fields, 0, len(fs)+1)
	out = append(out, nameField)
	seen := map[string]bool{NameField: true}
	for _, f := range fs {
		if f.Name == "" {
			return nil, fmt.Errorf("field name cannot be empty")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("field %q declared twice", f.Name)
		}
		if f.Required && f.Default != nil {
			return nil, fmt.Errorf("required field %q cannot have a default", f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out, nil
}
