package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	invschema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Check is an extra validator run after the field schema. It may transform
// the config; returning an error rejects it.
type Check func(Config) (Config, error)

// All composes checks left to right. The first error stops the chain.
func All(checks ...Check) Check {
	return func(c Config) (Config, error) {
		var err error
		for _, check := range checks {
			if check == nil {
				continue
			}
			if c, err = check(c); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
}

// Validator validates the field mapping of one transition kind.
type Validator struct {
	compiled *jsonschema.Schema
	check    Check
	kind     string
	document string
	fields   Fields
}

// Compile builds the validator for kind. An empty defaultName makes "name"
// required; otherwise it is optional with that default.
func Compile(kind, defaultName string, fields Fields, checks ...Check) (*Validator, error) {
	all, err := fields.withName(defaultName)
	if err != nil {
		return nil, fmt.Errorf("invalid schema for %q: %w", kind, err)
	}

	doc, err := json.MarshalIndent(document(kind, all), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for %q: %w", kind, err)
	}

	url := "transition://" + kind + ".json"
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("failed to add schema for %q: %w", kind, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %q: %w", kind, err)
	}

	v := &Validator{
		compiled: compiled,
		check:    All(checks...),
		kind:     kind,
		document: string(doc),
		fields:   all,
	}

	// Defaults must survive their own coercion.
	for _, f := range all {
		if f.Default == nil {
			continue
		}
		if _, err := coerce(f, f.Default); err != nil {
			return nil, fmt.Errorf("invalid default for %s.%s: %w", kind, f.Name, err)
		}
	}
	return v, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(kind, defaultName string, fields Fields, checks ...Check) *Validator {
	v, err := Compile(kind, defaultName, fields, checks...)
	if err != nil {
		panic(err)
	}
	return v
}

// Document returns the JSON Schema text of the field mapping.
func (v *Validator) Document() string {
	return v.document
}

// Fields returns the declared fields, name first.
func (v *Validator) Fields() Fields {
	return slices.Clone(v.fields)
}

// Validate checks raw and returns the coerced config. The first failure is
// returned as a *Violation.
func (v *Validator) Validate(raw map[string]any) (Config, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	if err := v.checkKeys(raw); err != nil {
		return nil, err
	}

	for _, k := range sortedKeys(raw) {
		if !finite(raw[k]) {
			return nil, Invalid(k, "must be a finite number")
		}
	}

	normalized, err := normalize(raw)
	if err != nil {
		return nil, &Violation{Message: err.Error(), Err: err}
	}
	if err := v.compiled.Validate(normalized); err != nil {
		return nil, fromSchemaError(err)
	}

	out := make(Config, len(v.fields))
	for _, f := range v.fields {
		value, ok := raw[f.Name]
		if !ok {
			if f.Default == nil {
				continue
			}
			value = f.Default
		}
		coerced, err := coerce(f, value)
		if err != nil {
			return nil, &Violation{Path: f.Name, Message: err.Error(), Err: err}
		}
		out[f.Name] = coerced
	}

	out, err = v.check(out)
	if err != nil {
		return nil, asViolation(err)
	}
	return out, nil
}

// checkKeys reports missing required and unknown keys with their paths.
func (v *Validator) checkKeys(raw map[string]any) error {
	for _, f := range v.fields {
		if _, ok := raw[f.Name]; f.Required && !ok {
			return Invalid(f.Name, "required key not provided")
		}
	}

	var unknown []string
	for k := range raw {
		if !slices.ContainsFunc(v.fields, func(f Field) bool { return f.Name == k }) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return Invalid(unknown[0], "[%s] is an invalid option for [%s]", unknown[0], v.kind)
	}
	return nil
}

func document(kind string, fields Fields) *invschema.Schema {
	props := invschema.NewProperties()
	var required []string
	for _, f := range fields {
		props.Set(f.Name, fieldSchema(f))
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return &invschema.Schema{
		Version:              invschema.Version,
		Title:                kind,
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: invschema.FalseSchema,
	}
}

func fieldSchema(f Field) *invschema.Schema {
	s := &invschema.Schema{Description: f.Description, Default: f.Default}
	switch f.Type {
	case String:
		s.Type = "string"
		if f.Name == NameField {
			s.Pattern = `\S`
		}
	case Expression:
		s.Type = "string"
	case Duration:
		// numbers pass here so coercion can suggest a unit
		s.AnyOf = []*invschema.Schema{{Type: "string"}, {Type: "number"}}
	case Bool:
		s.Type = "boolean"
	case Int:
		s.Type = "integer"
	case Float:
		s.Type = "number"
	}
	return s
}

// finite reports whether v holds no NaN or infinite float at any depth.
func finite(v any) bool {
	switch tv := v.(type) {
	case float64:
		return !math.IsNaN(tv) && !math.IsInf(tv, 0)
	case float32:
		return finite(float64(tv))
	case map[string]any:
		for _, e := range tv {
			if !finite(e) {
				return false
			}
		}
	case []any:
		for _, e := range tv {
			if !finite(e) {
				return false
			}
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// normalize re-encodes raw into the value model the schema validator expects
// (map[string]any, []any, json.Number, string, bool, nil).
func normalize(raw map[string]any) (any, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("configuration is not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromSchemaError reduces a validation error tree to its first leaf.
func fromSchemaError(err error) *Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Violation{Message: err.Error(), Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	path := strings.ReplaceAll(strings.TrimPrefix(leaf.InstanceLocation, "/"), "/", ".")
	return &Violation{Path: path, Message: leaf.Message, Err: err}
}
