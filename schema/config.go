package schema

import (
	"fmt"
	"maps"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Expr is transformation source text. It is opaque here and forwarded
// verbatim to the expression compiler.
type Expr string

// Config is a validated transition configuration: defaults substituted and
// values coerced to their Go types (string, Expr, time.Duration, bool,
// int64, float64).
type Config map[string]any

// Name returns the resolved transition name.
func (c Config) Name() string {
	s, _ := c[NameField].(string)
	return s
}

// String returns a string field.
func (c Config) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Expression returns an expression field.
func (c Config) Expression(key string) (Expr, bool) {
	e, ok := c[key].(Expr)
	return e, ok
}

// Duration returns a duration field.
func (c Config) Duration(key string) (time.Duration, bool) {
	d, ok := c[key].(time.Duration)
	return d, ok
}

// Clone returns a shallow copy.
func (c Config) Clone() Config {
	return maps.Clone(c)
}

// Raw converts c back to the raw form a parser would produce, so that it can
// be re-serialized and validated again.
func (c Config) Raw() map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		switch tv := v.(type) {
		case Expr:
			out[k] = string(tv)
		case time.Duration:
			out[k] = FormatDuration(tv)
		default:
			out[k] = v
		}
	}
	return out
}

// Decode maps c onto a typed struct using `mapstructure` tags.
func (c Config) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(c)); err != nil {
		return fmt.Errorf("failed to decode %q config: %w", c.Name(), err)
	}
	return nil
}
