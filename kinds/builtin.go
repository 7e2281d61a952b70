package kinds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/emit"
	"github.com/reglet-dev/reglet-transitions/registry"
	"github.com/reglet-dev/reglet-transitions/schema"
)

// Built-in kind names.
const (
	Fade              = "fade"
	Lambda            = "lambda"
	AddressableFade   = "addressable_fade"
	AddressableLambda = "addressable_lambda"
)

// Emitter types of the built-in kinds.
const (
	FadeTransition              emit.EmitterType = "light::FadeTransition"
	LambdaTransition            emit.EmitterType = "light::LambdaTransition"
	AddressableFadeTransition   emit.EmitterType = "light::AddressableFadeTransition"
	AddressableLambdaTransition emit.EmitterType = "light::AddressableLambdaTransition"
)

// Field keys of the lambda kinds.
const (
	LambdaField         = "lambda"
	UpdateIntervalField = "update_interval"
)

// LambdaReturnType is the declared return type of transition lambdas.
const LambdaReturnType = "optional<light::LightColorValues>"

var (
	// LambdaParams is the signature of plain lambda transitions.
	LambdaParams = []emit.Param{
		{Type: "const light::LightColorValues &", Name: "start"},
		{Type: "const light::LightColorValues &", Name: "target"},
		{Type: "float", Name: "x"},
	}

	// AddressableLambdaParams additionally receives the output.
	AddressableLambdaParams = append([]emit.Param{
		{Type: "light::AddressableLight &", Name: "output"},
	}, LambdaParams...)
)

// FadeConfig is the typed config of fade and addressable_fade.
type FadeConfig struct {
	Name string `mapstructure:"name"`
}

// LambdaConfig is the typed config of lambda and addressable_lambda.
type LambdaConfig struct {
	Name           string        `mapstructure:"name"`
	Lambda         schema.Expr   `mapstructure:"lambda"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
}

func lambdaFields() schema.Fields {
	return schema.Fields{
		schema.Required(LambdaField, schema.Expression).
			Describe("Body computing the intermediate values from start, target and progress x."),
		schema.Optional(UpdateIntervalField, schema.Duration, "0ms").
			Describe("Minimum time between two evaluations of the lambda."),
	}
}

// nonBlankExpression rejects expressions without any code.
func nonBlankExpression(field string) schema.Check {
	return func(c schema.Config) (schema.Config, error) {
		if expr, ok := c.Expression(field); ok && strings.TrimSpace(string(expr)) == "" {
			return nil, schema.Invalid(field, "expression cannot be empty")
		}
		return c, nil
	}
}

// RegisterBuiltins registers fade, lambda, addressable_fade and
// addressable_lambda.
func RegisterBuiltins(r registry.KindRegistry) error {
	if _, err := RegisterGeneric(r, Fade, FadeTransition, "Fade", nil, emitFade); err != nil {
		return err
	}
	if _, err := RegisterGeneric(r, Lambda, LambdaTransition, "Lambda", lambdaFields(),
		emitLambda(LambdaParams), nonBlankExpression(LambdaField)); err != nil {
		return err
	}
	if _, err := RegisterCapabilityBound(r, capability.AddressableOutput, AddressableFade,
		AddressableFadeTransition, "Fade", nil, emitFade); err != nil {
		return err
	}
	if _, err := RegisterCapabilityBound(r, capability.AddressableOutput, AddressableLambda,
		AddressableLambdaTransition, "Lambda", lambdaFields(),
		emitLambda(AddressableLambdaParams), nonBlankExpression(LambdaField)); err != nil {
		return err
	}
	return nil
}

func emitFade(ctx context.Context, b emit.Backend, cfg schema.Config, id emit.ID) (emit.Handle, error) {
	var c FadeConfig
	if err := cfg.Decode(&c); err != nil {
		return nil, err
	}
	return b.NewObject(ctx, id, c.Name)
}

func emitLambda(params []emit.Param) emit.Func {
	return func(ctx context.Context, b emit.Backend, cfg schema.Config, id emit.ID) (emit.Handle, error) {
		var c LambdaConfig
		if err := cfg.Decode(&c); err != nil {
			return nil, err
		}
		fn, err := b.CompileExpression(ctx, c.Lambda, params, LambdaReturnType)
		if err != nil {
			return nil, fmt.Errorf("failed to compile lambda of %q: %w", c.Name, err)
		}
		return b.NewObject(ctx, id, c.Name, c.UpdateInterval, fn)
	}
}
