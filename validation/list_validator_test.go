package validation_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/reglet-dev/reglet-transitions/capability"
	"github.com/reglet-dev/reglet-transitions/kinds"
	"github.com/reglet-dev/reglet-transitions/parser"
	"github.com/reglet-dev/reglet-transitions/registry"
	"github.com/reglet-dev/reglet-transitions/schema"
	"github.com/reglet-dev/reglet-transitions/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T, opts ...validation.Option) *validation.TransitionListValidator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := registry.New(registry.WithLogger(logger))
	require.NoError(t, kinds.RegisterBuiltins(r))
	r.Freeze()
	return validation.NewListValidator(r, append([]validation.Option{validation.WithLogger(logger)}, opts...)...)
}

func aggregate(t *testing.T, err error) *validation.AggregateError {
	t.Helper()
	require.Error(t, err)
	var agg *validation.AggregateError
	require.ErrorAs(t, err, &agg)
	return agg
}

func TestValidate_DefaultAndExplicitNames(t *testing.T) {
	v := newValidator(t)

	list, err := v.Validate(parser.RawList{
		parser.Entry("fade", map[string]any{}),
		parser.Entry("fade", map[string]any{"name": "a"}),
	}, nil)
	require.NoError(t, err)

	require.Equal(t, 2, list.Len())
	assert.Equal(t, []string{"Fade", "a"}, list.Names())
	assert.Equal(t, 0, list.Entries[0].Index)
	assert.Equal(t, 1, list.Entries[1].Index)
	assert.Equal(t, kinds.FadeTransition, list.Entries[0].Kind.EmitterType)
}

func TestValidate_DuplicateNameOnly(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate(parser.RawList{
		parser.Entry("fade", map[string]any{"name": "x"}),
		parser.Entry("lambda", map[string]any{"name": "x", "lambda": "return {};"}),
	}, nil)

	agg := aggregate(t, err)
	require.Len(t, agg.Errors, 1)
	assert.Equal(t, 1, agg.Errors[0].Index)
	assert.ErrorIs(t, agg.Errors[0], validation.ErrDuplicateName)
	assert.Equal(t, 0, agg.Count(validation.ErrSchemaViolation))
	assert.ErrorIs(t, err, validation.ErrDuplicateName)

	var dup *validation.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "x", dup.Name)
}

func TestValidate_DuplicateDefaultNames(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate(parser.RawList{
		parser.Entry("fade", nil),
		parser.Entry("addressable_fade", nil),
	}, capability.FastLEDOutput.Checker())

	agg := aggregate(t, err)
	require.Len(t, agg.Errors, 1)
	assert.Equal(t, 1, agg.Errors[0].Index)
	assert.ErrorIs(t, agg.Errors[0], validation.ErrDuplicateName)
}

func TestValidate_CapabilityDeniedSkipsSchema(t *testing.T) {
	v := newValidator(t)
	raw := parser.RawList{
		parser.Entry("fade", nil),
		parser.Entry("addressable_fade", map[string]any{"name": 42, "bogus": true}),
	}

	hosts := map[string]capability.Checker{
		"no host":   nil,
		"rgb":       capability.RGBOutput.Checker(),
		"allow set": capability.Allow("dimmable"),
	}

	for name, has := range hosts {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(raw, has)
			agg := aggregate(t, err)
			require.Len(t, agg.Errors, 1)
			assert.Equal(t, 1, agg.Errors[0].Index)
			assert.ErrorIs(t, agg.Errors[0], validation.ErrCapabilityDenied)
			assert.Equal(t, 0, agg.Count(validation.ErrSchemaViolation))

			var denied *validation.CapabilityDeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, capability.AddressableOutput, denied.Capability)
		})
	}

	t.Run("capable host reaches schema", func(t *testing.T) {
		_, err := v.Validate(raw, capability.AddressableLight.Checker())
		agg := aggregate(t, err)
		require.Len(t, agg.Errors, 1)
		assert.ErrorIs(t, agg.Errors[0], validation.ErrSchemaViolation)
	})
}

func TestValidate_AddressableKindsOnCapableHost(t *testing.T) {
	v := newValidator(t)

	list, err := v.Validate(parser.RawList{
		parser.Entry("addressable_fade", nil),
		parser.Entry("addressable_lambda", map[string]any{"lambda": "return {};", "update_interval": "16ms"}),
	}, capability.PartitionOutput.Checker())
	require.NoError(t, err)

	assert.Equal(t, []string{"Fade", "Lambda"}, list.Names())
	interval, ok := list.Entries[1].Config.Duration(kinds.UpdateIntervalField)
	require.True(t, ok)
	assert.Equal(t, 16*time.Millisecond, interval)
}

func TestValidate_AggregatesIndependentDefects(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate(parser.RawList{
		parser.Entry("fade", nil),
		parser.Entry("wipe", nil),
		parser.Entry("lambda", map[string]any{"name": "L"}),
	}, nil)

	agg := aggregate(t, err)
	require.Len(t, agg.Errors, 2)

	assert.Equal(t, 1, agg.Errors[0].Index)
	assert.ErrorIs(t, agg.Errors[0], validation.ErrUnknownKind)
	assert.Equal(t, 2, agg.Errors[1].Index)
	assert.ErrorIs(t, agg.Errors[1], validation.ErrSchemaViolation)
	assert.Equal(t, "lambda", agg.Errors[1].Field)

	assert.Contains(t, err.Error(), "2 invalid transitions:")
	assert.Contains(t, err.Error(), "transitions[1].wipe: unknown transition kind 'wipe'")
	assert.Contains(t, err.Error(), "transitions[2].lambda.lambda: required key not provided")
}

func TestValidate_RejectedEntriesDoNotClaimNames(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate(parser.RawList{
		parser.Entry("lambda", map[string]any{"name": "x"}),
		parser.Entry("addressable_fade", map[string]any{"name": "x"}),
		parser.Entry("fade", map[string]any{"name": "x"}),
	}, nil)

	agg := aggregate(t, err)
	require.Len(t, agg.Errors, 2)
	assert.ErrorIs(t, agg.Errors[0], validation.ErrSchemaViolation)
	assert.ErrorIs(t, agg.Errors[1], validation.ErrCapabilityDenied)
	assert.Equal(t, 0, agg.Count(validation.ErrDuplicateName))
}

func TestValidate_ReplayIsIdempotent(t *testing.T) {
	v := newValidator(t)
	has := capability.FastLEDOutput.Checker()

	first, err := v.Validate(parser.RawList{
		parser.Entry("fade", nil),
		parser.Entry("lambda", map[string]any{"lambda": "return target;", "update_interval": "1.5s"}),
		parser.Entry("addressable_lambda", map[string]any{"name": "pixels", "lambda": "return {};", "update_interval": "never"}),
		"addressable_fade",
	}, has)
	require.Error(t, err, "addressable_fade defaults to the name Fade")

	first, err = v.Validate(parser.RawList{
		parser.Entry("fade", nil),
		parser.Entry("lambda", map[string]any{"lambda": "return target;", "update_interval": "1.5s"}),
		parser.Entry("addressable_lambda", map[string]any{"name": "pixels", "lambda": "return {};", "update_interval": "never"}),
		parser.Entry("addressable_fade", map[string]any{"name": "soft"}),
	}, has)
	require.NoError(t, err)

	out, err := parser.MarshalYAML(first.Raw())
	require.NoError(t, err)
	raw, err := parser.NewYamlTransitionParser().Parse(out)
	require.NoError(t, err)

	second, err := v.Validate(raw, has)
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := range first.Entries {
		assert.Same(t, first.Entries[i].Kind, second.Entries[i].Kind)
		assert.Equal(t, first.Entries[i].Config, second.Entries[i].Config)
		assert.Equal(t, first.Entries[i].Index, second.Entries[i].Index)
	}
}

func TestValidate_ReplayKeepsNumericLookingNames(t *testing.T) {
	v := newValidator(t)

	first, err := v.Validate(parser.RawList{
		parser.Entry("fade", map[string]any{"name": "1e3"}),
		parser.Entry("fade", map[string]any{"name": ".inf"}),
		parser.Entry("fade", map[string]any{"name": "0x1F"}),
		parser.Entry("fade", map[string]any{"name": "null"}),
		parser.Entry("fade", map[string]any{"name": "yes"}),
		parser.Entry("lambda", map[string]any{"name": "true", "lambda": "1e3"}),
	}, nil)
	require.NoError(t, err)

	out, err := parser.MarshalYAML(first.Raw())
	require.NoError(t, err)
	raw, err := parser.NewYamlTransitionParser().Parse(out)
	require.NoError(t, err)

	second, err := v.Validate(raw, nil)
	require.NoError(t, err, string(out))
	assert.Equal(t, first.Names(), second.Names())
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].Config, second.Entries[i].Config)
	}
}

func TestValidate_MalformedEntries(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate(parser.RawList{
		map[string]any{"fade": map[string]any{}, "lambda": map[string]any{}},
		map[string]any{"fade": "fast"},
		42,
		"",
		map[string]any{},
	}, nil)

	agg := aggregate(t, err)
	require.Len(t, agg.Errors, 5)
	for i, e := range agg.Errors {
		assert.Equal(t, i, e.Index)
		assert.ErrorIs(t, e, validation.ErrMalformedEntry)
	}
	assert.Contains(t, agg.Errors[0].Error(), "[fade lambda]")
}

func TestValidate_ShorthandAndNullConfig(t *testing.T) {
	v := newValidator(t)

	list, err := v.Validate(parser.RawList{"fade", map[string]any{"lambda": nil}}, nil)
	require.Error(t, err, "lambda without a body is a schema violation")

	list, err = v.Validate(parser.RawList{"fade", map[string]any{"addressable_fade": nil}}, capability.Allow(capability.AddressableOutput))
	require.Error(t, err, "both default to Fade")
	assert.Nil(t, list)

	list, err = v.Validate(parser.RawList{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
}

func TestValidate_UnknownKindSuggestion(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"fdae", "fade"},
		{"lamda", "lambda"},
		{"adressable_fade", "addressable_fade"},
		{"sparkle_storm", ""},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			_, err := v.Validate(parser.RawList{parser.Entry(tt.kind, nil)}, nil)
			var unknown *validation.UnknownKindError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, tt.want, unknown.Suggestion)
		})
	}

	_, err := newValidator(t, validation.WithSuggestionDistance(0)).Validate(parser.RawList{"fdae"}, nil)
	var unknown *validation.UnknownKindError
	require.ErrorAs(t, err, &unknown)
	assert.Empty(t, unknown.Suggestion)
	assert.Equal(t, "unknown transition kind 'fdae'", unknown.Error())
}

func TestValidate_SchemaViolationKeepsFieldPath(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate(parser.RawList{
		parser.Entry("lambda", map[string]any{"lambda": "x", "update_interval": json.Number("16")}),
	}, nil)

	agg := aggregate(t, err)
	require.Len(t, agg.Errors, 1)
	assert.Equal(t, "update_interval", agg.Errors[0].Field)

	var violation *schema.Violation
	require.True(t, errors.As(agg.Errors[0], &violation))
	assert.Contains(t, violation.Message, "Did you mean '16s'?")
	assert.Equal(t, "transitions[0].lambda.update_interval: "+violation.Message, agg.Errors[0].Error())
}

func TestValidatedList_Jobs(t *testing.T) {
	v := newValidator(t)

	list, err := v.Validate(parser.RawList{
		parser.Entry("fade", map[string]any{"name": "a"}),
		parser.Entry("lambda", map[string]any{"lambda": "return {};"}),
	}, nil)
	require.NoError(t, err)

	jobs := list.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "fade", jobs[0].Kind)
	assert.Equal(t, kinds.LambdaTransition, jobs[1].EmitterType)
	assert.Equal(t, 1, jobs[1].Index)
	assert.NotNil(t, jobs[1].Emit)
}

func TestValidate_ConcurrentCallers(t *testing.T) {
	v := newValidator(t)
	raw := parser.RawList{
		parser.Entry("fade", nil),
		parser.Entry("lambda", map[string]any{"lambda": "return {};"}),
	}

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = v.Validate(raw, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
