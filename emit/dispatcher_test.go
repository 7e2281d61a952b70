package emit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/reglet-dev/reglet-transitions/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func objectEmit(ctx context.Context, b Backend, cfg schema.Config, id ID) (Handle, error) {
	return b.NewObject(ctx, id, cfg.Name())
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator()

	assert.Equal(t, "fadetransition_id", g.Next("light::FadeTransition").Name)
	assert.Equal(t, "fadetransition_id_2", g.Next("light::FadeTransition").Name)
	assert.Equal(t, "lambdatransition_id", g.Next("LambdaTransition").Name)
	assert.Equal(t, "object_id", g.Next("::").Name)

	id := g.Next("light::FadeTransition")
	assert.Equal(t, EmitterType("light::FadeTransition"), id.Type)
	assert.Equal(t, "fadetransition_id_3", id.String())
}

func TestDispatcher_FailuresAreIndependent(t *testing.T) {
	boom := errors.New("boom")
	failing := func(ctx context.Context, b Backend, cfg schema.Config, id ID) (Handle, error) {
		return nil, boom
	}

	backend := &MockBackend{}
	d := NewDispatcher(backend, WithLogger(newTestLogger()))

	jobs := []Job{
		{Index: 0, Kind: "fade", EmitterType: "light::FadeTransition", Config: schema.Config{"name": "a"}, Emit: objectEmit},
		{Index: 1, Kind: "broken", EmitterType: "light::FadeTransition", Config: schema.Config{"name": "b"}, Emit: failing},
		{Index: 2, Kind: "fade", EmitterType: "light::FadeTransition", Config: schema.Config{"name": "c"}, Emit: objectEmit},
		{Index: 3, Kind: "orphan", EmitterType: "light::FadeTransition", Config: schema.Config{"name": "d"}},
	}

	results := d.Dispatch(context.Background(), jobs)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[2].Err)
	assert.Error(t, results[3].Err)

	require.Len(t, backend.Objects, 2)
	assert.Equal(t, "fadetransition_id", backend.Objects[0].ID.Name)
	assert.Equal(t, []any{"a"}, backend.Objects[0].Args)
	assert.Equal(t, "fadetransition_id_3", backend.Objects[1].ID.Name)
	assert.Equal(t, Variable("fadetransition_id_3"), results[2].Handle)

	err := Err(results)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "transitions[1] broken")
	assert.Contains(t, err.Error(), "transitions[3] orphan")
	assert.NoError(t, Err(results[:1]))
}

func TestDispatcher_CancelledContext(t *testing.T) {
	backend := &MockBackend{}
	d := NewDispatcher(backend, WithLogger(newTestLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Dispatch(ctx, []Job{{Index: 0, Kind: "fade", Config: schema.Config{"name": "a"}, Emit: objectEmit}})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Empty(t, backend.Objects)
}

func TestDispatcher_SharedIDGenerator(t *testing.T) {
	ids := NewIDGenerator()
	job := Job{Kind: "fade", EmitterType: "FadeTransition", Config: schema.Config{"name": "a"}, Emit: objectEmit}

	first := NewDispatcher(&MockBackend{}, WithIDGenerator(ids), WithLogger(newTestLogger())).Dispatch(context.Background(), []Job{job})
	second := NewDispatcher(&MockBackend{}, WithIDGenerator(ids), WithLogger(newTestLogger())).Dispatch(context.Background(), []Job{job})

	assert.Equal(t, "fadetransition_id", first[0].ID.Name)
	assert.Equal(t, "fadetransition_id_2", second[0].ID.Name)
}

func TestSourceBackend(t *testing.T) {
	ctx := context.Background()
	b := NewSourceBackend()
	assert.Empty(t, b.Source())

	lambda, err := b.CompileExpression(ctx, "  return target;  ", []Param{
		{Type: "const LightColorValues &", Name: "start"},
		{Type: "float", Name: "x"},
	}, "optional<LightColorValues>")
	require.NoError(t, err)

	_, err = b.NewObject(ctx, ID{Name: "t_id", Type: "LambdaTransition"}, "Lambda", 16*time.Millisecond, lambda)
	require.NoError(t, err)
	_, err = b.NewObject(ctx, ID{Name: "n_id", Type: "LambdaTransition"}, schema.Never)
	require.NoError(t, err)

	src := b.Source()
	assert.Contains(t, src, `auto *t_id = new LambdaTransition("Lambda", 16, [=](const LightColorValues & start, float x) -> optional<LightColorValues> {`)
	assert.Contains(t, src, "  return target;\n}")
	assert.Contains(t, src, "auto *n_id = new LambdaTransition(4294967295);")

	_, err = b.NewObject(ctx, ID{Name: "bad", Type: "X"}, struct{}{})
	assert.Error(t, err)
}
