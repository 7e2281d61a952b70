package emit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reglet-dev/reglet-transitions/schema"
)

// Ensure implementations satisfy the interface.
var (
	_ Backend = (*SourceBackend)(nil)
	_ Backend = (*MockBackend)(nil)
)

// Lambda is a compiled expression rendered as a C++ lambda.
type Lambda string

// Variable names an emitted object.
type Variable string

// SourceBackend renders emitted objects as C++ statements. It is the
// backend of the transitionlint "emit" command and a reference for real
// code generators.
type SourceBackend struct {
	lines []string
	mu    sync.Mutex
}

// NewSourceBackend creates an empty backend.
func NewSourceBackend() *SourceBackend {
	return &SourceBackend{}
}

// NewObject renders `auto *id = new Type(args...);`.
func (b *SourceBackend) NewObject(_ context.Context, id ID, args ...any) (Handle, error) {
	rendered := make([]string, 0, len(args))
	for _, a := range args {
		s, err := renderArg(a)
		if err != nil {
			return nil, fmt.Errorf("cannot render argument of %s: %w", id.Name, err)
		}
		rendered = append(rendered, s)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, fmt.Sprintf("auto *%s = new %s(%s);", id.Name, id.Type, strings.Join(rendered, ", ")))
	return Variable(id.Name), nil
}

// CompileExpression wraps expr into a lambda with the given signature.
func (b *SourceBackend) CompileExpression(_ context.Context, expr schema.Expr, params []Param, returnType string) (Handle, error) {
	ps := make([]string, 0, len(params))
	for _, p := range params {
		ps = append(ps, p.Type+" "+p.Name)
	}
	sig := "[=](" + strings.Join(ps, ", ") + ")"
	if returnType != "" {
		sig += " -> " + returnType
	}
	return Lambda(sig + " {\n  " + strings.TrimSpace(string(expr)) + "\n}"), nil
}

// Source returns every rendered statement, one per line.
func (b *SourceBackend) Source() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

func renderArg(a any) (string, error) {
	switch v := a.(type) {
	case string:
		return strconv.Quote(v), nil
	case time.Duration:
		if v == schema.Never {
			return strconv.FormatUint(math.MaxUint32, 10), nil
		}
		return strconv.FormatInt(v.Milliseconds(), 10), nil
	case Lambda:
		return string(v), nil
	case Variable:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", a)
	}
}

// MockBackend records calls. Set the error fields to simulate failures.
type MockBackend struct {
	NewObjectErr error
	CompileErr   error
	Objects      []MockObject
	Expressions  []MockExpression
	mu           sync.Mutex
}

// MockObject is one recorded NewObject call.
type MockObject struct {
	ID   ID
	Args []any
}

// MockExpression is one recorded CompileExpression call.
type MockExpression struct {
	Expr       schema.Expr
	ReturnType string
	Params     []Param
}

func (m *MockBackend) NewObject(_ context.Context, id ID, args ...any) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NewObjectErr != nil {
		return nil, m.NewObjectErr
	}
	m.Objects = append(m.Objects, MockObject{ID: id, Args: args})
	return Variable(id.Name), nil
}

func (m *MockBackend) CompileExpression(_ context.Context, expr schema.Expr, params []Param, returnType string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompileErr != nil {
		return nil, m.CompileErr
	}
	m.Expressions = append(m.Expressions, MockExpression{Expr: expr, Params: params, ReturnType: returnType})
	return Lambda(expr), nil
}
