// Package emit hands validated transition configs to the code generation
// backend. The backend itself (object construction, expression compilation)
// lives outside this module and is reached through the Backend port.
package emit

import (
	"context"

	"github.com/reglet-dev/reglet-transitions/schema"
)

// EmitterType is the backend type token a kind constructs, e.g.
// "light::FadeTransition".
type EmitterType string

// ID is the generated identifier slot of one emitted object.
type ID struct {
	Name string
	Type EmitterType
}

func (id ID) String() string {
	return id.Name
}

// Handle is an opaque backend result: an emitted object or a compiled
// expression.
type Handle any

// Param is one parameter of a compiled expression signature.
type Param struct {
	Type string
	Name string
}

// Generator constructs runtime objects.
type Generator interface {
	// NewObject declares an object of id.Type named id.Name, constructed
	// with args.
	NewObject(ctx context.Context, id ID, args ...any) (Handle, error)
}

// ExpressionCompiler turns opaque expression text into a callable handle.
type ExpressionCompiler interface {
	CompileExpression(ctx context.Context, expr schema.Expr, params []Param, returnType string) (Handle, error)
}

// Backend is the code emission collaborator.
type Backend interface {
	Generator
	ExpressionCompiler
}

// Func emits one validated config. It is bound to a kind at registration
// time and only ever called by a Dispatcher.
type Func func(ctx context.Context, b Backend, cfg schema.Config, id ID) (Handle, error)
