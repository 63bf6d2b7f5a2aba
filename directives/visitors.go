package directives

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"go.appointy.com/autoschema/graphql"
)

// FunctionRunner runs a named server function.
type FunctionRunner interface {
	RunFunction(ctx context.Context, name string, source, args interface{}) (interface{}, error)
}

// FunctionRunnerFunc adapts a function to FunctionRunner.
type FunctionRunnerFunc func(ctx context.Context, name string, source, args interface{}) (interface{}, error)

// RunFunction calls f.
func (f FunctionRunnerFunc) RunFunction(ctx context.Context, name string, source, args interface{}) (interface{}, error) {
	return f(ctx, name, source, args)
}

// ResolveVisitor handles @resolve(to: String). The field resolves by running
// the function named by `to`, or the function named like the field.
type ResolveVisitor struct {
	Runner FunctionRunner
}

func (v *ResolveVisitor) VisitField(ctx context.Context, owner string, field *graphql.Field, d *ast.Directive) (*graphql.Field, error) {
	if v.Runner == nil {
		return nil, fmt.Errorf("%w: no function runner configured", ErrInvalidDirective)
	}

	name := ""
	if field.AST != nil && field.AST.Name != nil {
		name = field.AST.Name.Value
	}
	if to, ok := graphql.DirectiveArgument(d, "to"); ok && to != nil {
		s, isString := to.(string)
		if !isString {
			return nil, fmt.Errorf("%w: to must be a string", ErrInvalidDirective)
		}
		name = s
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no function name", ErrInvalidDirective)
	}

	runner := v.Runner
	c := graphql.CloneField(field)
	c.Resolve = func(ctx context.Context, source, args interface{}) (interface{}, error) {
		return runner.RunFunction(ctx, name, source, args)
	}
	return c, nil
}

// MockVisitor handles @mock(with: Any!). The field resolves to the literal.
type MockVisitor struct{}

func (MockVisitor) VisitField(ctx context.Context, owner string, field *graphql.Field, d *ast.Directive) (*graphql.Field, error) {
	value, ok := graphql.DirectiveArgument(d, "with")
	if !ok {
		return nil, fmt.Errorf("%w: missing argument with", ErrInvalidDirective)
	}

	c := graphql.CloneField(field)
	c.Resolve = func(context.Context, interface{}, interface{}) (interface{}, error) {
		return value, nil
	}
	return c, nil
}
