// Package directives attaches behaviour to schema fields from the
// directives written on their source definitions.
package directives

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"go.appointy.com/autoschema/graphql"
)

// SDL declares the directives custom schema extensions may use.
const SDL = `
scalar Any

directive @resolve(to: String) on FIELD_DEFINITION

directive @mock(with: Any!) on FIELD_DEFINITION
`

// Definitions returns a new schema holding the directive definitions.
func Definitions() *graphql.Schema {
	s, err := graphql.BuildSchema(SDL)
	if err != nil {
		panic(fmt.Sprintf("directive definitions: %v", err))
	}
	return s
}

// ErrInvalidDirective is returned when a directive cannot be applied to its
// field.
var ErrInvalidDirective = errors.New("invalid directive")

// FieldVisitor handles one directive on one field. It returns the field to
// store in place of field; field itself must not be modified.
type FieldVisitor interface {
	VisitField(ctx context.Context, owner string, field *graphql.Field, directive *ast.Directive) (*graphql.Field, error)
}

// FieldVisitorFunc adapts a function to FieldVisitor.
type FieldVisitorFunc func(ctx context.Context, owner string, field *graphql.Field, directive *ast.Directive) (*graphql.Field, error)

// VisitField calls f.
func (f FieldVisitorFunc) VisitField(ctx context.Context, owner string, field *graphql.Field, directive *ast.Directive) (*graphql.Field, error) {
	return f(ctx, owner, field, directive)
}

// Visit dispatches every directive found on the source definition of an
// object or interface field to the visitor registered under its name.
// Fields without a source definition and directives without a visitor are
// skipped. Visited fields are replaced in the schema's field tables.
func Visit(ctx context.Context, schema *graphql.Schema, visitors map[string]FieldVisitor) (int, error) {
	visited := 0
	for _, name := range schema.TypeNames() {
		if graphql.IsIntrospectionName(name) {
			continue
		}
		fields, ok := graphql.FieldsOf(schema.Type(name))
		if !ok {
			continue
		}
		for fname, field := range fields {
			if field.AST == nil {
				continue
			}
			for _, d := range field.AST.Directives {
				if d.Name == nil {
					continue
				}
				v, ok := visitors[d.Name.Value]
				if !ok {
					continue
				}
				next, err := v.VisitField(ctx, name, field, d)
				if err != nil {
					return visited, fmt.Errorf("@%s on %s.%s: %w", d.Name.Value, name, fname, err)
				}
				if next != nil {
					field = next
					fields[fname] = next
				}
				visited++
			}
		}
	}
	return visited, nil
}

// Default returns the visitors for the directives declared in SDL. Runner
// serves @resolve; without one @resolve is rejected.
func Default(runner FunctionRunner) map[string]FieldVisitor {
	return map[string]FieldVisitor{
		"resolve": &ResolveVisitor{Runner: runner},
		"mock":    MockVisitor{},
	}
}
