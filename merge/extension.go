package merge

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"go.appointy.com/autoschema/graphql"
)

// Extension is user-supplied schema content layered over the auto schema.
// It is one of *SchemaExtension, *FuncExtension or *DocumentExtension.
type Extension interface {
	isExtension()
}

// SchemaExtension is a fully built schema. Its types are overlaid on the
// auto schema type by type.
type SchemaExtension struct {
	Schema *graphql.Schema
}

// FuncExtension hands composition over to a function.
type FuncExtension struct {
	Func MergeFunc
}

// DocumentExtension is a set of parsed SDL documents merged with the auto
// schema in one pass.
type DocumentExtension struct {
	Documents []*ast.Document
}

func (*SchemaExtension) isExtension()   {}
func (*FuncExtension) isExtension()     {}
func (*DocumentExtension) isExtension() {}

// FuncArgs are the inputs of a MergeFunc.
type FuncArgs struct {
	// Directives declares the directives the extension may use.
	Directives *graphql.Schema
	AutoSchema *graphql.Schema
	// MergeSchemas is the merge primitive used by the other strategies.
	MergeSchemas func(Options) (*graphql.Schema, error)
}

// MergeFunc returns the final schema.
type MergeFunc func(ctx context.Context, args FuncArgs) (*graphql.Schema, error)

// FromSchema returns an extension overlaying s.
func FromSchema(s *graphql.Schema) Extension {
	return &SchemaExtension{Schema: s}
}

// FromFunc returns an extension delegating to f.
func FromFunc(f MergeFunc) Extension {
	return &FuncExtension{Func: f}
}

// FromDocuments returns an extension merging docs.
func FromDocuments(docs ...*ast.Document) Extension {
	return &DocumentExtension{Documents: docs}
}

// FromSDL parses each SDL string into a document extension.
func FromSDL(sdl ...string) (Extension, error) {
	docs := make([]*ast.Document, 0, len(sdl))
	for i, s := range sdl {
		doc, err := graphql.ParseDocument(fmt.Sprintf("extension-%d.graphql", i), s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExtension, err)
		}
		docs = append(docs, doc)
	}
	return FromDocuments(docs...), nil
}
