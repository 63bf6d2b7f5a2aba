package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/graphql-go/graphql/language/ast"
	"go.appointy.com/autoschema/graphql"
)

// Merger layers an Extension over the auto schema.
type Merger struct {
	log logr.Logger
}

// NewMerger returns a Merger logging to log.
func NewMerger(log logr.Logger) *Merger {
	return &Merger{log: log}
}

// Merge returns the schema produced by combining auto with ext. directives
// declares the directives extensions may use. Neither auto nor the extension
// is modified.
//
// A SchemaExtension is overlaid type by type: new types are added, types that
// exist in auto with the same field-bearing kind get the custom fields
// merged over the generated ones, and other types are replaced. A
// FuncExtension builds the schema itself. A DocumentExtension is merged with
// auto in one pass, after which generated fields of customized types receive
// the source definition of the same-named custom field.
func (m *Merger) Merge(ctx context.Context, auto, directives *graphql.Schema, ext Extension) (*graphql.Schema, error) {
	switch ext := ext.(type) {
	case *SchemaExtension:
		if ext.Schema == nil {
			return nil, fmt.Errorf("%w: nil schema", ErrMalformedExtension)
		}
		return m.overlay(auto, directives, ext.Schema)

	case *FuncExtension:
		if ext.Func == nil {
			return nil, fmt.Errorf("%w: nil merge function", ErrMalformedExtension)
		}
		schema, err := ext.Func(ctx, FuncArgs{
			Directives:   directives,
			AutoSchema:   auto,
			MergeSchemas: Schemas,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: merge function: %w", ErrMalformedExtension, err)
		}
		if schema == nil {
			return nil, fmt.Errorf("%w: merge function returned no schema", ErrMalformedExtension)
		}
		return schema, nil

	case *DocumentExtension:
		schema, err := Schemas(Options{
			Schemas:         []*graphql.Schema{directives, auto},
			Documents:       ext.Documents,
			MergeDirectives: true,
		})
		if err != nil {
			return nil, err
		}
		n := Backfill(schema, ext.Documents)
		m.log.V(1).Info("merged schema documents", "documents", len(ext.Documents), "backfilledFields", n)
		return schema, nil

	case nil:
		return nil, errors.New("no schema extension")

	default:
		return nil, fmt.Errorf("%w: unsupported extension %T", ErrMalformedExtension, ext)
	}
}

// overlay merges custom into a patched copy of auto's type map.
func (m *Merger) overlay(auto, directives, custom *graphql.Schema) (*graphql.Schema, error) {
	patched := auto.TypeMap()
	roots := [3]*graphql.Object{auto.Query, auto.Mutation, auto.Subscription}

	for _, name := range custom.TypeNames() {
		ct := custom.Type(name)
		if graphql.IsIntrospectionName(name) || isBuiltin(ct) {
			continue
		}

		at, exists := patched[name]
		if !exists {
			patched[name] = ct
			continue
		}

		merged, ok := overlayFields(auto, at, ct)
		if !ok {
			m.log.V(1).Info("custom type replaces generated type", "type", name)
			patched[name] = ct
			continue
		}
		patched[name] = merged
		for i, root := range roots {
			if root != nil && graphql.Type(root) == at {
				roots[i] = merged.(*graphql.Object)
			}
		}
	}

	for i, cr := range [3]*graphql.Object{custom.Query, custom.Mutation, custom.Subscription} {
		if roots[i] == nil && cr != nil {
			if obj, ok := patched[cr.Name].(*graphql.Object); ok {
				roots[i] = obj
			}
		}
	}

	mg := newMerger()
	if directives != nil {
		mg.addSchema(directives)
		for _, d := range directives.Directives {
			mg.addDirective(d)
		}
	}
	mg.addTypes(patched, roots[0], roots[1], roots[2])
	for _, d := range auto.Directives {
		mg.addDirective(d)
	}
	for _, d := range custom.Directives {
		mg.addDirective(d)
	}
	return mg.finish(nil)
}

// overlayFields returns a copy of generated with the fields of custom merged
// over its own. Field types of custom are re-pointed at auto's instances. It
// reports false when the two types are not the same field-bearing kind.
func overlayFields(auto *graphql.Schema, generated, custom graphql.Type) (graphql.Type, bool) {
	customFields, ok := graphql.FieldsOf(custom)
	if !ok {
		return nil, false
	}
	switch generated.(type) {
	case *graphql.Object:
		if _, same := custom.(*graphql.Object); !same {
			return nil, false
		}
	case *graphql.Interface:
		if _, same := custom.(*graphql.Interface); !same {
			return nil, false
		}
	default:
		return nil, false
	}

	merged := graphql.Clone(generated)
	fields, _ := graphql.FieldsOf(merged)
	for name, f := range customFields {
		c := graphql.CloneField(f)
		c.Type = InnermostToAuto(auto, c.Type)
		for arg, t := range c.Args {
			c.Args[arg] = InnermostToAuto(auto, t)
		}
		fields[name] = c
	}
	if obj, ok := custom.(*graphql.Object); ok {
		for iname, i := range obj.Interfaces {
			merged.(*graphql.Object).Interfaces[iname] = i
		}
	}
	return merged, true
}

// InnermostToAuto returns t with its innermost named type replaced by auto's
// type of the same name, keeping the List and NonNull wrappers. t is
// returned unchanged when auto has no such type.
func InnermostToAuto(auto *graphql.Schema, t graphql.Type) graphql.Type {
	inner := graphql.NamedType(t)
	target := auto.Type(graphql.NameOf(inner))
	if target == nil || target == inner {
		return t
	}

	var wrappers []graphql.Type
	for cur := t; cur != inner; {
		wrappers = append(wrappers, cur)
		switch w := cur.(type) {
		case *graphql.List:
			cur = w.Type
		case *graphql.NonNull:
			cur = w.Type
		}
	}

	out := target
	for i := len(wrappers) - 1; i >= 0; i-- {
		switch wrappers[i].(type) {
		case *graphql.List:
			out = &graphql.List{Type: out}
		case *graphql.NonNull:
			out = &graphql.NonNull{Type: out}
		}
	}
	return out
}

// Backfill attaches source definitions from docs to fields of schema that
// have none: for each object or interface with a definition of the same name
// in docs, a field without AST gets the definition's field of the same name.
// Fields are replaced, never modified. It returns the number of fields
// backfilled.
func Backfill(schema *graphql.Schema, docs []*ast.Document) int {
	n := 0
	for _, name := range schema.TypeNames() {
		fields, ok := graphql.FieldsOf(schema.Type(name))
		if !ok {
			continue
		}
		defs := fieldDefinitions(docs, name)
		if defs == nil {
			continue
		}
		for fname, f := range fields {
			if f.AST != nil {
				continue
			}
			for _, def := range defs {
				if def.Name != nil && def.Name.Value == fname {
					c := graphql.CloneField(f)
					c.AST = def
					fields[fname] = c
					n++
					break
				}
			}
		}
	}
	return n
}

// fieldDefinitions returns the fields of the first type definition named
// name in docs.
func fieldDefinitions(docs []*ast.Document, name string) []*ast.FieldDefinition {
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, node := range doc.Definitions {
			switch def := node.(type) {
			case *ast.ObjectDefinition:
				if def.Name.Value == name {
					return def.Fields
				}
			case *ast.InterfaceDefinition:
				if def.Name.Value == name {
					return def.Fields
				}
			case *ast.TypeExtensionDefinition:
				if def.Definition != nil && def.Definition.Name.Value == name {
					return def.Definition.Fields
				}
			}
		}
	}
	return nil
}
