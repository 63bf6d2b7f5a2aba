// Package merge combines the auto schema with user-supplied schema
// extensions.
package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql/language/ast"
	"go.appointy.com/autoschema/graphql"
)

// ErrMalformedExtension wraps every failure caused by extension content.
var ErrMalformedExtension = errors.New("malformed schema extension")

// Options are the inputs of Schemas.
type Options struct {
	Schemas   []*graphql.Schema
	Documents []*ast.Document

	// MergeDirectives keeps the directive definitions of Schemas. Directives
	// declared in Documents are always kept.
	MergeDirectives bool
}

type operation int

const (
	opQuery operation = iota
	opMutation
	opSubscription
)

var (
	operationNames   = [...]string{"query", "mutation", "subscription"}
	defaultRootNames = [...]string{"Query", "Mutation", "Subscription"}
)

type rootFields struct {
	name        string
	description string
	fields      map[string]*graphql.Field
	interfaces  map[string]*graphql.Interface
}

type merger struct {
	types      map[string]graphql.Type
	roots      [3]*rootFields
	directives map[string]*graphql.DirectiveDefinition
	dirOrder   []string
}

// Schemas merges schemas and SDL documents into a new schema. Inputs are
// never modified: every named type is cloned and the clones are linked by
// name, so each name resolves to one instance.
//
// Later inputs win. A named type replaces an earlier type of the same name,
// except root operation types, whose fields are merged. `extend type`
// definitions add fields to the merged type after all inputs are read.
func Schemas(opts Options) (*graphql.Schema, error) {
	m := newMerger()
	for _, s := range opts.Schemas {
		if s == nil {
			continue
		}
		m.addSchema(s)
		if opts.MergeDirectives {
			for _, d := range s.Directives {
				m.addDirective(d)
			}
		}
	}

	return m.finish(opts.Documents)
}

func newMerger() *merger {
	return &merger{
		types:      make(map[string]graphql.Type),
		directives: make(map[string]*graphql.DirectiveDefinition),
	}
}

// finish reads docs, applies their extensions and builds the schema.
func (m *merger) finish(docs []*ast.Document) (*graphql.Schema, error) {
	var extensions []*ast.ObjectDefinition
	for _, doc := range docs {
		defs, err := graphql.BuildDefinitions(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExtension, err)
		}
		m.addDefinitions(defs)
		extensions = append(extensions, defs.Extensions...)
	}

	if err := m.extend(extensions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtension, err)
	}

	schema, err := m.build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtension, err)
	}
	return schema, nil
}

func (m *merger) addSchema(s *graphql.Schema) {
	m.addTypes(s.TypeMap(), s.Query, s.Mutation, s.Subscription)
}

// addTypes clones every named type of types. The given roots contribute
// their fields to the merged root types.
func (m *merger) addTypes(types map[string]graphql.Type, query, mutation, subscription *graphql.Object) {
	roots := map[graphql.Type]operation{}
	for op, root := range []*graphql.Object{query, mutation, subscription} {
		if root != nil {
			roots[root] = operation(op)
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := types[name]
		if graphql.IsIntrospectionName(name) || isBuiltin(t) {
			continue
		}
		if op, ok := roots[t]; ok {
			obj := graphql.Clone(t).(*graphql.Object)
			m.addRootFields(op, obj.Name, obj.Description, obj.Fields, obj.Interfaces)
			continue
		}
		m.types[name] = graphql.Clone(t)
	}
}

func (m *merger) addDefinitions(defs *graphql.Definitions) {
	rootOps := map[string]operation{}
	for op, fallback := range defaultRootNames {
		name := fallback
		if n, ok := defs.Operations[operationNames[op]]; ok {
			name = n
		}
		rootOps[name] = operation(op)
	}

	for _, name := range defs.Order {
		t := defs.Types[name]
		if op, ok := rootOps[name]; ok {
			if obj, isObj := t.(*graphql.Object); isObj {
				m.addRootFields(op, obj.Name, obj.Description, obj.Fields, obj.Interfaces)
				continue
			}
		}
		m.types[name] = t
	}
	for _, d := range defs.Directives {
		m.addDirective(d)
	}
}

func (m *merger) addRootFields(op operation, name, description string, fields map[string]*graphql.Field, interfaces map[string]*graphql.Interface) {
	r := m.roots[op]
	if r == nil {
		r = &rootFields{fields: make(map[string]*graphql.Field), interfaces: make(map[string]*graphql.Interface)}
		m.roots[op] = r
	}
	r.name = name
	if description != "" {
		r.description = description
	}
	for k, f := range fields {
		r.fields[k] = f
	}
	for k, i := range interfaces {
		r.interfaces[k] = i
	}
}

func (m *merger) addDirective(d *graphql.DirectiveDefinition) {
	if _, ok := m.directives[d.Name]; !ok {
		m.dirOrder = append(m.dirOrder, d.Name)
	}
	m.directives[d.Name] = graphql.CloneDirective(d)
}

// extend applies `extend type` definitions to root fields or merged types.
func (m *merger) extend(exts []*ast.ObjectDefinition) error {
	var rest []*ast.ObjectDefinition
	for _, ext := range exts {
		op, ok := m.rootOperation(ext.Name.Value)
		if !ok {
			rest = append(rest, ext)
			continue
		}
		extDefs, err := graphql.BuildDefinitions(&ast.Document{Definitions: []ast.Node{ext}})
		if err != nil {
			return err
		}
		obj := extDefs.Types[ext.Name.Value].(*graphql.Object)
		m.addRootFields(op, obj.Name, "", obj.Fields, obj.Interfaces)
	}
	return graphql.ApplyExtensions(m.types, rest)
}

func (m *merger) rootOperation(name string) (operation, bool) {
	for op, r := range m.roots {
		if r != nil && r.name == name {
			return operation(op), true
		}
	}
	for op, n := range defaultRootNames {
		if n == name && m.roots[op] == nil {
			return operation(op), true
		}
	}
	return 0, false
}

func (m *merger) build() (*graphql.Schema, error) {
	var roots [3]*graphql.Object
	for op, r := range m.roots {
		if r == nil || len(r.fields) == 0 {
			continue
		}
		if _, taken := m.types[r.name]; taken {
			return nil, fmt.Errorf("root type %s is also defined as a regular type", r.name)
		}
		roots[op] = &graphql.Object{
			Name:        r.name,
			Description: r.description,
			Fields:      r.fields,
			Interfaces:  r.interfaces,
		}
		m.types[r.name] = roots[op]
	}

	if err := graphql.Link(m.types); err != nil {
		return nil, err
	}

	directives := make([]*graphql.DirectiveDefinition, 0, len(m.dirOrder))
	for _, name := range m.dirOrder {
		directives = append(directives, m.directives[name])
	}
	if err := graphql.LinkDirectives(m.types, directives); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	types := make([]graphql.Type, 0, len(names))
	for _, name := range names {
		types = append(types, m.types[name])
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        roots[opQuery],
		Mutation:     roots[opMutation],
		Subscription: roots[opSubscription],
		Types:        types,
		Directives:   directives,
	})
}

func isBuiltin(t graphql.Type) bool {
	switch t {
	case graphql.String, graphql.Int, graphql.Float, graphql.Boolean, graphql.ID:
		return true
	}
	return false
}
