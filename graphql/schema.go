package graphql

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnresolvedType is returned when a schema still holds a Named reference.
var ErrUnresolvedType = errors.New("unresolved type reference")

// ErrDuplicateType is returned when two distinct type instances share a name.
var ErrDuplicateType = errors.New("schema must contain unique named types")

// Built-in scalars every schema carries.
var (
	String  = &Scalar{Type: "String", Description: "The `String` scalar type represents textual data."}
	Int     = &Scalar{Type: "Int", Description: "The `Int` scalar type represents non-fractional signed whole numeric values."}
	Float   = &Scalar{Type: "Float", Description: "The `Float` scalar type represents signed double-precision fractional values."}
	Boolean = &Scalar{Type: "Boolean", Description: "The `Boolean` scalar type represents `true` or `false`."}
	ID      = &Scalar{Type: "ID", Description: "The `ID` scalar type represents a unique identifier."}
)

var builtinScalars = []*Scalar{String, Int, Float, Boolean, ID}

// IsBuiltinScalar reports whether name is one of the specified scalars.
func IsBuiltinScalar(name string) bool {
	for _, s := range builtinScalars {
		if s.Type == name {
			return true
		}
	}
	return false
}

// IsIntrospectionName reports whether name belongs to the introspection system.
func IsIntrospectionName(name string) bool {
	return strings.HasPrefix(name, "__")
}

// SchemaConfig lists the roots and extra types of a schema.
type SchemaConfig struct {
	Query        *Object
	Mutation     *Object
	Subscription *Object
	Types        []Type
	Directives   []*DirectiveDefinition
}

// Schema used to validate and resolve the queries
type Schema struct {
	Query        *Object
	Mutation     *Object
	Subscription *Object
	Directives   []*DirectiveDefinition

	types map[string]Type
}

// NewSchema collects every named type reachable from the roots and the
// explicit type list. Built-in scalars are always present; a custom scalar of
// the same name replaces the built-in instance.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	types := make(map[string]Type)

	roots := append([]Type{}, cfg.Types...)
	for _, root := range []*Object{cfg.Query, cfg.Mutation, cfg.Subscription} {
		if root != nil {
			roots = append(roots, root)
		}
	}
	for _, d := range cfg.Directives {
		for _, arg := range sortedTypes(d.Args) {
			roots = append(roots, arg)
		}
	}

	for _, t := range roots {
		if err := collectTypes(t, types); err != nil {
			return nil, err
		}
	}
	for _, s := range builtinScalars {
		if _, ok := types[s.Type]; !ok {
			types[s.Type] = s
		}
	}

	return &Schema{
		Query:        cfg.Query,
		Mutation:     cfg.Mutation,
		Subscription: cfg.Subscription,
		Directives:   cfg.Directives,
		types:        types,
	}, nil
}

// collectTypes walks t and records every named type by name.
func collectTypes(typ Type, types map[string]Type) error {
	stack := []Type{typ}
	for len(stack) > 0 {
		t := NamedType(stack[len(stack)-1])
		stack = stack[:len(stack)-1]

		if n, ok := t.(*Named); ok {
			return fmt.Errorf("%w: %s", ErrUnresolvedType, n.Name)
		}

		name := NameOf(t)
		if existing, ok := types[name]; ok {
			if existing == t || isBuiltinInstance(t) {
				continue
			}
			if !isBuiltinInstance(existing) {
				return fmt.Errorf("%w but contains multiple types named %q", ErrDuplicateType, name)
			}
		}
		types[name] = t

		switch t := t.(type) {
		case *Object:
			for _, f := range sortedFields(t.Fields) {
				stack = append(stack, f.Type)
				stack = append(stack, sortedTypes(f.Args)...)
			}
			for _, name := range sortedKeys(t.Interfaces) {
				stack = append(stack, t.Interfaces[name])
			}
		case *Interface:
			for _, f := range sortedFields(t.Fields) {
				stack = append(stack, f.Type)
				stack = append(stack, sortedTypes(f.Args)...)
			}
			for _, name := range sortedKeys(t.Types) {
				stack = append(stack, t.Types[name])
			}
		case *Union:
			for _, name := range sortedKeys(t.Types) {
				stack = append(stack, t.Types[name])
			}
		case *InputObject:
			stack = append(stack, sortedTypes(t.InputFields)...)
		}
	}
	return nil
}

func isBuiltinInstance(t Type) bool {
	for _, s := range builtinScalars {
		if Type(s) == t {
			return true
		}
	}
	return false
}

// Type returns the named type called name, or nil.
func (s *Schema) Type(name string) Type {
	return s.types[name]
}

// TypeMap returns a copy of the schema's type map.
func (s *Schema) TypeMap() map[string]Type {
	m := make(map[string]Type, len(s.types))
	for k, v := range s.types {
		m[k] = v
	}
	return m
}

// TypeNames returns every type name in lexical order.
func (s *Schema) TypeNames() []string {
	return sortedKeys(s.types)
}

// Directive returns the directive definition called name, or nil.
func (s *Schema) Directive(name string) *DirectiveDefinition {
	for _, d := range s.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFields(m map[string]*Field) []*Field {
	fields := make([]*Field, 0, len(m))
	for _, k := range sortedKeys(m) {
		fields = append(fields, m[k])
	}
	return fields
}

func sortedTypes(m map[string]Type) []Type {
	types := make([]Type, 0, len(m))
	for _, k := range sortedKeys(m) {
		types = append(types, m[k])
	}
	return types
}
