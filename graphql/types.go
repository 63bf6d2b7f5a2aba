package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
)

// Type represents a GraphQL type, and should be either a named type
// (Object, Interface, Union, Scalar, Enum, InputObject), a wrapper
// (List, NonNull) or a Named reference that has not been bound yet.
type Type interface {
	String() string

	// isType() is a no-op used to tag the known values of Type, to prevent
	// arbitrary interface{} from implementing Type
	isType()
}

// Scalar is a leaf value.
// SpecifiedByURL holds the URL from @specifiedBy directive (informational only).
type Scalar struct {
	Type           string
	Description    string
	SpecifiedByURL string

	AST *ast.ScalarDefinition
}

func (s *Scalar) isType() {}

func (s *Scalar) String() string {
	return s.Type
}

// Enum is a leaf value
type Enum struct {
	Type        string
	Description string
	Values      []string

	AST *ast.EnumDefinition
}

func (e *Enum) isType() {}

func (e *Enum) String() string {
	return e.Type
}

// Object is a value with several fields
type Object struct {
	Name        string
	Description string
	Fields      map[string]*Field
	Interfaces  map[string]*Interface

	AST *ast.ObjectDefinition
}

func (o *Object) isType() {}

func (o *Object) String() string {
	return o.Name
}

// List is a collection of other values
type List struct {
	Type Type
}

func (l *List) isType() {}

func (l *List) String() string {
	return fmt.Sprintf("[%s]", l.Type)
}

// InputObject defines the object in argument of a query, mutation or subscription.
type InputObject struct {
	Name        string
	Description string
	InputFields map[string]Type

	AST *ast.InputObjectDefinition
}

func (io *InputObject) isType() {}

func (io *InputObject) String() string {
	return io.Name
}

// NonNull is a non-nullable other value
type NonNull struct {
	Type Type
}

func (n *NonNull) isType() {}

func (n *NonNull) String() string {
	return fmt.Sprintf("%s!", n.Type)
}

// Union is a option between multiple types
type Union struct {
	Name        string
	Description string
	Types       map[string]*Object

	AST *ast.UnionDefinition
}

func (*Union) isType() {}

func (u *Union) String() string {
	return u.Name
}

// Interface defines the graphql interface
type Interface struct {
	Name        string
	Description string
	Types       map[string]*Object
	Fields      map[string]*Field

	AST *ast.InterfaceDefinition
}

func (*Interface) isType() {}

func (i *Interface) String() string {
	return i.Name
}

// Named is a reference to a named type that has not been bound to an
// instance yet. Documents parsed from SDL reference types this way; Link
// replaces every Named with the instance of the same name.
type Named struct {
	Name string
}

func (*Named) isType() {}

func (n *Named) String() string {
	return n.Name
}

// Verify every kind implements Type.
var _ Type = &Scalar{}
var _ Type = &Object{}
var _ Type = &List{}
var _ Type = &InputObject{}
var _ Type = &NonNull{}
var _ Type = &Enum{}
var _ Type = &Union{}
var _ Type = &Interface{}
var _ Type = &Named{}

// A Resolver calculates the value of a field of an object.
type Resolver func(ctx context.Context, source, args interface{}) (interface{}, error)

// Field describes one field of an Object or Interface.
//
// AST is the source definition the field came from, when it was written in
// SDL. Directive processors read directives and argument literals from it.
type Field struct {
	Resolve     Resolver
	Type        Type
	Args        map[string]Type
	Description string

	IsDeprecated      bool
	DeprecationReason *string `json:"deprecationReason,omitempty"`

	AST *ast.FieldDefinition
}

// DirectiveDefinition declares a directive usable in the schema.
type DirectiveDefinition struct {
	Name        string
	Description string
	Locations   []string
	Args        map[string]Type

	AST *ast.DirectiveDefinition
}

// FieldsOf returns the field table of types that expose fields (objects and
// interfaces) and reports whether t has one.
func FieldsOf(t Type) (map[string]*Field, bool) {
	switch t := t.(type) {
	case *Object:
		return t.Fields, true
	case *Interface:
		return t.Fields, true
	default:
		return nil, false
	}
}

// NameOf returns the name of a named type, or "" for wrappers.
func NameOf(t Type) string {
	switch t := t.(type) {
	case *Object:
		return t.Name
	case *Interface:
		return t.Name
	case *Union:
		return t.Name
	case *Scalar:
		return t.Type
	case *Enum:
		return t.Type
	case *InputObject:
		return t.Name
	case *Named:
		return t.Name
	default:
		return ""
	}
}

// NamedType unwraps List and NonNull layers until it reaches a named type.
func NamedType(t Type) Type {
	for {
		switch w := t.(type) {
		case *List:
			t = w.Type
		case *NonNull:
			t = w.Type
		default:
			return t
		}
	}
}
