package graphql

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

// ErrInvalidDefinition is returned for documents that cannot describe a schema.
var ErrInvalidDefinition = errors.New("invalid type definition")

// Definitions holds the named types and directives declared by one SDL
// document. Type references between them are *Named until linked.
type Definitions struct {
	Document   *ast.Document
	Types      map[string]Type
	Order      []string
	Extensions []*ast.ObjectDefinition
	Directives []*DirectiveDefinition
	// Operations maps "query", "mutation" and "subscription" to root type
	// names when the document has a schema definition.
	Operations map[string]string
}

// ParseDocument parses SDL into a graphql-go AST document.
func ParseDocument(name, sdl string) (*ast.Document, error) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(sdl), Name: name}),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, name, err)
	}
	return doc, nil
}

// BuildDefinitions converts the type system definitions of doc.
func BuildDefinitions(doc *ast.Document) (*Definitions, error) {
	defs := &Definitions{
		Document:   doc,
		Types:      make(map[string]Type),
		Operations: make(map[string]string),
	}

	add := func(name string, t Type) error {
		if _, ok := defs.Types[name]; ok {
			return fmt.Errorf("%w: type %s defined more than once", ErrInvalidDefinition, name)
		}
		defs.Types[name] = t
		defs.Order = append(defs.Order, name)
		return nil
	}

	for _, node := range doc.Definitions {
		var err error
		switch def := node.(type) {
		case *ast.ObjectDefinition:
			err = add(def.Name.Value, objectFromAST(def))
		case *ast.InterfaceDefinition:
			err = add(def.Name.Value, &Interface{
				Name:   def.Name.Value,
				Fields: fieldsFromAST(def.Fields),
				Types:  make(map[string]*Object),
				AST:    def,
			})
		case *ast.UnionDefinition:
			u := &Union{Name: def.Name.Value, Types: make(map[string]*Object), AST: def}
			for _, member := range def.Types {
				u.Types[member.Name.Value] = &Object{Name: member.Name.Value}
			}
			err = add(u.Name, u)
		case *ast.ScalarDefinition:
			s := &Scalar{Type: def.Name.Value, AST: def}
			if url, ok := DirectiveArgument(FindDirective(def.Directives, "specifiedBy"), "url"); ok {
				s.SpecifiedByURL, _ = url.(string)
			}
			err = add(s.Type, s)
		case *ast.EnumDefinition:
			e := &Enum{Type: def.Name.Value, AST: def}
			for _, v := range def.Values {
				e.Values = append(e.Values, v.Name.Value)
			}
			err = add(e.Type, e)
		case *ast.InputObjectDefinition:
			io := &InputObject{Name: def.Name.Value, InputFields: make(map[string]Type), AST: def}
			for _, f := range def.Fields {
				io.InputFields[f.Name.Value] = typeFromAST(f.Type)
			}
			err = add(io.Name, io)
		case *ast.DirectiveDefinition:
			d := &DirectiveDefinition{Name: def.Name.Value, Args: argsFromAST(def.Arguments), AST: def}
			for _, loc := range def.Locations {
				d.Locations = append(d.Locations, loc.Value)
			}
			defs.Directives = append(defs.Directives, d)
		case *ast.TypeExtensionDefinition:
			defs.Extensions = append(defs.Extensions, def.Definition)
		case *ast.SchemaDefinition:
			for _, op := range def.OperationTypes {
				defs.Operations[op.Operation] = op.Type.Name.Value
			}
		default:
			err = fmt.Errorf("%w: unexpected %s in type definitions", ErrInvalidDefinition, node.GetKind())
		}
		if err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// ObjectDefinition returns the object definition named name in doc, or nil.
func ObjectDefinition(doc *ast.Document, name string) *ast.ObjectDefinition {
	if doc == nil {
		return nil
	}
	for _, node := range doc.Definitions {
		if def, ok := node.(*ast.ObjectDefinition); ok && def.Name.Value == name {
			return def
		}
	}
	return nil
}

// ApplyExtensions adds the fields and interfaces of each `extend type`
// definition to the object of the same name. Later fields replace earlier
// ones. The objects in types are changed in place.
func ApplyExtensions(types map[string]Type, exts []*ast.ObjectDefinition) error {
	for _, ext := range exts {
		obj, ok := types[ext.Name.Value].(*Object)
		if !ok {
			return fmt.Errorf("%w: cannot extend %s, no object of that name", ErrInvalidDefinition, ext.Name.Value)
		}
		for name, f := range fieldsFromAST(ext.Fields) {
			obj.Fields[name] = f
		}
		for _, i := range ext.Interfaces {
			obj.Interfaces[i.Name.Value] = &Interface{Name: i.Name.Value}
		}
	}
	return nil
}

// BuildSchema parses sdl and builds a standalone schema from it. Every
// referenced type must be defined in sdl or be a built-in scalar.
func BuildSchema(sdl string) (*Schema, error) {
	doc, err := ParseDocument("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}
	defs, err := BuildDefinitions(doc)
	if err != nil {
		return nil, err
	}
	if err := ApplyExtensions(defs.Types, defs.Extensions); err != nil {
		return nil, err
	}
	if err := Link(defs.Types); err != nil {
		return nil, err
	}
	if err := LinkDirectives(defs.Types, defs.Directives); err != nil {
		return nil, err
	}

	root := func(op, fallback string) (*Object, error) {
		name, ok := defs.Operations[op]
		if !ok {
			name = fallback
		}
		t, found := defs.Types[name]
		if !found {
			if ok {
				return nil, fmt.Errorf("%w: %s root type %s is not defined", ErrInvalidDefinition, op, name)
			}
			return nil, nil
		}
		obj, isObj := t.(*Object)
		if !isObj {
			return nil, fmt.Errorf("%w: %s root type %s is not an object", ErrInvalidDefinition, op, name)
		}
		return obj, nil
	}

	cfg := SchemaConfig{Directives: defs.Directives}
	if cfg.Query, err = root("query", "Query"); err != nil {
		return nil, err
	}
	if cfg.Mutation, err = root("mutation", "Mutation"); err != nil {
		return nil, err
	}
	if cfg.Subscription, err = root("subscription", "Subscription"); err != nil {
		return nil, err
	}
	for _, name := range defs.Order {
		cfg.Types = append(cfg.Types, defs.Types[name])
	}
	return NewSchema(cfg)
}

func objectFromAST(def *ast.ObjectDefinition) *Object {
	obj := &Object{
		Name:       def.Name.Value,
		Fields:     fieldsFromAST(def.Fields),
		Interfaces: make(map[string]*Interface),
		AST:        def,
	}
	for _, i := range def.Interfaces {
		obj.Interfaces[i.Name.Value] = &Interface{Name: i.Name.Value}
	}
	return obj
}

func fieldsFromAST(defs []*ast.FieldDefinition) map[string]*Field {
	fields := make(map[string]*Field, len(defs))
	for _, def := range defs {
		f := &Field{
			Type: typeFromAST(def.Type),
			Args: argsFromAST(def.Arguments),
			AST:  def,
		}
		if d := FindDirective(def.Directives, "deprecated"); d != nil {
			f.IsDeprecated = true
			if reason, ok := DirectiveArgument(d, "reason"); ok {
				if s, ok := reason.(string); ok {
					f.DeprecationReason = &s
				}
			}
		}
		fields[def.Name.Value] = f
	}
	return fields
}

func argsFromAST(defs []*ast.InputValueDefinition) map[string]Type {
	if len(defs) == 0 {
		return nil
	}
	args := make(map[string]Type, len(defs))
	for _, def := range defs {
		args[def.Name.Value] = typeFromAST(def.Type)
	}
	return args
}

// typeFromAST converts an AST type reference, keeping the innermost type as
// a Named reference.
func typeFromAST(t ast.Type) Type {
	var wrappers []ast.Type
	for {
		switch w := t.(type) {
		case *ast.List:
			wrappers = append(wrappers, w)
			t = w.Type
			continue
		case *ast.NonNull:
			wrappers = append(wrappers, w)
			t = w.Type
			continue
		}
		break
	}

	var out Type = &Named{}
	if n, ok := t.(*ast.Named); ok {
		out = &Named{Name: n.Name.Value}
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		switch wrappers[i].(type) {
		case *ast.List:
			out = &List{Type: out}
		case *ast.NonNull:
			out = &NonNull{Type: out}
		}
	}
	return out
}

// FindDirective returns the first directive called name, or nil.
func FindDirective(directives []*ast.Directive, name string) *ast.Directive {
	for _, d := range directives {
		if d.Name != nil && d.Name.Value == name {
			return d
		}
	}
	return nil
}

// DirectiveArgument returns the literal value of argument name of d.
func DirectiveArgument(d *ast.Directive, name string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	for _, arg := range d.Arguments {
		if arg.Name != nil && arg.Name.Value == name {
			return ValueFromAST(arg.Value), true
		}
	}
	return nil, false
}

// ValueFromAST converts a literal AST value into plain Go values. Variables
// have no literal value and convert to nil.
func ValueFromAST(v ast.Value) interface{} {
	switch v := v.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.IntValue:
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			return n
		}
		return v.Value
	case *ast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.ListValue:
		out := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			out = append(out, ValueFromAST(item))
		}
		return out
	case *ast.ObjectValue:
		out := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = ValueFromAST(f.Value)
		}
		return out
	default:
		return nil
	}
}
