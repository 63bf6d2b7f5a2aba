package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/printer"
)

// PrintSchema renders the schema as SDL. Built-in scalars and introspection
// types are omitted; types are printed in lexical order.
func PrintSchema(s *Schema) string {
	return fmt.Sprint(printer.Print(ToDocument(s)))
}

// ToDocument converts the schema into a graphql-go AST document.
func ToDocument(s *Schema) *ast.Document {
	var defs []ast.Node

	if op := schemaDefinition(s); op != nil {
		defs = append(defs, op)
	}
	for _, d := range s.Directives {
		def := ast.NewDirectiveDefinition(&ast.DirectiveDefinition{
			Name:      astName(d.Name),
			Arguments: argsToAST(d.Args),
		})
		for _, loc := range d.Locations {
			def.Locations = append(def.Locations, astName(loc))
		}
		defs = append(defs, def)
	}

	for _, name := range s.TypeNames() {
		if IsBuiltinScalar(name) || IsIntrospectionName(name) {
			continue
		}
		if def := typeDefinition(s.types[name]); def != nil {
			defs = append(defs, def)
		}
	}
	return ast.NewDocument(&ast.Document{Definitions: defs})
}

// schemaDefinition is only needed when a root type has a non-default name.
func schemaDefinition(s *Schema) ast.Node {
	var ops []*ast.OperationTypeDefinition
	custom := false
	for _, root := range []struct {
		op, fallback string
		obj          *Object
	}{
		{"query", "Query", s.Query},
		{"mutation", "Mutation", s.Mutation},
		{"subscription", "Subscription", s.Subscription},
	} {
		if root.obj == nil {
			continue
		}
		if root.obj.Name != root.fallback {
			custom = true
		}
		ops = append(ops, ast.NewOperationTypeDefinition(&ast.OperationTypeDefinition{
			Operation: root.op,
			Type:      astNamed(root.obj.Name),
		}))
	}
	if !custom {
		return nil
	}
	return ast.NewSchemaDefinition(&ast.SchemaDefinition{OperationTypes: ops})
}

func typeDefinition(t Type) ast.Node {
	switch t := t.(type) {
	case *Object:
		def := ast.NewObjectDefinition(&ast.ObjectDefinition{
			Name:   astName(t.Name),
			Fields: fieldsToAST(t.Fields),
		})
		for _, name := range sortedKeys(t.Interfaces) {
			def.Interfaces = append(def.Interfaces, astNamed(name))
		}
		if t.AST != nil {
			def.Directives = t.AST.Directives
		}
		return def
	case *Interface:
		return ast.NewInterfaceDefinition(&ast.InterfaceDefinition{
			Name:   astName(t.Name),
			Fields: fieldsToAST(t.Fields),
		})
	case *Union:
		def := ast.NewUnionDefinition(&ast.UnionDefinition{Name: astName(t.Name)})
		for _, name := range sortedKeys(t.Types) {
			def.Types = append(def.Types, astNamed(name))
		}
		return def
	case *Scalar:
		def := ast.NewScalarDefinition(&ast.ScalarDefinition{Name: astName(t.Type)})
		if t.SpecifiedByURL != "" {
			def.Directives = []*ast.Directive{stringDirective("specifiedBy", "url", t.SpecifiedByURL)}
		}
		return def
	case *Enum:
		def := ast.NewEnumDefinition(&ast.EnumDefinition{Name: astName(t.Type)})
		for _, v := range t.Values {
			def.Values = append(def.Values, ast.NewEnumValueDefinition(&ast.EnumValueDefinition{Name: astName(v)}))
		}
		return def
	case *InputObject:
		def := ast.NewInputObjectDefinition(&ast.InputObjectDefinition{Name: astName(t.Name)})
		for _, name := range sortedKeys(t.InputFields) {
			def.Fields = append(def.Fields, ast.NewInputValueDefinition(&ast.InputValueDefinition{
				Name: astName(name),
				Type: typeToAST(t.InputFields[name]),
			}))
		}
		return def
	default:
		return nil
	}
}

func fieldsToAST(fields map[string]*Field) []*ast.FieldDefinition {
	out := make([]*ast.FieldDefinition, 0, len(fields))
	for _, name := range sortedKeys(fields) {
		f := fields[name]
		def := ast.NewFieldDefinition(&ast.FieldDefinition{
			Name:      astName(name),
			Arguments: argsToAST(f.Args),
			Type:      typeToAST(f.Type),
		})
		if f.AST != nil {
			def.Directives = f.AST.Directives
		} else if f.IsDeprecated {
			reason := "No longer supported"
			if f.DeprecationReason != nil {
				reason = *f.DeprecationReason
			}
			def.Directives = []*ast.Directive{stringDirective("deprecated", "reason", reason)}
		}
		out = append(out, def)
	}
	return out
}

func argsToAST(args map[string]Type) []*ast.InputValueDefinition {
	out := make([]*ast.InputValueDefinition, 0, len(args))
	for _, name := range sortedKeys(args) {
		out = append(out, ast.NewInputValueDefinition(&ast.InputValueDefinition{
			Name: astName(name),
			Type: typeToAST(args[name]),
		}))
	}
	return out
}

func typeToAST(t Type) ast.Type {
	switch t := t.(type) {
	case *List:
		return ast.NewList(&ast.List{Type: typeToAST(t.Type)})
	case *NonNull:
		return ast.NewNonNull(&ast.NonNull{Type: typeToAST(t.Type)})
	default:
		return astNamed(NameOf(t))
	}
}

func stringDirective(name, arg, value string) *ast.Directive {
	return ast.NewDirective(&ast.Directive{
		Name: astName(name),
		Arguments: []*ast.Argument{ast.NewArgument(&ast.Argument{
			Name:  astName(arg),
			Value: ast.NewStringValue(&ast.StringValue{Value: value}),
		})},
	})
}

func astName(value string) *ast.Name {
	return ast.NewName(&ast.Name{Value: value})
}

func astNamed(name string) *ast.Named {
	return ast.NewNamed(&ast.Named{Name: astName(name)})
}
