package graphql

import (
	"fmt"
)

// Clone returns a copy of a named type whose field tables can be changed
// without affecting t. Wrappers and Named references are returned as is.
func Clone(t Type) Type {
	switch t := t.(type) {
	case *Object:
		c := *t
		c.Fields = cloneFields(t.Fields)
		c.Interfaces = make(map[string]*Interface, len(t.Interfaces))
		for k, v := range t.Interfaces {
			c.Interfaces[k] = v
		}
		return &c
	case *Interface:
		c := *t
		c.Fields = cloneFields(t.Fields)
		c.Types = make(map[string]*Object, len(t.Types))
		for k, v := range t.Types {
			c.Types[k] = v
		}
		return &c
	case *Union:
		c := *t
		c.Types = make(map[string]*Object, len(t.Types))
		for k, v := range t.Types {
			c.Types[k] = v
		}
		return &c
	case *InputObject:
		c := *t
		c.InputFields = make(map[string]Type, len(t.InputFields))
		for k, v := range t.InputFields {
			c.InputFields[k] = v
		}
		return &c
	case *Enum:
		c := *t
		c.Values = append([]string(nil), t.Values...)
		return &c
	case *Scalar:
		if isBuiltinInstance(t) {
			return t
		}
		c := *t
		return &c
	default:
		return t
	}
}

// CloneField returns a copy of f with its own argument table.
func CloneField(f *Field) *Field {
	c := *f
	if f.Args != nil {
		c.Args = make(map[string]Type, len(f.Args))
		for k, v := range f.Args {
			c.Args[k] = v
		}
	}
	return &c
}

func cloneFields(fields map[string]*Field) map[string]*Field {
	c := make(map[string]*Field, len(fields))
	for k, f := range fields {
		c[k] = CloneField(f)
	}
	return c
}

// Link rebinds every type reference held by the types in the map to the
// map's instance of the same name, so each name resolves to exactly one
// instance. Interface implementations are recomputed from the objects.
//
// Link rewrites the given types in place; pass clones of anything shared.
func Link(types map[string]Type) error {
	for _, name := range sortedKeys(types) {
		if i, ok := types[name].(*Interface); ok {
			i.Types = make(map[string]*Object)
		}
	}

	for _, name := range sortedKeys(types) {
		switch t := types[name].(type) {
		case *Object:
			if err := bindFields(types, t.Name, t.Fields); err != nil {
				return err
			}
			interfaces := make(map[string]*Interface, len(t.Interfaces))
			for iname := range t.Interfaces {
				i, ok := types[iname].(*Interface)
				if !ok {
					return fmt.Errorf("%w: %s implements %s which is not an interface", ErrUnresolvedType, t.Name, iname)
				}
				interfaces[iname] = i
				i.Types[t.Name] = t
			}
			t.Interfaces = interfaces
		case *Interface:
			if err := bindFields(types, t.Name, t.Fields); err != nil {
				return err
			}
		case *Union:
			members := make(map[string]*Object, len(t.Types))
			for mname := range t.Types {
				o, ok := types[mname].(*Object)
				if !ok {
					return fmt.Errorf("%w: union %s member %s is not an object", ErrUnresolvedType, t.Name, mname)
				}
				members[mname] = o
			}
			t.Types = members
		case *InputObject:
			for fname, ft := range t.InputFields {
				bound, err := bind(types, ft)
				if err != nil {
					return fmt.Errorf("%s.%s: %w", t.Name, fname, err)
				}
				t.InputFields[fname] = bound
			}
		}
	}
	return nil
}

func bindFields(types map[string]Type, owner string, fields map[string]*Field) error {
	for fname, f := range fields {
		bound, err := bind(types, f.Type)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", owner, fname, err)
		}
		f.Type = bound
		for aname, at := range f.Args {
			bound, err := bind(types, at)
			if err != nil {
				return fmt.Errorf("%s.%s(%s): %w", owner, fname, aname, err)
			}
			f.Args[aname] = bound
		}
	}
	return nil
}

// bind resolves the innermost named type of ref by name and re-applies the
// List/NonNull wrappers around the resolved instance.
func bind(types map[string]Type, ref Type) (Type, error) {
	var wrappers []Type
	inner := ref
	for {
		switch w := inner.(type) {
		case *List:
			wrappers = append(wrappers, w)
			inner = w.Type
			continue
		case *NonNull:
			wrappers = append(wrappers, w)
			inner = w.Type
			continue
		}
		break
	}

	name := NameOf(inner)
	resolved, ok := types[name]
	if !ok {
		if !IsBuiltinScalar(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedType, name)
		}
		for _, s := range builtinScalars {
			if s.Type == name {
				resolved = s
			}
		}
	}

	for i := len(wrappers) - 1; i >= 0; i-- {
		switch wrappers[i].(type) {
		case *List:
			resolved = &List{Type: resolved}
		case *NonNull:
			resolved = &NonNull{Type: resolved}
		}
	}
	return resolved, nil
}

// CloneDirective returns a copy of d with its own argument table.
func CloneDirective(d *DirectiveDefinition) *DirectiveDefinition {
	c := *d
	c.Locations = append([]string(nil), d.Locations...)
	c.Args = make(map[string]Type, len(d.Args))
	for k, v := range d.Args {
		c.Args[k] = v
	}
	return &c
}

// LinkDirectives binds the argument types of each directive to the instances
// in types. The directives are changed in place.
func LinkDirectives(types map[string]Type, directives []*DirectiveDefinition) error {
	for _, d := range directives {
		for aname, at := range d.Args {
			bound, err := bind(types, at)
			if err != nil {
				return fmt.Errorf("@%s(%s): %w", d.Name, aname, err)
			}
			d.Args[aname] = bound
		}
	}
	return nil
}
