package introspection

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
	"go.appointy.com/autoschema/graphql"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type DirectiveLocation string

const (
	QUERY                  DirectiveLocation = "QUERY"
	MUTATION               DirectiveLocation = "MUTATION"
	FIELD                  DirectiveLocation = "FIELD"
	FRAGMENT_SPREAD        DirectiveLocation = "FRAGMENT_SPREAD"
	INLINE_FRAGMENT        DirectiveLocation = "INLINE_FRAGMENT"
	SUBSCRIPTION           DirectiveLocation = "SUBSCRIPTION"
	SCALAR_LOCATION        DirectiveLocation = "SCALAR"
	FIELD_DEFINITION       DirectiveLocation = "FIELD_DEFINITION"
	ARGUMENT_DEFINITION    DirectiveLocation = "ARGUMENT_DEFINITION"
	INPUT_FIELD_DEFINITION DirectiveLocation = "INPUT_FIELD_DEFINITION"
)

type TypeKind string

const (
	SCALAR       TypeKind = "SCALAR"
	OBJECT       TypeKind = "OBJECT"
	INTERFACE    TypeKind = "INTERFACE"
	UNION        TypeKind = "UNION"
	ENUM         TypeKind = "ENUM"
	INPUT_OBJECT TypeKind = "INPUT_OBJECT"
	LIST         TypeKind = "LIST"
	NON_NULL     TypeKind = "NON_NULL"
)

type InputValue struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Type         *TypeRef `json:"type"`
	DefaultValue *string  `json:"defaultValue"`

	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason,omitempty"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason,omitempty"`
}

type Field struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Args              []InputValue `json:"args"`
	Type              *TypeRef     `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason,omitempty"`
}

// TypeRef is the recursive kind/name/ofType shape used for field types.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

type Type struct {
	Kind           TypeKind     `json:"kind"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	SpecifiedByURL *string      `json:"specifiedByURL"`
	Fields         []Field      `json:"fields"`
	InputFields    []InputValue `json:"inputFields"`
	Interfaces     []TypeRef    `json:"interfaces"`
	EnumValues     []EnumValue  `json:"enumValues"`
	PossibleTypes  []TypeRef    `json:"possibleTypes"`
}

type Directive struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Locations   []DirectiveLocation `json:"locations"`
	Args        []InputValue        `json:"args"`
}

type Schema struct {
	QueryType        *TypeRef    `json:"queryType"`
	MutationType     *TypeRef    `json:"mutationType"`
	SubscriptionType *TypeRef    `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

// Compute renders the introspection view of schema. Types, fields and
// arguments are sorted by name.
func Compute(schema *graphql.Schema) *Schema {
	out := &Schema{
		QueryType:        rootRef(schema.Query),
		MutationType:     rootRef(schema.Mutation),
		SubscriptionType: rootRef(schema.Subscription),
		Directives:       []Directive{includeDirective, skipDirective, deprecatedDirective, specifiedByDirective},
	}

	for _, name := range schema.TypeNames() {
		out.Types = append(out.Types, fullType(schema.Type(name)))
	}
	for _, d := range schema.Directives {
		directive := Directive{Name: d.Name, Description: d.Description, Args: inputValues(d.Args)}
		for _, loc := range d.Locations {
			directive.Locations = append(directive.Locations, DirectiveLocation(loc))
		}
		out.Directives = append(out.Directives, directive)
	}
	return out
}

// ComputeSchemaJSON returns the `{"__schema": ...}` introspection document.
func ComputeSchemaJSON(schema *graphql.Schema) ([]byte, error) {
	return json.MarshalIndent(map[string]interface{}{"__schema": Compute(schema)}, "", "  ")
}

func rootRef(o *graphql.Object) *TypeRef {
	if o == nil {
		return nil
	}
	return typeRef(o)
}

func kindOf(t graphql.Type) TypeKind {
	switch t.(type) {
	case *graphql.Object:
		return OBJECT
	case *graphql.Union:
		return UNION
	case *graphql.Interface:
		return INTERFACE
	case *graphql.Scalar:
		return SCALAR
	case *graphql.Enum:
		return ENUM
	case *graphql.List:
		return LIST
	case *graphql.InputObject:
		return INPUT_OBJECT
	case *graphql.NonNull:
		return NON_NULL
	default:
		return ""
	}
}

func typeRef(t graphql.Type) *TypeRef {
	ref := &TypeRef{Kind: kindOf(t)}
	switch t := t.(type) {
	case *graphql.List:
		ref.OfType = typeRef(t.Type)
	case *graphql.NonNull:
		ref.OfType = typeRef(t.Type)
	default:
		name := graphql.NameOf(t)
		ref.Name = &name
	}
	return ref
}

func fullType(t graphql.Type) Type {
	out := Type{Kind: kindOf(t), Name: graphql.NameOf(t)}

	switch t := t.(type) {
	case *graphql.Object:
		out.Description = t.Description
		out.Fields = fields(t.Fields)
		out.Interfaces = []TypeRef{}
		for _, i := range t.Interfaces {
			out.Interfaces = append(out.Interfaces, *typeRef(i))
		}
		sortRefs(out.Interfaces)
	case *graphql.Interface:
		out.Description = t.Description
		out.Fields = fields(t.Fields)
		for _, o := range t.Types {
			out.PossibleTypes = append(out.PossibleTypes, *typeRef(o))
		}
		sortRefs(out.PossibleTypes)
	case *graphql.Union:
		out.Description = t.Description
		for _, o := range t.Types {
			out.PossibleTypes = append(out.PossibleTypes, *typeRef(o))
		}
		sortRefs(out.PossibleTypes)
	case *graphql.Scalar:
		out.Description = t.Description
		if t.SpecifiedByURL != "" {
			url := t.SpecifiedByURL
			out.SpecifiedByURL = &url
		}
	case *graphql.Enum:
		out.Description = t.Description
		for _, v := range t.Values {
			out.EnumValues = append(out.EnumValues, EnumValue{Name: v})
		}
	case *graphql.InputObject:
		out.Description = t.Description
		out.InputFields = inputValues(t.InputFields)
	}
	return out
}

func fields(m map[string]*graphql.Field) []Field {
	out := make([]Field, 0, len(m))
	for name, f := range m {
		out = append(out, Field{
			Name:              name,
			Description:       f.Description,
			Args:              inputValues(f.Args),
			Type:              typeRef(f.Type),
			IsDeprecated:      f.IsDeprecated,
			DeprecationReason: f.DeprecationReason,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func inputValues(m map[string]graphql.Type) []InputValue {
	out := make([]InputValue, 0, len(m))
	for name, t := range m {
		out = append(out, InputValue{Name: name, Type: typeRef(t)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortRefs(refs []TypeRef) {
	sort.Slice(refs, func(i, j int) bool { return *refs[i].Name < *refs[j].Name })
}

var includeDirective = Directive{
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Locations:   []DirectiveLocation{FIELD, FRAGMENT_SPREAD, INLINE_FRAGMENT},
	Name:        "include",
	Args: []InputValue{
		{Name: "if", Type: nonNull(graphql.Boolean), Description: "Included when true."},
	},
}

var skipDirective = Directive{
	Description: "Directs the executor to skip this field or fragment only when the `if` argument is true.",
	Locations:   []DirectiveLocation{FIELD, FRAGMENT_SPREAD, INLINE_FRAGMENT},
	Name:        "skip",
	Args: []InputValue{
		{Name: "if", Type: nonNull(graphql.Boolean), Description: "Skipped when true."},
	},
}

var deprecatedDirective = Directive{
	Description: "Marks an element of a GraphQL schema as no longer supported.",
	Locations:   []DirectiveLocation{FIELD_DEFINITION, ARGUMENT_DEFINITION, INPUT_FIELD_DEFINITION},
	Name:        "deprecated",
	Args: []InputValue{
		{
			Name:         "reason",
			Type:         typeRef(graphql.String),
			Description:  "Explains why this element was deprecated, usually also including a suggestion for how to access supported similar data.",
			DefaultValue: func() *string { s := `"No longer supported"`; return &s }(),
		},
	},
}

var specifiedByDirective = Directive{
	Description: "Exposes a URL that specifies the behaviour of this scalar.",
	Locations:   []DirectiveLocation{SCALAR_LOCATION},
	Name:        "specifiedBy",
	Args: []InputValue{
		{Name: "url", Type: nonNull(graphql.String), Description: "The URL that specifies the behaviour of this scalar."},
	},
}

func nonNull(t graphql.Type) *TypeRef {
	return typeRef(&graphql.NonNull{Type: t})
}
