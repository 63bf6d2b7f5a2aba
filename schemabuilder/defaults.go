package schemabuilder

import (
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/graphql"
)

// loadDefaultTypes registers the custom scalars and the pagination type.
func (sb *schemaBuilder) loadDefaultTypes() error {
	for _, s := range defaultScalars {
		if err := sb.mustRegisterType(s); err != nil {
			return err
		}
	}

	return sb.mustRegisterType(&graphql.Object{
		Name:        "PageInfo",
		Description: "The PageInfo object type is used for pagination.",
		Fields: map[string]*graphql.Field{
			"hasPreviousPage": {Type: nonNull(graphql.Boolean), Description: "This is the previous page."},
			"hasNextPage":     {Type: nonNull(graphql.Boolean), Description: "This is the next page."},
			"startCursor":     {Type: graphql.String, Description: "This shows the first item."},
			"endCursor":       {Type: graphql.String, Description: "This shows the last item."},
		},
	})
}

// loadRelay registers the Node interface and the node query.
func (sb *schemaBuilder) loadRelay() error {
	sb.node = &graphql.Interface{
		Name:        "Node",
		Description: "An object with an ID",
		Types:       map[string]*graphql.Object{},
		Fields: map[string]*graphql.Field{
			"id": {Type: nonNull(graphql.ID), Description: "The ID of an object"},
		},
	}
	if err := sb.mustRegisterType(sb.node); err != nil {
		return err
	}
	return sb.mustRegisterQuery("node", &graphql.Field{
		Type:        sb.node,
		Description: "Fetches an object given its ID",
		Args:        map[string]graphql.Type{"id": nonNull(graphql.ID)},
	})
}

// loadClassAdminTypes registers the types the class administration queries
// and mutations return and accept.
func (sb *schemaBuilder) loadClassAdminTypes() error {
	schemaField := &graphql.Object{
		Name:        "SchemaField",
		Description: "The SchemaField object type is used to return the schema field of a class.",
		Fields: map[string]*graphql.Field{
			"name":        {Type: nonNull(graphql.String), Description: "This is the field name."},
			"type":        {Type: nonNull(graphql.String), Description: "This is the field type."},
			"targetClass": {Type: graphql.String, Description: "This is the class the pointer or relation targets."},
		},
	}
	if err := sb.mustRegisterType(schemaField); err != nil {
		return err
	}

	if err := sb.mustRegisterType(&graphql.Object{
		Name:        "Class",
		Description: "The Class object type is used to return the information about an object class.",
		Fields: map[string]*graphql.Field{
			"name":         {Type: nonNull(graphql.String), Description: "This is the name of the object class."},
			"schemaFields": {Type: nonNull(listOf(nonNull(schemaField))), Description: "These are the schema's fields of the object class."},
		},
	}); err != nil {
		return err
	}

	schemaFieldInput := &graphql.InputObject{
		Name:        "SchemaFieldInput",
		Description: "The SchemaFieldInput is used to specify a field of an object class schema.",
		InputFields: map[string]graphql.Type{
			"name":        nonNull(graphql.String),
			"type":        nonNull(graphql.String),
			"targetClass": graphql.String,
		},
	}
	if err := sb.mustRegisterType(schemaFieldInput); err != nil {
		return err
	}
	return sb.mustRegisterType(&graphql.InputObject{
		Name:        "SchemaFieldsInput",
		Description: "The SchemaFieldsInput is used to specify the fields of an object class schema.",
		InputFields: map[string]graphql.Type{
			"addFields":    listOf(nonNull(schemaFieldInput)),
			"deleteFields": listOf(nonNull(graphql.String)),
		},
	})
}

// loadViewer registers the Viewer type when the users class was generated.
func (sb *schemaBuilder) loadViewer() error {
	users := sb.byClass[datamodel.UsersClass]
	if users == nil || users.output == nil {
		return nil
	}
	sb.viewer = &graphql.Object{
		Name:        "Viewer",
		Description: "The Viewer object type is used in operations that involve outputting the current user data.",
		Fields: map[string]*graphql.Field{
			"sessionToken": {Type: nonNull(graphql.String), Description: "The current user session token."},
			"user":         {Type: nonNull(users.output), Description: "This is the current user."},
		},
	}
	return sb.mustRegisterType(sb.viewer)
}

// loadArrayResult registers the union of every generated class object. It is
// skipped when no class object was generated.
func (sb *schemaBuilder) loadArrayResult() error {
	members := map[string]*graphql.Object{}
	for _, ct := range sb.classes {
		if ct.output != nil {
			members[ct.output.Name] = ct.output
		}
	}
	if len(members) == 0 {
		return nil
	}
	return sb.mustRegisterType(&graphql.Union{
		Name:        "ArrayResult",
		Description: "Use Inline Fragment on Array to get results: https://graphql.org/learn/queries/#inline-fragments",
		Types:       members,
	})
}
