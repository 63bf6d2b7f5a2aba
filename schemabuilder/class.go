package schemabuilder

import (
	"fmt"
	"sort"

	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/internal/logging"
)

// declareClass registers the output object, edge and connection of a class
// with empty field tables, so fields of classes generated earlier can point
// at classes generated later.
func (sb *schemaBuilder) declareClass(c datamodel.ClassWithConfig) {
	name := graphQLClassName(c.Class.ClassName)
	ct := &classTypes{class: c.Class, config: c.Config, name: name}

	output := &graphql.Object{
		Name:        name,
		Description: fmt.Sprintf("The %s object type is used in operations that involve outputting objects of %s class.", name, name),
		Fields:      map[string]*graphql.Field{},
		Interfaces:  map[string]*graphql.Interface{sb.node.Name: sb.node},
	}
	if sb.registerType(output, false) {
		ct.output = output
		sb.node.Types[name] = output
	}

	if ct.output != nil {
		edge := &graphql.Object{
			Name:        edgeName(name),
			Description: fmt.Sprintf("An edge in a connection of %s objects.", name),
			Fields: map[string]*graphql.Field{
				"cursor": {Type: nonNull(graphql.String), Description: "A cursor for use in pagination."},
				"node":   {Type: ct.output, Description: "The item at the end of the edge."},
			},
		}
		if sb.registerType(edge, false) {
			ct.edge = edge
		}
	}

	if ct.edge != nil {
		connection := &graphql.Object{
			Name:        connectionName(name),
			Description: fmt.Sprintf("A connection to a list of %s objects.", name),
			Fields: map[string]*graphql.Field{
				"edges":    {Type: listOf(ct.edge)},
				"pageInfo": {Type: nonNull(sb.reg.Type("PageInfo"))},
				"count":    {Type: nonNull(graphql.Int)},
			},
		}
		if sb.registerType(connection, true) {
			ct.connection = connection
		}
	}

	sb.classes = append(sb.classes, ct)
	sb.byClass[c.Class.ClassName] = ct
}

// loadClassFields fills the output object of a class.
func (sb *schemaBuilder) loadClassFields(ct *classTypes) {
	if ct.output == nil {
		return
	}

	fields := ct.output.Fields
	fields[fieldID] = &graphql.Field{Type: nonNull(graphql.ID), Description: "The ID of the object, unique across all types."}
	fields[fieldObjectID] = &graphql.Field{Type: nonNull(graphql.ID), Description: "The object id."}
	fields[fieldCreatedAt] = &graphql.Field{Type: nonNull(Date), Description: "The date in which the object was created."}
	fields[fieldUpdatedAt] = &graphql.Field{Type: nonNull(Date), Description: "The date in which the object was last updated."}
	fields[fieldACL] = &graphql.Field{Type: nonNull(ACL), Description: "The access control list of the object."}

	for _, name := range sb.classFieldNames(ct, ct.config.OutputFields()) {
		ft := ct.class.Fields[name]
		if ct.class.ClassName == datamodel.UsersClass && name == "password" {
			continue
		}
		t, ok := sb.outputType(ct, name, ft)
		if !ok {
			continue
		}
		fields[name] = &graphql.Field{
			Type:        t,
			Description: fmt.Sprintf("This is the object %s.", name),
		}
	}
}

// classFieldNames returns the class fields in lexical order, restricted to
// allowed when it is non-nil. Default fields are never returned.
func (sb *schemaBuilder) classFieldNames(ct *classTypes, allowed []string) []string {
	var allow map[string]struct{}
	if allowed != nil {
		allow = make(map[string]struct{}, len(allowed))
		for _, n := range allowed {
			allow[n] = struct{}{}
		}
	}

	names := make([]string, 0, len(ct.class.Fields))
	for name := range ct.class.Fields {
		if isDefaultField(name) {
			continue
		}
		if allow != nil {
			if _, ok := allow[name]; !ok {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sb *schemaBuilder) outputType(ct *classTypes, name string, ft datamodel.FieldType) (graphql.Type, bool) {
	switch ft.Type {
	case datamodel.TypePointer:
		if target, ok := sb.byClass[ft.TargetClass]; ok && target.output != nil {
			return target.output, true
		}
		return Object, true
	case datamodel.TypeRelation:
		if target, ok := sb.byClass[ft.TargetClass]; ok && target.connection != nil {
			return nonNull(target.connection), true
		}
		return Object, true
	}

	t, ok := scalarFor(ft.Type)
	if !ok {
		logging.Warn(sb.log, fmt.Sprintf("Field %s of class %s could not be added to the auto schema because its type %s is not supported.", name, ct.class.ClassName, ft.Type))
		return nil, false
	}
	return t, true
}
