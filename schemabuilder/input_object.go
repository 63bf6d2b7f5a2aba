package schemabuilder

import (
	"fmt"

	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/graphql"
)

// loadClassInputs registers the create and update field inputs of a class.
func (sb *schemaBuilder) loadClassInputs(ct *classTypes) {
	if ct.output == nil {
		return
	}

	if ct.config.CreateEnabled() {
		ct.createFields = sb.fieldsInput(ct, "Create"+ct.name+"FieldsInput", ct.config.CreateFields(), true)
	}
	if ct.config.UpdateEnabled() {
		ct.updateFields = sb.fieldsInput(ct, "Update"+ct.name+"FieldsInput", ct.config.UpdateFields(), false)
	}
}

func (sb *schemaBuilder) fieldsInput(ct *classTypes, name string, allowed []string, create bool) *graphql.InputObject {
	input := &graphql.InputObject{
		Name:        name,
		Description: fmt.Sprintf("The %s input type is used in operations that involve inputting objects of %s class.", name, ct.name),
		InputFields: map[string]graphql.Type{},
	}

	for _, field := range sb.classFieldNames(ct, allowed) {
		ft := ct.class.Fields[field]
		t, ok := inputType(ft)
		if !ok {
			continue
		}
		if create && ft.Required {
			t = nonNull(t)
		}
		input.InputFields[field] = t
	}
	input.InputFields[fieldACL] = ACL

	if !sb.registerType(input, false) {
		return nil
	}
	return input
}

// inputType maps a class field to the type accepted on writes. Pointers are
// written as the target's id and relations as a list of ids.
func inputType(ft datamodel.FieldType) (graphql.Type, bool) {
	switch ft.Type {
	case datamodel.TypePointer:
		return graphql.ID, true
	case datamodel.TypeRelation:
		return listOf(nonNull(graphql.ID)), true
	}
	return scalarFor(ft.Type)
}

// mutationInput returns the relay-style input object of a class mutation:
// the id of the object (for update and delete), its fields and a client
// mutation id.
func mutationInput(name string, withID bool, fields *graphql.InputObject) *graphql.InputObject {
	input := &graphql.InputObject{
		Name:        name,
		InputFields: map[string]graphql.Type{"clientMutationId": graphql.String},
	}
	if withID {
		input.InputFields["id"] = nonNull(graphql.ID)
	}
	if fields != nil {
		input.InputFields["fields"] = fields
	}
	return input
}
