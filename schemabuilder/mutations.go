package schemabuilder

import (
	"fmt"
	"sort"

	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/graphql"
)

// loadClassMutations registers the create, update and delete mutations of a
// class together with their input and payload types.
func (sb *schemaBuilder) loadClassMutations(ct *classTypes) {
	if ct.output == nil {
		return
	}
	lower := fieldName(ct.name)

	if ct.config.CreateEnabled() {
		sb.classMutation(ct, "create", lower, false, ct.createFields,
			fmt.Sprintf("The create%s mutation can be used to create a new object of the %s class.", ct.name, ct.name))
	}
	if ct.config.UpdateEnabled() {
		sb.classMutation(ct, "update", lower, true, ct.updateFields,
			fmt.Sprintf("The update%s mutation can be used to update an object of the %s class.", ct.name, ct.name))
	}
	if ct.config.DestroyEnabled() {
		sb.classMutation(ct, "delete", lower, true, nil,
			fmt.Sprintf("The delete%s mutation can be used to delete an object of the %s class.", ct.name, ct.name))
	}
}

func (sb *schemaBuilder) classMutation(ct *classTypes, verb, lower string, withID bool, fields *graphql.InputObject, description string) {
	name := verb + ct.name
	typeName := graphQLClassName(name)

	input := mutationInput(typeName+"Input", withID, fields)
	payload := &graphql.Object{
		Name: typeName + "Payload",
		Fields: map[string]*graphql.Field{
			lower:              {Type: nonNull(ct.output), Description: "This is the " + verb + "d object."},
			"clientMutationId": clientMutationID(),
		},
	}
	field := &graphql.Field{
		Type:        nonNull(payload),
		Description: description,
		Args:        map[string]graphql.Type{"input": nonNull(input)},
	}

	// Input and payload types only exist for a mutation that can be added.
	switch {
	case !sb.reg.MutationAvailable(name, false):
		_, _ = sb.reg.RegisterMutation(name, field, false, false)
		return
	case !sb.reg.TypeAvailable(input.Name, false, false):
		sb.registerType(input, false)
		return
	case !sb.reg.TypeAvailable(payload.Name, false, false):
		sb.registerType(payload, false)
		return
	}

	sb.registerType(input, false)
	sb.registerType(payload, false)
	_, _ = sb.reg.RegisterMutation(name, field, false, false)
}

// loadDefaultMutations registers the session, file, function and class
// administration mutations.
func (sb *schemaBuilder) loadDefaultMutations(usersEnabled bool, functionNames []string) error {
	if usersEnabled && sb.viewer != nil {
		if err := sb.loadUserMutations(); err != nil {
			return err
		}
	}

	if err := sb.relayMutation("createFile", "The createFile mutation can be used to create and upload a new file.",
		map[string]graphql.Type{"upload": nonNull(File)},
		map[string]*graphql.Field{"fileInfo": {Type: nonNull(File), Description: "This is the created file info."}},
	); err != nil {
		return err
	}

	if len(functionNames) > 0 {
		values := append([]string(nil), functionNames...)
		sort.Strings(values)
		functions := &graphql.Enum{
			Type:        "CloudCodeFunction",
			Description: "The CloudCodeFunction enum type contains a list of all available cloud code functions.",
			Values:      values,
		}
		if err := sb.mustRegisterType(functions); err != nil {
			return err
		}
		if err := sb.relayMutation("callCloudCode", "The callCloudCode mutation can be used to invoke a cloud code function.",
			map[string]graphql.Type{"functionName": nonNull(functions), "params": Object},
			map[string]*graphql.Field{"result": {Type: Any, Description: "This is the result value of the cloud code function execution."}},
		); err != nil {
			return err
		}
	}

	class := sb.reg.Type("Class")
	classPayload := func() map[string]*graphql.Field {
		return map[string]*graphql.Field{"class": {Type: nonNull(class), Description: "This is the affected class."}}
	}
	if err := sb.relayMutation("createClass", "The createClass mutation can be used to create the schema for a new object class.",
		map[string]graphql.Type{"name": nonNull(graphql.String), "schemaFields": sb.reg.Type("SchemaFieldsInput")},
		classPayload(),
	); err != nil {
		return err
	}
	if err := sb.relayMutation("updateClass", "The updateClass mutation can be used to update the schema for an existing object class.",
		map[string]graphql.Type{"name": nonNull(graphql.String), "schemaFields": sb.reg.Type("SchemaFieldsInput")},
		classPayload(),
	); err != nil {
		return err
	}
	return sb.relayMutation("deleteClass", "The deleteClass mutation can be used to delete an existing object class.",
		map[string]graphql.Type{"name": nonNull(graphql.String)},
		classPayload(),
	)
}

func (sb *schemaBuilder) loadUserMutations() error {
	viewerPayload := func() map[string]*graphql.Field {
		return map[string]*graphql.Field{"viewer": {Type: nonNull(sb.viewer), Description: "This is the new user that was created, signed up and returned as a viewer."}}
	}

	signUp := map[string]graphql.Type{}
	if users := sb.byClass[datamodel.UsersClass]; users != nil && users.createFields != nil {
		signUp["fields"] = users.createFields
	}
	if err := sb.relayMutation("signUp", "The signUp mutation can be used to create and sign up a new user.", signUp, viewerPayload()); err != nil {
		return err
	}

	if err := sb.relayMutation("logIn", "The logIn mutation can be used to log in an existing user.",
		map[string]graphql.Type{"username": nonNull(graphql.String), "password": nonNull(graphql.String)},
		viewerPayload(),
	); err != nil {
		return err
	}

	return sb.relayMutation("logOut", "The logOut mutation can be used to log out an existing user.",
		map[string]graphql.Type{},
		map[string]*graphql.Field{"ok": {Type: nonNull(graphql.Boolean), Description: "It's always true."}},
	)
}

// relayMutation registers a default mutation name(input: NameInput!):
// NamePayload! with the given input fields and payload fields. Both carry a
// clientMutationId.
func (sb *schemaBuilder) relayMutation(name, description string, inputFields map[string]graphql.Type, payloadFields map[string]*graphql.Field) error {
	typeName := graphQLClassName(name)

	in := make(map[string]graphql.Type, len(inputFields)+1)
	for k, v := range inputFields {
		in[k] = v
	}
	in["clientMutationId"] = graphql.String
	input := &graphql.InputObject{Name: typeName + "Input", InputFields: in}
	if err := sb.mustRegisterType(input); err != nil {
		return err
	}

	out := make(map[string]*graphql.Field, len(payloadFields)+1)
	for k, v := range payloadFields {
		out[k] = v
	}
	out["clientMutationId"] = clientMutationID()
	payload := &graphql.Object{Name: typeName + "Payload", Fields: out}
	if err := sb.mustRegisterType(payload); err != nil {
		return err
	}

	return sb.mustRegisterMutation(name, &graphql.Field{
		Type:        nonNull(payload),
		Description: description,
		Args:        map[string]graphql.Type{"input": nonNull(input)},
	})
}
