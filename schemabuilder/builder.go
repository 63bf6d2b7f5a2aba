// Package schemabuilder generates the types and root fields of the auto schema
// from a class snapshot and assembles them into a schema.
//
// Every type and root field goes through a registry.Registry, which applies
// the reserved-name and collision rules:
//
//	reg := registry.New(log)
//	if err := schemabuilder.Generate(reg, input, log); err != nil {
//		return err
//	}
//	schema, err := schemabuilder.Assemble(reg)
package schemabuilder

import (
	"fmt"

	"github.com/go-logr/logr"
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/internal/logging"
	"go.appointy.com/autoschema/registry"
)

// Input is what one build generates a schema from.
type Input struct {
	// Classes are the classes left after filtering, in any order.
	Classes       []datamodel.ClassDescriptor
	Config        *datamodel.SchemaConfig
	FunctionNames []string
	UsersEnabled  bool
}

// classTypes are the types generated for one class. Nil members were not
// registered, either because of a collision or because the class config
// disabled them.
type classTypes struct {
	class  datamodel.ClassDescriptor
	config *datamodel.ClassConfig

	name       string
	output     *graphql.Object
	edge       *graphql.Object
	connection *graphql.Object

	createFields *graphql.InputObject
	updateFields *graphql.InputObject
}

type schemaBuilder struct {
	reg *registry.Registry
	log logr.Logger

	node    *graphql.Interface
	classes []*classTypes
	byClass map[string]*classTypes
	viewer  *graphql.Object
}

// Generate populates reg with the default types, the types of every class in
// in.Classes, the ArrayResult union and the default queries and mutations.
// Collisions on generated class names are logged and skipped; an error is
// returned only when a default type or field cannot be registered.
func Generate(reg *registry.Registry, in Input, log logr.Logger) error {
	sb := &schemaBuilder{
		reg:     reg,
		log:     log,
		byClass: make(map[string]*classTypes),
	}

	if err := sb.loadDefaultTypes(); err != nil {
		return err
	}
	if err := sb.loadRelay(); err != nil {
		return err
	}
	if err := sb.loadClassAdminTypes(); err != nil {
		return err
	}

	classes := datamodel.ClassesWithConfig(in.Classes, in.Config)
	for _, c := range classes {
		sb.declareClass(c)
	}
	for _, ct := range sb.classes {
		sb.loadClassFields(ct)
		sb.loadClassInputs(ct)
	}
	for _, ct := range sb.classes {
		sb.loadClassQueries(ct)
		sb.loadClassMutations(ct)
	}

	if in.UsersEnabled {
		if err := sb.loadViewer(); err != nil {
			return err
		}
	}
	if err := sb.loadArrayResult(); err != nil {
		return err
	}
	if err := sb.loadDefaultQueries(in.UsersEnabled); err != nil {
		return err
	}
	return sb.loadDefaultMutations(in.UsersEnabled, datamodel.ValidFunctionNames(in.FunctionNames, log))
}

// registerType registers t through the collision-checked path and reports
// whether it was added.
func (sb *schemaBuilder) registerType(t graphql.Type, skipConnectionCheck bool) bool {
	added, err := sb.reg.RegisterType(t, false, false, skipConnectionCheck)
	// Non-throwing registration only fails for unnamed types.
	if err != nil {
		logging.Warn(sb.log, err.Error())
		return false
	}
	return added != nil
}

// mustRegisterType registers a default type. Default types use reserved
// names and must never collide.
func (sb *schemaBuilder) mustRegisterType(t graphql.Type) error {
	if _, err := sb.reg.RegisterType(t, true, true, false); err != nil {
		return fmt.Errorf("registering default type: %w", err)
	}
	return nil
}

func (sb *schemaBuilder) mustRegisterQuery(name string, f *graphql.Field) error {
	if _, err := sb.reg.RegisterQuery(name, f, true, true); err != nil {
		return fmt.Errorf("registering default query: %w", err)
	}
	return nil
}

func (sb *schemaBuilder) mustRegisterMutation(name string, f *graphql.Field) error {
	if _, err := sb.reg.RegisterMutation(name, f, true, true); err != nil {
		return fmt.Errorf("registering default mutation: %w", err)
	}
	return nil
}
