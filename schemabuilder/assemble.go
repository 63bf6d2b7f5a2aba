package schemabuilder

import (
	"fmt"

	"github.com/go-logr/logr"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/registry"
)

// Assemble builds the root types from the registered root fields and returns
// the auto schema. A root type is created only when it has fields. Root types
// are registered like any other type, so each appears in the schema exactly
// once.
func Assemble(reg *registry.Registry) (*graphql.Schema, error) {
	query, err := rootType(reg, "Query", "Query is the top level type for queries.", reg.Queries())
	if err != nil {
		return nil, err
	}
	mutation, err := rootType(reg, "Mutation", "Mutation is the top level type for mutations.", reg.Mutations())
	if err != nil {
		return nil, err
	}
	subscription, err := rootType(reg, "Subscription", "Subscription is the top level type for subscriptions.", reg.Subscriptions())
	if err != nil {
		return nil, err
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:        query,
		Mutation:     mutation,
		Subscription: subscription,
		Types:        reg.Types(),
	})
	if err != nil {
		return nil, fmt.Errorf("assembling auto schema: %w", err)
	}
	return schema, nil
}

func rootType(reg *registry.Registry, name, description string, fields map[string]*graphql.Field) (*graphql.Object, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	root := &graphql.Object{Name: name, Description: description, Fields: fields}
	if _, err := reg.RegisterType(root, true, true, true); err != nil {
		return nil, err
	}
	return root, nil
}

// Build generates and assembles the auto schema for in with a fresh
// registry.
func Build(in Input, log logr.Logger) (*graphql.Schema, *registry.Registry, error) {
	reg := registry.New(log)
	if err := Generate(reg, in, log); err != nil {
		return nil, nil, err
	}
	schema, err := Assemble(reg)
	if err != nil {
		return nil, nil, err
	}
	return schema, reg, nil
}
