package schemabuilder

import (
	"fmt"

	"go.appointy.com/autoschema/graphql"
)

// loadClassQueries registers the get and find queries of a class.
func (sb *schemaBuilder) loadClassQueries(ct *classTypes) {
	if ct.output == nil {
		return
	}
	lower := fieldName(ct.name)

	if ct.config.GetEnabled() {
		_, _ = sb.reg.RegisterQuery(lower, &graphql.Field{
			Type:        nonNull(ct.output),
			Description: fmt.Sprintf("The %s query can be used to get an object of the %s class by its id.", lower, ct.name),
			Args:        map[string]graphql.Type{"id": nonNull(graphql.ID)},
		}, false, false)
	}

	if ct.config.FindEnabled() && ct.connection != nil {
		plural := pluralName(lower)
		_, _ = sb.reg.RegisterQuery(plural, &graphql.Field{
			Type:        nonNull(ct.connection),
			Description: fmt.Sprintf("The %s query can be used to find objects of the %s class.", plural, ct.name),
			Args: map[string]graphql.Type{
				"where":  Object,
				"skip":   graphql.Int,
				"first":  graphql.Int,
				"after":  graphql.String,
				"last":   graphql.Int,
				"before": graphql.String,
			},
		}, false, false)
	}
}

// loadDefaultQueries registers the queries every schema has.
func (sb *schemaBuilder) loadDefaultQueries(usersEnabled bool) error {
	if err := sb.mustRegisterQuery("health", &graphql.Field{
		Type:        nonNull(graphql.Boolean),
		Description: "The health query can be used to check if the server is up and running.",
	}); err != nil {
		return err
	}

	if usersEnabled && sb.viewer != nil {
		if err := sb.mustRegisterQuery("viewer", &graphql.Field{
			Type:        nonNull(sb.viewer),
			Description: "The viewer query can be used to return the current user data.",
		}); err != nil {
			return err
		}
	}

	class := sb.reg.Type("Class")
	if err := sb.mustRegisterQuery("class", &graphql.Field{
		Type:        nonNull(class),
		Description: "The class query can be used to retrieve an existing object class.",
		Args:        map[string]graphql.Type{"name": nonNull(graphql.String)},
	}); err != nil {
		return err
	}
	return sb.mustRegisterQuery("classes", &graphql.Field{
		Type:        nonNull(listOf(nonNull(class))),
		Description: "The classes query can be used to retrieve the existing object classes.",
	})
}
