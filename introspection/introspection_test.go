package introspection_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/introspection"
)

const sdl = `
directive @mock(with: String) on FIELD_DEFINITION

interface Node {
	id: ID!
}

type Post implements Node {
	id: ID!
	tags: [String!]
	old: String @deprecated(reason: "gone")
}

scalar Date @specifiedBy(url: "https://tools.ietf.org/html/rfc3339")

type Query {
	post(id: ID!): Post
	today: Date
}
`

func find(types []introspection.Type, name string) *introspection.Type {
	for i := range types {
		if types[i].Name == name {
			return &types[i]
		}
	}
	return nil
}

func TestCompute(t *testing.T) {
	schema, err := graphql.BuildSchema(sdl)
	require.NoError(t, err)

	out := introspection.Compute(schema)
	require.NotNil(t, out.QueryType)
	assert.Equal(t, "Query", *out.QueryType.Name)
	assert.Nil(t, out.MutationType)

	post := find(out.Types, "Post")
	require.NotNil(t, post)
	assert.Equal(t, introspection.OBJECT, post.Kind)
	require.Len(t, post.Fields, 3)
	assert.Equal(t, "id", post.Fields[0].Name, "fields are sorted")
	assert.True(t, post.Fields[1].IsDeprecated)
	assert.Equal(t, "gone", *post.Fields[1].DeprecationReason)

	tags := post.Fields[2].Type
	assert.Equal(t, introspection.LIST, tags.Kind)
	assert.Equal(t, introspection.NON_NULL, tags.OfType.Kind)
	assert.Equal(t, "String", *tags.OfType.OfType.Name)

	node := find(out.Types, "Node")
	require.NotNil(t, node)
	require.Len(t, node.PossibleTypes, 1)
	assert.Equal(t, "Post", *node.PossibleTypes[0].Name)

	date := find(out.Types, "Date")
	require.NotNil(t, date.SpecifiedByURL)
	assert.Equal(t, "https://tools.ietf.org/html/rfc3339", *date.SpecifiedByURL)

	var names []string
	for _, d := range out.Directives {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"include", "skip", "deprecated", "specifiedBy", "mock"}, names)
}

func TestComputeSchemaJSON(t *testing.T) {
	schema, err := graphql.BuildSchema(sdl)
	require.NoError(t, err)

	body, err := introspection.ComputeSchemaJSON(schema)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(body, &doc))
	require.Contains(t, doc, "__schema")
	assert.Contains(t, doc["__schema"], "types")
}
