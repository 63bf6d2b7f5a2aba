package directives_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema/directives"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/merge"
)

const auto = `
type Query {
	post(id: ID!): Post
}

type Post {
	id: ID!
	title: String
}
`

func mergedSchema(t *testing.T, sdl string) *graphql.Schema {
	t.Helper()
	base, err := graphql.BuildSchema(auto)
	require.NoError(t, err)
	ext, err := merge.FromSDL(sdl)
	require.NoError(t, err)
	s, err := merge.NewMerger(logr.Discard()).Merge(context.Background(), base, directives.Definitions(), ext)
	require.NoError(t, err)
	return s
}

func TestDefinitions(t *testing.T) {
	s := directives.Definitions()
	require.NotNil(t, s.Directive("resolve"))
	mock := s.Directive("mock")
	require.NotNil(t, mock)
	assert.Equal(t, "Any!", mock.Args["with"].String())
	assert.Equal(t, []string{"FIELD_DEFINITION"}, mock.Locations)
	assert.False(t, directives.Definitions() == s, "each call returns a new schema")
}

func TestMockVisitor(t *testing.T) {
	s := mergedSchema(t, `
extend type Query {
	hello: String @mock(with: "world")
	answer: Int @mock(with: 42)
	plain: String
}
`)
	before := s.Query.Fields["hello"]

	n, err := directives.Visit(context.Background(), s, directives.Default(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hello := s.Query.Fields["hello"]
	require.NotNil(t, hello.Resolve)
	assert.False(t, hello == before, "visited fields are replaced")
	assert.Nil(t, before.Resolve)

	v, err := hello.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "world", v)

	v, err = s.Query.Fields["answer"].Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	assert.Nil(t, s.Query.Fields["plain"].Resolve)
}

func TestResolveVisitor(t *testing.T) {
	s := mergedSchema(t, `
extend type Query {
	greet(name: String): String @resolve
	total: Int @resolve(to: "sumLikes")
}
`)

	var calls []string
	runner := directives.FunctionRunnerFunc(func(ctx context.Context, name string, source, args interface{}) (interface{}, error) {
		calls = append(calls, name)
		return name, nil
	})

	_, err := directives.Visit(context.Background(), s, directives.Default(runner))
	require.NoError(t, err)

	_, err = s.Query.Fields["greet"].Resolve(context.Background(), nil, map[string]interface{}{"name": "x"})
	require.NoError(t, err)
	_, err = s.Query.Fields["total"].Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"greet", "sumLikes"}, calls)
}

func TestResolveWithoutRunner(t *testing.T) {
	s := mergedSchema(t, `
extend type Query {
	greet: String @resolve
}
`)

	_, err := directives.Visit(context.Background(), s, directives.Default(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, directives.ErrInvalidDirective))
	assert.Contains(t, err.Error(), "@resolve on Query.greet")
}

func TestVisitCustomVisitor(t *testing.T) {
	s := mergedSchema(t, `
directive @upper on FIELD_DEFINITION

extend type Post {
	shout: String @upper
}
`)

	var owners []string
	_, err := directives.Visit(context.Background(), s, map[string]directives.FieldVisitor{
		"upper": directives.FieldVisitorFunc(func(ctx context.Context, owner string, f *graphql.Field, _ *ast.Directive) (*graphql.Field, error) {
			owners = append(owners, owner)
			return nil, nil
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Post"}, owners)
}
