package graphql_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema/graphql"
)

const blogSDL = `
directive @mock(with: String) on FIELD_DEFINITION

interface Node {
	id: ID!
}

type Post implements Node {
	id: ID!
	title: String
	tags: [String!]!
	author: Author
}

type Author implements Node {
	id: ID!
	posts: [Post]
	legacy: String @deprecated(reason: "use posts")
}

union SearchResult = Post | Author

input PostFilter {
	title: String
	authorIds: [ID!]
}

enum Order {
	ASC
	DESC
}

scalar Date @specifiedBy(url: "https://tools.ietf.org/html/rfc3339")

type Query {
	post(id: ID!): Post
	search(filter: PostFilter, order: Order): [SearchResult] @mock(with: "none")
	today: Date
}

extend type Post {
	likes: Int
}
`

func TestBuildSchema(t *testing.T) {
	schema, err := graphql.BuildSchema(blogSDL)
	require.NoError(t, err)

	require.NotNil(t, schema.Query)
	require.Nil(t, schema.Mutation)
	require.Equal(t, "Query", schema.Query.Name)

	post, ok := schema.Type("Post").(*graphql.Object)
	require.True(t, ok)
	require.Contains(t, post.Fields, "likes")
	require.Contains(t, post.Fields, "title")

	author := schema.Type("Author").(*graphql.Object)
	// References resolve to the single instance held by the schema.
	require.Same(t, author, post.Fields["author"].Type)
	require.Same(t, post, graphql.NamedType(author.Fields["posts"].Type))
	require.True(t, author.Fields["legacy"].IsDeprecated)
	require.Equal(t, "use posts", *author.Fields["legacy"].DeprecationReason)

	node := schema.Type("Node").(*graphql.Interface)
	require.Len(t, node.Types, 2)
	require.Same(t, node, post.Interfaces["Node"])

	union := schema.Type("SearchResult").(*graphql.Union)
	require.Same(t, post, union.Types["Post"])

	date := schema.Type("Date").(*graphql.Scalar)
	require.Equal(t, "https://tools.ietf.org/html/rfc3339", date.SpecifiedByURL)

	require.NotNil(t, schema.Directive("mock"))
	require.NotNil(t, schema.Query.Fields["search"].AST)

	if diff := pretty.Compare(schema.TypeNames(), []string{
		"Author", "Boolean", "Date", "Float", "ID", "Int", "Node", "Order",
		"Post", "PostFilter", "Query", "SearchResult", "String",
	}); diff != "" {
		t.Errorf("unexpected type names: %s", diff)
	}
}

func TestBuildSchemaUnresolvedReference(t *testing.T) {
	_, err := graphql.BuildSchema(`type Query { post: Post }`)
	require.Error(t, err)
	require.True(t, errors.Is(err, graphql.ErrUnresolvedType))
}

func TestBuildSchemaRejectsOperations(t *testing.T) {
	_, err := graphql.BuildSchema(`type Query { a: Int } query { a }`)
	require.True(t, errors.Is(err, graphql.ErrInvalidDefinition))
}

func TestBuildSchemaSyntaxError(t *testing.T) {
	_, err := graphql.BuildSchema(`type Query {`)
	require.True(t, errors.Is(err, graphql.ErrInvalidDefinition))
}

func TestNewSchemaDuplicateInstances(t *testing.T) {
	a := &graphql.Object{Name: "Post", Fields: map[string]*graphql.Field{"title": {Type: graphql.String}}}
	b := &graphql.Object{Name: "Post", Fields: map[string]*graphql.Field{"title": {Type: graphql.String}}}
	query := &graphql.Object{Name: "Query", Fields: map[string]*graphql.Field{
		"a": {Type: a},
		"b": {Type: b},
	}}

	_, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	require.True(t, errors.Is(err, graphql.ErrDuplicateType))
}

func TestNewSchemaRootsOnce(t *testing.T) {
	query := &graphql.Object{Name: "Query", Fields: map[string]*graphql.Field{"health": {Type: &graphql.NonNull{Type: graphql.Boolean}}}}
	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Types: []graphql.Type{query}})
	require.NoError(t, err)
	require.Same(t, query, schema.Type("Query"))
}

func TestNamedType(t *testing.T) {
	post := &graphql.Object{Name: "Post"}
	wrapped := &graphql.NonNull{Type: &graphql.List{Type: &graphql.NonNull{Type: post}}}
	require.Same(t, post, graphql.NamedType(wrapped))
	require.Equal(t, "[Post!]!", wrapped.String())
}

func TestLinkKeepsWrappers(t *testing.T) {
	post := &graphql.Object{Name: "Post", Fields: map[string]*graphql.Field{}}
	query := &graphql.Object{Name: "Query", Fields: map[string]*graphql.Field{
		"posts": {Type: &graphql.NonNull{Type: &graphql.List{Type: &graphql.Named{Name: "Post"}}}},
	}}
	types := map[string]graphql.Type{"Post": post, "Query": query}
	require.NoError(t, graphql.Link(types))

	ref := query.Fields["posts"].Type
	require.Equal(t, "[Post]!", ref.String())
	require.Same(t, post, graphql.NamedType(ref))
}

func TestCloneIsIndependent(t *testing.T) {
	post := &graphql.Object{Name: "Post", Fields: map[string]*graphql.Field{"title": {Type: graphql.String}}}
	c := graphql.Clone(post).(*graphql.Object)
	c.Fields["likes"] = &graphql.Field{Type: graphql.Int}
	c.Fields["title"].Type = graphql.ID

	require.NotContains(t, post.Fields, "likes")
	require.Same(t, graphql.String, post.Fields["title"].Type)
}

func TestPrintSchema(t *testing.T) {
	schema, err := graphql.BuildSchema(blogSDL)
	require.NoError(t, err)

	sdl := graphql.PrintSchema(schema)
	for _, want := range []string{"type Post", "likes: Int", "union SearchResult", "enum Order", "input PostFilter", "scalar Date", "directive @mock"} {
		require.True(t, strings.Contains(sdl, want), "missing %q in:\n%s", want, sdl)
	}
	require.NotContains(t, sdl, "scalar String")

	// The printed SDL describes the same types.
	again, err := graphql.BuildSchema(sdl)
	require.NoError(t, err)
	require.Equal(t, schema.TypeNames(), again.TypeNames())
}
