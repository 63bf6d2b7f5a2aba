// Package blog is a small data model used to demonstrate the engine: a user
// class, posts and comments, a couple of server functions and an SDL
// extension adding hand-written fields.
package blog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
	"go.appointy.com/autoschema"
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/directives"
	"go.appointy.com/autoschema/merge"
)

// Classes returns the data model of the blog.
func Classes() []datamodel.ClassDescriptor {
	return []datamodel.ClassDescriptor{
		{
			ClassName: datamodel.UsersClass,
			Fields: map[string]datamodel.FieldType{
				"username": {Type: datamodel.TypeString, Required: true},
				"email":    {Type: datamodel.TypeString},
				"avatar":   {Type: datamodel.TypeFile},
			},
		},
		{
			ClassName: "Post",
			Fields: map[string]datamodel.FieldType{
				"title":     {Type: datamodel.TypeString, Required: true},
				"body":      {Type: datamodel.TypeString},
				"published": {Type: datamodel.TypeDate},
				"tags":      {Type: datamodel.TypeArray},
				"author":    {Type: datamodel.TypePointer, TargetClass: datamodel.UsersClass},
				"comments":  {Type: datamodel.TypeRelation, TargetClass: "Comment"},
				"location":  {Type: datamodel.TypeGeoPoint},
			},
		},
		{
			ClassName: "Comment",
			Fields: map[string]datamodel.FieldType{
				"text": {Type: datamodel.TypeString, Required: true},
				"post": {Type: datamodel.TypePointer, TargetClass: "Post"},
			},
		},
	}
}

// Config hides comment deletion and limits what a post exposes on create.
func Config() *datamodel.SchemaConfig {
	return &datamodel.SchemaConfig{
		ClassConfigs: []datamodel.ClassConfig{
			{
				ClassName: "Comment",
				Mutation:  &datamodel.MutationConfig{Destroy: datamodel.Bool(false)},
			},
			{
				ClassName: "Post",
				Type: &datamodel.TypeConfig{
					InputFields: &datamodel.InputFieldsConfig{Create: []string{"title", "body", "tags", "author"}},
				},
			},
		},
	}
}

// Functions are the callable server functions of the blog.
var Functions = []string{"summarize", "publish"}

// Extension adds a motd query and a summary field resolved by the summarize
// function.
const Extension = `
extend type Query {
	motd: String @mock(with: "Welcome to the blog")
}

extend type Post {
	summary: String @resolve(to: "summarize")
}
`

// Runner answers server function calls.
var Runner = directives.FunctionRunnerFunc(func(ctx context.Context, name string, source, args interface{}) (interface{}, error) {
	switch name {
	case "summarize":
		post, _ := source.(map[string]interface{})
		body, _ := post["body"].(string)
		if len(body) > 80 {
			body = body[:80] + "..."
		}
		return strings.TrimSpace(body), nil
	default:
		return nil, fmt.Errorf("unknown function %s", name)
	}
})

// NewEngine returns an engine over the blog model. The snapshot provider is
// returned so callers can change the model while the engine runs.
func NewEngine(log logr.Logger) (*autoschema.Engine, *datamodel.StaticSnapshot, error) {
	ext, err := merge.FromSDL(Extension)
	if err != nil {
		return nil, nil, err
	}

	snapshots := datamodel.NewStaticSnapshot(Classes()...)
	e, err := autoschema.NewEngine(snapshots,
		datamodel.NewStaticConfig(Config()),
		datamodel.NewStaticFunctions(Functions...),
		autoschema.WithLogger(log),
		autoschema.WithExtension(ext),
		autoschema.WithFunctionRunner(Runner))
	if err != nil {
		return nil, nil, err
	}
	return e, snapshots, nil
}

// GetSchemaServer returns the schema handler for the blog.
func GetSchemaServer(log logr.Logger) (http.Handler, error) {
	e, _, err := NewEngine(log)
	if err != nil {
		return nil, err
	}
	if _, err := e.Load(context.Background()); err != nil {
		return nil, err
	}
	return autoschema.HTTPHandler(e), nil
}
