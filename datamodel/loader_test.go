package datamodel_test

import (
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema/datamodel"
)

func names(classes []datamodel.ClassDescriptor) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.ClassName)
	}
	return out
}

func classes(names ...string) []datamodel.ClassDescriptor {
	out := make([]datamodel.ClassDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, datamodel.ClassDescriptor{ClassName: n})
	}
	return out
}

func TestFilterClasses(t *testing.T) {
	all := classes("_User", "Post", "Comment", "_Role")

	cases := []struct {
		name  string
		cfg   *datamodel.SchemaConfig
		want  []string
		users bool
	}{
		{
			name:  "nil config",
			cfg:   nil,
			want:  []string{"_User", "Post", "Comment", "_Role"},
			users: true,
		},
		{
			name:  "no lists",
			cfg:   &datamodel.SchemaConfig{},
			want:  []string{"_User", "Post", "Comment", "_Role"},
			users: true,
		},
		{
			name:  "enabled only",
			cfg:   &datamodel.SchemaConfig{EnabledForClasses: datamodel.Strings("Post", "Comment")},
			want:  []string{"Post", "Comment"},
			users: false,
		},
		{
			name:  "disabled only",
			cfg:   &datamodel.SchemaConfig{DisabledForClasses: datamodel.Strings("_Role")},
			want:  []string{"_User", "Post", "Comment"},
			users: true,
		},
		{
			name: "disabled wins over enabled",
			cfg: &datamodel.SchemaConfig{
				EnabledForClasses:  datamodel.Strings("_User", "Post"),
				DisabledForClasses: datamodel.Strings("Post", "_User"),
			},
			want:  []string{},
			users: false,
		},
		{
			name:  "empty enabled list matches nothing",
			cfg:   &datamodel.SchemaConfig{EnabledForClasses: datamodel.Strings()},
			want:  []string{},
			users: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, users := datamodel.FilterClasses(all, c.cfg)
			if diff := pretty.Compare(names(got), c.want); diff != "" {
				t.Errorf("unexpected classes:\n%s", diff)
			}
			assert.Equal(t, c.users, users)

			if c.cfg != nil && c.cfg.DisabledForClasses != nil {
				for _, disabled := range *c.cfg.DisabledForClasses {
					assert.NotContains(t, names(got), disabled)
				}
			}
		})
	}
}

func TestSortClasses(t *testing.T) {
	input := classes("Post", "_User", "Comment", "_Role", "Author")
	sorted := datamodel.SortClasses(input)

	if diff := pretty.Compare(names(sorted), []string{"_Role", "_User", "Author", "Comment", "Post"}); diff != "" {
		t.Errorf("unexpected order:\n%s", diff)
	}
	assert.Equal(t, []string{"Post", "_User", "Comment", "_Role", "Author"}, names(input), "input must not be reordered")
}

func TestClassesWithConfig(t *testing.T) {
	cfg := &datamodel.SchemaConfig{
		ClassConfigs: []datamodel.ClassConfig{
			{ClassName: "Post", Query: &datamodel.QueryConfig{Find: datamodel.Bool(false)}},
			{ClassName: "Post", Query: &datamodel.QueryConfig{Get: datamodel.Bool(false)}},
		},
	}

	out := datamodel.ClassesWithConfig(classes("Post", "_User"), cfg)
	require.Len(t, out, 2)

	assert.Equal(t, "_User", out[0].Class.ClassName)
	assert.Nil(t, out[0].Config)
	assert.True(t, out[0].Config.GetEnabled())

	assert.Equal(t, "Post", out[1].Class.ClassName)
	require.NotNil(t, out[1].Config)
	assert.False(t, out[1].Config.FindEnabled())
	assert.True(t, out[1].Config.GetEnabled(), "the first matching class config is used")
}

func TestValidFunctionNames(t *testing.T) {
	var logs []string
	log := funcr.New(func(prefix, args string) {
		logs = append(logs, args)
	}, funcr.Options{})

	got := datamodel.ValidFunctionNames([]string{"42bad", "_valid_Name1", "hello-world", "sendEmail"}, log)
	assert.Equal(t, []string{"_valid_Name1", "sendEmail"}, got)

	require.Len(t, logs, 2)
	assert.True(t, strings.Contains(logs[0], "Function 42bad could not be added to the auto schema"), logs[0])
	assert.True(t, strings.Contains(logs[0], `"severity"="warning"`), logs[0])
	assert.True(t, strings.Contains(logs[1], "Function hello-world"), logs[1])
}
