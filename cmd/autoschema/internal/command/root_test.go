package command_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema/cmd/autoschema/internal/command"
)

const classesYAML = `
classes:
  - className: _User
    fields:
      username: {type: String}
  - className: Post
    fields:
      title: {type: String, required: true}
      author: {type: Pointer, targetClass: _User}
`

func TestNewRootCommand(t *testing.T) {
	cmd := command.NewRootCommand()

	assert.Equal(t, "autoschema", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.CompletionOptions.DisableDefaultCmd)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"print", "serve"}, names)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classes.yaml"), []byte(classesYAML), 0o644))

	cmd := command.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--bucket", "file://" + filepath.ToSlash(dir)}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPrintSDL(t *testing.T) {
	out, err := run(t, "print")
	require.NoError(t, err)
	assert.Contains(t, out, "type Post implements Node")
	assert.Contains(t, out, "type User implements Node")
	assert.Contains(t, out, "signUp(")
}

func TestPrintJSON(t *testing.T) {
	out, err := run(t, "print", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"__schema"`)
	assert.Contains(t, out, `"PostConnection"`)
}

func TestPrintWithExtension(t *testing.T) {
	ext := filepath.Join(t.TempDir(), "custom.graphql")
	require.NoError(t, os.WriteFile(ext, []byte(`
extend type Query {
	motd: String @mock(with: "hi")
}
`), 0o644))

	out, err := run(t, "--extension", ext, "print")
	require.NoError(t, err)
	assert.Contains(t, out, "motd: String")
}

func TestPrintErrors(t *testing.T) {
	_, err := run(t, "print", "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, err = run(t, "--classes", "missing.yaml", "print")
	assert.ErrorContains(t, err, "missing.yaml")

	_, err = run(t, "print", "extra")
	assert.ErrorContains(t, err, "takes no arguments")
}

func TestFunctionsFromEnv(t *testing.T) {
	t.Setenv("AUTOSCHEMA_FUNCTIONS", "sendEmail")
	out, err := run(t, "print")
	require.NoError(t, err)
	assert.Contains(t, out, "enum CloudCodeFunction")
	assert.Contains(t, out, "sendEmail")
}

func TestServeRejectsInterval(t *testing.T) {
	_, err := run(t, "serve", "--interval", "0")
	assert.ErrorContains(t, err, "--interval must be positive")

	_, err = run(t, "serve", "--interval", "-1s")
	assert.ErrorContains(t, err, "--interval must be positive")
}
