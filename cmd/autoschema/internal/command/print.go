package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/introspection"
)

// NewPrintCommand returns the command printing the schema once.
func NewPrintCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the generated schema",
		Long: Highlight("Usage: autoschema print [--format sdl|json]\n") + "\n" +
			"Builds the schema once and writes it to standard output as SDL or as\n" +
			"the introspection result.\n",
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, cleanup, err := newEngine(ctx, v, newLogger(v))
			if err != nil {
				return err
			}
			defer cleanup()

			schema, err := e.Load(ctx)
			if err != nil {
				return e.HandleError(err)
			}

			out := cmd.OutOrStdout()
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "sdl":
				_, err = fmt.Fprintln(out, graphql.PrintSchema(schema))
			case "json":
				var body []byte
				if body, err = introspection.ComputeSchemaJSON(schema); err == nil {
					_, err = fmt.Fprintln(out, string(body))
				}
			default:
				err = fmt.Errorf("unknown format %q, want sdl or json", format)
			}
			return err
		},
	}
	cmd.Flags().String("format", "sdl", "Output format. One of: (sdl | json)")
	return cmd
}
