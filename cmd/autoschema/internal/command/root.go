package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "AUTOSCHEMA"

// Highlight applies the heading color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

// NewRootCommand returns the autoschema command with every subcommand. Flags
// can also be set through AUTOSCHEMA_* environment variables, for example
// AUTOSCHEMA_BUCKET for --bucket.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "autoschema",
		Short: "Generate a GraphQL schema from a data model",
		Long: Highlight("Usage: autoschema [global options] <subcommand> [args]\n") + "\n" +
			"autoschema generates a GraphQL schema from the classes of a data model,\n" +
			"merges an optional SDL extension over it and prints or serves the result.\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.String("bucket", "file://.", "URL of the bucket holding the class snapshot")
	flags.String("classes", "classes.yaml", "Key of the class snapshot object in the bucket")
	flags.String("config", "", "runtimevar URL of the schema config, e.g. file:///etc/autoschema/config.yaml?decoder=bytes")
	flags.StringSlice("functions", nil, "Names of the callable server functions")
	flags.StringSlice("extension", nil, "SDL files merged over the generated schema")
	flags.Bool("debug", false, "Log debug output")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	AddCommands(cmd, v)
	setUsageTemplate(cmd)
	return cmd
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, v *viper.Viper) {
	root.AddCommand(
		NewPrintCommand(v),
		NewServeCommand(v),
	)
}

func setUsageTemplate(cmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(cmd.UsageTemplate())
	cmd.SetUsageTemplate(usageTemplate)
}

// printError writes err in red.
func printError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed).Fprintf(w, "Error: %s\n", err)
}

func Execute() {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func requireNoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	_ = cmd.Usage()
	return fmt.Errorf("%s takes no arguments, got %d", cmd.Name(), len(args))
}
