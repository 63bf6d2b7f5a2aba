package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.appointy.com/autoschema"
	"golang.org/x/sync/errgroup"
)

// NewServeCommand returns the command serving the schema over HTTP while
// watching the data model for changes.
func NewServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema over HTTP",
		Long: Highlight("Usage: autoschema serve [--addr :8080] [--interval 10s]\n") + "\n" +
			"Serves /schema.graphql, /schema.json and the /watch websocket, and\n" +
			"rebuilds the schema when the class snapshot or config changes.\n",
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval := v.GetDuration("interval"); interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			log := newLogger(v)
			e, cleanup, err := newEngine(cmd.Context(), v, log,
				autoschema.WithBuildTimeout(v.GetDuration("build-timeout")))
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:              v.GetString("addr"),
				Handler:           autoschema.HTTPHandler(e),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				log.Info("serving schema", "addr", srv.Addr)
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				err := e.Watch(ctx, v.GetDuration("interval"))
				shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdown)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			return g.Wait()
		},
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Duration("interval", 10*time.Second, "How often to check the data model for changes")
	cmd.Flags().Duration("build-timeout", autoschema.DefaultBuildTimeout, "Upper bound of one schema build")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}
