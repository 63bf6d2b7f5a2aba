package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/viper"
	"go.appointy.com/autoschema"
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/merge"
)

func newLogger(v *viper.Viper) logr.Logger {
	if v.GetBool("debug") {
		stdr.SetVerbosity(1)
	}
	return stdr.New(log.New(os.Stderr, "autoschema ", log.LstdFlags))
}

// newEngine builds an engine from the global options. The returned function
// releases the opened bucket and variable.
func newEngine(ctx context.Context, v *viper.Viper, log logr.Logger, opts ...autoschema.Option) (*autoschema.Engine, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	snapshots, err := datamodel.OpenBlobSnapshotProvider(ctx, v.GetString("bucket"), v.GetString("classes"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening bucket %s: %w", v.GetString("bucket"), err)
	}
	closers = append(closers, snapshots.Close)

	var config datamodel.ConfigProvider = datamodel.NewStaticConfig(nil)
	if url := v.GetString("config"); url != "" {
		p, err := datamodel.OpenVariableConfigProvider(ctx, url)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("opening config %s: %w", url, err)
		}
		closers = append(closers, p.Close)
		config = p
	}

	opts = append([]autoschema.Option{autoschema.WithLogger(log)}, opts...)
	if files := v.GetStringSlice("extension"); len(files) > 0 {
		ext, err := readExtension(files)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, autoschema.WithExtension(ext))
	}

	e, err := autoschema.NewEngine(snapshots, config, datamodel.NewStaticFunctions(v.GetStringSlice("functions")...), opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return e, cleanup, nil
}

func readExtension(files []string) (merge.Extension, error) {
	sdl := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading extension: %w", err)
		}
		sdl = append(sdl, string(data))
	}
	ext, err := merge.FromSDL(sdl...)
	if err != nil {
		if errors.Is(err, merge.ErrMalformedExtension) {
			return nil, fmt.Errorf("extension %v: %w", files, err)
		}
		return nil, err
	}
	return ext, nil
}
