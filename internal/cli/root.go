// Package cli implements the hostbridge command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/registry"
	"github.com/wippyai/hostbridge/runtime"
)

// RootOptions holds global flags and the state they produce.
type RootOptions struct {
	Config     *config.Config
	Log        *zap.Logger
	Registry   *registry.Registry
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command. Functions are served from reg.
func NewRootCommand(reg *registry.Registry) *cobra.Command {
	opts := &RootOptions{Registry: reg}

	cmd := &cobra.Command{
		Use:   "hostbridge",
		Short: "Typed value bridge between Go and a dynamic host",
		Long: `hostbridge exports Go functions to a dynamically-typed host runtime and
generates TypeScript, WIT and JSON Schema declarations for them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewExploreCommand(opts))

	return cmd
}

func (o *RootOptions) setup() error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath); err != nil {
			return err
		}
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	log, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	runtime.SetLogger(log.Named("runtime"))
	registry.SetLogger(log.Named("registry"))

	o.Config = cfg
	o.Log = log
	return nil
}

// newRuntime creates a runtime over the command's registry.
func (o *RootOptions) newRuntime(ctx context.Context) (*runtime.Runtime, error) {
	rt, err := runtime.New(ctx, o.Config, o.Registry)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	return rt, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
