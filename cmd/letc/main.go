package main

import (
	"context"
	"fmt"
	"letc/internal/config"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	debug      bool
	configPath string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "letc",
		Short: "Compiler for the let/exit arithmetic language",
		Long: `letc compiles programs made of let bindings over integer arithmetic and
exit statements into NASM x86-64 assembly, then assembles it with nasm and
links it with ld.

Settings are read from letc.yaml in the working directory (or --config) and
can be overridden by flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "project file (default: ./"+config.DefaultFilename+" if present)")

	root.AddCommand(
		newBuildCmd(a),
		newEmitCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup installs the logger and loads the project file.
func (a *app) setup() error {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)

	path := a.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		found, ok := config.Discover(wd)
		if !ok {
			return nil
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.CheckVersion(version); err != nil {
		return err
	}
	a.cfg = cfg
	a.log.Debug("loaded project file", "path", path)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler version",
		Args:  cobra.NoArgs,
		// The version must print even when the project file is broken.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "letc %s\n", version)
		},
	}
}
