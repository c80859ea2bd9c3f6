package main

import (
	"errors"
	"fmt"
	"io"
	"letc/internal/build"
	"letc/internal/codegen"
	"letc/internal/config"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ---------------------------------------------------------------------------
// Build settings
// ---------------------------------------------------------------------------

type buildFlags struct {
	target    string
	outDir    string
	output    string
	asmOnly   bool
	skipLink  bool
	keepObj   bool
	jobs      int
	assembler string
	linker    string
}

// merge lays the flags the user actually set over the project file.
func merge(cfg config.Config, f buildFlags, changed func(name string) bool) config.Config {
	if changed("target") {
		cfg.Target = f.target
	}
	if changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("asm-only") {
		cfg.AsmOnly = f.asmOnly
	}
	if changed("skip-link") {
		cfg.SkipLink = f.skipLink
	}
	if changed("keep-obj") {
		cfg.KeepObj = f.keepObj
	}
	if changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if changed("assembler") {
		cfg.Assembler = f.assembler
	}
	if changed("linker") {
		cfg.Linker = f.linker
	}
	return cfg
}

func resolveTarget(name string) (*codegen.Target, error) {
	if name == "" {
		return codegen.HostTarget()
	}
	return codegen.ParseTarget(name)
}

// buildOptions turns the merged settings into pipeline options.
func buildOptions(cfg config.Config, log *slog.Logger) (build.Options, error) {
	if err := cfg.Validate(); err != nil {
		return build.Options{}, err
	}
	target, err := resolveTarget(cfg.Target)
	if err != nil {
		return build.Options{}, err
	}
	return build.Options{
		Codegen: codegen.Options{
			Target:     target,
			BuildDir:   cfg.OutDir,
			OutputName: cfg.Output,
			AsmOnly:    cfg.AsmOnly,
			SkipLink:   cfg.SkipLink,
			KeepObj:    cfg.KeepObj,
			Assembler:  cfg.Assembler,
			Linker:     cfg.Linker,
			Logger:     log,
		},
		Jobs: cfg.Jobs,
	}, nil
}

// ---------------------------------------------------------------------------
// build
// ---------------------------------------------------------------------------

func newBuildCmd(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build [flags] <file>...",
		Short: "Compile source files to executables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := merge(a.cfg, f, cmd.Flags().Changed)
			opts, err := buildOptions(cfg, a.log)
			if err != nil {
				return err
			}

			sources, resolveErrs := build.ResolveSources(args)
			if len(resolveErrs) > 0 {
				errs := make([]error, len(resolveErrs))
				for i, e := range resolveErrs {
					errs[i] = e
				}
				return errors.Join(errs...)
			}

			if !a.debug && term.IsTerminal(int(os.Stderr.Fd())) {
				opts.Progress = os.Stderr
			}

			results, err := build.Run(cmd.Context(), sources, opts)
			report(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.target, "target", "", "target platform as os/arch (default: host)")
	fs.StringVarP(&f.outDir, "out-dir", "d", "build", "directory for build artifacts")
	fs.StringVarP(&f.output, "output", "o", "", "base name of the artifacts (single file only)")
	fs.BoolVar(&f.asmOnly, "asm-only", false, "write the assembly file and stop")
	fs.BoolVar(&f.skipLink, "skip-link", false, "assemble but do not link")
	fs.BoolVar(&f.keepObj, "keep-obj", false, "keep the object file after linking")
	fs.IntVarP(&f.jobs, "jobs", "j", runtime.NumCPU(), "files compiled in parallel")
	fs.StringVar(&f.assembler, "assembler", "", "nasm executable (default: nasm on PATH)")
	fs.StringVar(&f.linker, "linker", "", "ld executable (default: ld on PATH)")
	return cmd
}

// report prints warnings and artifacts of every file. Errors are returned
// by the caller.
func report(stdout, stderr io.Writer, results []*build.FileResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(stderr, "%s: %s\n", r.Source.Arg, w.Error())
		}
		if r.Err != nil || r.Result == nil {
			continue
		}
		fmt.Fprintf(stdout, "%s:\n", r.Source.Arg)
		if r.Result.AsmFile != "" {
			fmt.Fprintf(stdout, "  Assembly: %s\n", r.Result.AsmFile)
		}
		if r.Result.ObjFile != "" {
			fmt.Fprintf(stdout, "  Object:   %s\n", r.Result.ObjFile)
		}
		if r.Result.ExeFile != "" {
			fmt.Fprintf(stdout, "  Binary:   %s\n", r.Result.ExeFile)
		}
	}
}

// ---------------------------------------------------------------------------
// emit
// ---------------------------------------------------------------------------

func newEmitCmd(a *app) *cobra.Command {
	var (
		target string
		ir     bool
	)

	cmd := &cobra.Command{
		Use:   "emit <file>",
		Short: "Print the generated assembly without writing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.cfg.Target
			if cmd.Flags().Changed("target") {
				name = target
			}
			tgt, err := resolveTarget(name)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			program, warnings, err := build.Frontend(args[0], string(data), a.log)
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], w.Error())
			}
			if err != nil {
				return err
			}

			mod, err := codegen.Lower(program, tgt)
			if err != nil {
				return err
			}
			if ir {
				fmt.Fprint(cmd.OutOrStdout(), mod.DebugDump())
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), mod.Assembly())
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "target platform as os/arch (default: host)")
	cmd.Flags().BoolVar(&ir, "ir", false, "print the slot table and instruction groups instead")
	return cmd
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.DefaultFilename + " for the host platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "linux/amd64"
			if host, err := codegen.HostTarget(); err == nil {
				target = host.String()
			}
			cfg := config.Config{
				Target:     target,
				OutDir:     "build",
				MinVersion: version,
			}
			if err := config.WriteTemplate(config.DefaultFilename, cfg); err != nil {
				return err
			}
			a.log.Info("wrote project file", "path", config.DefaultFilename, "target", cfg.Target)
			return nil
		},
	}
}
