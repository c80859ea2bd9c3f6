// Package build drives the compiler pipeline (read, lex, parse, check,
// generate) for one or more source files.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"letc/internal/ast"
	"letc/internal/codegen"
	"letc/internal/lexer"
	"letc/internal/parser"
	"letc/internal/semantic"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// Stage names used in StageError.
const (
	StageRead     = "read"
	StageLex      = "lex"
	StageParse    = "parse"
	StageSemantic = "semantic"
	StageCodegen  = "codegen"
)

// StageError collects every problem one pipeline stage found in one file.
type StageError struct {
	File  string
	Stage string
	Errs  []error
}

func (e *StageError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s: ", e.File)
	}
	fmt.Fprintf(&b, "%s failed", e.Stage)
	if len(e.Errs) == 1 {
		fmt.Fprintf(&b, ": %s", e.Errs[0])
		return b.String()
	}
	b.WriteString(":")
	for _, err := range e.Errs {
		fmt.Fprintf(&b, "\n  %s", err)
	}
	return b.String()
}

func (e *StageError) Unwrap() []error { return e.Errs }

func stageError[E error](file, stage string, errs []E) *StageError {
	se := &StageError{File: file, Stage: stage}
	for _, err := range errs {
		se.Errs = append(se.Errs, err)
	}
	return se
}

// ---------------------------------------------------------------------------
// Front end
// ---------------------------------------------------------------------------

// Frontend lexes, parses and checks source. It returns the program together
// with any warnings; errors from any stage stop the pipeline.
func Frontend(file, source string, log *slog.Logger) (*ast.Program, []semantic.Diagnostic, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	tokens, lexErrs := lexer.Lex(source)
	if len(lexErrs) > 0 {
		return nil, nil, stageError(file, StageLex, lexErrs)
	}
	log.Debug("lexed", "tokens", len(tokens))

	program, parseErrs := parser.Parse(tokens)
	if len(parseErrs) > 0 {
		return nil, nil, stageError(file, StageParse, parseErrs)
	}
	log.Debug("parsed", "statements", len(program.Stmts))
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("ast", "dump", ast.DebugString(program))
	}

	var warnings, errs []semantic.Diagnostic
	for _, d := range semantic.Analyze(program) {
		if d.Severity == semantic.Warning {
			warnings = append(warnings, d)
		} else {
			errs = append(errs, d)
		}
	}
	if len(errs) > 0 {
		return nil, warnings, stageError(file, StageSemantic, errs)
	}
	return program, warnings, nil
}

// ---------------------------------------------------------------------------
// Single file
// ---------------------------------------------------------------------------

// FileResult is the outcome of building one source file.
type FileResult struct {
	Source   Source
	Warnings []semantic.Diagnostic
	Result   *codegen.Result // nil when the front end failed
	Err      error
}

// File runs the whole pipeline for one source. opts.OutputName is replaced
// by the source's artifact name unless it is already set.
func File(ctx context.Context, src Source, opts codegen.Options) *FileResult {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("file", src.Arg)
	opts.Logger = log
	if opts.OutputName == "" {
		opts.OutputName = src.Name
	}

	fr := &FileResult{Source: src}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		fr.Err = &StageError{File: src.Arg, Stage: StageRead, Errs: []error{err}}
		return fr
	}

	program, warnings, err := Frontend(src.Arg, string(data), log)
	fr.Warnings = warnings
	if err != nil {
		fr.Err = err
		return fr
	}

	res, err := codegen.Generate(ctx, program, &opts)
	fr.Result = res
	if err != nil {
		fr.Err = &StageError{File: src.Arg, Stage: StageCodegen, Errs: []error{err}}
	}
	return fr
}

// ---------------------------------------------------------------------------
// Batch
// ---------------------------------------------------------------------------

// Options configures a batch build.
type Options struct {
	// Codegen is the template for every file. Its Logger is also used for
	// batch-level messages.
	Codegen codegen.Options

	// Jobs bounds the number of files compiled at once. Zero means one per
	// CPU.
	Jobs int

	// Progress, when non-nil, receives a progress bar.
	Progress io.Writer
}

// Run builds every source and returns one result per source, in input
// order. Every file is attempted; the returned error joins the failures.
func Run(ctx context.Context, sources []Source, opts Options) ([]*FileResult, error) {
	if len(sources) > 1 && opts.Codegen.OutputName != "" {
		return nil, fmt.Errorf("an output name cannot be used with %d source files", len(sources))
	}
	log := opts.Codegen.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	log.Debug("building", "files", len(sources), "jobs", jobs)

	var bar *progressbar.ProgressBar
	if opts.Progress != nil && len(sources) > 1 {
		bar = progressbar.NewOptions(len(sources),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("building"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
	}

	results := make([]*FileResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, src := range sources {
		g.Go(func() error {
			if bar != nil {
				defer bar.Add(1)
			}
			// A cancelled batch still reports every file.
			if err := gctx.Err(); err != nil {
				results[i] = &FileResult{Source: src, Err: err}
				return nil
			}
			results[i] = File(gctx, src, opts.Codegen)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
