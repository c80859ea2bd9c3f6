package codegen

import (
	"context"
	"fmt"
	"letc/internal/ast"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Options controls the behaviour of the code-generation pipeline.
// ---------------------------------------------------------------------------

// Options configures the codegen pipeline.
type Options struct {
	// Target platform. If nil, the host platform is auto-detected.
	Target *Target

	// BuildDir is the directory where all build artifacts are written.
	// Defaults to "./build" relative to the working directory.
	BuildDir string

	// OutputName is the base name for the output files (without extension).
	// Defaults to "output".
	OutputName string

	// AsmOnly stops after emitting the assembly file (skip assemble + link).
	AsmOnly bool

	// SkipLink stops after assembling (produce .o but don't link).
	SkipLink bool

	// KeepObj keeps the object file after a successful link.
	KeepObj bool

	// Assembler and Linker override the nasm and ld executables.
	Assembler string
	Linker    string

	// Logger receives pipeline progress at debug level. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults (host target, build/ directory).
func DefaultOptions() *Options {
	return &Options{
		BuildDir: "build",
	}
}

// ---------------------------------------------------------------------------
// Result is returned by Generate with paths to all produced artifacts.
// ---------------------------------------------------------------------------

type Result struct {
	AsmFile  string // path to the assembly file
	ObjFile  string // path to the object file (empty if AsmOnly or removed after linking)
	ExeFile  string // path to the executable (empty if AsmOnly or SkipLink)
	IRDump   string // human-readable IR dump (for debugging)
	Assembly string // the generated assembly text
}

// Compile lowers program for target and returns the assembly text without
// touching the filesystem.
func Compile(program *ast.Program, target *Target) (string, error) {
	mod, err := Lower(program, target)
	if err != nil {
		return "", err
	}
	return mod.Assembly(), nil
}

// ---------------------------------------------------------------------------
// Generate: the public entry point for the full codegen pipeline
//
// Pipeline: AST -> slots + IR (lower) -> Assembly text -> Object (nasm) -> Executable (ld)
// ---------------------------------------------------------------------------

// Generate runs the full code-generation pipeline on the given AST program.
func Generate(ctx context.Context, program *ast.Program, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// --- Resolve target ---
	target := opts.Target
	if target == nil {
		var err error
		target, err = HostTarget()
		if err != nil {
			return nil, fmt.Errorf("cannot detect host target: %w", err)
		}
	}

	// --- Determine output name ---
	outputName := opts.OutputName
	if outputName == "" {
		outputName = "output"
	}
	// Sanitize: replace dots/spaces with underscores.
	outputName = strings.Map(func(r rune) rune {
		if r == '.' || r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, outputName)

	// --- Step 1: Lower AST to slots and IR ---
	log.Debug("lowering", "output", outputName, "target", target.String())
	mod, err := Lower(program, target)
	if err != nil {
		return nil, err
	}
	result := &Result{
		IRDump:   mod.DebugDump(),
		Assembly: mod.Assembly(),
	}
	log.Debug("lowered", "slots", mod.Slots.Len(), "groups", len(mod.Groups))

	// --- Step 2: Create build directory ---
	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = "build"
	}
	platformDir := filepath.Join(buildDir, fmt.Sprintf("%s_%s", target.OS, target.Arch))
	if err := os.MkdirAll(platformDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create build directory %s: %w", platformDir, err)
	}

	// --- Step 3: Write assembly file ---
	tc := NewToolchain(target, platformDir, outputName)
	tc.Logger = log
	tc.AssemblerPath = opts.Assembler
	tc.LinkerPath = opts.Linker

	if err := tc.WriteAssembly(result.Assembly); err != nil {
		return nil, fmt.Errorf("cannot write assembly file: %w", err)
	}
	result.AsmFile = tc.AsmFile
	log.Debug("assembly written", "path", result.AsmFile)

	if opts.AsmOnly {
		return result, nil
	}

	// --- Step 4: Assemble ---
	if missing := tc.Missing(!opts.SkipLink); len(missing) > 0 {
		return result, &MissingToolsError{Tools: missing, AsmFile: result.AsmFile}
	}

	if err := tc.Assemble(ctx); err != nil {
		return result, fmt.Errorf("assembly failed: %w", err)
	}
	result.ObjFile = tc.ObjFile

	if opts.SkipLink {
		return result, nil
	}

	// --- Step 5: Link ---
	if err := tc.Link(ctx); err != nil {
		return result, fmt.Errorf("linking failed: %w", err)
	}
	result.ExeFile = tc.ExeFile
	log.Debug("executable written", "path", result.ExeFile)

	if !opts.KeepObj {
		if err := os.Remove(tc.ObjFile); err != nil {
			log.Warn("cannot remove object file", "path", tc.ObjFile, "error", err)
		} else {
			result.ObjFile = ""
		}
	}

	return result, nil
}
