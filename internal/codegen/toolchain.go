package codegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ---------------------------------------------------------------------------
// Toolchain: assembler + linker invocation for each target
// ---------------------------------------------------------------------------

// Toolchain represents the external programs used to assemble and link.
type Toolchain struct {
	Target        *Target
	BuildDir      string
	AsmFile       string // path to the assembly file
	ObjFile       string // path to the object file
	ExeFile       string // path to the final executable
	AssemblerPath string // custom nasm path
	LinkerPath    string // custom ld path
	Logger        *slog.Logger
}

// MissingToolsError reports that the assembly was written but the external
// tools needed to go further are not installed.
type MissingToolsError struct {
	Tools   []string
	AsmFile string
}

func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("missing toolchain components: %s (assembly was written to %s)",
		strings.Join(e.Tools, ", "), e.AsmFile)
}

// NewToolchain creates a Toolchain for the given target and build directory.
func NewToolchain(target *Target, buildDir, baseName string) *Toolchain {
	return &Toolchain{
		Target:   target,
		BuildDir: buildDir,
		AsmFile:  filepath.Join(buildDir, baseName+target.FileExtAsm()),
		ObjFile:  filepath.Join(buildDir, baseName+target.FileExtObj()),
		ExeFile:  filepath.Join(buildDir, baseName+target.FileExtExe()),
	}
}

// WriteAssembly writes the assembly string to the .asm file.
func (tc *Toolchain) WriteAssembly(asm string) error {
	return os.WriteFile(tc.AsmFile, []byte(asm), 0644)
}

func (tc *Toolchain) assembler() string {
	if tc.AssemblerPath != "" {
		return tc.AssemblerPath
	}
	return "nasm"
}

func (tc *Toolchain) linker() string {
	if tc.LinkerPath != "" {
		return tc.LinkerPath
	}
	return "ld"
}

// Assemble invokes nasm to produce an object file from the assembly.
func (tc *Toolchain) Assemble(ctx context.Context) error {
	args := AssembleArgs(tc.Target, tc.AsmFile, tc.ObjFile)
	cmd := exec.CommandContext(ctx, tc.assembler(), args...)
	return tc.runCmd(cmd, "assemble")
}

// Link invokes the linker to produce the final executable.
func (tc *Toolchain) Link(ctx context.Context) error {
	sdk := ""
	if tc.Target.OS == OS_Darwin {
		// Linking still works without the SDK path on older systems.
		sdk, _ = findMacOSSDK(ctx)
	}
	args := LinkArgs(tc.Target, tc.ObjFile, tc.ExeFile, sdk)
	cmd := exec.CommandContext(ctx, tc.linker(), args...)
	return tc.runCmd(cmd, "link")
}

// AssembleArgs returns the nasm arguments for target.
func AssembleArgs(target *Target, asmFile, objFile string) []string {
	return []string{"-f", target.ObjFmt.String(), "-o", objFile, asmFile}
}

// LinkArgs returns the ld arguments for target. sdkPath is only used on
// macOS and may be empty.
func LinkArgs(target *Target, objFile, exeFile, sdkPath string) []string {
	switch target.OS {
	case OS_Darwin:
		args := []string{"-o", exeFile, "-e", target.EntryPoint, "-arch", "x86_64"}
		if sdkPath != "" {
			args = append(args, "-L"+sdkPath+"/usr/lib")
		}
		return append(args, "-lSystem", objFile)
	default:
		return []string{"-o", exeFile, objFile}
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (tc *Toolchain) runCmd(cmd *exec.Cmd, stage string) error {
	if tc.Logger != nil {
		tc.Logger.Debug("running "+stage, "cmd", strings.Join(cmd.Args, " "))
	}

	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", stage, err, stderr.String())
	}
	return nil
}

func findMacOSSDK(ctx context.Context) (string, error) {
	if runtime.GOOS != "darwin" {
		return "", fmt.Errorf("not on macOS")
	}
	out, err := exec.CommandContext(ctx, "xcrun", "--show-sdk-path").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Missing returns the external tools this toolchain needs but cannot find.
// The linker is only checked when link is set.
func (tc *Toolchain) Missing(link bool) []string {
	var missing []string
	if !toolExists(tc.assembler()) {
		missing = append(missing, "nasm")
	}
	if link && !toolExists(tc.linker()) {
		missing = append(missing, "ld (linker)")
	}
	return missing
}

func toolExists(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}
