package codegen

import (
	"fmt"
	"runtime"
)

// ---------------------------------------------------------------------------
// OS / Architecture / Target enums
// ---------------------------------------------------------------------------

// OS represents a target operating system.
type OS int

const (
	OS_Linux  OS = iota
	OS_Darwin    // macOS
)

func (o OS) String() string {
	switch o {
	case OS_Linux:
		return "linux"
	case OS_Darwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// Arch represents a target CPU architecture.
type Arch int

const (
	Arch_x86_64 Arch = iota
)

func (a Arch) String() string {
	switch a {
	case Arch_x86_64:
		return "x86_64"
	default:
		return "unknown"
	}
}

// ObjFormat is the object file format produced by the assembler.
type ObjFormat int

const (
	ObjELF   ObjFormat = iota // Linux
	ObjMachO                  // macOS
)

func (f ObjFormat) String() string {
	switch f {
	case ObjELF:
		return "elf64"
	case ObjMachO:
		return "macho64"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Target: a fully-resolved compilation target
// ---------------------------------------------------------------------------

// Target holds everything the emitter needs to know about the platform: the
// object format, the three registers the reduction uses, and the exit
// syscall convention.
type Target struct {
	OS     OS
	Arch   Arch
	ObjFmt ObjFormat

	// DestReg receives the value being computed; it is also the first
	// syscall argument, so it doubles as the exit status.
	DestReg string

	// ScratchRegs are the two registers used to build products.
	ScratchRegs [2]string

	// SyscallReg holds the syscall number, SyscallInstr invokes it.
	SyscallReg   string
	SyscallInstr string

	// ExitSyscall is the exit system call number (class prefix included).
	ExitSyscall int64

	// SymbolPrefix: macOS Mach-O prepends "_" to global symbols.
	SymbolPrefix string

	// EntryPoint is the linker entry-point symbol (after prefix).
	EntryPoint string

	// BodyLabel marks the start of the text section. It must differ from
	// EntryPoint, which the header already defines.
	BodyLabel string

	// RIPRelative makes memory operands "[rel sym]"; Mach-O rejects absolute
	// 32-bit addressing in 64-bit code.
	RIPRelative bool
}

// HostTarget returns a Target matching the current Go runtime (GOOS/GOARCH).
func HostTarget() (*Target, error) {
	return ResolveTarget(runtime.GOOS, runtime.GOARCH)
}

// ResolveTarget builds a Target from OS/Arch name strings (same names Go uses).
func ResolveTarget(osName, archName string) (*Target, error) {
	t := &Target{}

	switch osName {
	case "linux":
		t.OS = OS_Linux
	case "darwin":
		t.OS = OS_Darwin
	default:
		return nil, fmt.Errorf("unsupported OS: %s", osName)
	}

	switch archName {
	case "amd64", "x86_64":
		t.Arch = Arch_x86_64
	default:
		return nil, fmt.Errorf("unsupported architecture: %s", archName)
	}

	t.fillX86_64()

	switch t.OS {
	case OS_Darwin:
		t.ObjFmt = ObjMachO
		t.SymbolPrefix = "_"
		t.ExitSyscall = 0x2000001 // BSD class prefix + SYS_exit
		t.RIPRelative = true
	case OS_Linux:
		t.ObjFmt = ObjELF
		t.SymbolPrefix = ""
		t.ExitSyscall = 60
	}
	t.EntryPoint = "_start"
	t.BodyLabel = t.Sym("main")

	return t, nil
}

// ParseTarget resolves an "os/arch" pair such as "linux/amd64".
func ParseTarget(s string) (*Target, error) {
	for i, c := range s {
		if c == '/' {
			return ResolveTarget(s[:i], s[i+1:])
		}
	}
	return nil, fmt.Errorf("invalid target format %q (expected os/arch, e.g. linux/amd64)", s)
}

// ---------------------------------------------------------------------------
// Architecture-specific initialization
// ---------------------------------------------------------------------------

func (t *Target) fillX86_64() {
	// System V: rdi is the first syscall argument; r10/r11 are free because
	// nothing here is a function call.
	t.DestReg = "rdi"
	t.ScratchRegs = [2]string{"r10", "r11"}
	t.SyscallReg = "rax"
	t.SyscallInstr = "syscall"
}

// ---------------------------------------------------------------------------
// Helper queries
// ---------------------------------------------------------------------------

// FileExtObj returns the object file extension.
func (t *Target) FileExtObj() string {
	return ".o"
}

// FileExtExe returns the executable extension.
func (t *Target) FileExtExe() string {
	return ""
}

// FileExtAsm returns the assembly file extension.
func (t *Target) FileExtAsm() string {
	return ".asm"
}

// Sym returns a symbol name with the target prefix applied.
func (t *Target) Sym(name string) string {
	return t.SymbolPrefix + name
}

// OSName returns the OS as a lowercase string.
func (t *Target) OSName() string {
	return t.OS.String()
}

// ArchName returns the architecture using Go-style names.
func (t *Target) ArchName() string {
	switch t.Arch {
	case Arch_x86_64:
		return "amd64"
	default:
		return "unknown"
	}
}

// String returns "os/arch".
func (t *Target) String() string {
	return t.OSName() + "/" + t.ArchName()
}
