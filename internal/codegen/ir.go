package codegen

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// IR: the instruction groups produced for exit statements
//
// Every exit statement becomes one Group: a flat list of two-operand
// instructions over physical registers, immediates and slot memory. The
// target emitter turns each instruction into one line of assembly.
// ---------------------------------------------------------------------------

// OpKind describes what an IR operand represents.
type OpKind int

const (
	OpNone      OpKind = iota // unused operand slot
	OpPhysReg                 // a named physical CPU register (e.g. "rdi")
	OpImmediate               // integer literal
	OpMemory                  // a data-section slot
	OpLabel                   // bare symbol reference
)

// Operand is a single value in an IR instruction.
type Operand struct {
	Kind    OpKind
	PhysReg string // OpPhysReg
	Imm     int64  // OpImmediate
	Label   string // OpMemory (slot name) or OpLabel
	Width   int    // OpMemory access width in bits
}

func (o Operand) String() string {
	switch o.Kind {
	case OpNone:
		return "<none>"
	case OpPhysReg:
		return "%" + o.PhysReg
	case OpImmediate:
		return fmt.Sprintf("$%d", o.Imm)
	case OpMemory:
		return fmt.Sprintf("[%s]:%d", o.Label, o.Width)
	case OpLabel:
		return o.Label
	default:
		return "?"
	}
}

// Convenience constructors for operands.
func PReg(name string) Operand    { return Operand{Kind: OpPhysReg, PhysReg: name} }
func Imm(val int64) Operand       { return Operand{Kind: OpImmediate, Imm: val} }
func LabelOp(name string) Operand { return Operand{Kind: OpLabel, Label: name} }
func SlotMem(s *Slot) Operand {
	return Operand{Kind: OpMemory, Label: s.Name, Width: s.Width}
}
func None() Operand { return Operand{Kind: OpNone} }

// ---------------------------------------------------------------------------
// IR opcodes
// ---------------------------------------------------------------------------

// IROp is an IR instruction opcode.
type IROp int

const (
	IRMov     IROp = iota // dst = src
	IRMovSX               // dst = sign-extend(src), src narrower than 64 bits
	IRXor                 // dst ^= src (xor r, r zeroes r)
	IRAdd                 // dst += src
	IRSub                 // dst -= src
	IRMul                 // dst *= src (signed)
	IRSyscall             // invoke system call (regs already set up)
	IRComment             // emit a comment in the output (src = label with comment text)
)

var irOpNames = map[IROp]string{
	IRMov: "mov", IRMovSX: "movsx", IRXor: "xor",
	IRAdd: "add", IRSub: "sub", IRMul: "mul",
	IRSyscall: "syscall", IRComment: "comment",
}

func (op IROp) String() string {
	if s, ok := irOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("irop_%d", int(op))
}

// ---------------------------------------------------------------------------
// IR Instruction
// ---------------------------------------------------------------------------

// IRInstr is a single IR instruction.
type IRInstr struct {
	Op  IROp
	Dst Operand
	Src Operand
}

func (i IRInstr) String() string {
	s := i.Op.String()
	if i.Dst.Kind != OpNone {
		s += " " + i.Dst.String()
	}
	if i.Src.Kind != OpNone {
		s += ", " + i.Src.String()
	}
	return s
}

// ---------------------------------------------------------------------------
// Group / Module
// ---------------------------------------------------------------------------

// Group is the instruction sequence of one exit statement.
type Group struct {
	Source string // e.g. "exit x"
	Instrs []IRInstr
}

// Module is the result of lowering one program.
type Module struct {
	Target *Target
	Slots  *SlotTable
	Groups []Group

	buf *AssemblyBuffer
}

// Assembly returns the final assembly text.
func (m *Module) Assembly() string {
	return m.buf.String()
}

// DebugDump returns a human-readable representation of the module.
func (m *Module) DebugDump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== IR Module (%s, %d slots, %d groups) ===\n",
		m.Target, m.Slots.Len(), len(m.Groups))
	for _, s := range m.Slots.Slots() {
		fmt.Fprintf(&b, "  .slot %s\n", s)
	}
	for _, g := range m.Groups {
		fmt.Fprintf(&b, "\n%s:\n", g.Source)
		for _, instr := range g.Instrs {
			fmt.Fprintf(&b, "  %s\n", instr)
		}
	}
	return b.String()
}
