package codegen

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// x86-64 Assembly Emitter
//
// Produces NASM (Intel syntax) lines for slot declarations and IR
// instructions. Memory operands always carry an explicit size keyword so
// the assembler never has to guess.
// ---------------------------------------------------------------------------

type x86_64Emitter struct {
	target *Target
}

// dataDirective returns the NASM pseudo-instruction for a slot width.
func dataDirective(width int) string {
	switch width {
	case 8:
		return "db"
	case 16:
		return "dw"
	case 32:
		return "dd"
	default:
		return "dq"
	}
}

func sizeKeyword(width int) string {
	switch width {
	case 8:
		return "byte"
	case 16:
		return "word"
	case 32:
		return "dword"
	default:
		return "qword"
	}
}

// slotDecl renders one data-section line.
func (e *x86_64Emitter) slotDecl(s *Slot) string {
	return fmt.Sprintf("    %s: %s %d", s.Name, dataDirective(s.Width), s.Value)
}

func (e *x86_64Emitter) operand(op Operand) string {
	switch op.Kind {
	case OpPhysReg:
		return op.PhysReg
	case OpImmediate:
		return fmt.Sprintf("%d", op.Imm)
	case OpMemory:
		if e.target.RIPRelative {
			return fmt.Sprintf("%s [rel %s]", sizeKeyword(op.Width), op.Label)
		}
		return fmt.Sprintf("%s [%s]", sizeKeyword(op.Width), op.Label)
	case OpLabel:
		return op.Label
	}
	return ""
}

// instr renders one IR instruction as a single line of NASM.
func (e *x86_64Emitter) instr(in IRInstr) string {
	switch in.Op {
	case IRComment:
		return "    ; " + in.Src.Label
	case IRSyscall:
		return "    " + e.target.SyscallInstr
	case IRMovSX:
		mnemonic := "movsx"
		if in.Src.Width == 32 {
			mnemonic = "movsxd"
		}
		return fmt.Sprintf("    %s %s, %s", mnemonic, e.operand(in.Dst), e.operand(in.Src))
	case IRMul:
		return fmt.Sprintf("    imul %s, %s", e.operand(in.Dst), e.operand(in.Src))
	default:
		return fmt.Sprintf("    %s %s, %s", in.Op, e.operand(in.Dst), e.operand(in.Src))
	}
}
