package codegen

import (
	"letc/internal/ast"
	"slices"
)

// ---------------------------------------------------------------------------
// Reduction: folding a binding's slots into the destination register
//
// Slots are visited in name order. Additive slots go straight into the
// destination; the factors of one product are multiplied in the first
// scratch register and added once the product ends (the next slot belongs
// to a different operator or occurrence, or there is no next slot).
// ---------------------------------------------------------------------------

type reduceState int

const (
	reduceIdle           reduceState = iota // no product open
	reduceAwaitingSecond                    // first factor loaded
	reducePending                           // at least two factors multiplied
)

type reducer struct {
	dst   Operand
	acc   Operand // product accumulator
	tmp   Operand // second factor / narrow loads
	state reduceState
	out   []IRInstr
}

func (l *Lowerer) reduce(slots []*Slot) ([]IRInstr, error) {
	sorted := slices.Clone(slots)
	SortByName(sorted)

	r := &reducer{
		dst: PReg(l.target.DestReg),
		acc: PReg(l.target.ScratchRegs[0]),
		tmp: PReg(l.target.ScratchRegs[1]),
	}
	r.emit(IRXor, r.dst, r.dst)

	for i, s := range sorted {
		switch s.Op {
		case ast.OpNone:
			// A bare literal binding: its value is the result.
			r.out = append(r.out, loadSlot(r.dst, s)...)
			return r.out, nil
		case ast.OpPlus:
			r.emit(IRAdd, r.dst, r.source(s))
		case ast.OpMinus:
			r.emit(IRSub, r.dst, r.source(s))
		case ast.OpMultiply:
			r.factor(s)
			if i+1 == len(sorted) || !sameProduct(s, sorted[i+1]) {
				r.flush()
			}
		case ast.OpEquals:
			return nil, internalErrorf("arithmetic operator", "slot %q carries operator =", s.Name)
		default:
			return nil, internalErrorf("arithmetic operator", "slot %q carries unknown operator %d", s.Name, int(s.Op))
		}
	}
	if r.state != reduceIdle {
		return nil, internalErrorf("reduction", "product left open")
	}
	return r.out, nil
}

func sameProduct(a, b *Slot) bool {
	return a.Op == b.Op && a.Occurrence == b.Occurrence
}

func (r *reducer) emit(op IROp, dst, src Operand) {
	r.out = append(r.out, IRInstr{Op: op, Dst: dst, Src: src})
}

// source returns an operand for s usable directly in a 64-bit arithmetic
// instruction, loading narrow slots into the scratch register first.
func (r *reducer) source(s *Slot) Operand {
	if s.Width < 64 {
		r.emit(IRMovSX, r.tmp, SlotMem(s))
		return r.tmp
	}
	return SlotMem(s)
}

// loadSlot moves a slot's value into reg, sign-extending narrow slots.
func loadSlot(reg Operand, s *Slot) []IRInstr {
	if s.Width < 64 {
		return []IRInstr{{Op: IRMovSX, Dst: reg, Src: SlotMem(s)}}
	}
	return []IRInstr{{Op: IRMov, Dst: reg, Src: SlotMem(s)}}
}

func (r *reducer) factor(s *Slot) {
	switch r.state {
	case reduceIdle:
		r.out = append(r.out, loadSlot(r.acc, s)...)
		r.state = reduceAwaitingSecond
	default:
		r.out = append(r.out, loadSlot(r.tmp, s)...)
		r.emit(IRMul, r.acc, r.tmp)
		r.state = reducePending
	}
}

func (r *reducer) flush() {
	r.emit(IRAdd, r.dst, r.acc)
	r.state = reduceIdle
}
