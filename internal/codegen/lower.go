package codegen

import (
	"fmt"
	"letc/internal/ast"
)

// ---------------------------------------------------------------------------
// Lowerer: one compile pass over a Program
// ---------------------------------------------------------------------------

// Lowerer owns all mutable state of a single compile pass. It is created by
// Lower and never escapes it.
type Lowerer struct {
	target *Target
	slots  *SlotTable
	names  slotNamer
	buf    *AssemblyBuffer
	emit   *x86_64Emitter
	groups []Group
}

// Lower runs the full pass: bindings are flattened into slots, exit
// statements are reduced into instruction groups, and the assembly text is
// assembled into the returned Module. The first internal error aborts the
// pass and no module is returned.
func Lower(program *ast.Program, target *Target) (*Module, error) {
	if program == nil {
		return nil, internalErrorf("well-formed AST", "nil program")
	}
	l := &Lowerer{
		target: target,
		slots:  NewSlotTable(),
		names:  newSlotNamer(),
		buf:    NewAssemblyBuffer(target),
		emit:   &x86_64Emitter{target: target},
	}

	for _, stmt := range program.Stmts {
		var err error
		switch s := stmt.(type) {
		case *ast.LetStmt:
			err = l.lowerLet(s)
		case *ast.ExitStmt:
			err = l.lowerExit(s)
		case nil:
			err = internalErrorf("well-formed AST", "nil statement")
		default:
			err = internalErrorAt(stmt.GetPos(), "well-formed AST", "unsupported statement %T", stmt)
		}
		if err != nil {
			return nil, err
		}
	}

	return &Module{
		Target: target,
		Slots:  l.slots,
		Groups: l.groups,
		buf:    l.buf,
	}, nil
}

// ---------------------------------------------------------------------------
// Slot naming
// ---------------------------------------------------------------------------

// slotNamer assigns occurrence and chain numbers. It lives for the whole
// pass; bindings do not reset it.
type slotNamer struct {
	last  ast.Operator
	occ   map[ast.Operator]int
	chain int
}

func newSlotNamer() slotNamer {
	return slotNamer{occ: map[ast.Operator]int{}}
}

// next returns the occurrence and chain index for a leaf tagged op.
func (n *slotNamer) next(op ast.Operator) (occurrence, chain int) {
	if op == n.last {
		n.chain++
	} else {
		n.chain = 0
		n.occ[op]++
	}
	n.last = op
	return n.occ[op], n.chain
}

// breakRun forces the next leaf to open a new run.
func (n *slotNamer) breakRun() {
	n.last = ast.OpNone
}

func slotName(binding string, op ast.Operator, occurrence, chain int) string {
	return fmt.Sprintf("%s_%s_%d_%d", binding, op, occurrence, chain)
}

// ---------------------------------------------------------------------------
// Bindings
// ---------------------------------------------------------------------------

// term is one additive operand: a single literal or a product of literals.
type term struct {
	sign    ast.Operator // OpPlus or OpMinus
	factors []int64
	pos     ast.Position
}

func (l *Lowerer) lowerLet(s *ast.LetStmt) error {
	if lit, ok := s.Value.(*ast.IntLitExpr); ok {
		v, err := literalValue(lit)
		if err != nil {
			return err
		}
		return l.allocate(&Slot{Name: s.Name, Binding: s.Name, Value: v, Op: ast.OpNone})
	}

	terms, err := flatten(s.Value)
	if err != nil {
		return err
	}

	for _, t := range terms {
		if len(t.factors) == 1 {
			occ, chain := l.names.next(t.sign)
			err := l.allocate(&Slot{
				Name:       slotName(s.Name, t.sign, occ, chain),
				Binding:    s.Name,
				Value:      t.factors[0],
				Op:         t.sign,
				Occurrence: occ,
				Chain:      chain,
			})
			if err != nil {
				return err
			}
			continue
		}

		// A product is added as a whole; subtracting it means negating one
		// factor.
		l.names.breakRun()
		for i, f := range t.factors {
			if i == 0 && t.sign == ast.OpMinus {
				f = -f
			}
			occ, chain := l.names.next(ast.OpMultiply)
			err := l.allocate(&Slot{
				Name:       slotName(s.Name, ast.OpMultiply, occ, chain),
				Binding:    s.Name,
				Value:      f,
				Op:         ast.OpMultiply,
				Occurrence: occ,
				Chain:      chain,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Lowerer) allocate(s *Slot) error {
	if err := l.slots.Allocate(s); err != nil {
		return err
	}
	l.buf.Data(l.emit.slotDecl(s))
	return nil
}

// flatten walks the expression in source order with an explicit stack and
// splits it into additive terms. Multiplication binds tighter than + and -,
// matching how the parser nests the tree.
func flatten(root ast.Expr) ([]term, error) {
	var (
		values []int64
		ops    []*ast.BinaryExpr
		stack  []*ast.BinaryExpr
	)

	cur := root
	for {
		for {
			b, ok := cur.(*ast.BinaryExpr)
			if !ok {
				break
			}
			if err := checkShape(b); err != nil {
				return nil, err
			}
			stack = append(stack, b)
			cur = b.Left
		}

		lit, ok := cur.(*ast.IntLitExpr)
		if !ok {
			return nil, leafError(cur)
		}
		v, err := literalValue(lit)
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if len(stack) == 0 {
			break
		}
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ops = append(ops, b)
		cur = b.Right
	}

	terms := []term{{sign: ast.OpPlus, factors: values[:1:1], pos: root.GetPos()}}
	for i, b := range ops {
		v := values[i+1]
		switch b.Op {
		case ast.OpMultiply:
			last := &terms[len(terms)-1]
			last.factors = append(last.factors, v)
		case ast.OpPlus, ast.OpMinus:
			terms = append(terms, term{sign: b.Op, factors: []int64{v}, pos: b.Pos})
		case ast.OpEquals:
			return nil, internalErrorAt(b.Pos, "arithmetic operator", "operator = used as an arithmetic operator")
		default:
			return nil, internalErrorAt(b.Pos, "arithmetic operator", "unknown operator %d", int(b.Op))
		}
	}
	return terms, nil
}

// checkShape rejects trees the parser never builds: a sum under a product,
// or a sum as the right operand of + or -. Flattening them in source order
// would change their value.
func checkShape(b *ast.BinaryExpr) error {
	additive := func(e ast.Expr) bool {
		c, ok := e.(*ast.BinaryExpr)
		return ok && (c.Op == ast.OpPlus || c.Op == ast.OpMinus)
	}
	switch b.Op {
	case ast.OpMultiply:
		if additive(b.Left) || additive(b.Right) {
			return internalErrorAt(b.Pos, "operator precedence", "sum nested under multiplication")
		}
	case ast.OpPlus, ast.OpMinus:
		if additive(b.Right) {
			return internalErrorAt(b.Pos, "left associativity", "sum nested as a right operand")
		}
	}
	return nil
}

func leafError(e ast.Expr) error {
	switch n := e.(type) {
	case nil:
		return internalErrorf("well-formed AST", "missing operand")
	case *ast.IdentExpr:
		return internalErrorAt(n.Pos, "literal-only arithmetic", "identifier %q inside arithmetic", n.Name)
	default:
		return internalErrorAt(e.GetPos(), "well-formed AST", "unsupported expression %T", e)
	}
}

func literalValue(lit *ast.IntLitExpr) (int64, error) {
	v, err := lit.Int64()
	if err != nil {
		return 0, internalErrorAt(lit.Pos, "64-bit literal", "invalid integer literal %q", lit.Value)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Exit statements
// ---------------------------------------------------------------------------

func (l *Lowerer) lowerExit(s *ast.ExitStmt) error {
	dst := PReg(l.target.DestReg)
	var (
		instrs []IRInstr
		source string
	)

	switch op := s.Operand.(type) {
	case *ast.IntLitExpr:
		v, err := literalValue(op)
		if err != nil {
			return err
		}
		source = "exit " + op.Value
		instrs = []IRInstr{{Op: IRMov, Dst: dst, Src: Imm(v)}}

	case *ast.IdentExpr:
		source = "exit " + op.Name
		slots := l.slots.Lookup(op.Name)
		switch {
		case len(slots) == 0:
			instrs = []IRInstr{{Op: IRMov, Dst: dst, Src: LabelOp(op.Name)}}
		case len(slots) == 1 && slots[0].Op == ast.OpNone:
			instrs = loadSlot(dst, slots[0])
		default:
			var err error
			instrs, err = l.reduce(slots)
			if err != nil {
				return err
			}
		}

	default:
		return internalErrorAt(s.Pos, "exit operand", "exit operand must be a literal or identifier, got %T", s.Operand)
	}

	instrs = append(instrs,
		IRInstr{Op: IRMov, Dst: PReg(l.target.SyscallReg), Src: Imm(l.target.ExitSyscall)},
		IRInstr{Op: IRSyscall},
	)

	g := Group{Source: source, Instrs: instrs}
	l.groups = append(l.groups, g)
	l.buf.Text(l.emit.instr(IRInstr{Op: IRComment, Src: LabelOp(source)}))
	for _, in := range instrs {
		l.buf.Text(l.emit.instr(in))
	}
	return nil
}
