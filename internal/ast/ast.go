package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Source position
// ---------------------------------------------------------------------------

// Position represents a line/column pair in source code (1-based).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	GetPos() Position
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Operator is the sub-kind of an operator token.
type Operator int

const (
	OpNone Operator = iota
	OpPlus
	OpMinus
	OpMultiply
	OpEquals
)

// String returns the spelling used in generated slot names.
func (o Operator) String() string {
	switch o {
	case OpPlus:
		return "plus"
	case OpMinus:
		return "minus"
	case OpMultiply:
		return "multiply"
	case OpEquals:
		return "equals"
	default:
		return "none"
	}
}

// Symbol returns the source spelling of the operator.
func (o Operator) Symbol() string {
	switch o {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMultiply:
		return "*"
	case OpEquals:
		return "="
	default:
		return "?"
	}
}

// ---------------------------------------------------------------------------
// Program (root)
// ---------------------------------------------------------------------------

// Program is the ordered statement list of one source file.
type Program struct {
	Stmts []Stmt
	Pos   Position
}

func (n *Program) GetPos() Position { return n.Pos }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// LetStmt: let <name> = <value>;
type LetStmt struct {
	Name  string
	Value Expr
	Pos   Position
}

func (n *LetStmt) GetPos() Position { return n.Pos }
func (n *LetStmt) stmtNode()        {}

// ExitStmt: exit <operand>;
type ExitStmt struct {
	Operand Expr // *IntLitExpr or *IdentExpr
	Pos     Position
}

func (n *ExitStmt) GetPos() Position { return n.Pos }
func (n *ExitStmt) stmtNode()        {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IdentExpr is a plain identifier reference.
type IdentExpr struct {
	Name string
	Pos  Position
}

func (n *IdentExpr) GetPos() Position { return n.Pos }
func (n *IdentExpr) exprNode()        {}

// IntLitExpr is an integer literal (value kept as the original lexeme).
type IntLitExpr struct {
	Value string
	Pos   Position
}

func (n *IntLitExpr) GetPos() Position { return n.Pos }
func (n *IntLitExpr) exprNode()        {}

// Int64 parses the lexeme. Digits are decimal even with leading zeros, as
// NASM reads them; only a 0x or 0X prefix selects hexadecimal.
func (n *IntLitExpr) Int64() (int64, error) {
	v := n.Value
	if len(v) > 2 && v[0] == '0' && (v[1] == 'x' || v[1] == 'X') {
		return strconv.ParseInt(v[2:], 16, 64)
	}
	return strconv.ParseInt(v, 10, 64)
}

// BinaryExpr: <left> <op> <right>
type BinaryExpr struct {
	Left  Expr
	Op    Operator
	Right Expr
	Pos   Position // position of the operator
}

func (n *BinaryExpr) GetPos() Position { return n.Pos }
func (n *BinaryExpr) exprNode()        {}

// ---------------------------------------------------------------------------
// Debug printing
// ---------------------------------------------------------------------------

// ExprString renders an expression fully parenthesised, e.g. "((2 * 3) + 1)".
func ExprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch n := e.(type) {
	case *IntLitExpr:
		return n.Value
	case *IdentExpr:
		return n.Name
	case *BinaryExpr:
		return "(" + ExprString(n.Left) + " " + n.Op.Symbol() + " " + ExprString(n.Right) + ")"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// DebugString returns an indented dump of the program.
func DebugString(prog *Program) string {
	var b strings.Builder
	b.WriteString("Program\n")
	for _, s := range prog.Stmts {
		b.WriteString("  ")
		switch n := s.(type) {
		case *LetStmt:
			fmt.Fprintf(&b, "Let %s = %s", n.Name, ExprString(n.Value))
		case *ExitStmt:
			fmt.Fprintf(&b, "Exit %s", ExprString(n.Operand))
		default:
			fmt.Fprintf(&b, "<%T>", s)
		}
		fmt.Fprintf(&b, " @%s\n", s.GetPos())
	}
	return b.String()
}
