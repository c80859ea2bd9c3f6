package semantic

import (
	"fmt"
	"letc/internal/ast"
	"regexp"
)

// ---------------------------------------------------------------------------
// Diagnostic severity
// ---------------------------------------------------------------------------

// Severity indicates whether a diagnostic is an error or a warning.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Diagnostic
// ---------------------------------------------------------------------------

// Diagnostic represents a single message produced by the semantic analyser.
type Diagnostic struct {
	Message  string
	Pos      ast.Position
	Severity Severity
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d, col %d: %s: %s", d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// HasErrors returns true if any diagnostic in the slice is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Reserved names
// ---------------------------------------------------------------------------

// Binding names become assembler labels, so anything NASM would read as a
// register, a directive or one of our own labels is off limits.
var reservedNames = []string{
	// NASM directives and data pseudo-instructions
	"section", "segment", "global", "extern", "default", "bits", "rel", "abs",
	"db", "dw", "dd", "dq", "resb", "resw", "resd", "resq", "equ", "times",
	"byte", "word", "dword", "qword",
	// Entry / body labels
	"_start", "main", "_main",
}

// registerName matches every x86-64 register spelling. NASM ignores case
// for registers, so neither do we.
var registerName = regexp.MustCompile(`(?i)^(` +
	`[re]?[a-d]x|[a-d][hl]|` + // rax eax ax ah al ...
	`[re]?(si|di|bp|sp)|(si|di|bp|sp)l|` + // rsi esi si sil ...
	`r([89]|1[0-5])[bwdl]?|` + // r8 r8b r8w r8d r8l ...
	`[c-gs]s|` + // segment
	`[re]?ip|[re]?flags|` +
	`[xyz]mm([0-9]|[12][0-9]|3[01])|mm[0-7]|st[0-7]?|k[0-7]|` +
	`cr([0-9]|1[0-5])|dr([0-9]|1[0-5])|bnd[0-3]` +
	`)$`)

var reservedSet = func() map[string]bool {
	m := make(map[string]bool, len(reservedNames))
	for _, n := range reservedNames {
		m[n] = true
	}
	return m
}()

// slotShaped matches names the code generator derives for operator slots
// (<binding>_<operator>_<occurrence>_<chain>).
var slotShaped = regexp.MustCompile(`^.+_(plus|minus|multiply)_[0-9]+_[0-9]+$`)

// ---------------------------------------------------------------------------
// Analyser
// ---------------------------------------------------------------------------

type binding struct {
	pos  ast.Position
	used bool
}

// Analyzer holds the state for a single semantic-analysis pass.
type Analyzer struct {
	diagnostics []Diagnostic
	bindings    map[string]*binding
	order       []string
	exitPos     *ast.Position // first exit statement seen, if any
}

// Analyze runs semantic analysis on the given AST program and returns all
// diagnostics (errors and warnings).  The returned slice is empty when the
// program is semantically valid.
func Analyze(program *ast.Program) []Diagnostic {
	a := &Analyzer{bindings: map[string]*binding{}}
	a.analyzeProgram(program)
	return a.diagnostics
}

// ---- helpers ----

func (a *Analyzer) error(pos ast.Position, msg string) {
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Message:  msg,
		Pos:      pos,
		Severity: Error,
	})
}

func (a *Analyzer) warn(pos ast.Position, msg string) {
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Message:  msg,
		Pos:      pos,
		Severity: Warning,
	})
}

// ---- program ----

func (a *Analyzer) analyzeProgram(program *ast.Program) {
	for _, stmt := range program.Stmts {
		if a.exitPos != nil {
			a.warn(stmt.GetPos(), fmt.Sprintf("unreachable statement: the program already exits at line %d", a.exitPos.Line))
		}
		switch s := stmt.(type) {
		case *ast.LetStmt:
			a.analyzeLet(s)
		case *ast.ExitStmt:
			a.analyzeExit(s)
		default:
			a.error(stmt.GetPos(), fmt.Sprintf("unsupported statement %T", stmt))
		}
	}

	for _, name := range a.order {
		if b := a.bindings[name]; !b.used {
			a.warn(b.pos, fmt.Sprintf("variable %q declared but never used", name))
		}
	}
}

func (a *Analyzer) analyzeLet(s *ast.LetStmt) {
	switch {
	case reservedSet[s.Name], registerName.MatchString(s.Name):
		a.error(s.Pos, fmt.Sprintf("%q is a reserved name", s.Name))
	case slotShaped.MatchString(s.Name):
		a.error(s.Pos, fmt.Sprintf("%q is reserved for generated slot names", s.Name))
	}

	if prev, ok := a.bindings[s.Name]; ok {
		a.error(s.Pos, fmt.Sprintf("variable %q already declared at line %d", s.Name, prev.pos.Line))
	} else {
		a.bindings[s.Name] = &binding{pos: s.Pos}
		a.order = append(a.order, s.Name)
	}

	a.analyzeExpr(s.Value)
}

// analyzeExpr walks the expression with an explicit stack so arbitrarily long
// chains cannot exhaust the goroutine stack.
func (a *Analyzer) analyzeExpr(root ast.Expr) {
	stack := []ast.Expr{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch n := e.(type) {
		case *ast.IntLitExpr:
			a.checkLiteral(n)
		case *ast.BinaryExpr:
			if n.Op != ast.OpPlus && n.Op != ast.OpMinus && n.Op != ast.OpMultiply {
				a.error(n.Pos, fmt.Sprintf("operator %q is not allowed in arithmetic", n.Op.Symbol()))
			}
			stack = append(stack, n.Right, n.Left)
		case *ast.IdentExpr:
			a.error(n.Pos, fmt.Sprintf("identifier %q is not allowed in arithmetic", n.Name))
		case nil:
			a.error(ast.Position{}, "missing expression")
		default:
			a.error(e.GetPos(), fmt.Sprintf("unsupported expression %T", e))
		}
	}
}

func (a *Analyzer) checkLiteral(n *ast.IntLitExpr) (int64, bool) {
	v, err := n.Int64()
	if err != nil {
		a.error(n.Pos, fmt.Sprintf("integer literal %s does not fit in 64 bits", n.Value))
		return 0, false
	}
	return v, true
}

func (a *Analyzer) analyzeExit(s *ast.ExitStmt) {
	if a.exitPos == nil {
		pos := s.Pos
		a.exitPos = &pos
	}

	switch op := s.Operand.(type) {
	case *ast.IntLitExpr:
		v, ok := a.checkLiteral(op)
		if ok && (v < 0 || v > 255) {
			a.warn(op.Pos, fmt.Sprintf("exit status %d is truncated to %d by the operating system", v, v&0xff))
		}
	case *ast.IdentExpr:
		b, ok := a.bindings[op.Name]
		if !ok {
			a.error(op.Pos, fmt.Sprintf("undefined variable %q", op.Name))
			return
		}
		b.used = true
	default:
		a.error(s.Pos, "exit expects a number or an identifier")
	}
}
