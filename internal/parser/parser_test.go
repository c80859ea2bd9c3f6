package parser_test

import (
	"letc/internal/ast"
	"letc/internal/lexer"
	"letc/internal/parser"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseInput(t *testing.T, input string) *ast.Program {
	t.Helper()
	tokens, lexErrs := lexer.Lex(input)
	if len(lexErrs) > 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			t.Errorf("parse error: %s", e.Error())
		}
		t.FailNow()
	}
	return prog
}

func parseInputExpectErrors(t *testing.T, input string) (*ast.Program, []parser.ParseError) {
	t.Helper()
	tokens, _ := lexer.Lex(input)
	return parser.Parse(tokens)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestParseLetLiteral(t *testing.T) {
	prog := parseInput(t, "let x = 42;")
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	let, ok := prog.Stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected *ast.LetStmt, got %T", prog.Stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("name: got %q, want %q", let.Name, "x")
	}
	lit, ok := let.Value.(*ast.IntLitExpr)
	if !ok || lit.Value != "42" {
		t.Errorf("value: got %s", ast.ExprString(let.Value))
	}
}

func TestParseExitOperands(t *testing.T) {
	prog := parseInput(t, "let x = 1; exit x; exit 7;")
	if len(prog.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Stmts))
	}
	ident, ok := prog.Stmts[1].(*ast.ExitStmt).Operand.(*ast.IdentExpr)
	if !ok || ident.Name != "x" {
		t.Errorf("exit operand 1: got %T", prog.Stmts[1].(*ast.ExitStmt).Operand)
	}
	lit, ok := prog.Stmts[2].(*ast.ExitStmt).Operand.(*ast.IntLitExpr)
	if !ok || lit.Value != "7" {
		t.Errorf("exit operand 2: got %T", prog.Stmts[2].(*ast.ExitStmt).Operand)
	}
}

func TestParseStatementPositions(t *testing.T) {
	prog := parseInput(t, "let x = 1;\nexit x;")
	if got := prog.Stmts[1].GetPos(); got.Line != 2 || got.Column != 1 {
		t.Errorf("exit position: got %s, want 2:1", got)
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestParseExpressionShape(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"let x = 3 + 4;", "(3 + 4)"},
		{"let x = 1 + 2 + 3;", "((1 + 2) + 3)"},
		{"let x = 10 - 3 - 2;", "((10 - 3) - 2)"},
		{"let x = 2 * 3 + 1;", "((2 * 3) + 1)"},
		{"let x = 1 + 2 * 3;", "(1 + (2 * 3))"},
		{"let x = 2 * 3 * 4 - 5;", "(((2 * 3) * 4) - 5)"},
		{"let x = 1 - 2 * 3 + 4 * 5 * 6;", "((1 - (2 * 3)) + ((4 * 5) * 6))"},
	}
	for _, tt := range tests {
		prog := parseInput(t, tt.src)
		got := ast.ExprString(prog.Stmts[0].(*ast.LetStmt).Value)
		if got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseBinaryOperators(t *testing.T) {
	prog := parseInput(t, "let x = 1 - 2;")
	bin, ok := prog.Stmts[0].(*ast.LetStmt).Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected *ast.BinaryExpr")
	}
	if bin.Op != ast.OpMinus {
		t.Errorf("op: got %s, want minus", bin.Op)
	}
	if bin.Pos.Column != 11 {
		t.Errorf("operator column: got %d, want 11", bin.Pos.Column)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src     string
		wantMsg string
	}{
		{"let = 1;", "expected identifier after `let`"},
		{"let x 1;", "expected '=' after `let x`"},
		{"let x = y + 1;", "identifiers are not allowed in arithmetic"},
		{"let x = 1 +;", "expected number"},
		{"let x = 1", "expected ';' after let statement"},
		{"exit;", "expected number or identifier after `exit`"},
		{"exit 1", "expected ';' after exit statement"},
		{"x = 1;", "expected `let` or `exit`"},
	}
	for _, tt := range tests {
		_, errs := parseInputExpectErrors(t, tt.src)
		if len(errs) == 0 {
			t.Errorf("%q: expected errors", tt.src)
			continue
		}
		if !strings.Contains(errs[0].Message, tt.wantMsg) {
			t.Errorf("%q: got %q, want it to contain %q", tt.src, errs[0].Message, tt.wantMsg)
		}
	}
}

func TestParseRecoversAfterError(t *testing.T) {
	prog, errs := parseInputExpectErrors(t, "let = 1; let y = 2; exit y;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 recovered statements, got %d", len(prog.Stmts))
	}
	if _, ok := prog.Stmts[0].(*ast.LetStmt); !ok {
		t.Errorf("stmt 0: got %T, want *ast.LetStmt", prog.Stmts[0])
	}
}

func TestParseErrorFormat(t *testing.T) {
	_, errs := parseInputExpectErrors(t, "exit;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	want := `line 1, col 5: expected number or identifier after ` + "`exit`" + ` (got SEMICOLON ";")`
	if errs[0].Error() != want {
		t.Errorf("got %q, want %q", errs[0].Error(), want)
	}
}
