package lexer

import (
	"strings"
	"testing"
)

func tokenTypes(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tokens, errs := Lex("let exit foo _bar baz42 letter exits")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	expected := []struct {
		typ string
		val string
	}{
		{LET, "let"},
		{EXIT, "exit"},
		{IDENT, "foo"},
		{IDENT, "_bar"},
		{IDENT, "baz42"},
		{IDENT, "letter"},
		{IDENT, "exits"},
		{EOF, ""},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("token count: got %d, want %d", len(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Value != exp.val {
			t.Errorf("token[%d]: got (%s, %q), want (%s, %q)",
				i, tokens[i].Type, tokens[i].Value, exp.typ, exp.val)
		}
	}
}

func TestIntegerLiterals(t *testing.T) {
	tokens, errs := Lex("0 42 0xFF 0X1a 9223372036854775807")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	expected := []string{"0", "42", "0xFF", "0X1a", "9223372036854775807"}
	for i, exp := range expected {
		if tokens[i].Type != INT || tokens[i].Value != exp {
			t.Errorf("token[%d]: got (%s, %q), want (INT, %q)",
				i, tokens[i].Type, tokens[i].Value, exp)
		}
	}
}

func TestLeadingZeroLiterals(t *testing.T) {
	tokens, errs := Lex("010 09")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if tokens[0].Value != "010" || tokens[1].Value != "09" {
		t.Errorf("got %q %q", tokens[0].Value, tokens[1].Value)
	}
}

func TestHexLiteralWithoutDigits(t *testing.T) {
	tokens, errs := Lex("exit 0x;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Message != "hex literal has no digits" || errs[0].Lexeme != "0x" || errs[0].Column != 6 {
		t.Errorf("error: got %+v", errs[0])
	}
	types := tokenTypes(tokens)
	expected := []string{EXIT, SEMICOLON, EOF}
	if strings.Join(types, " ") != strings.Join(expected, " ") {
		t.Fatalf("types: got %v, want %v", types, expected)
	}
}

func TestLetStatement(t *testing.T) {
	tokens, errs := Lex("let x = 2 * 3 + 1;")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	types := tokenTypes(tokens)
	expected := []string{LET, IDENT, ASSIGN, INT, STAR, INT, PLUS, INT, SEMICOLON, EOF}
	if strings.Join(types, " ") != strings.Join(expected, " ") {
		t.Fatalf("types: got %v, want %v", types, expected)
	}
}

func TestOperatorsWithoutSpaces(t *testing.T) {
	tokens, errs := Lex("10-3*2+1")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	types := tokenTypes(tokens)
	expected := []string{INT, MINUS, INT, STAR, INT, PLUS, INT, EOF}
	if strings.Join(types, " ") != strings.Join(expected, " ") {
		t.Fatalf("types: got %v, want %v", types, expected)
	}
}

func TestTokenClass(t *testing.T) {
	tests := []struct {
		tok  Token
		want Class
	}{
		{Token{Type: INT, Value: "1"}, ClassLiteral},
		{Token{Type: IDENT, Value: "x"}, ClassIdentifier},
		{Token{Type: PLUS, Value: "+"}, ClassOperator},
		{Token{Type: ASSIGN, Value: "="}, ClassOperator},
		{Token{Type: LET, Value: "let"}, ClassKeyword},
		{Token{Type: EXIT, Value: "exit"}, ClassKeyword},
		{Token{Type: SEMICOLON, Value: ";"}, ClassSeparator},
		{Token{Type: EOF}, ClassOther},
	}
	for _, tt := range tests {
		if got := tt.tok.Class(); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.tok.Type, got, tt.want)
		}
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	tokens, errs := Lex("let a = 1;\n  exit a;")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	exit := tokens[5]
	if exit.Type != EXIT {
		t.Fatalf("token[5]: got %s, want EXIT", exit.Type)
	}
	if exit.Line != 2 || exit.Column != 3 {
		t.Errorf("exit position: got %d:%d, want 2:3", exit.Line, exit.Column)
	}
}

func TestComments(t *testing.T) {
	src := "// leading\nlet x = 1; /* block\ncomment */ exit x;"
	tokens, errs := Lex(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	types := tokenTypes(tokens)
	expected := []string{LET, IDENT, ASSIGN, INT, SEMICOLON, EXIT, IDENT, SEMICOLON, EOF}
	if strings.Join(types, " ") != strings.Join(expected, " ") {
		t.Fatalf("types: got %v, want %v", types, expected)
	}
	if tokens[5].Line != 3 {
		t.Errorf("exit line: got %d, want 3", tokens[5].Line)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, errs := Lex("exit 1; /* never closed")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "unterminated block comment") {
		t.Errorf("unexpected message: %s", errs[0].Message)
	}
}

func TestIdentifierStartingWithDigit(t *testing.T) {
	tokens, errs := Lex("let 12ab = 1;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Lexeme != "12ab" || errs[0].Column != 5 {
		t.Errorf("error: got lexeme %q col %d, want \"12ab\" col 5", errs[0].Lexeme, errs[0].Column)
	}
	types := tokenTypes(tokens)
	expected := []string{LET, ASSIGN, INT, SEMICOLON, EOF}
	if strings.Join(types, " ") != strings.Join(expected, " ") {
		t.Fatalf("types: got %v, want %v", types, expected)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	_, errs := Lex("exit 1 / 2;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Lexeme != "/" || errs[0].Column != 8 {
		t.Errorf("error: got %q at col %d", errs[0].Lexeme, errs[0].Column)
	}
	if got := errs[0].Error(); got != `line 1, col 8: unexpected character (got "/")` {
		t.Errorf("Error(): got %q", got)
	}
}

func TestEmptyInput(t *testing.T) {
	tokens, errs := Lex("")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tokens) != 1 || tokens[0].Type != EOF {
		t.Fatalf("expected only EOF, got %v", tokens)
	}
}
