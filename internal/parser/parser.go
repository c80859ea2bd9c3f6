package parser

import (
	"fmt"
	"letc/internal/ast"
	"letc/internal/lexer"
)

// ---------------------------------------------------------------------------
// Precedence levels for Pratt expression parsing
// ---------------------------------------------------------------------------

const (
	precNone     = iota
	precAdditive // + -
	precMultiply // *
)

// ---------------------------------------------------------------------------
// ParseError
// ---------------------------------------------------------------------------

// ParseError represents a single error found during parsing.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the state for a single parse pass over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
	errors []ParseError
}

// Parse is the main entry point. It takes a token slice (as produced by
// lexer.Lex) and returns an AST program plus any parse errors collected.
func Parse(tokens []lexer.Token) (*ast.Program, []ParseError) {
	p := &Parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	return prog, p.errors
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// peek returns the current token without consuming it.
func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Type: lexer.EOF}
}

// advance consumes and returns the current token.
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

// previous returns the most recently consumed token.
func (p *Parser) previous() lexer.Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return lexer.Token{Type: lexer.EOF}
}

// check returns true if the current token has the given type.
func (p *Parser) check(typ string) bool {
	return p.peek().Type == typ
}

// expect consumes the current token if it matches typ; otherwise it records
// an error and returns false WITHOUT advancing.
func (p *Parser) expect(typ string, msg string) (lexer.Token, bool) {
	if p.check(typ) {
		return p.advance(), true
	}
	tok := p.peek()
	p.addError(tok, fmt.Sprintf("%s (got %s %q)", msg, tok.Type, tok.Value))
	return tok, false
}

// addError appends a ParseError at the given token's location.
func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

// synchronize advances past tokens until it reaches a likely statement
// boundary, allowing the parser to recover from an error and keep going.
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		if p.previous().Type == lexer.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case lexer.LET, lexer.EXIT:
			return
		}
		p.advance()
	}
}

// position converts a token into an ast.Position.
func (p *Parser) position(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// =========================================================================
// Statements
// =========================================================================

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Pos: p.position(p.peek())}

	for !p.check(lexer.EOF) {
		start := p.pos
		var stmt ast.Stmt
		switch p.peek().Type {
		case lexer.LET:
			stmt = p.parseLet()
		case lexer.EXIT:
			stmt = p.parseExit()
		default:
			p.addError(p.peek(), fmt.Sprintf("expected `let` or `exit`, got %s %q", p.peek().Type, p.peek().Value))
			p.advance()
		}
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
			continue
		}
		if p.pos == start {
			p.advance()
		}
		p.synchronize()
	}

	return prog
}

// parseLet parses: let <name> = <expr>;
// Returns nil after recording an error.
func (p *Parser) parseLet() ast.Stmt {
	tok := p.advance() // consume LET
	name, ok := p.expect(lexer.IDENT, "expected identifier after `let`")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.ASSIGN, fmt.Sprintf("expected '=' after `let %s`", name.Value)); !ok {
		return nil
	}
	value := p.parseExpression(precNone)
	if value == nil {
		return nil
	}
	if _, ok := p.expect(lexer.SEMICOLON, "expected ';' after let statement"); !ok {
		return nil
	}
	return &ast.LetStmt{Name: name.Value, Value: value, Pos: p.position(tok)}
}

// parseExit parses: exit <int|ident>;
func (p *Parser) parseExit() ast.Stmt {
	tok := p.advance() // consume EXIT
	operand := p.peek()
	var expr ast.Expr
	switch operand.Type {
	case lexer.INT:
		p.advance()
		expr = &ast.IntLitExpr{Value: operand.Value, Pos: p.position(operand)}
	case lexer.IDENT:
		p.advance()
		expr = &ast.IdentExpr{Name: operand.Value, Pos: p.position(operand)}
	default:
		p.addError(operand, fmt.Sprintf("expected number or identifier after `exit` (got %s %q)", operand.Type, operand.Value))
		return nil
	}
	if _, ok := p.expect(lexer.SEMICOLON, "expected ';' after exit statement"); !ok {
		return nil
	}
	return &ast.ExitStmt{Operand: expr, Pos: p.position(tok)}
}

// =========================================================================
// Expressions (Pratt parser)
// =========================================================================

// binaryPrec returns the infix precedence of a token type, or precNone.
func binaryPrec(typ string) int {
	switch typ {
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR:
		return precMultiply
	}
	return precNone
}

func binaryOp(typ string) ast.Operator {
	switch typ {
	case lexer.PLUS:
		return ast.OpPlus
	case lexer.MINUS:
		return ast.OpMinus
	case lexer.STAR:
		return ast.OpMultiply
	}
	return ast.OpNone
}

// parseExpression parses operators binding tighter than minPrec. Operators of
// equal precedence associate to the left.
func (p *Parser) parseExpression(minPrec int) ast.Expr {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}

	for {
		tok := p.peek()
		prec := binaryPrec(tok.Type)
		if prec == precNone || prec <= minPrec {
			return left
		}
		p.advance()
		right := p.parseExpression(prec)
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{Left: left, Op: binaryOp(tok.Type), Right: right, Pos: p.position(tok)}
	}
}

// parsePrimary parses an integer literal. Identifiers are not allowed inside
// arithmetic.
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.INT:
		p.advance()
		return &ast.IntLitExpr{Value: tok.Value, Pos: p.position(tok)}
	case lexer.IDENT:
		p.addError(tok, fmt.Sprintf("identifiers are not allowed in arithmetic (got %q)", tok.Value))
		return nil
	default:
		p.addError(tok, fmt.Sprintf("expected number (got %s %q)", tok.Type, tok.Value))
		return nil
	}
}
