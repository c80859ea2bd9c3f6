package lexer

import "fmt"

const (
	// Special
	EOF     = "EOF"
	ILLEGAL = "ILLEGAL"

	// Literals
	IDENT = "IDENT" // identifiers: x, total, part_2, …
	INT   = "INT"   // integer literals: 0, 42, 0xFF, …

	// Keywords
	LET  = "LET"
	EXIT = "EXIT"

	// Separators
	SEMICOLON = "SEMICOLON" // ;

	// Operators
	ASSIGN = "ASSIGN" // =
	PLUS   = "PLUS"   // +
	MINUS  = "MINUS"  // -
	STAR   = "STAR"   // *
)

// keywords maps reserved words to their token types.
var keywords = map[string]string{
	"let":  LET,
	"exit": EXIT,
}

// Class is the coarse category of a token type.
type Class int

const (
	ClassOther Class = iota
	ClassLiteral
	ClassIdentifier
	ClassOperator
	ClassKeyword
	ClassSeparator
)

func (c Class) String() string {
	switch c {
	case ClassLiteral:
		return "literal"
	case ClassIdentifier:
		return "identifier"
	case ClassOperator:
		return "operator"
	case ClassKeyword:
		return "keyword"
	case ClassSeparator:
		return "separator"
	default:
		return "other"
	}
}

// Token represents a single lexical token produced by the lexer.
type Token struct {
	Type   string
	Value  string
	Line   int
	Column int
}

// Class reports the token's category.
func (t Token) Class() Class {
	switch t.Type {
	case INT:
		return ClassLiteral
	case IDENT:
		return ClassIdentifier
	case ASSIGN, PLUS, MINUS, STAR:
		return ClassOperator
	case LET, EXIT:
		return ClassKeyword
	case SEMICOLON:
		return ClassSeparator
	default:
		return ClassOther
	}
}

// LexError represents a recoverable error encountered during lexing.
type LexError struct {
	Message string
	Lexeme  string
	Line    int
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s (got %q)", e.Line, e.Column, e.Message, e.Lexeme)
}

/**
* Lexes the given input string into a slice of Tokens. Also returns a slice of LexErrors for any recoverable errors encountered during lexing.
* @param input The source code to lex.
* @return A slice of Tokens (always terminated by EOF) and a slice of LexErrors.
 */
func Lex(input string) ([]Token, []LexError) {
	var tokens []Token
	var errors []LexError
	line, col, i := 1, 1, 0

	for i < len(input) {
		ch := input[i]
		if isWhitespace(ch) {
			if ch == '\n' {
				line++
				col = 1
			} else if ch != '\r' {
				col++
			}
			i++
			continue
		}

		// Ignore comments
		if ch == '/' && i+1 < len(input) {
			if input[i+1] == '/' {
				i, col = skipLineComment(input, i, col)
				continue
			}
			if input[i+1] == '*' {
				var err *LexError
				i, line, col, err = skipBlockComment(input, i, line, col)
				if err != nil {
					errors = append(errors, *err)
				}
				continue
			}
		}

		if isDigit(ch) {
			start := i
			tok, newI, newCol, numErr := lexNumber(input, i, line, col)
			i, col = newI, newCol
			// "12ab" is neither a number nor an identifier.
			if i < len(input) && isIdentStart(input[i]) {
				end := i
				for end < len(input) && isIdentPart(input[end]) {
					end++
				}
				errors = append(errors, LexError{
					Message: "identifier cannot start with a digit",
					Lexeme:  input[start:end],
					Line:    line,
					Column:  tok.Column,
				})
				col += end - i
				i = end
				continue
			}
			if numErr != nil {
				errors = append(errors, *numErr)
				continue
			}
			tokens = append(tokens, tok)
			continue
		}

		if isIdentStart(ch) {
			tok, newI, newCol := lexIdentifier(input, i, line, col)
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		if tok, width := lexOperatorOrSeparator(input, i, line, col); width > 0 {
			tokens = append(tokens, tok)
			i += width
			col += width
			continue
		}

		errors = append(errors, LexError{
			Message: "unexpected character",
			Lexeme:  string(ch),
			Line:    line,
			Column:  col,
		})
		i++
		col++
	}

	tokens = append(tokens, Token{EOF, "", line, col})
	return tokens, errors
}

func skipLineComment(input string, i int, col int) (int, int) {
	for i < len(input) && input[i] != '\n' {
		i++
		col++
	}
	return i, col
}

func skipBlockComment(input string, i int, line int, col int) (int, int, int, *LexError) {
	startLine, startCol := line, col
	i += 2
	col += 2

	for i < len(input) {
		if input[i] == '*' && i+1 < len(input) && input[i+1] == '/' {
			i += 2
			col += 2
			return i, line, col, nil
		}
		if input[i] == '\n' {
			line++
			col = 1
		} else if input[i] != '\r' {
			col++
		}
		i++
	}

	return i, line, col, &LexError{
		Message: "unterminated block comment",
		Lexeme:  "/*",
		Line:    startLine,
		Column:  startCol,
	}
}

// lexNumber scans a decimal or hexadecimal (0x…) integer literal.
func lexNumber(input string, start int, line int, col int) (Token, int, int, *LexError) {
	i := start
	startCol := col

	if input[i] == '0' && i+1 < len(input) && (input[i+1] == 'x' || input[i+1] == 'X') {
		i += 2
		col += 2
		for i < len(input) && isHexDigit(input[i]) {
			i++
			col++
		}
		if i == start+2 {
			return Token{}, i, col, &LexError{
				Message: "hex literal has no digits",
				Lexeme:  input[start:i],
				Line:    line,
				Column:  startCol,
			}
		}
		return Token{INT, input[start:i], line, startCol}, i, col, nil
	}

	for i < len(input) && isDigit(input[i]) {
		i++
		col++
	}
	return Token{INT, input[start:i], line, startCol}, i, col, nil
}

func lexIdentifier(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col
	for i < len(input) && isIdentPart(input[i]) {
		i++
		col++
	}
	word := input[start:i]
	tokType := IDENT
	if kw, ok := keywords[word]; ok {
		tokType = kw
	}
	return Token{tokType, word, line, startCol}, i, col
}

// lexOperatorOrSeparator matches a single-character operator or separator
// at input[i]. Returns the token and the number of characters consumed (0 if
// nothing matched).
func lexOperatorOrSeparator(input string, i int, line int, col int) (Token, int) {
	switch input[i] {
	case '=':
		return Token{ASSIGN, "=", line, col}, 1
	case '+':
		return Token{PLUS, "+", line, col}, 1
	case '-':
		return Token{MINUS, "-", line, col}, 1
	case '*':
		return Token{STAR, "*", line, col}, 1
	case ';':
		return Token{SEMICOLON, ";", line, col}, 1
	}
	return Token{}, 0
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
