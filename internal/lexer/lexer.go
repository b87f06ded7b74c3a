package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/varlund/dispatchgen/internal/token"
)

// Lexer tokenizes one generated source unit. The generated sub-language is
// Go source text, but only the token classes the pipeline scans for are
// distinguished; everything else is reproduced verbatim through OP tokens.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken returns the next token. Whitespace is skipped; comments are
// returned as single COMMENT tokens so the scanner can step over them
// without looking inside.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	pos, line, col := l.position, l.line, l.column

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Pos: len(l.input), End: len(l.input), Line: line, Column: col}
	case '(':
		return l.single(token.LPAREN, pos, line, col)
	case ')':
		return l.single(token.RPAREN, pos, line, col)
	case '{':
		return l.single(token.LBRACE, pos, line, col)
	case '}':
		return l.single(token.RBRACE, pos, line, col)
	case '[':
		return l.single(token.LBRACK, pos, line, col)
	case ']':
		return l.single(token.RBRACK, pos, line, col)
	case ',':
		return l.single(token.COMMA, pos, line, col)
	case ';':
		return l.single(token.SEMICOLON, pos, line, col)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(pos, line, col)
		}
		return l.single(token.DOT, pos, line, col)
	case ':':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.OP, Lexeme: ":=", Pos: pos, End: l.position, Line: line, Column: col}
		}
		return l.single(token.COLON, pos, line, col)
	case '"':
		return l.readString(pos, line, col)
	case '`':
		return l.readRawString(pos, line, col)
	case '\'':
		return l.readCharLiteral(pos, line, col)
	case '/':
		if l.peekChar() == '/' {
			return l.readLineComment(pos, line, col)
		}
		if l.peekChar() == '*' {
			return l.readBlockComment(pos, line, col)
		}
		return l.readOperator(pos, line, col)
	}

	if isLetter(l.ch) {
		return l.readIdentifier(pos, line, col)
	}
	if isDigit(l.ch) {
		return l.readNumber(pos, line, col)
	}
	if isOperatorChar(l.ch) {
		return l.readOperator(pos, line, col)
	}

	lexeme := string(l.ch)
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) single(t token.Type, pos, line, col int) token.Token {
	lexeme := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Lexeme: lexeme, Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier(pos, line, col int) token.Token {
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[pos:l.position]
	return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readNumber(pos, line, col int) token.Token {
	// Hex digits, exponents, and underscores all fall under isLetter or
	// isDigit; numbers are opaque to the scanner, so precision is
	// irrelevant here.
	for isDigit(l.ch) || isLetter(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return token.Token{Type: token.NUMBER, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readString(pos, line, col int) token.Token {
	l.readChar() // opening quote
	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch != '"' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
	}
	l.readChar() // closing quote
	return token.Token{Type: token.STRING, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readRawString(pos, line, col int) token.Token {
	l.readChar() // opening backquote
	for l.ch != '`' && l.ch != 0 {
		l.readChar()
	}
	if l.ch != '`' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
	}
	l.readChar()
	return token.Token{Type: token.STRING, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readCharLiteral(pos, line, col int) token.Token {
	l.readChar() // opening quote
	for l.ch != '\'' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch != '\'' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
	}
	l.readChar()
	return token.Token{Type: token.CHAR, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readLineComment(pos, line, col int) token.Token {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return token.Token{Type: token.COMMENT, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readBlockComment(pos, line, col int) token.Token {
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.ch == 0 {
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	return token.Token{Type: token.COMMENT, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func (l *Lexer) readOperator(pos, line, col int) token.Token {
	for isOperatorChar(l.ch) {
		// stop before a comment opener so "x = y // note" splits correctly
		if l.ch == '/' && (l.peekChar() == '/' || l.peekChar() == '*') {
			break
		}
		l.readChar()
	}
	return token.Token{Type: token.OP, Lexeme: l.input[pos:l.position], Pos: pos, End: l.position, Line: line, Column: col}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isOperatorChar(ch rune) bool {
	switch ch {
	case '+', '-', '*', '/', '%', '&', '|', '^', '<', '>', '=', '!', '~':
		return true
	}
	return false
}

// Tokenize scans the whole input and returns its token stream, excluding
// the trailing EOF token. The first lexically malformed construct aborts
// the scan with its position.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			return toks, nil
		}
		if tok.Type == token.ILLEGAL {
			return nil, fmt.Errorf("malformed token %q at line %d col %d", tok.Lexeme, tok.Line, tok.Column)
		}
		toks = append(toks, tok)
	}
}
