package lexer

import (
	"testing"

	"github.com/varlund/dispatchgen/internal/token"
)

func TestNextTokenClassification(t *testing.T) {
	input := `type Rule int // tags
const (
	Statement Rule = iota
)
var names = map[Rule]string{Statement: "Statement"}
x := a == 'b' /* block */ && s[0]
` + "raw := `multi\nline`\n"

	expected := []struct {
		typ    token.Type
		lexeme string
	}{
		{token.KEYWORD, "type"},
		{token.IDENT, "Rule"},
		{token.IDENT, "int"},
		{token.COMMENT, "// tags"},
		{token.KEYWORD, "const"},
		{token.LPAREN, "("},
		{token.IDENT, "Statement"},
		{token.IDENT, "Rule"},
		{token.OP, "="},
		{token.IDENT, "iota"},
		{token.RPAREN, ")"},
		{token.KEYWORD, "var"},
		{token.IDENT, "names"},
		{token.OP, "="},
		{token.KEYWORD, "map"},
		{token.LBRACK, "["},
		{token.IDENT, "Rule"},
		{token.RBRACK, "]"},
		{token.IDENT, "string"},
		{token.LBRACE, "{"},
		{token.IDENT, "Statement"},
		{token.COLON, ":"},
		{token.STRING, `"Statement"`},
		{token.RBRACE, "}"},
		{token.IDENT, "x"},
		{token.OP, ":="},
		{token.IDENT, "a"},
		{token.OP, "=="},
		{token.CHAR, "'b'"},
		{token.COMMENT, "/* block */"},
		{token.OP, "&&"},
		{token.IDENT, "s"},
		{token.LBRACK, "["},
		{token.NUMBER, "0"},
		{token.RBRACK, "]"},
		{token.IDENT, "raw"},
		{token.OP, ":="},
		{token.STRING, "`multi\nline`"},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Lexeme != want.lexeme {
			t.Fatalf("token %d: got (%s, %q), want (%s, %q)", i, tok.Type, tok.Lexeme, want.typ, want.lexeme)
		}
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF, got (%s, %q)", tok.Type, tok.Lexeme)
	}
}

func TestTokenOffsetsRoundTrip(t *testing.T) {
	input := "const (\n\tStatement Rule = iota // first\n)\n"
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range toks {
		if got := input[tok.Pos:tok.End]; got != tok.Lexeme {
			t.Errorf("offset mismatch for %s: input slice %q, lexeme %q", tok.Type, got, tok.Lexeme)
		}
	}
}

func TestRuleNamesInsideLiteralsStayOpaque(t *testing.T) {
	input := "s := \"case Statement:\" // Statement\n"
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range toks {
		if tok.Type == token.IDENT && tok.Lexeme == "Statement" {
			t.Fatalf("identifier leaked out of a literal: %+v", tok)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `s := "oops`},
		{"unterminated block comment", "/* never ends"},
		{"unterminated raw string", "s := `oops"},
		{"unterminated char", "c := 'x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Tokenize(tt.input); err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
		})
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	input := "a\n  bb\n"
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(toks))
	}
	if toks[0].Line != 1 || toks[1].Line != 2 {
		t.Errorf("lines: got %d and %d, want 1 and 2", toks[0].Line, toks[1].Line)
	}
	if toks[1].Column != 3 {
		t.Errorf("column of bb: got %d, want 3", toks[1].Column)
	}
}
