package token

// Type identifies the lexical class of a token in a generated source unit.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT   Type = "IDENT"   // Rule, Statement, parseProduction
	KEYWORD Type = "KEYWORD" // type, const, switch, case, func, ...
	NUMBER  Type = "NUMBER"  // 42, 0x1f, 3.14
	STRING  Type = "STRING"  // "Statement", `raw`
	CHAR    Type = "CHAR"    // 'x'
	COMMENT Type = "COMMENT" // // ... or /* ... */

	LPAREN Type = "("
	RPAREN Type = ")"
	LBRACE Type = "{"
	RBRACE Type = "}"
	LBRACK Type = "["
	RBRACK Type = "]"

	COMMA     Type = ","
	SEMICOLON Type = ";"
	COLON     Type = ":"
	DOT       Type = "."

	OP Type = "OP" // any other operator run: =, :=, ==, *, &, ->, ...
)

// Token is one lexeme of a generated source unit. Pos and End are byte
// offsets into the document; rewrites are span-based, so offsets are
// authoritative and Line/Column exist for diagnostics only.
type Token struct {
	Type   Type
	Lexeme string
	Pos    int
	End    int
	Line   int
	Column int
}

// keywords is the Go keyword set; the generated sub-language is Go source,
// so keyword classification follows the host language.
var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// LookupIdent returns KEYWORD for Go keywords and IDENT otherwise.
func LookupIdent(ident string) Type {
	if keywords[ident] {
		return KEYWORD
	}
	return IDENT
}

// IsKeyword reports whether name is a Go keyword.
func IsKeyword(name string) bool {
	return keywords[name]
}

// Is reports whether the token is a keyword with the given text.
func (t Token) Is(keyword string) bool {
	return t.Type == KEYWORD && t.Lexeme == keyword
}
