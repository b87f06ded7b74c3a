// Package extract locates the rule-set declaration inside a generated
// source unit and parses it into an ordered rule set.
//
// Identification is structural: the scan walks the token stream for the
// reserved declaration shape (`type Rule int` followed by one parenthesized
// const block) and tracks delimiters, so interleaved documentation comments
// or formatting variance in the generator's output cannot corrupt the
// result. Fixed-offset slicing of the raw text is deliberately absent.
package extract

import (
	"fmt"

	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/lexer"
	"github.com/varlund/dispatchgen/internal/pipeline"
	"github.com/varlund/dispatchgen/internal/token"
)

// Result is one extracted rule-set declaration.
type Result struct {
	// Rules is the ordered rule identifier list; order is the grammar
	// declaration order and defines marker and rewrite order downstream.
	Rules []string

	// Span covers the whole declaration block, from its doc comment (or
	// the `type` keyword) through the const block's closing parenthesis.
	Span pipeline.Span
}

// Processor is the pipeline stage wrapping the extractor.
type Processor struct{}

func (ep *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	toks, err := lexer.Tokenize(ctx.Document)
	if err != nil {
		ctx.AddError(diagnostics.Errorf(diagnostics.ErrDeclMalformed, "tokenizing generated unit: %v", err))
		return ctx
	}
	ctx.Tokens = toks

	res, derr := Scan(toks)
	if derr != nil {
		ctx.AddError(derr)
		return ctx
	}
	ctx.Rules = res.Rules
	ctx.DeclSpan = res.Span
	return ctx
}

// Scan finds exactly one rule-set declaration in the token stream.
// A missing or duplicated declaration is fatal; an empty const block is the
// valid degenerate case and yields an empty rule set.
func Scan(toks []token.Token) (*Result, *diagnostics.DiagnosticError) {
	var results []*Result
	for i := 0; i < len(toks); i++ {
		if !isDeclHead(toks, i) {
			continue
		}
		res, err := parseDecl(toks, i)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	switch len(results) {
	case 0:
		return nil, diagnostics.Errorf(diagnostics.ErrDeclNotFound,
			"generated unit contains no `type %s int` declaration; grammar compiler output shape may have drifted",
			config.RuleTypeName)
	case 1:
		return results[0], nil
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrDeclAmbiguous,
			"generated unit contains %d `type %s int` declarations", len(results), config.RuleTypeName)
	}
}

// isDeclHead reports whether toks[i] starts `type Rule int`, ignoring
// interleaved comments.
func isDeclHead(toks []token.Token, i int) bool {
	if !toks[i].Is("type") {
		return false
	}
	j := skipComments(toks, i+1)
	if j >= len(toks) || toks[j].Type != token.IDENT || toks[j].Lexeme != config.RuleTypeName {
		return false
	}
	j = skipComments(toks, j+1)
	return j < len(toks) && toks[j].Type == token.IDENT && toks[j].Lexeme == "int"
}

// parseDecl parses the const block following `type Rule int` at toks[i].
func parseDecl(toks []token.Token, i int) (*Result, *diagnostics.DiagnosticError) {
	// Absorb the doc comment directly above the declaration so the
	// rewritten block does not inherit a stale one.
	start := toks[i].Pos
	line := toks[i].Line
	for k := i - 1; k >= 0 && toks[k].Type == token.COMMENT && toks[k].Line == line-1; k-- {
		start = toks[k].Pos
		line = toks[k].Line
	}

	j := skipComments(toks, i+1) // Rule
	j = skipComments(toks, j+1)  // int
	j = skipComments(toks, j+1)

	if j >= len(toks) || !toks[j].Is("const") {
		return nil, malformed(toks, j, "expected const block after rule type declaration")
	}
	j = skipComments(toks, j+1)
	if j >= len(toks) || toks[j].Type != token.LPAREN {
		return nil, malformed(toks, j, "expected parenthesized const block")
	}
	j++

	rules := make([]string, 0, 8)
	seen := make(map[string]bool)
	first := true
	for {
		j = skipComments(toks, j)
		if j >= len(toks) {
			return nil, malformed(toks, j, "unterminated const block")
		}
		if toks[j].Type == token.RPAREN {
			return &Result{Rules: rules, Span: pipeline.Span{Start: start, End: toks[j].End}}, nil
		}
		if toks[j].Type != token.IDENT {
			return nil, malformed(toks, j, fmt.Sprintf("unexpected %q in const block", toks[j].Lexeme))
		}
		name := toks[j].Lexeme
		if seen[name] {
			return nil, malformed(toks, j, fmt.Sprintf("duplicate rule tag %s", name))
		}
		seen[name] = true
		rules = append(rules, name)
		j = skipComments(toks, j+1)

		if first {
			// Statement Rule = iota
			first = false
			if j >= len(toks) || toks[j].Type != token.IDENT || toks[j].Lexeme != config.RuleTypeName {
				return nil, malformed(toks, j, "first tag must be typed "+config.RuleTypeName)
			}
			j = skipComments(toks, j+1)
			if j >= len(toks) || toks[j].Type != token.OP || toks[j].Lexeme != "=" {
				return nil, malformed(toks, j, "first tag must be assigned iota")
			}
			j = skipComments(toks, j+1)
			if j >= len(toks) || toks[j].Type != token.IDENT || toks[j].Lexeme != "iota" {
				return nil, malformed(toks, j, "first tag must be assigned iota")
			}
			j++
		}
	}
}

func skipComments(toks []token.Token, i int) int {
	for i < len(toks) && toks[i].Type == token.COMMENT {
		i++
	}
	return i
}

func malformed(toks []token.Token, i int, msg string) *diagnostics.DiagnosticError {
	at := token.Token{}
	if i < len(toks) {
		at = toks[i]
	} else if len(toks) > 0 {
		at = toks[len(toks)-1]
	}
	return diagnostics.NewError(diagnostics.ErrDeclMalformed, at, msg)
}
