// Package synth generates one marker type per extracted rule.
package synth

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/pipeline"
	"github.com/varlund/dispatchgen/internal/token"
)

// markerTemplate renders the marker declarations in rule-set order. Marker
// types carry no state; a value is always the zero composite literal.
var markerTemplate = template.Must(template.New("markers").Parse(`
{{- range .}}
// {{.}} marks the {{.}} rule for static dispatch.
type {{.}} struct{}
{{end}}`))

// Processor is the pipeline stage wrapping the synthesizer. With an empty
// rule set it is a no-op, matching the degenerate-grammar contract.
type Processor struct{}

func (sp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if len(ctx.Rules) == 0 {
		return ctx
	}
	if err := CheckCollisions(ctx.Rules, ctx.Tokens, ctx.DeclSpan); err != nil {
		ctx.AddError(err)
		return ctx
	}
	decls, err := Markers(ctx.Rules)
	if err != nil {
		ctx.AddError(diagnostics.Errorf(diagnostics.ErrRender, "%v", err))
		return ctx
	}
	ctx.MarkerDecls = decls
	return ctx
}

// Markers renders the marker type declarations, preserving rule order.
// Pure function of the rule set.
func Markers(rules []string) (string, error) {
	var b strings.Builder
	if err := markerTemplate.Execute(&b, rules); err != nil {
		return "", fmt.Errorf("rendering marker types: %w", err)
	}
	return b.String(), nil
}

// CheckCollisions rejects a rule whose name is already declared elsewhere
// in the generated unit. Synthesizing such a marker would silently shadow a
// generator-internal helper, so it is a hard error instead.
func CheckCollisions(rules []string, toks []token.Token, decl pipeline.Span) *diagnostics.DiagnosticError {
	ruleSet := make(map[string]bool, len(rules))
	for _, r := range rules {
		ruleSet[r] = true
	}

	for i := 0; i < len(toks)-1; i++ {
		if toks[i].Pos >= decl.Start && toks[i].End <= decl.End {
			continue // the rule tags themselves
		}
		if !isDeclKeyword(toks[i]) {
			continue
		}
		j := i + 1
		for j < len(toks) && toks[j].Type == token.COMMENT {
			j++
		}
		if j >= len(toks) {
			break
		}
		// a method declaration names its identifier after the receiver
		if toks[i].Is("func") && toks[j].Type == token.LPAREN {
			j = skipParens(toks, j)
			for j < len(toks) && toks[j].Type == token.COMMENT {
				j++
			}
			if j >= len(toks) {
				break
			}
		}
		next := toks[j]
		if next.Type == token.IDENT && ruleSet[next.Lexeme] {
			return diagnostics.NewError(diagnostics.ErrNameCollision, next,
				fmt.Sprintf("rule %s collides with a declaration in the generated unit", next.Lexeme))
		}
	}
	return nil
}

func isDeclKeyword(tok token.Token) bool {
	return tok.Is("type") || tok.Is("func") || tok.Is("var") || tok.Is("const")
}

// skipParens returns the index just past the parenthesized group opening at
// toks[i].
func skipParens(toks []token.Token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch toks[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}
