// Package compiler adapts the external grammar compiler (github.com/ava12/llx).
//
// The adapter compiles the grammar description with langdef, derives the
// ordered rule list from the grammar's node table, and renders the baseline
// generated source unit. The rendered shape is the version-locked contract
// the rest of the pipeline scans for; the later stages re-discover the rule
// set structurally from the text and never receive it out of band.
package compiler

import (
	"os"
	"strings"

	"github.com/ava12/llx/langdef"

	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/pipeline"
	"github.com/varlund/dispatchgen/internal/token"
)

// reservedIdents are names the rendered unit declares itself. A rule that
// maps onto one of these cannot be represented and is rejected up front.
var reservedIdents = map[string]bool{
	config.RuleTypeName:     true,
	config.AllRulesFuncName: true,
	config.RuleNamesVarName: true,
	config.GrammarConstName: true,
	"RuleByName":            true,
	"ParseNode":             true,
}

// Rule pairs a grammar production with the exported Go identifier its
// marker type will use.
type Rule struct {
	// Ident is the exported Go identifier (CmdMessage).
	Ident string

	// Production is the grammar production name (cmd-message).
	Production string
}

// Processor is the pipeline stage wrapping the adapter.
type Processor struct{}

func (cp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	project := ctx.Project

	src, err := os.ReadFile(project.GrammarPath())
	if err != nil {
		ctx.AddError(diagnostics.Errorf(diagnostics.ErrGrammarUnreadable, "reading grammar: %v", err))
		return ctx
	}
	ctx.GrammarName = project.Grammar
	ctx.GrammarSource = string(src)

	doc, err := Compile(ctx.GrammarName, ctx.GrammarSource, project)
	if err != nil {
		if de, ok := err.(*diagnostics.DiagnosticError); ok {
			ctx.AddError(de)
		} else {
			ctx.AddError(diagnostics.Errorf(diagnostics.ErrGrammarCompile, "%v", err))
		}
		return ctx
	}
	ctx.Document = doc
	return ctx
}

// Compile runs the external grammar compiler on the grammar description and
// returns the baseline generated source unit. The grammar compiler's own
// error, if any, is surfaced verbatim inside the diagnostic.
func Compile(name, grammarSrc string, project *config.Project) (string, error) {
	g, err := langdef.ParseString(name, grammarSrc)
	if err != nil {
		return "", diagnostics.Errorf(diagnostics.ErrGrammarCompile, "grammar compiler: %v", err)
	}

	rules := make([]Rule, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		rules = append(rules, Rule{Production: node.Name})
	}
	if err := MapIdents(rules); err != nil {
		return "", err
	}

	return render(project, name, grammarSrc, rules)
}

// MapIdents fills in the Go identifier for each rule and validates the
// result: identifiers must be valid, unique, and must not shadow a name the
// rendered unit reserves.
func MapIdents(rules []Rule) error {
	seen := make(map[string]string, len(rules))
	for i := range rules {
		ident := RuleIdent(rules[i].Production)
		if !config.IsIdentifier(ident) || token.IsKeyword(ident) {
			return diagnostics.Errorf(diagnostics.ErrRuleIdent,
				"production %q does not map to a usable Go identifier", rules[i].Production)
		}
		if reservedIdents[ident] {
			return diagnostics.Errorf(diagnostics.ErrRuleIdent,
				"production %q maps to reserved identifier %s", rules[i].Production, ident)
		}
		if prev, dup := seen[ident]; dup {
			return diagnostics.Errorf(diagnostics.ErrRuleIdent,
				"productions %q and %q both map to identifier %s", prev, rules[i].Production, ident)
		}
		seen[ident] = rules[i].Production
		rules[i].Ident = ident
	}
	return nil
}

// RuleIdent converts a grammar production name to an exported Go
// identifier: segments split on '-' and '_' are capitalized and joined,
// so "cmd-message" becomes "CmdMessage".
func RuleIdent(production string) string {
	var b strings.Builder
	upper := true
	for _, r := range production {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
