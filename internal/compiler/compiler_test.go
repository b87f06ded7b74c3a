package compiler

import (
	"strings"
	"testing"

	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/extract"
	"github.com/varlund/dispatchgen/internal/lexer"
	"github.com/varlund/dispatchgen/internal/rewrite"
)

const calcGrammar = `!side $space;
$space = /\s+/;
$name = /\w+/;
$op = /[,]/;

statement = expr-item, {',', expr-item};
expr-item = $name;
`

func testProject() *config.Project {
	return &config.Project{
		Grammar:   "calc.llx",
		Interface: "Handler",
		Parser:    "CalcParser",
		Package:   "calc",
		Output:    "calc_parser.go",
	}
}

func TestRuleIdent(t *testing.T) {
	tests := []struct {
		production string
		want       string
	}{
		{"statement", "Statement"},
		{"expr-item", "ExprItem"},
		{"cmd_message", "CmdMessage"},
		{"a-b_c", "ABC"},
		{"already", "Already"},
		{"x", "X"},
	}
	for _, tt := range tests {
		if got := RuleIdent(tt.production); got != tt.want {
			t.Errorf("RuleIdent(%q) = %q, want %q", tt.production, got, tt.want)
		}
	}
}

func TestMapIdents(t *testing.T) {
	tests := []struct {
		name        string
		productions []string
		wantErr     string
	}{
		{"distinct", []string{"statement", "expr-item"}, ""},
		{"collision across separators", []string{"a-b", "a_b"}, "both map"},
		{"reserved type name", []string{"rule"}, "reserved"},
		{"reserved accessor", []string{"all-rules"}, "reserved"},
		{"unusable name", []string{"9grammar"}, "usable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := make([]Rule, len(tt.productions))
			for i, p := range tt.productions {
				rules[i].Production = p
			}
			err := MapIdents(rules)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				for _, r := range rules {
					if r.Ident == "" {
						t.Fatalf("rule %q left without identifier", r.Production)
					}
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error: got %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCompileProducesScannableUnit(t *testing.T) {
	doc, err := Compile("calc.llx", calcGrammar, testProject())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	for _, want := range []string{
		"package calc",
		"type Rule int",
		"Statement Rule = iota",
		"ExprItem",
		"type CalcParser struct",
		"func NewCalcParser()",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("generated unit missing %q:\n%s", want, doc)
		}
	}

	toks, terr := lexer.Tokenize(doc)
	if terr != nil {
		t.Fatalf("tokenize: %v", terr)
	}
	res, derr := extract.Scan(toks)
	if derr != nil {
		t.Fatalf("extract: %v", derr)
	}
	if len(res.Rules) != 2 || res.Rules[0] != "Statement" || res.Rules[1] != "ExprItem" {
		t.Fatalf("extracted rules: got %v", res.Rules)
	}
}

func TestCompileRejectsBadGrammar(t *testing.T) {
	if _, err := Compile("bad.llx", "statement = ;", testProject()); err == nil {
		t.Fatal("expected a grammar error")
	}
}

// Every rule reference the template emits must be classifiable by the site
// scanner; an unclassifiable site in freshly rendered output would make the
// whole pipeline fail closed on its own product.
func TestRenderedUnitHasOnlyKnownSiteShapes(t *testing.T) {
	rules := []Rule{
		{Ident: "Statement", Production: "statement"},
		{Ident: "ExprItem", Production: "expr-item"},
	}
	doc, err := render(testProject(), "calc.llx", calcGrammar, rules)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	toks, terr := lexer.Tokenize(doc)
	if terr != nil {
		t.Fatalf("tokenize: %v", terr)
	}
	res, derr := extract.Scan(toks)
	if derr != nil {
		t.Fatalf("extract: %v", derr)
	}
	if _, serr := rewrite.Scan(toks, res.Rules, res.Span); serr != nil {
		t.Fatalf("site scan over rendered unit: %v", serr)
	}
}

func TestRenderEmbedsGrammarSource(t *testing.T) {
	doc, err := render(testProject(), "calc.llx", calcGrammar, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(doc, "const grammarSrc = ") {
		t.Errorf("grammar constant missing:\n%s", doc)
	}
	if !strings.Contains(doc, `expr-item, {`) {
		t.Errorf("grammar text not embedded:\n%s", doc)
	}
}
