package emit

import (
	"regexp"
	"strings"
	"testing"

	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/extract"
	"github.com/varlund/dispatchgen/internal/lexer"
	"github.com/varlund/dispatchgen/internal/pipeline"
	"github.com/varlund/dispatchgen/internal/rewrite"
	"github.com/varlund/dispatchgen/internal/synth"
)

const baselineUnit = `package calc

// Rule identifies one grammar production.
type Rule int

const (
	Statement Rule = iota
	Expression
)

var ruleNames = map[Rule]string{
	Statement:  "statement",
	Expression: "expression",
}

func describe(r Rule) string {
	switch r {
	case Statement:
		return "stmt " + ruleNames[r]
	case Expression:
		return "expr " + ruleNames[r]
	}
	return ""
}
`

// stageContext runs the middle pipeline stages by hand so the assembly can
// be tested without a grammar compiler in the loop.
func stageContext(t *testing.T, doc string) *pipeline.Context {
	t.Helper()
	ctx := pipeline.NewContext(&config.Project{
		Interface: "Handler",
		Output:    "calc_rules.go",
	})
	ctx.Document = doc

	toks, err := lexer.Tokenize(doc)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	ctx.Tokens = toks

	res, derr := extract.Scan(toks)
	if derr != nil {
		t.Fatalf("extract: %v", derr)
	}
	ctx.Rules = res.Rules
	ctx.DeclSpan = res.Span

	if len(res.Rules) > 0 {
		markers, err := synth.Markers(res.Rules)
		if err != nil {
			t.Fatalf("markers: %v", err)
		}
		ctx.MarkerDecls = markers

		container, err := rewrite.Container(res.Rules, ctx.Project.Interface)
		if err != nil {
			t.Fatalf("container: %v", err)
		}
		ctx.ContainerDecl = container

		sites, serr := rewrite.Scan(toks, res.Rules, res.Span)
		if serr != nil {
			t.Fatalf("sites: %v", serr)
		}
		for _, s := range sites {
			if e, ok := s.Edit(); ok {
				ctx.Edits = append(ctx.Edits, e)
			}
		}
	}
	return ctx
}

func TestAssembleWrapsTheUnit(t *testing.T) {
	ctx := stageContext(t, baselineUnit)
	got, err := Assemble(ctx)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	for _, want := range []string{
		"type Statement struct{}",
		"type Expression struct{}",
		"type Rule interface {",
		"Handler",
		"Statement{}:  \"statement\"",
		"switch r := r.(type) {",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("assembled unit missing %q:\n%s", want, got)
		}
	}
	requireSealMethods(t, got, "Statement", "Expression")

	// "type Rule interface" must not be mistaken for the tag declaration
	if strings.Contains(got, "type Rule int\n") {
		t.Errorf("tag declaration survived the rewrite:\n%s", got)
	}
	if strings.Contains(got, "Rule = iota") {
		t.Errorf("const block survived the rewrite:\n%s", got)
	}
	if strings.Contains(got, "// Rule identifies one grammar production.") {
		t.Errorf("stale doc comment survived the rewrite:\n%s", got)
	}
}

// sealMethodRe tolerates the column alignment gofmt applies to consecutive
// one-line methods.
var sealMethodRe = regexp.MustCompile(`func \((\w+)\) isRule\(\)\s+\{\}`)

func requireSealMethods(t *testing.T, doc string, rules ...string) {
	t.Helper()
	got := make(map[string]bool)
	for _, m := range sealMethodRe.FindAllStringSubmatch(doc, -1) {
		got[m[1]] = true
	}
	for _, r := range rules {
		if !got[r] {
			t.Errorf("missing seal method for %s:\n%s", r, doc)
		}
	}
	if len(got) != len(rules) {
		t.Errorf("seal methods: got %v, want exactly %v", got, rules)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	a, err := Assemble(stageContext(t, baselineUnit))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	b, err := Assemble(stageContext(t, baselineUnit))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if a != b {
		t.Fatal("two assemblies of the same input differ")
	}
}

func TestAssembleDegenerateUnitPassesThrough(t *testing.T) {
	doc := "package calc\n\ntype Rule int\n\nconst ()\n"
	ctx := stageContext(t, doc)
	got, err := Assemble(ctx)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(got, "type Rule int") {
		t.Errorf("degenerate unit must keep the tag declaration:\n%s", got)
	}
	if strings.Contains(got, "interface") {
		t.Errorf("degenerate unit must not be wrapped:\n%s", got)
	}
}

func TestAssembleRejectsUnbalancedSplice(t *testing.T) {
	ctx := stageContext(t, baselineUnit)
	ctx.ContainerDecl = "type Rule interface {" // missing close brace
	if _, err := Assemble(ctx); err == nil {
		t.Fatal("expected a formatting error for an unbalanced unit")
	}
}

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		edits   []pipeline.Edit
		want    string
		wantErr bool
	}{
		{
			name: "disjoint edits in any order",
			doc:  "aa bb cc",
			edits: []pipeline.Edit{
				{Span: pipeline.Span{Start: 6, End: 8}, Text: "CC"},
				{Span: pipeline.Span{Start: 0, End: 2}, Text: "AA"},
			},
			want: "AA bb CC",
		},
		{
			name: "insertion at a point",
			doc:  "ab",
			edits: []pipeline.Edit{
				{Span: pipeline.Span{Start: 1, End: 1}, Text: "X"},
			},
			want: "aXb",
		},
		{
			name: "overlap is rejected",
			doc:  "abcdef",
			edits: []pipeline.Edit{
				{Span: pipeline.Span{Start: 0, End: 4}, Text: "x"},
				{Span: pipeline.Span{Start: 2, End: 6}, Text: "y"},
			},
			wantErr: true,
		},
		{
			name: "out of bounds is rejected",
			doc:  "ab",
			edits: []pipeline.Edit{
				{Span: pipeline.Span{Start: 1, End: 9}, Text: "x"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apply(tt.doc, tt.edits)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
