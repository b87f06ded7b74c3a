package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/varlund/dispatchgen/internal/config"
)

// unitTemplate renders the baseline generated unit. Its shape is a contract:
// the extractor expects exactly one `type Rule int` followed by one const
// block of tags, and the reference-site rewriter expects rule tags to occur
// only as map keys, slice elements, and switch cases. Changing this template
// means revisiting both rewriters.
var unitTemplate = template.Must(template.New("unit").Parse(`// Code generated by dispatchgen from {{.GrammarName}}. DO NOT EDIT.

package {{.Package}}

import (
	"fmt"

	"github.com/ava12/llx/langdef"
	"github.com/ava12/llx/parser"
	"github.com/ava12/llx/source"
)

// Rule identifies one grammar production.
type Rule int

const (
{{- range $i, $r := .Rules}}
	{{$r.Ident}}{{if not $i}} Rule = iota{{end}}
{{- end}}
)

// ruleNames maps each rule tag to its grammar production name.
var ruleNames = map[Rule]string{
{{- range .Rules}}
	{{.Ident}}: {{printf "%q" .Production}},
{{- end}}
}

// AllRules lists every rule in grammar declaration order.
func AllRules() []Rule {
	return []Rule{
{{- range .Rules}}
		{{.Ident}},
{{- end}}
	}
}

// RuleByName returns the rule tag for a grammar production name.
func RuleByName(name string) (Rule, bool) {
	for _, r := range AllRules() {
		if ruleNames[r] == name {
			return r, true
		}
	}
	var none Rule
	return none, false
}

// grammarSrc is the grammar description compiled into this parser.
const grammarSrc = {{.GrammarQuoted}}

// ParseNode is one node of a parse tree.
type ParseNode struct {
	Production string
	Text       string
	Children   []*ParseNode
}

// {{.Parser}} parses input against the {{.GrammarName}} grammar.
type {{.Parser}} struct {
	engine *parser.Parser
}

// New{{.Parser}} compiles the embedded grammar and builds the parsing engine.
func New{{.Parser}}() (*{{.Parser}}, error) {
	g, err := langdef.ParseString({{printf "%q" .GrammarName}}, grammarSrc)
	if err != nil {
		return nil, err
	}
	return &{{.Parser}}{engine: parser.New(g)}, nil
}

// Parse parses input and returns the first parse tree node produced by the
// production named by r.
func (p *{{.Parser}}) Parse(r Rule, input string) (*ParseNode, error) {
	switch r {
{{- range .Rules}}
	case {{.Ident}}:
		return p.parseProduction(ruleNames[r], input)
{{- end}}
	}
	return nil, fmt.Errorf("unknown rule")
}

type nodeCollector struct {
	node *ParseNode
}

func (c *nodeCollector) NewNode(node string, tok *parser.Token) error {
	return nil
}

func (c *nodeCollector) HandleNode(node string, result any) error {
	if child, ok := result.(*ParseNode); ok {
		c.node.Children = append(c.node.Children, child)
	}
	return nil
}

func (c *nodeCollector) HandleToken(tok *parser.Token) error {
	c.node.Text += tok.Text()
	return nil
}

func (c *nodeCollector) EndNode() (any, error) {
	return c.node, nil
}

func (p *{{.Parser}}) parseProduction(production, input string) (*ParseNode, error) {
	hooks := &parser.Hooks{
		Nodes: parser.NodeHooks{
			parser.AnyNode: func(node string, tok *parser.Token, pc *parser.ParseContext) (parser.NodeHookInstance, error) {
				return &nodeCollector{node: &ParseNode{Production: node}}, nil
			},
		},
	}
	content := []byte(input)
	source.NormalizeNls(&content)
	q := source.NewQueue().Append(source.New(production, content))
	result, err := p.engine.Parse(q, hooks)
	if err != nil {
		return nil, err
	}
	root, ok := result.(*ParseNode)
	if !ok {
		return nil, fmt.Errorf("no parse tree produced")
	}
	if match := findProduction(root, production); match != nil {
		return match, nil
	}
	return nil, fmt.Errorf("production %q not matched", production)
}

func findProduction(n *ParseNode, production string) *ParseNode {
	if n.Production == production {
		return n
	}
	for _, child := range n.Children {
		if match := findProduction(child, production); match != nil {
			return match
		}
	}
	return nil
}
`))

type unitContext struct {
	GrammarName   string
	GrammarQuoted string
	Package       string
	Parser        string
	Rules         []Rule
}

func render(project *config.Project, grammarName, grammarSrc string, rules []Rule) (string, error) {
	ctx := unitContext{
		GrammarName:   grammarName,
		GrammarQuoted: strconv.Quote(grammarSrc),
		Package:       project.Package,
		Parser:        project.Parser,
		Rules:         rules,
	}

	var b strings.Builder
	if err := unitTemplate.Execute(&b, ctx); err != nil {
		return "", fmt.Errorf("rendering generated unit: %w", err)
	}
	return b.String(), nil
}
