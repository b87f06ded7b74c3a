// Package rewrite turns the bare rule-set declaration and all of its use
// sites into the wrapped, dispatch-capable shape.
package rewrite

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/pipeline"
)

// containerTemplate renders the closed union. The embedded interface name
// is taken literally from configuration; whether it resolves is the host
// compiler's business. isRule is unexported, so the union admits exactly
// the marker types declared alongside it: no catch-all exists and a type
// switch over Rule can be total.
var containerTemplate = template.Must(template.New("container").Parse(
	`// Rule is the closed set of grammar productions recognized by this
// parser. Every tag carries its marker type and satisfies {{.Interface}}.
type Rule interface {
	{{.Interface}}
	isRule()
}
{{range .Rules}}
func ({{.}}) isRule() {}
{{- end}}
`))

// ContainerProcessor rewrites the rule-set declaration. No-op for an empty
// rule set.
type ContainerProcessor struct{}

func (cp *ContainerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if len(ctx.Rules) == 0 {
		return ctx
	}
	decl, err := Container(ctx.Rules, ctx.Project.Interface)
	if err != nil {
		ctx.AddError(diagnostics.Errorf(diagnostics.ErrRender, "%v", err))
		return ctx
	}
	ctx.ContainerDecl = decl
	return ctx
}

// Container renders the rewritten rule-set declaration: a sealed interface
// over exactly the given rules, dispatch-capable over iface.
func Container(rules []string, iface string) (string, error) {
	data := struct {
		Interface string
		Rules     []string
	}{iface, rules}

	var b strings.Builder
	if err := containerTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering rule container: %w", err)
	}
	return b.String(), nil
}
