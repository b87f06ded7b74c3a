// Package dispatchgen generates dispatch-ready parsers from llx grammar
// descriptions.
//
// The generator compiles a grammar with github.com/ava12/llx, then rewrites
// the generated parser unit so every grammar rule is represented by a
// zero-size marker type and the rule set is a closed interface union over
// those markers. User code implements a dispatch interface of its choosing
// on each marker; invoking an interface method on a Rule value then
// dispatches to the right rule's implementation with no runtime type
// inspection at the call site.
//
// A minimal project looks like:
//
//	# dispatchgen.yaml
//	grammar: calc.llx
//	interface: RuleHandler
//	parser: CalcParser
//	package: calc
//
// and in the target package:
//
//	type RuleHandler interface {
//		Handle(node *ParseNode) error
//	}
//
//	func (Statement) Handle(node *ParseNode) error { ... }
//
// Generation is a pure function of the grammar text and the configuration:
// identical inputs produce identical artifacts, which is what makes the
// artifact cache in internal/cache sound.
package dispatchgen

import (
	"github.com/varlund/dispatchgen/internal/compiler"
	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/emit"
	"github.com/varlund/dispatchgen/internal/extract"
	"github.com/varlund/dispatchgen/internal/pipeline"
	"github.com/varlund/dispatchgen/internal/rewrite"
	"github.com/varlund/dispatchgen/internal/synth"
)

// Run executes the full generation pipeline for one project and returns
// the finished context. Stages run strictly in order and the first failure
// aborts the run with no partial artifact.
func Run(project *config.Project) *pipeline.Context {
	p := pipeline.New(
		&compiler.Processor{},
		&extract.Processor{},
		&synth.Processor{},
		&rewrite.ContainerProcessor{},
		&rewrite.SitesProcessor{},
		&emit.Processor{},
	)
	return p.Run(pipeline.NewContext(project))
}

// Generate is the single-call surface: one project in, one compilable
// source unit out.
func Generate(project *config.Project) (*pipeline.Artifact, error) {
	ctx := Run(project)
	if ctx.Failed() {
		return nil, ctx.Errors[0]
	}
	return ctx.Artifact, nil
}
