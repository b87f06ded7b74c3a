package pipeline

// Processor is one generation stage. A stage reads its inputs from the
// context, records its outputs on the context, and appends to ctx.Errors
// on failure.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. The first stage error aborts the run:
// code generation is all-or-nothing, so a later stage must never see a
// predecessor's partial output.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.Failed() {
			return ctx
		}
	}
	return ctx
}
