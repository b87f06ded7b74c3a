package pipeline

import (
	"github.com/google/uuid"

	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/token"
)

// Span is a half-open byte range [Start, End) within the generated document.
type Span struct {
	Start int
	End   int
}

// Edit is one pending textual replacement within the document. Edits are
// collected during the single scan pass and applied together, so no span
// is ever rewritten twice.
type Edit struct {
	Span Span
	Text string
}

// Artifact is the pipeline's final output: one compilable source unit.
type Artifact struct {
	// Filename is the output path relative to the project directory.
	Filename string

	// Content is the full formatted Go source.
	Content string
}

// Context carries one generation run through the pipeline. Each stage owns
// it exclusively during its turn; there is no state shared between runs.
type Context struct {
	// RunID identifies this invocation in diagnostics and cache rows.
	RunID string

	// Project is the validated configuration.
	Project *config.Project

	// GrammarName is the grammar source name used in positions.
	GrammarName string

	// GrammarSource is the grammar description text.
	GrammarSource string

	// Document is the current version of the generated source unit.
	// The adapter writes it; later stages read it and the emitter
	// replaces it with the final assembly.
	Document string

	// Tokens is the token stream of Document, produced by the extractor.
	Tokens []token.Token

	// Rules is the ordered rule set extracted from Document.
	Rules []string

	// DeclSpan is the byte span of the original rule-set declaration
	// (the Rule type and its const block) within Document.
	DeclSpan Span

	// MarkerDecls is the synthesized marker type source text.
	MarkerDecls string

	// ContainerDecl is the rewritten rule container source text.
	ContainerDecl string

	// Edits are the reference-site rewrites pending application.
	Edits []Edit

	// Artifact is the emitted output; nil until the emitter ran.
	Artifact *Artifact

	// Errors collects fatal diagnostics. The pipeline stops at the
	// first stage that appends here.
	Errors []*diagnostics.DiagnosticError
}

// NewContext creates a context for one run of the given project.
func NewContext(project *config.Project) *Context {
	return &Context{
		RunID:   uuid.NewString(),
		Project: project,
	}
}

// AddError records a fatal diagnostic.
func (ctx *Context) AddError(err *diagnostics.DiagnosticError) {
	ctx.Errors = append(ctx.Errors, err)
}

// Failed reports whether any stage recorded an error.
func (ctx *Context) Failed() bool {
	return len(ctx.Errors) > 0
}
