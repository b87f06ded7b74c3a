// Package emit assembles the final generated unit and formats it.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/pipeline"
)

// formatOptions keep formatting deterministic and offline: gofmt layout
// only, no import resolution against the local module environment.
var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// Processor is the final pipeline stage. It runs only when every prior
// stage succeeded, so the assembled text is well-formed by construction;
// the formatter doubles as a cheap balance check and any failure here means
// an upstream invariant was broken.
type Processor struct{}

func (ep *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	content, err := Assemble(ctx)
	if err != nil {
		ctx.AddError(diagnostics.Errorf(diagnostics.ErrEmit, "%v", err))
		return ctx
	}
	ctx.Artifact = &pipeline.Artifact{
		Filename: ctx.Project.Output,
		Content:  content,
	}
	return ctx
}

// Assemble splices the marker declarations and the rewritten container into
// the declaration span, applies the reference-site edits to the surrounding
// text in one pass, and formats the result.
func Assemble(ctx *pipeline.Context) (string, error) {
	edits := make([]pipeline.Edit, 0, len(ctx.Edits)+1)
	edits = append(edits, ctx.Edits...)

	if ctx.MarkerDecls != "" || ctx.ContainerDecl != "" {
		edits = append(edits, pipeline.Edit{
			Span: ctx.DeclSpan,
			Text: strings.TrimRight(ctx.MarkerDecls, "\n") + "\n\n" + ctx.ContainerDecl,
		})
	}

	spliced, err := apply(ctx.Document, edits)
	if err != nil {
		return "", err
	}

	formatted, err := imports.Process(ctx.Project.Output, []byte(spliced), formatOptions)
	if err != nil {
		return "", fmt.Errorf("emitted unit is not well-formed: %w", err)
	}
	return string(formatted), nil
}

// apply performs all edits in one left-to-right pass. Overlapping spans
// mean a site was matched twice, which the scan forbids.
func apply(doc string, edits []pipeline.Edit) (string, error) {
	sort.Slice(edits, func(i, j int) bool { return edits[i].Span.Start < edits[j].Span.Start })

	var b strings.Builder
	last := 0
	for _, e := range edits {
		if e.Span.Start < last {
			return "", fmt.Errorf("overlapping rewrites at offset %d", e.Span.Start)
		}
		if e.Span.End > len(doc) || e.Span.Start > e.Span.End {
			return "", fmt.Errorf("rewrite span [%d,%d) out of bounds", e.Span.Start, e.Span.End)
		}
		b.WriteString(doc[last:e.Span.Start])
		b.WriteString(e.Text)
		last = e.Span.End
	}
	b.WriteString(doc[last:])
	return b.String(), nil
}
