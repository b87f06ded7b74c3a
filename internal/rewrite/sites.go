package rewrite

import (
	"fmt"

	"github.com/varlund/dispatchgen/internal/diagnostics"
	"github.com/varlund/dispatchgen/internal/pipeline"
	"github.com/varlund/dispatchgen/internal/token"
)

// SiteKind classifies one reference site.
type SiteKind int

const (
	// Construction is a bare tag used as a value; it gains a
	// default-constructed marker payload (Statement -> Statement{}).
	Construction SiteKind = iota

	// Deconstruction is a bare-tag case arm; the tag text is already a
	// valid type-switch case, so the arm itself needs no edit.
	Deconstruction

	// SwitchHeader is the header of a switch whose arms match rule tags;
	// it becomes a type switch binding the payload to a fresh local
	// shadowing the operand, so arm bodies compile unchanged.
	SwitchHeader
)

// Site is one located reference to the rule set.
type Site struct {
	Kind SiteKind
	Span pipeline.Span
	Text string // replacement; equal in effect to no-op for Deconstruction
}

// Edit returns the textual replacement for the site, if any.
func (s Site) Edit() (pipeline.Edit, bool) {
	if s.Kind == Deconstruction {
		return pipeline.Edit{}, false
	}
	return pipeline.Edit{Span: s.Span, Text: s.Text}, true
}

// SitesProcessor scans the document outside the declaration span and
// records the rewrites for every construction and deconstruction of the
// rule set. No-op for an empty rule set.
type SitesProcessor struct{}

func (sp *SitesProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if len(ctx.Rules) == 0 {
		return ctx
	}
	sites, err := Scan(ctx.Tokens, ctx.Rules, ctx.DeclSpan)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	for _, site := range sites {
		if edit, ok := site.Edit(); ok {
			ctx.Edits = append(ctx.Edits, edit)
		}
	}
	return ctx
}

// switchFrame tracks one enclosing switch statement during the scan.
type switchFrame struct {
	operand    token.Token // the switch operand when it is a simple identifier
	simple     bool        // operand is a simple identifier
	typeSwitch bool        // header is already in .(type) form
	armDepth   int         // brace depth of this switch's case keywords
	rewritten  bool        // header edit already recorded
}

// Scan performs the single forward pass over the token stream, classifying
// every occurrence of a rule tag outside the declaration span. Tags inside
// strings and comments never reach the classifier because the stream is
// token-level. A tag the classifier cannot place is fatal: passing it
// through silently could emit code that compiles but dispatches wrong.
func Scan(toks []token.Token, rules []string, decl pipeline.Span) ([]Site, *diagnostics.DiagnosticError) {
	ruleSet := make(map[string]bool, len(rules))
	for _, r := range rules {
		ruleSet[r] = true
	}

	var sites []Site
	var stack []*switchFrame
	var pending *switchFrame
	depth := 0
	inCaseList := false

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Type {
		case token.COMMENT:
			continue

		case token.LBRACE:
			depth++
			if pending != nil {
				pending.armDepth = depth
				stack = append(stack, pending)
				pending = nil
			}

		case token.RBRACE:
			if n := len(stack); n > 0 && stack[n-1].armDepth == depth {
				stack = stack[:n-1]
			}
			depth--

		case token.COLON:
			inCaseList = false

		case token.KEYWORD:
			if tok.Lexeme == "switch" {
				pending = scanSwitchHeader(toks, i)
			}

		case token.IDENT:
			if !ruleSet[tok.Lexeme] {
				continue
			}
			if tok.Pos >= decl.Start && tok.End <= decl.End {
				continue // the declaration itself is the container rewriter's span
			}
			site, err := classify(toks, i, tok, depth, stack, pending, &inCaseList)
			if err != nil {
				return nil, err
			}
			if site != nil {
				sites = append(sites, *site)
			}
		}
	}
	return sites, nil
}

// classify decides what one rule-tag occurrence is and, for switch arms,
// retroactively records the header rewrite of the enclosing switch the
// first time one of its arms names a rule.
func classify(toks []token.Token, i int, tok token.Token, depth int, stack []*switchFrame, pending *switchFrame, inCaseList *bool) (*Site, *diagnostics.DiagnosticError) {
	if pending != nil {
		return nil, diagnostics.NewError(diagnostics.ErrUnrecognizedSite, tok,
			fmt.Sprintf("rule tag %s used as a switch operand", tok.Lexeme))
	}

	next, hasNext := nextNonComment(toks, i+1)
	prev, hasPrev := prevNonComment(toks, i-1)

	// Already wrapped: a tag directly followed by a brace is a marker
	// composite literal from an earlier run. Leaving it alone keeps the
	// pass idempotent.
	if hasNext && next.Type == token.LBRACE {
		return nil, nil
	}

	if hasPrev && prev.Is("case") {
		frame := topFrame(stack, depth)
		if frame == nil {
			return nil, diagnostics.NewError(diagnostics.ErrUnrecognizedSite, tok,
				fmt.Sprintf("rule tag %s in a case arm outside any switch", tok.Lexeme))
		}
		*inCaseList = true
		if frame.typeSwitch || frame.rewritten {
			return &Site{Kind: Deconstruction, Span: pipeline.Span{Start: tok.Pos, End: tok.End}}, nil
		}
		if !frame.simple {
			return nil, diagnostics.NewError(diagnostics.ErrSwitchShape, tok,
				fmt.Sprintf("switch matching rule tag %s has an operand the rewriter cannot rebind", tok.Lexeme))
		}
		frame.rewritten = true
		op := frame.operand
		return &Site{
			Kind: SwitchHeader,
			Span: pipeline.Span{Start: op.Pos, End: op.End},
			Text: fmt.Sprintf("%s := %s.(type)", op.Lexeme, op.Lexeme),
		}, nil
	}

	if *inCaseList && hasPrev && prev.Type == token.COMMA {
		// later tag of a case list; the header is already rewritten
		return &Site{Kind: Deconstruction, Span: pipeline.Span{Start: tok.Pos, End: tok.End}}, nil
	}

	if hasNext && isConstructionFollower(next) {
		return &Site{
			Kind: Construction,
			Span: pipeline.Span{Start: tok.Pos, End: tok.End},
			Text: tok.Lexeme + "{}",
		}, nil
	}

	return nil, diagnostics.NewError(diagnostics.ErrUnrecognizedSite, tok,
		fmt.Sprintf("cannot classify reference to rule tag %s", tok.Lexeme))
}

// isConstructionFollower reports whether a token ending an expression
// position can directly follow a bare tag used as a value.
func isConstructionFollower(next token.Token) bool {
	switch next.Type {
	case token.COLON, token.COMMA, token.RPAREN, token.RBRACE, token.RBRACK, token.SEMICOLON:
		return true
	case token.OP:
		switch next.Lexeme {
		case "==", "!=", "=":
			return true
		}
	}
	return false
}

// scanSwitchHeader inspects the tokens between `switch` and its opening
// brace.
func scanSwitchHeader(toks []token.Token, i int) *switchFrame {
	frame := &switchFrame{}
	var header []token.Token
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Type == token.COMMENT {
			continue
		}
		if toks[j].Type == token.LBRACE {
			break
		}
		header = append(header, toks[j])
	}

	if len(header) == 1 && header[0].Type == token.IDENT {
		frame.simple = true
		frame.operand = header[0]
	}
	for k := 0; k+2 < len(header); k++ {
		if header[k].Type == token.DOT && header[k+1].Type == token.LPAREN && header[k+2].Is("type") {
			frame.typeSwitch = true
		}
	}
	return frame
}

func topFrame(stack []*switchFrame, depth int) *switchFrame {
	if n := len(stack); n > 0 && stack[n-1].armDepth == depth {
		return stack[n-1]
	}
	return nil
}

func nextNonComment(toks []token.Token, i int) (token.Token, bool) {
	for ; i < len(toks); i++ {
		if toks[i].Type != token.COMMENT {
			return toks[i], true
		}
	}
	return token.Token{}, false
}

func prevNonComment(toks []token.Token, i int) (token.Token, bool) {
	for ; i >= 0; i-- {
		if toks[i].Type != token.COMMENT {
			return toks[i], true
		}
	}
	return token.Token{}, false
}
