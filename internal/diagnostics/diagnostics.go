// Package diagnostics defines the positional error values reported by the
// generation pipeline. Every failure carries a stable code and enough
// position context to point at the part of the generated text that broke
// a structural assumption.
package diagnostics

import (
	"fmt"

	"github.com/varlund/dispatchgen/internal/token"
)

// ErrorCode identifies one failure class. Codes are stable; messages are not.
type ErrorCode string

// Adapter errors (the external grammar compiler and its output contract).
const (
	ErrGrammarUnreadable ErrorCode = "A001"
	ErrGrammarCompile    ErrorCode = "A002"
	ErrRuleIdent         ErrorCode = "A003"
)

// Extraction errors (locating the rule-set declaration).
const (
	ErrDeclNotFound  ErrorCode = "E001"
	ErrDeclAmbiguous ErrorCode = "E002"
	ErrDeclMalformed ErrorCode = "E003"
)

// Synthesis errors.
const (
	ErrNameCollision ErrorCode = "S001"
	ErrRender        ErrorCode = "S002"
)

// Rewrite errors.
const (
	ErrUnrecognizedSite ErrorCode = "R001"
	ErrSwitchShape      ErrorCode = "R002"
)

// Emit errors. The emitter performs no semantic validation; this code only
// fires when the assembled text is not even well-formed, which means an
// upstream stage broke a structural invariant.
const (
	ErrEmit ErrorCode = "X001"
)

// DiagnosticError is a single fatal pipeline error.
type DiagnosticError struct {
	Code    ErrorCode
	Message string
	File    string
	Line    int
	Column  int
}

// NewError builds an error positioned at the given token.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: message, Line: tok.Line, Column: tok.Column}
}

// Errorf builds an error with a formatted message and no position.
func Errorf(code ErrorCode, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *DiagnosticError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s: %s:%d:%d: %s", e.Code, e.File, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s: %d:%d: %s", e.Code, e.Line, e.Column, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.File, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}
