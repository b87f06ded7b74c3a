package diagnostics

import (
	"testing"

	"github.com/varlund/dispatchgen/internal/token"
)

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		name string
		err  *DiagnosticError
		want string
	}{
		{
			name: "code and message only",
			err:  Errorf(ErrDeclNotFound, "no declaration"),
			want: "E001: no declaration",
		},
		{
			name: "positioned",
			err:  NewError(ErrUnrecognizedSite, token.Token{Line: 4, Column: 7}, "bad site"),
			want: "R001: 4:7: bad site",
		},
		{
			name: "file and position",
			err:  &DiagnosticError{Code: ErrGrammarCompile, Message: "boom", File: "calc.llx", Line: 2, Column: 1},
			want: "A002: calc.llx:2:1: boom",
		},
		{
			name: "file only",
			err:  &DiagnosticError{Code: ErrGrammarUnreadable, Message: "gone", File: "calc.llx"},
			want: "A001: calc.llx: gone",
		},
		{
			name: "render failure",
			err:  Errorf(ErrRender, "rendering rule container: boom"),
			want: "S002: rendering rule container: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorfFormats(t *testing.T) {
	err := Errorf(ErrRuleIdent, "production %q maps to %s", "a-b", "AB")
	if err.Code != ErrRuleIdent {
		t.Fatalf("code: %s", err.Code)
	}
	if want := `A003: production "a-b" maps to AB`; err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
