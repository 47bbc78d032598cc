// Package api is the public facade over the translator core: a stable
// entry point for embedding the C89/C99 syntactic-to-semantic translator
// in another Go program, independent of the cmd/c89front CLI.
package api

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/symbol"
	"codeberg.org/saruga/c89front/internal/translator"
)

// Result is the translation of one source file: a CFG per external
// definition plus the tables that own everything referenced from them.
type Result struct {
	CFGs    []*irblock.CFG
	Symbols *symbol.Table
	Types   *ctype.Arena
}

// Translate runs the translator over source and returns a Result alongside
// every diagnostic raised. The error is non-nil exactly when at least one
// diagnostic reached Error severity (or Warning, under WarnAsError).
func Translate(source string, warnAsError bool) (*Result, *diagnostic.DiagnosticList, error) {
	p := translator.New(source)
	if warnAsError {
		p.Diagnostics().WarnAsError(true)
	}

	tu, err := p.Translate()
	return &Result{CFGs: tu.CFGs, Symbols: tu.Symbols, Types: tu.Types}, p.Diagnostics(), err
}
