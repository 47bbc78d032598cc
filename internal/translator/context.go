// Package translator implements the syntactic-to-semantic core: a
// recursive-descent parser over a token stream that builds a typed,
// three-address IR organized as a CFG of basic blocks, alongside a
// populated symbol table. It interleaves declaration/expression/statement
// parsing with on-the-fly type analysis, symbol resolution, and CFG
// construction for structured control flow.
package translator

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/irblock"
)

// funcContext holds the state specific to the function currently being
// defined: its declared return type (for `return`) and a per-function goto
// label table. Labels are recorded but not wired into CFG edges; `goto` is
// accepted syntactically and the table stays populated for a later pass to
// resolve (see DESIGN.md).
type funcContext struct {
	returnType *ctype.Type
	labels     map[string]*irblock.Block
	cfg        *irblock.CFG
}

// pushLoopTargets returns a Cursors with new break/continue targets active,
// for entering a while/do/for loop. The caller's own Cursors value is left
// untouched, so restoring on exit is simply falling out of scope.
func pushLoopTargets(cur irblock.Cursors, breakTarget, continueTarget *irblock.Block) irblock.Cursors {
	return cur.WithLoopTargets(breakTarget, continueTarget)
}

// pushSwitch returns a Cursors with a new active SwitchContext and break
// target, for entering a switch statement.
func pushSwitch(cur irblock.Cursors, ctx *irblock.SwitchContext, breakTarget *irblock.Block) irblock.Cursors {
	return cur.WithSwitch(ctx, breakTarget)
}
