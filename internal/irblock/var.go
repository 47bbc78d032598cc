// Package irblock is the translator's IR/CFG data model: the Var value
// handle, basic Block, CFG/translation-unit record, SwitchContext, and the
// explicit Cursors that carry the active break/continue/switch state
// through statement parsing.
package irblock

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// VarKind is the discriminant of a Var.
type VarKind uint8

const (
	// Immediate is a literal integer or string constant.
	Immediate VarKind = iota
	// Direct is a reference to a symbol, with Offset for member/element access.
	Direct
	// Deref is the result of dereferencing a pointer Var.
	Deref
)

// Var is the translator's compile-time handle to an operand: every
// sub-expression reduces to exactly one Var.
type Var struct {
	Kind   VarKind
	Type   *ctype.Type
	Lvalue bool

	// Immediate
	ImmInt int64
	ImmStr string

	// Direct
	Symbol    symbol.Ref
	HasSymbol bool
	Offset    int

	// Deref
	Base *Var
}

// ImmediateInt returns an rvalue immediate integer Var of the given type.
func ImmediateInt(t *ctype.Type, v int64) Var {
	return Var{Kind: Immediate, Type: t, ImmInt: v}
}

// ImmediateString returns an rvalue immediate string Var (array-of-char type).
func ImmediateString(t *ctype.Type, s string) Var {
	return Var{Kind: Immediate, Type: t, ImmStr: s}
}

// DirectVar returns an lvalue Var referencing sym at the given byte offset.
func DirectVar(sym symbol.Ref, t *ctype.Type, offset int, lvalue bool) Var {
	return Var{Kind: Direct, Type: t, Symbol: sym, HasSymbol: true, Offset: offset, Lvalue: lvalue}
}

// DerefVar returns the Var produced by dereferencing a pointer-typed base.
func DerefVar(base Var, pointee *ctype.Type) Var {
	b := base
	return Var{Kind: Deref, Type: pointee, Base: &b, Lvalue: true}
}

// IsImmediate reports whether v is a compile-time-known constant.
func (v Var) IsImmediate() bool { return v.Kind == Immediate }
