// Package ctype implements the C type tree used by the translator: the
// type-utilities collaborator named in the translator's design (constructors
// and queries over a recursive Type node), provided here as a concrete
// implementation so the translator package is exercisable end-to-end.
//
// A Type is a recursive node with a discriminant Kind, a bitset of
// qualifiers, a size in bytes (0 meaning incomplete), a Next link to the
// pointee/element/return type, and for aggregates an ordered Member list.
package ctype

import (
	"fmt"
	"strings"
)

// Kind is the discriminant of a Type node.
type Kind uint8

const (
	Void Kind = iota
	Char
	Signed
	Unsigned
	Float
	Double
	Pointer
	Array
	Function
	Struct
	Union
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Char:
		return "char"
	case Signed:
		return "int"
	case Unsigned:
		return "unsigned int"
	case Float:
		return "float"
	case Double:
		return "double"
	case Pointer:
		return "pointer"
	case Array:
		return "array"
	case Function:
		return "function"
	case Struct:
		return "struct"
	case Union:
		return "union"
	default:
		return "?"
	}
}

// Qual is a bitset of type qualifiers.
type Qual uint8

const (
	Const Qual = 1 << iota
	Volatile
)

// Member is one field of a struct/union or one parameter of a function type.
// A function type's vararg tail is represented by the sentinel member with
// Name "..." and a nil Type.
type Member struct {
	Name   string
	Type   *Type
	Offset int // byte offset within the aggregate; unused for function params
}

// Type is a node in the type tree. Types are owned by an Arena for the
// lifetime of the translation unit; a struct/union/enum's canonical
// definition additionally lives in the tag namespace (see package symbol).
type Type struct {
	Kind Kind
	Qual Qual
	Size int // 0 = incomplete
	Next *Type

	Members []Member // ordered; aggregates and function parameter lists

	// Tag is the struct/union/enum tag name, empty for anonymous types.
	Tag string

	// TaggedCopy marks a node returned by TaggedCopy: a fresh root aliasing
	// a canonical tag definition, so caller-applied qualifiers don't mutate
	// the canonical type. Canonical points at that definition.
	TaggedCopy bool
	Canonical  *Type
}

// Arena owns every Type node created for one translation unit.
type Arena struct {
	nodes []*Type
}

// NewArena creates an empty type arena.
func NewArena() *Arena {
	return &Arena{}
}

// New allocates a fresh Type of the given kind with the given byte size.
func (a *Arena) New(kind Kind, size int) *Type {
	t := &Type{Kind: kind, Size: size}
	a.nodes = append(a.nodes, t)
	return t
}

// Basic types, sized for a typical 32-bit int / 64-bit long ABI. Each call
// allocates a fresh node through New, so two calls never return the same
// pointer.
func (a *Arena) Void() *Type          { return a.New(Void, 0) }
func (a *Arena) Char() *Type          { return a.New(Char, 1) }
func (a *Arena) SignedChar() *Type    { return a.New(Signed, 1) }
func (a *Arena) UnsignedChar() *Type  { return a.New(Unsigned, 1) }
func (a *Arena) Short() *Type         { return a.New(Signed, 2) }
func (a *Arena) UnsignedShort() *Type { return a.New(Unsigned, 2) }
func (a *Arena) Int() *Type           { return a.New(Signed, 4) }
func (a *Arena) UnsignedInt() *Type   { return a.New(Unsigned, 4) }
func (a *Arena) Long() *Type          { return a.New(Signed, 8) }
func (a *Arena) UnsignedLong() *Type  { return a.New(Unsigned, 8) }
func (a *Arena) Float32() *Type       { return a.New(Float, 4) }
func (a *Arena) Float64() *Type       { return a.New(Double, 8) }

// Double is an alias for Float64, matching the keyword the declaration
// specifier grammar actually reads.
func (a *Arena) Double() *Type { return a.Float64() }

// Pointer returns a pointer-to-pointee type.
func (a *Arena) Pointer(pointee *Type) *Type {
	t := a.New(Pointer, 8)
	t.Next = pointee
	return t
}

// IncompleteArray returns an array type whose outermost dimension is not yet
// known (size 0); ArrayOf with count>0 completes it.
func (a *Arena) IncompleteArray(elem *Type) *Type {
	t := a.New(Array, 0)
	t.Next = elem
	return t
}

// ArrayOf returns a sized array type of the given element count.
// Invariant: elem must be complete (size_of(elem) > 0).
func (a *Arena) ArrayOf(elem *Type, count int) *Type {
	t := a.New(Array, SizeOf(elem)*count)
	t.Next = elem
	return t
}

// FunctionOf returns a function type with the given parameter members and
// return type. A trailing Member{Name: "...", Type: nil} marks vararg.
func (a *Arena) FunctionOf(ret *Type, params []Member) *Type {
	t := a.New(Function, 0)
	t.Next = ret
	t.Members = params
	return t
}

// NewAggregate allocates an incomplete struct/union type, to be completed
// with AddMember + Complete once its member list is known. This is the
// canonical type installed in the tag namespace by symbol resolution.
func (a *Arena) NewAggregate(kind Kind, tag string) *Type {
	t := a.New(kind, 0)
	t.Tag = tag
	return t
}

// AddMember appends a field to an aggregate (or parameter to a function
// type) under construction. Caller is responsible for computing Offset.
func AddMember(t *Type, name string, mtype *Type, offset int) {
	t.Members = append(t.Members, Member{Name: name, Type: mtype, Offset: offset})
}

// Complete marks a previously-incomplete aggregate as fully defined, fixing
// its size to the value computed by the caller and passed in (the
// translator passes, for a struct, the sum of its member sizes with no
// alignment padding; for a union, the size of its largest member).
func Complete(t *Type, size int) {
	t.Size = size
}

// TaggedCopy returns a fresh root aliasing canon, so that qualifiers applied
// by the caller (e.g. `const struct S`) don't mutate the canonical
// definition shared by every other reference to the tag.
func TaggedCopy(canon *Type) *Type {
	cp := *canon
	cp.TaggedCopy = true
	cp.Canonical = canon
	return &cp
}

// Unwrapped follows TaggedCopy aliasing to the canonical definition,
// otherwise returns t itself. Queries that need the live Members/Size of an
// aggregate (which may still be incomplete at the time a copy was taken)
// should always look through the tagged copy.
func Unwrapped(t *Type) *Type {
	if t != nil && t.TaggedCopy && t.Canonical != nil {
		return t.Canonical
	}
	return t
}

// Deref returns the pointee type of a pointer, or nil if t is not a pointer.
func Deref(t *Type) *Type {
	if !IsPointer(t) {
		return nil
	}
	return t.Next
}

// WithQual returns a copy of t with the given qualifiers added. Used when a
// declarator or specifier-qualifier-list applies const/volatile to a
// (possibly tagged) base type.
func WithQual(t *Type, q Qual) *Type {
	cp := *t
	cp.Qual |= q
	return &cp
}

func IsPointer(t *Type) bool  { return t != nil && t.Kind == Pointer }
func IsArray(t *Type) bool    { return t != nil && t.Kind == Array }
func IsFunction(t *Type) bool { return t != nil && Unwrapped(t).Kind == Function }
func IsVoid(t *Type) bool     { return t != nil && t.Kind == Void }
func IsStruct(t *Type) bool   { return t != nil && Unwrapped(t).Kind == Struct }
func IsUnion(t *Type) bool    { return t != nil && Unwrapped(t).Kind == Union }
func IsAggregate(t *Type) bool {
	return IsStruct(t) || IsUnion(t)
}

// IsInteger reports whether t is one of the integer scalar kinds (char
// included, per C's integer promotion rules).
func IsInteger(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case Char, Signed, Unsigned:
		return true
	default:
		return false
	}
}

// IsArithmetic reports whether t is integer or floating-point.
func IsArithmetic(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case Char, Signed, Unsigned, Float, Double:
		return true
	default:
		return false
	}
}

// IsScalar reports whether t is arithmetic or a pointer — the set of types
// that can appear as a condition in if/while/do/for and as the left operand
// of a logical operator.
func IsScalar(t *Type) bool {
	return IsArithmetic(t) || IsPointer(t)
}

// IsComplete reports whether t has a known size: every kind except void, a
// function type, an incomplete (untagged or still-open) aggregate and an
// array whose outermost dimension is unspecified.
func IsComplete(t *Type) bool {
	if t == nil {
		return false
	}
	if IsVoid(t) {
		return false
	}
	if IsFunction(t) {
		return false
	}
	u := Unwrapped(t)
	return u.Size > 0 || (u.Kind != Array && u.Kind != Struct && u.Kind != Union)
}

// IsVararg reports whether a function type accepts a variadic tail.
func IsVararg(t *Type) bool {
	fn := Unwrapped(t)
	if fn == nil || fn.Kind != Function {
		return false
	}
	for _, m := range fn.Members {
		if m.Name == "..." && m.Type == nil {
			return true
		}
	}
	return false
}

// SizeOf returns the byte size of t, 0 if incomplete.
func SizeOf(t *Type) int {
	if t == nil {
		return 0
	}
	return Unwrapped(t).Size
}

// NMembers returns the number of members/parameters of an aggregate or
// function type, excluding the vararg sentinel.
func NMembers(t *Type) int {
	u := Unwrapped(t)
	n := len(u.Members)
	if n > 0 && u.Members[n-1].Name == "..." && u.Members[n-1].Type == nil {
		n--
	}
	return n
}

// GetMember returns the i'th member of an aggregate or function type.
func GetMember(t *Type, i int) (Member, bool) {
	u := Unwrapped(t)
	if i < 0 || i >= len(u.Members) {
		return Member{}, false
	}
	return u.Members[i], true
}

// FindTypeMember looks up a struct/union member by name.
func FindTypeMember(t *Type, name string) (Member, bool) {
	u := Unwrapped(t)
	for _, m := range u.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// String renders a type the way a diagnostic message would name it.
func String(t *Type) string {
	if t == nil {
		return "<nil type>"
	}
	var sb strings.Builder
	if t.Qual&Const != 0 {
		sb.WriteString("const ")
	}
	if t.Qual&Volatile != 0 {
		sb.WriteString("volatile ")
	}
	switch t.Kind {
	case Pointer:
		sb.WriteString(String(t.Next))
		sb.WriteString(" *")
	case Array:
		sb.WriteString(String(t.Next))
		if t.Size > 0 && t.Next != nil && SizeOf(t.Next) > 0 {
			fmt.Fprintf(&sb, " [%d]", t.Size/SizeOf(t.Next))
		} else {
			sb.WriteString(" []")
		}
	case Struct, Union:
		sb.WriteString(t.Kind.String())
		if t.Tag != "" {
			sb.WriteByte(' ')
			sb.WriteString(t.Tag)
		}
	case Function:
		sb.WriteString(String(t.Next))
		sb.WriteString(" (")
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(", ")
			}
			if m.Type == nil {
				sb.WriteString(m.Name)
			} else {
				sb.WriteString(String(m.Type))
			}
		}
		sb.WriteString(")")
	default:
		sb.WriteString(t.Kind.String())
	}
	return sb.String()
}
