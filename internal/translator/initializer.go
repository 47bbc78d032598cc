package translator

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/eval"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/lexer"
)

// initializer parses an initializer for target (an lvalue Var naming the
// object's storage, at whatever offset a containing aggregate initializer
// has already accumulated) and emits the assignment(s) it requires.
// Outside a function body the initializer runs at load time, so its value
// must fold to an immediate.
func (p *Parser) initializer(cur *irblock.Block, target irblock.Var) *irblock.Block {
	if p.stream.At(lexer.StringConstant) && ctype.IsArray(target.Type) &&
		target.Type.Next != nil && target.Type.Next.Kind == ctype.Char {
		tok := p.stream.Next()
		if target.Type.Size == 0 {
			// An incomplete array's dimension is completed by the string
			// literal's own length, the same way an explicit brace-list count
			// completes it below.
			*target.Type = *p.arena.ArrayOf(p.arena.Char(), len(tok.Value)+1)
		}
		strType := p.arena.ArrayOf(p.arena.Char(), len(tok.Value)+1)
		cur.Emit(irblock.Op{Code: irblock.OpAssign, Dest: target, Args: []irblock.Var{irblock.ImmediateString(strType, tok.Value)}})
		return cur
	}

	if p.stream.At(lexer.LBrace) {
		return p.braceInitializer(cur, target)
	}

	v, newCur := p.assignmentExpr(cur)
	cur = newCur
	converted, err := eval.EvalCast(cur, target.Type, v)
	if err != nil {
		p.fail(diagnostic.Type, "%s", err.Error())
	}
	if p.fn == nil && !converted.IsImmediate() {
		p.fail(diagnostic.Semantic, "initializer element is not a compile-time constant")
	}
	cur.Emit(irblock.Op{Code: irblock.OpAssign, Dest: target, Args: []irblock.Var{converted}})
	return cur
}

// braceInitializer parses a brace-enclosed initializer-list against an
// array or aggregate target, recursing member-by-member/element-by-element
// in source order. Trailing members/elements not named by the list are
// zero-initialized. A scalar target wrapped in braces (`int x = {5};`) is
// legal and reads exactly one element.
func (p *Parser) braceInitializer(cur *irblock.Block, target irblock.Var) *irblock.Block {
	p.expect(lexer.LBrace)

	switch {
	case ctype.IsArray(target.Type):
		elemType := target.Type.Next
		index := 0
		for !p.stream.At(lexer.RBrace) {
			elemTarget := target
			elemTarget.Type = elemType
			elemTarget.Offset += index * ctype.SizeOf(elemType)
			cur = p.initializer(cur, elemTarget)
			index++
			if _, ok := p.stream.Consume(lexer.Comma); !ok {
				break
			}
		}
		if target.Type.Size == 0 {
			*target.Type = *p.arena.ArrayOf(elemType, index)
		} else {
			count := target.Type.Size / ctype.SizeOf(elemType)
			if index > count {
				p.fail(diagnostic.Semantic, "excess elements in array initializer")
			}
			for ; index < count; index++ {
				elemTarget := target
				elemTarget.Type = elemType
				elemTarget.Offset += index * ctype.SizeOf(elemType)
				p.zeroInitialize(cur, elemTarget)
			}
		}

	case ctype.IsUnion(target.Type):
		// Only the first member of a union initializer is meaningful; when
		// it does not cover the whole union, the full storage is zeroed
		// before the member's value lands.
		members := ctype.Unwrapped(target.Type).Members
		if len(members) == 0 {
			p.fail(diagnostic.Type, "initializer for incomplete union type")
		}
		first := members[0]
		if ctype.SizeOf(first.Type) < ctype.SizeOf(target.Type) {
			p.zeroFillStorage(cur, target)
		}
		memberTarget := target
		memberTarget.Type = first.Type
		memberTarget.Offset += first.Offset
		cur = p.initializer(cur, memberTarget)

	case ctype.IsStruct(target.Type):
		members := ctype.Unwrapped(target.Type).Members
		i := 0
		for !p.stream.At(lexer.RBrace) {
			if i >= len(members) {
				p.fail(diagnostic.Semantic, "excess elements in initializer")
			}
			m := members[i]
			memberTarget := target
			memberTarget.Type = m.Type
			memberTarget.Offset += m.Offset
			cur = p.initializer(cur, memberTarget)
			i++
			if _, ok := p.stream.Consume(lexer.Comma); !ok {
				break
			}
		}
		for ; i < len(members); i++ {
			m := members[i]
			memberTarget := target
			memberTarget.Type = m.Type
			memberTarget.Offset += m.Offset
			p.zeroInitialize(cur, memberTarget)
		}

	default:
		cur = p.initializer(cur, target)
		p.stream.Consume(lexer.Comma)
	}

	p.expect(lexer.RBrace)
	return cur
}

// zeroInitialize emits the stores that set target's whole value to zero,
// recursing over the type tree: structs by member, arrays by element,
// unions as raw storage, pointers and arithmetic scalars as a zero of
// their own type. target is always a Direct reference here.
func (p *Parser) zeroInitialize(cur *irblock.Block, target irblock.Var) {
	t := target.Type
	switch {
	case ctype.IsArray(t):
		elemType := t.Next
		count := t.Size / ctype.SizeOf(elemType)
		for i := 0; i < count; i++ {
			elemTarget := target
			elemTarget.Type = elemType
			elemTarget.Offset += i * ctype.SizeOf(elemType)
			p.zeroInitialize(cur, elemTarget)
		}

	case ctype.IsStruct(t):
		for _, m := range ctype.Unwrapped(t).Members {
			memberTarget := target
			memberTarget.Type = m.Type
			memberTarget.Offset += m.Offset
			p.zeroInitialize(cur, memberTarget)
		}

	case ctype.IsUnion(t):
		p.zeroFillStorage(cur, target)

	case ctype.IsPointer(t):
		cur.Emit(irblock.Op{Code: irblock.OpAssign, Dest: target, Args: []irblock.Var{irblock.ImmediateInt(t, 0)}})

	default:
		cur.Emit(irblock.Op{Code: irblock.OpAssign, Dest: target, Args: []irblock.Var{irblock.ImmediateInt(t, 0)}})
	}
}

// zeroFillStorage zeroes target's storage wholesale, viewed as an array of
// long when the size allows it and of char otherwise.
func (p *Parser) zeroFillStorage(cur *irblock.Block, target irblock.Var) {
	size := ctype.SizeOf(target.Type)
	unit := p.arena.Char()
	if size%8 == 0 {
		unit = p.arena.Long()
	}
	step := ctype.SizeOf(unit)
	for off := 0; off < size; off += step {
		slot := target
		slot.Type = unit
		slot.Offset += off
		cur.Emit(irblock.Op{Code: irblock.OpAssign, Dest: slot, Args: []irblock.Var{irblock.ImmediateInt(unit, 0)}})
	}
}
