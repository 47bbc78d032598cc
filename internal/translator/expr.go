package translator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/eval"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/lexer"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// Every expression-parsing function below threads the "current block"
// forward: a sub-expression can itself allocate new blocks (a nested `?:`,
// a short-circuiting `&&`/`||`), so each function accepts the block it
// starts emitting into and returns the block the computed value actually
// ends up live in.

// newTemp allocates a compiler-internal temporary, registers it with the
// innermost function's CFG (when parsing one; constant-expression and
// initializer evaluation outside a function body have none), and returns
// an rvalue Direct Var naming it. The leading '%' cannot occur in a C
// identifier, so temporaries never collide with user names.
func (p *Parser) newTemp(t *ctype.Type) irblock.Var {
	p.tempSeq++
	name := fmt.Sprintf("%%t%d", p.tempSeq)
	ref := p.symtab.Add(symbol.Symbol{Name: name, Type: t})
	if p.fn != nil && p.fn.cfg != nil {
		p.fn.cfg.RegisterLocal(ref)
	}
	return irblock.DirectVar(ref, t, 0, false)
}

func (p *Parser) binOp(cur *irblock.Block, op irblock.OpCode, lhs, rhs irblock.Var) irblock.Var {
	if op == irblock.OpAdd || op == irblock.OpSub {
		if v, handled := p.pointerArith(cur, op, lhs, rhs); handled {
			return v
		}
	}

	var resultType *ctype.Type
	switch op {
	case irblock.OpGt, irblock.OpGe, irblock.OpEq:
		resultType = p.arena.Int()
	default:
		resultType = usualArithConv(p.arena, lhs.Type, rhs.Type)
	}
	if lhs.IsImmediate() && rhs.IsImmediate() && ctype.IsInteger(lhs.Type) && ctype.IsInteger(rhs.Type) {
		if folded, ok := foldBinary(op, lhs.ImmInt, rhs.ImmInt); ok {
			return irblock.ImmediateInt(resultType, folded)
		}
	}
	dest := p.newTemp(resultType)
	v, err := eval.EvalBinary(cur, op, dest, lhs, rhs)
	if err != nil {
		p.fail(diagnostic.Type, "%s", err.Error())
	}
	return v
}

// foldBinary evaluates an integer operation over two immediates at
// translation time, so constant expressions (array bounds, enumerator
// values, case labels) reduce without touching a block. Division by zero
// refuses to fold and is left for the emitted op.
func foldBinary(op irblock.OpCode, a, b int64) (int64, bool) {
	switch op {
	case irblock.OpAdd:
		return a + b, true
	case irblock.OpSub:
		return a - b, true
	case irblock.OpMul:
		return a * b, true
	case irblock.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case irblock.OpMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case irblock.OpShl:
		return a << uint(b), true
	case irblock.OpShr:
		return a >> uint(b), true
	case irblock.OpGt:
		return boolInt(a > b), true
	case irblock.OpGe:
		return boolInt(a >= b), true
	case irblock.OpEq:
		return boolInt(a == b), true
	case irblock.OpAnd:
		return a & b, true
	case irblock.OpOr:
		return a | b, true
	case irblock.OpXor:
		return a ^ b, true
	default:
		return 0, false
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (p *Parser) notOp(cur *irblock.Block, v irblock.Var) irblock.Var {
	if v.IsImmediate() && ctype.IsInteger(v.Type) {
		return irblock.ImmediateInt(p.arena.Int(), boolInt(v.ImmInt == 0))
	}
	dest := p.newTemp(p.arena.Int())
	r, err := eval.EvalNot(cur, dest, v)
	if err != nil {
		p.fail(diagnostic.Type, "%s", err.Error())
	}
	return r
}

// pointerArith lowers additive expressions with a pointer (or decaying
// array) operand, reporting handled=false when both sides are arithmetic.
// An integer operand is scaled by the pointee size before the add/sub, so
// `p + n` advances n elements, not n bytes; pointer-minus-pointer divides
// the byte difference back down to an element count. Subscripting funnels
// through here too: `a[i]` is `*(a + i)`.
func (p *Parser) pointerArith(cur *irblock.Block, op irblock.OpCode, lhs, rhs irblock.Var) (irblock.Var, bool) {
	lptr := ctype.IsPointer(lhs.Type) || ctype.IsArray(lhs.Type)
	rptr := ctype.IsPointer(rhs.Type) || ctype.IsArray(rhs.Type)
	if !lptr && !rptr {
		return irblock.Var{}, false
	}

	if lptr {
		lhs = p.decayToPointer(lhs)
	}
	if rptr {
		rhs = p.decayToPointer(rhs)
	}

	switch {
	case lptr && rptr:
		if op != irblock.OpSub {
			p.fail(diagnostic.Type, "invalid operands: cannot add two pointers")
		}
		elem := ctype.Deref(lhs.Type)
		diffDest := p.newTemp(p.arena.Long())
		diff, err := eval.EvalBinary(cur, irblock.OpSub, diffDest, lhs, rhs)
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		return p.binOp(cur, irblock.OpDiv, diff, irblock.ImmediateInt(p.arena.Long(), int64(ctype.SizeOf(elem)))), true

	case rptr:
		if op == irblock.OpSub {
			p.fail(diagnostic.Type, "cannot subtract a pointer from an integer")
		}
		lhs, rhs = rhs, lhs
		fallthrough

	default:
		if !ctype.IsInteger(rhs.Type) {
			p.fail(diagnostic.Type, "pointer arithmetic requires an integer operand, got %s", ctype.String(rhs.Type))
		}
		elem := ctype.Deref(lhs.Type)
		scaled := rhs
		if size := ctype.SizeOf(elem); size != 1 {
			scaled = p.binOp(cur, irblock.OpMul, rhs, irblock.ImmediateInt(p.arena.UnsignedLong(), int64(size)))
		}
		dest := p.newTemp(lhs.Type)
		v, err := eval.EvalBinary(cur, op, dest, lhs, scaled)
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		return v, true
	}
}

// usualArithConv picks the result type of a binary arithmetic operation: a
// pointer operand wins (pointer arithmetic), otherwise the wider of
// double/float/int, a reduced stand-in for C's full promotion ladder.
func usualArithConv(a *ctype.Arena, l, r *ctype.Type) *ctype.Type {
	if ctype.IsPointer(l) {
		return l
	}
	if ctype.IsPointer(r) {
		return r
	}
	if l.Kind == ctype.Double || r.Kind == ctype.Double {
		return a.Double()
	}
	if l.Kind == ctype.Float || r.Kind == ctype.Float {
		return a.Float32()
	}
	if l.Kind == ctype.Unsigned || r.Kind == ctype.Unsigned {
		return a.UnsignedInt()
	}
	return a.Int()
}

// binaryOpPrec is the precedence-climbing table for every non-short-
// circuiting binary operator, from `|` (lowest, 3) to `* / %` (highest,
// 10). && and || sit above this table and are handled by dedicated
// functions since they must not evaluate their right operand eagerly.
func binaryOpPrec(k lexer.Kind) (int, bool) {
	switch k {
	case lexer.Star, lexer.Slash, lexer.Percent:
		return 10, true
	case lexer.Plus, lexer.Minus:
		return 9, true
	case lexer.Lshift, lexer.Rshift:
		return 8, true
	case lexer.Lt, lexer.Gt, lexer.Leq, lexer.Geq:
		return 7, true
	case lexer.Eq, lexer.Neq:
		return 6, true
	case lexer.Amp:
		return 5, true
	case lexer.Caret:
		return 4, true
	case lexer.Pipe:
		return 3, true
	default:
		return 0, false
	}
}

func (p *Parser) binaryExpr(cur *irblock.Block, minPrec int) (irblock.Var, *irblock.Block) {
	lhs, cur := p.castExpr(cur)
	for {
		prec, ok := binaryOpPrec(p.stream.Peek().Kind)
		if !ok || prec < minPrec {
			return lhs, cur
		}
		tok := p.stream.Next()
		var rhs irblock.Var
		rhs, cur = p.binaryExpr(cur, prec+1)
		lhs = p.emitBinary(cur, tok.Kind, lhs, rhs)
	}
}

// emitBinary lowers a source-level comparison to the IR's closed opcode
// set: `<` as GT with swapped operands, `<=` as GE swapped, `!=` as
// NOT(EQ(a,b)). `>` and `>=` and `==` map directly.
func (p *Parser) emitBinary(cur *irblock.Block, k lexer.Kind, lhs, rhs irblock.Var) irblock.Var {
	switch k {
	case lexer.Plus:
		return p.binOp(cur, irblock.OpAdd, lhs, rhs)
	case lexer.Minus:
		return p.binOp(cur, irblock.OpSub, lhs, rhs)
	case lexer.Star:
		return p.binOp(cur, irblock.OpMul, lhs, rhs)
	case lexer.Slash:
		return p.binOp(cur, irblock.OpDiv, lhs, rhs)
	case lexer.Percent:
		return p.binOp(cur, irblock.OpMod, lhs, rhs)
	case lexer.Lshift:
		return p.binOp(cur, irblock.OpShl, lhs, rhs)
	case lexer.Rshift:
		return p.binOp(cur, irblock.OpShr, lhs, rhs)
	case lexer.Amp:
		return p.binOp(cur, irblock.OpAnd, lhs, rhs)
	case lexer.Pipe:
		return p.binOp(cur, irblock.OpOr, lhs, rhs)
	case lexer.Caret:
		return p.binOp(cur, irblock.OpXor, lhs, rhs)
	case lexer.Gt:
		return p.binOp(cur, irblock.OpGt, lhs, rhs)
	case lexer.Geq:
		return p.binOp(cur, irblock.OpGe, lhs, rhs)
	case lexer.Lt:
		return p.binOp(cur, irblock.OpGt, rhs, lhs)
	case lexer.Leq:
		return p.binOp(cur, irblock.OpGe, rhs, lhs)
	case lexer.Eq:
		return p.binOp(cur, irblock.OpEq, lhs, rhs)
	case lexer.Neq:
		return p.notOp(cur, p.binOp(cur, irblock.OpEq, lhs, rhs))
	default:
		p.fail(diagnostic.Internal, "unhandled binary operator %s", k)
		return irblock.Var{}
	}
}

func (p *Parser) logicalAndExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	lhs, cur := p.binaryExpr(cur, 3)
	for p.stream.At(lexer.LogicalAnd) {
		p.stream.Next()
		dest := p.newTemp(p.arena.Int())
		v, join, err := eval.EvalLogicalAnd(p.alloc, cur, dest, lhs, func(rhsBlock *irblock.Block) (irblock.Var, *irblock.Block, error) {
			rv, rcur := p.binaryExpr(rhsBlock, 3)
			return rv, rcur, nil
		})
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		lhs, cur = v, join
	}
	return lhs, cur
}

func (p *Parser) logicalOrExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	lhs, cur := p.logicalAndExpr(cur)
	for p.stream.At(lexer.LogicalOr) {
		p.stream.Next()
		dest := p.newTemp(p.arena.Int())
		v, join, err := eval.EvalLogicalOr(p.alloc, cur, dest, lhs, func(rhsBlock *irblock.Block) (irblock.Var, *irblock.Block, error) {
			rv, rcur := p.logicalAndExpr(rhsBlock)
			return rv, rcur, nil
		})
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		lhs, cur = v, join
	}
	return lhs, cur
}

func (p *Parser) conditionalExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	cond, cur := p.logicalOrExpr(cur)
	if !p.stream.At(lexer.Question) {
		return cond, cur
	}
	p.stream.Next()

	trueBlock, falseBlock, next, err := eval.EvalConditionalBranch(p.alloc, cur, cond)
	if err != nil {
		p.fail(diagnostic.Type, "%s", err.Error())
	}

	tVal, tEnd := p.expression(trueBlock)
	p.expect(lexer.Colon)
	fVal, fEnd := p.conditionalExpr(falseBlock)

	resultType := usualArithConv(p.arena, tVal.Type, fVal.Type)
	dest := p.newTemp(resultType)
	joined := eval.EvalConditionalJoin(next, dest, tEnd, tVal, fEnd, fVal)
	return joined, next
}

func assignOpInfo(k lexer.Kind) (op irblock.OpCode, isCompound, isAssign bool) {
	switch k {
	case lexer.Assign:
		return 0, false, true
	case lexer.PlusAssign:
		return irblock.OpAdd, true, true
	case lexer.MinusAssign:
		return irblock.OpSub, true, true
	case lexer.StarAssign:
		return irblock.OpMul, true, true
	case lexer.SlashAssign:
		return irblock.OpDiv, true, true
	case lexer.PercentAssign:
		return irblock.OpMod, true, true
	case lexer.AmpAssign:
		return irblock.OpAnd, true, true
	case lexer.PipeAssign:
		return irblock.OpOr, true, true
	case lexer.CaretAssign:
		return irblock.OpXor, true, true
	case lexer.LshiftAssign:
		return irblock.OpShl, true, true
	case lexer.RshiftAssign:
		return irblock.OpShr, true, true
	default:
		return 0, false, false
	}
}

// assignmentExpr parses a conditional-expression and then, if an
// assignment operator follows, requires what was just parsed to be an
// lvalue and assigns into it. Compound assignment computes lhs ⊕ rhs with
// EvalBinary first, then assigns the (converted) result back, per the
// evaluator's documented "compute then assign back" contract.
func (p *Parser) assignmentExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	lhs, cur := p.conditionalExpr(cur)
	op, isCompound, isAssign := assignOpInfo(p.stream.Peek().Kind)
	if !isAssign {
		return lhs, cur
	}
	p.stream.Next()

	rhs, newCur := p.assignmentExpr(cur)
	cur = newCur

	value := rhs
	if isCompound {
		value = p.binOp(cur, op, lhs, rhs)
	}
	converted, err := eval.EvalCast(cur, lhs.Type, value)
	if err != nil {
		p.fail(diagnostic.Type, "%s", err.Error())
	}
	result, err := eval.EvalAssign(cur, lhs, converted)
	if err != nil {
		p.fail(diagnostic.Semantic, "%s", err.Error())
	}
	return result, cur
}

// expression parses the comma operator: every operand is evaluated in
// sequence for its side effects, and the expression's value is the last
// operand's.
func (p *Parser) expression(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	v, cur := p.assignmentExpr(cur)
	for p.stream.At(lexer.Comma) {
		p.stream.Next()
		v, cur = p.assignmentExpr(cur)
	}
	return v, cur
}

// constantExpression parses a conditional-expression and requires it to
// fold to a compile-time immediate, the rule array dimensions, enumerator
// values, and case labels all share.
func (p *Parser) constantExpression() irblock.Var {
	scratch := p.alloc.NewBlock()
	v, end := p.conditionalExpr(scratch)
	// A branch into a new block means the expression was not evaluable at
	// translation time, regardless of what value it produced.
	if !v.IsImmediate() || end != scratch {
		p.fail(diagnostic.Semantic, "expected a constant expression")
	}
	return v
}

// castExpr resolves the classic `( identifier )` ambiguity with two tokens
// of lookahead: a '(' followed by something that can only start a
// type-name is a cast, anything else falls through to a parenthesized
// expression inside unaryExpr/postfixExpr/primaryExpr.
func (p *Parser) castExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	if p.stream.At(lexer.LParen) && p.tokenStartsTypeName(p.stream.PeekN(1)) {
		p.stream.Next()
		target := p.typeName()
		p.expect(lexer.RParen)
		v, newCur := p.castExpr(cur)
		converted, err := eval.EvalCast(newCur, target, v)
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		return converted, newCur
	}
	return p.unaryExpr(cur)
}

func zeroOfType(t *ctype.Type) irblock.Var {
	return irblock.ImmediateInt(t, 0)
}

func (p *Parser) unaryExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	tok := p.stream.Peek()
	switch tok.Kind {
	case lexer.Increment, lexer.Decrement:
		p.stream.Next()
		operand, cur := p.unaryExpr(cur)
		op := irblock.OpAdd
		if tok.Kind == lexer.Decrement {
			op = irblock.OpSub
		}
		sum := p.binOp(cur, op, operand, irblock.ImmediateInt(p.arena.Int(), 1))
		converted, err := eval.EvalCast(cur, operand.Type, sum)
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		result, err := eval.EvalAssign(cur, operand, converted)
		if err != nil {
			p.fail(diagnostic.Semantic, "%s", err.Error())
		}
		return result, cur

	case lexer.Amp:
		p.stream.Next()
		operand, cur := p.castExpr(cur)
		v, err := eval.EvalAddr(p.arena, operand)
		if err != nil {
			p.fail(diagnostic.Semantic, "%s", err.Error())
		}
		return v, cur

	case lexer.Star:
		p.stream.Next()
		operand, cur := p.castExpr(cur)
		v, err := eval.EvalDeref(operand)
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		return v, cur

	case lexer.Plus:
		p.stream.Next()
		operand, cur := p.castExpr(cur)
		operand.Lvalue = false
		return operand, cur

	case lexer.Minus:
		p.stream.Next()
		operand, cur := p.castExpr(cur)
		return p.binOp(cur, irblock.OpSub, zeroOfType(operand.Type), operand), cur

	case lexer.Tilde:
		p.stream.Next()
		operand, cur := p.castExpr(cur)
		return p.binOp(cur, irblock.OpXor, operand, irblock.ImmediateInt(operand.Type, -1)), cur

	case lexer.Bang:
		p.stream.Next()
		operand, cur := p.castExpr(cur)
		return p.notOp(cur, operand), cur

	case lexer.KwSizeof:
		p.stream.Next()
		return p.sizeofOperand(cur)

	case lexer.Ident:
		if tok.Value == "__builtin_va_start" {
			return p.parseVaStart(cur)
		}
		if tok.Value == "__builtin_va_arg" {
			return p.parseVaArg(cur)
		}
	}
	return p.postfixExpr(cur)
}

func (p *Parser) sizeofOperand(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	if p.stream.At(lexer.LParen) && p.tokenStartsTypeName(p.stream.PeekN(1)) {
		p.stream.Next()
		t := p.typeName()
		p.expect(lexer.RParen)
		p.requireSizedType(t)
		return irblock.ImmediateInt(p.arena.UnsignedLong(), int64(ctype.SizeOf(t))), cur
	}
	operand, cur := p.unaryExpr(cur)
	p.requireSizedType(operand.Type)
	return irblock.ImmediateInt(p.arena.UnsignedLong(), int64(ctype.SizeOf(operand.Type))), cur
}

// requireSizedType rejects a sizeof operand whose size is not a meaningful
// compile-time quantity: function types and incomplete types.
func (p *Parser) requireSizedType(t *ctype.Type) {
	if ctype.IsFunction(t) {
		p.fail(diagnostic.Type, "invalid application of 'sizeof' to a function type")
	}
	if !ctype.IsComplete(t) {
		p.fail(diagnostic.Type, "invalid application of 'sizeof' to incomplete type %s", ctype.String(t))
	}
}

func (p *Parser) parseVaStart(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	p.stream.Next()
	p.expect(lexer.LParen)
	ap, cur2 := p.assignmentExpr(cur)
	cur = cur2
	p.expect(lexer.Comma)
	lastParam, cur3 := p.assignmentExpr(cur)
	cur = cur3
	p.expect(lexer.RParen)
	if err := eval.EvalBuiltinVaStart(cur, ap, lastParam); err != nil {
		p.fail(diagnostic.Semantic, "%s", err.Error())
	}
	return irblock.Var{Type: p.arena.Void()}, cur
}

func (p *Parser) parseVaArg(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	p.stream.Next()
	p.expect(lexer.LParen)
	ap, cur2 := p.assignmentExpr(cur)
	cur = cur2
	p.expect(lexer.Comma)
	argType := p.typeName()
	p.expect(lexer.RParen)
	dest := p.newTemp(argType)
	result, err := eval.EvalBuiltinVaArg(cur, dest, ap, argType)
	if err != nil {
		p.fail(diagnostic.Semantic, "%s", err.Error())
	}
	return result, cur
}

func callReturnType(fnVarType *ctype.Type) *ctype.Type {
	u := ctype.Unwrapped(fnVarType)
	if ctype.IsPointer(fnVarType) {
		u = ctype.Unwrapped(ctype.Deref(fnVarType))
	}
	if u == nil {
		return nil
	}
	return u.Next
}

// decayToPointer implements array-to-pointer decay: taking the address of
// an array Var and reinterpreting it as pointer-to-element, since there is
// no separate "decay" IR op.
func (p *Parser) decayToPointer(v irblock.Var) irblock.Var {
	if !ctype.IsArray(v.Type) {
		return v
	}
	addr, err := eval.EvalAddr(p.arena, v)
	if err != nil {
		p.fail(diagnostic.Semantic, "%s", err.Error())
	}
	addr.Type = p.arena.Pointer(v.Type.Next)
	return addr
}

func (p *Parser) subscript(cur *irblock.Block, base, idx irblock.Var) irblock.Var {
	if !ctype.IsArray(base.Type) && !ctype.IsPointer(base.Type) {
		p.fail(diagnostic.Type, "subscripted value is not an array or pointer")
	}
	addr := p.binOp(cur, irblock.OpAdd, base, idx)
	deref, err := eval.EvalDeref(addr)
	if err != nil {
		p.fail(diagnostic.Type, "%s", err.Error())
	}
	return deref
}

func (p *Parser) member(v irblock.Var, name string) irblock.Var {
	if !ctype.IsAggregate(v.Type) {
		p.fail(diagnostic.Type, "member reference base type '%s' is not a struct or union", ctype.String(v.Type))
	}
	m, ok := ctype.FindTypeMember(v.Type, name)
	if !ok {
		p.fail(diagnostic.Symbol, "no member named '%s'", name)
	}
	result := v
	result.Type = m.Type
	result.Offset += m.Offset
	return result
}

func (p *Parser) postfixExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	v, cur := p.primaryExpr(cur)
	for {
		switch p.stream.Peek().Kind {
		case lexer.LBracket:
			p.stream.Next()
			idx, newCur := p.expression(cur)
			cur = newCur
			p.expect(lexer.RBracket)
			v = p.subscript(cur, v, idx)

		case lexer.LParen:
			p.stream.Next()
			var args []irblock.Var
			if !p.stream.At(lexer.RParen) {
				for {
					var a irblock.Var
					a, cur = p.assignmentExpr(cur)
					args = append(args, a)
					if _, ok := p.stream.Consume(lexer.Comma); !ok {
						break
					}
				}
			}
			p.expect(lexer.RParen)
			dest := p.newTemp(callReturnType(v.Type))
			result, err := eval.EvalCall(cur, dest, v, args)
			if err != nil {
				p.fail(diagnostic.Semantic, "%s", err.Error())
			}
			v = result

		case lexer.Dot:
			p.stream.Next()
			v = p.member(v, p.ident())

		case lexer.Arrow:
			p.stream.Next()
			deref, err := eval.EvalDeref(v)
			if err != nil {
				p.fail(diagnostic.Type, "%s", err.Error())
			}
			v = p.member(deref, p.ident())

		case lexer.Increment, lexer.Decrement:
			tokKind := p.stream.Next().Kind
			op := irblock.OpAdd
			if tokKind == lexer.Decrement {
				op = irblock.OpSub
			}
			// The expression's value is the pre-increment value, so it is
			// copied into a temporary before the one store back to v.
			saved := p.newTemp(v.Type)
			cur.Emit(irblock.Op{Code: irblock.OpAssign, Dest: saved, Args: []irblock.Var{v}})
			sum := p.binOp(cur, op, v, irblock.ImmediateInt(p.arena.Int(), 1))
			converted, err := eval.EvalCast(cur, v.Type, sum)
			if err != nil {
				p.fail(diagnostic.Type, "%s", err.Error())
			}
			if _, err := eval.EvalAssign(cur, v, converted); err != nil {
				p.fail(diagnostic.Semantic, "%s", err.Error())
			}
			v = saved

		default:
			return v, cur
		}
	}
}

func (p *Parser) primaryExpr(cur *irblock.Block) (irblock.Var, *irblock.Block) {
	tok := p.stream.Peek()
	switch tok.Kind {
	case lexer.Ident:
		p.stream.Next()
		ref, ok := p.symtab.Ident.Lookup(tok.Value)
		if !ok {
			p.fail(diagnostic.Symbol, "use of undeclared identifier '%s'", tok.Value)
		}
		sym := p.symtab.Get(ref)
		if sym.Storage == symbol.EnumValue {
			return irblock.ImmediateInt(sym.Type, int64(sym.EnumValue)), cur
		}
		return irblock.DirectVar(ref, sym.Type, 0, !ctype.IsFunction(sym.Type)), cur

	case lexer.IntConstant:
		p.stream.Next()
		return irblock.ImmediateInt(p.arena.Int(), tok.IntVal), cur

	case lexer.FloatConstant:
		p.stream.Next()
		text := strings.TrimRight(tok.Value, "fFlL")
		f, _ := strconv.ParseFloat(text, 64)
		// ImmInt carries the raw IEEE-754 bit pattern for a floating
		// constant, since Var has no separate float payload; a code
		// generator reinterprets it using the Var's Type.
		return irblock.ImmediateInt(p.arena.Double(), int64(math.Float64bits(f))), cur

	case lexer.CharConstant:
		p.stream.Next()
		return irblock.ImmediateInt(p.arena.Char(), tok.IntVal), cur

	case lexer.StringConstant:
		p.stream.Next()
		strType := p.arena.ArrayOf(p.arena.Char(), len(tok.Value)+1)
		return irblock.ImmediateString(strType, tok.Value), cur

	case lexer.LParen:
		p.stream.Next()
		v, newCur := p.expression(cur)
		p.expect(lexer.RParen)
		return v, newCur

	default:
		p.fail(diagnostic.Syntax, "expected an expression, got %s", tok.Kind)
		return irblock.Var{}, cur
	}
}
