package eval

import (
	"testing"

	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// symRef returns a placeholder symbol reference for Direct Vars in tests
// that don't exercise symbol-table lookups themselves.
func symRef() symbol.Ref {
	tab := symbol.NewTable()
	return tab.Add(symbol.Symbol{Name: "v"})
}

func TestEvalBinaryEmitsOneOp(t *testing.T) {
	arena := ctype.NewArena()
	alloc := irblock.NewAllocator()
	block := alloc.NewBlock()

	lhs := irblock.ImmediateInt(arena.Int(), 1)
	rhs := irblock.ImmediateInt(arena.Int(), 2)
	dest := irblock.Var{Type: arena.Int()}

	result, err := EvalBinary(block, irblock.OpAdd, dest, lhs, rhs)
	if err != nil {
		t.Fatalf("EvalBinary: %v", err)
	}
	if len(block.Ops) != 1 || block.Ops[0].Code != irblock.OpAdd {
		t.Fatalf("expected exactly one OpAdd, got %v", block.Ops)
	}
	if result.Lvalue {
		t.Fatal("binary result must not be an lvalue")
	}
}

func TestEvalBinaryRejectsNonArithmeticOperand(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()
	s := arena.NewAggregate(ctype.Struct, "s")

	_, err := EvalBinary(block, irblock.OpAdd, irblock.Var{Type: arena.Int()}, irblock.Var{Type: s}, irblock.ImmediateInt(arena.Int(), 1))
	if err == nil {
		t.Fatal("expected an error adding a struct operand")
	}
}

func TestEvalAssignRequiresLvalue(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()

	_, err := EvalAssign(block, irblock.ImmediateInt(arena.Int(), 1), irblock.ImmediateInt(arena.Int(), 2))
	if err == nil {
		t.Fatal("expected an error assigning to a non-lvalue")
	}
}

func TestEvalAssignToDirectSucceeds(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()

	target := irblock.DirectVar(symRef(), arena.Int(), 0, true)
	result, err := EvalAssign(block, target, irblock.ImmediateInt(arena.Int(), 5))
	if err != nil {
		t.Fatalf("EvalAssign: %v", err)
	}
	if result.Lvalue {
		t.Fatal("the value of an assignment expression is not itself an lvalue")
	}
	if len(block.Ops) != 1 || block.Ops[0].Code != irblock.OpAssign {
		t.Fatalf("expected one OpAssign, got %v", block.Ops)
	}
}

func TestEvalCastFoldsImmediate(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()

	result, err := EvalCast(block, arena.Double(), irblock.ImmediateInt(arena.Int(), 3))
	if err != nil {
		t.Fatalf("EvalCast: %v", err)
	}
	if len(block.Ops) != 0 {
		t.Fatal("casting an immediate must fold at translation time, not emit an op")
	}
	if result.Type.Kind != ctype.Double {
		t.Fatal("expected the cast result typed as double")
	}
}

func TestEvalDerefRequiresPointer(t *testing.T) {
	arena := ctype.NewArena()
	_, err := EvalDeref(irblock.ImmediateInt(arena.Int(), 1))
	if err == nil {
		t.Fatal("expected an error dereferencing a non-pointer")
	}

	p := irblock.DirectVar(symRef(), arena.Pointer(arena.Int()), 0, true)
	deref, err := EvalDeref(p)
	if err != nil {
		t.Fatalf("EvalDeref: %v", err)
	}
	if deref.Kind != irblock.Deref || deref.Type.Kind != ctype.Signed {
		t.Fatal("expected a Deref Var of the pointee type")
	}
}

func TestEvalAddrRequiresLvalue(t *testing.T) {
	arena := ctype.NewArena()
	_, err := EvalAddr(arena, irblock.ImmediateInt(arena.Int(), 1))
	if err == nil {
		t.Fatal("expected an error taking the address of a non-lvalue")
	}

	x := irblock.DirectVar(symRef(), arena.Int(), 0, true)
	addr, err := EvalAddr(arena, x)
	if err != nil {
		t.Fatalf("EvalAddr: %v", err)
	}
	if !ctype.IsPointer(addr.Type) {
		t.Fatal("expected &x to be pointer-typed")
	}
}

func TestEvalCallChecksArity(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()

	fnType := arena.FunctionOf(arena.Int(), []ctype.Member{{Name: "a", Type: arena.Int()}})
	fn := irblock.Var{Type: fnType}

	_, err := EvalCall(block, irblock.Var{}, fn, nil)
	if err == nil {
		t.Fatal("expected an arity error calling with zero arguments")
	}

	_, err = EvalCall(block, irblock.Var{}, fn, []irblock.Var{irblock.ImmediateInt(arena.Int(), 1)})
	if err != nil {
		t.Fatalf("EvalCall with matching arity: %v", err)
	}
}

func TestEvalCallAcceptsVarargTail(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()

	fnType := arena.FunctionOf(arena.Int(), []ctype.Member{
		{Name: "fmt", Type: arena.Pointer(arena.Char())},
		{Name: "...", Type: nil},
	})
	fn := irblock.Var{Type: fnType}

	args := []irblock.Var{
		{Type: arena.Pointer(arena.Char())},
		irblock.ImmediateInt(arena.Int(), 1),
		irblock.ImmediateInt(arena.Int(), 2),
	}
	if _, err := EvalCall(block, irblock.Var{}, fn, args); err != nil {
		t.Fatalf("EvalCall with vararg tail: %v", err)
	}
}

func TestEvalReturnVoidRejectsValue(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()
	v := irblock.ImmediateInt(arena.Int(), 1)

	if err := EvalReturn(block, arena.Void(), &v); err == nil {
		t.Fatal("expected an error returning a value from a void function")
	}
}

func TestEvalReturnNonVoidRequiresValue(t *testing.T) {
	arena := ctype.NewArena()
	block := irblock.NewAllocator().NewBlock()

	if err := EvalReturn(block, arena.Int(), nil); err == nil {
		t.Fatal("expected an error returning nothing from a non-void function")
	}
}

func TestEvalLogicalAndShortCircuits(t *testing.T) {
	arena := ctype.NewArena()
	alloc := irblock.NewAllocator()
	cur := alloc.NewBlock()
	dest := irblock.Var{Type: arena.Int()}
	lhs := irblock.DirectVar(symRef(), arena.Int(), 0, true)

	var rhsEntrySeen *irblock.Block
	_, join, err := EvalLogicalAnd(alloc, cur, dest, lhs, func(rhsBlock *irblock.Block) (irblock.Var, *irblock.Block, error) {
		rhsEntrySeen = rhsBlock
		return irblock.DirectVar(symRef(), arena.Int(), 0, true), rhsBlock, nil
	})
	if err != nil {
		t.Fatalf("EvalLogicalAnd: %v", err)
	}

	if cur.Jump[1] != rhsEntrySeen {
		t.Fatal("rhs of && must be reachable only on the true edge")
	}
	if cur.Jump[0] != join {
		t.Fatal("the false edge of && must short-circuit straight to the join block")
	}
}

func TestEvalConditionalWiresUniformEdges(t *testing.T) {
	arena := ctype.NewArena()
	alloc := irblock.NewAllocator()
	cur := alloc.NewBlock()
	cond := irblock.DirectVar(symRef(), arena.Int(), 0, true)

	trueBlock, falseBlock, next, err := EvalConditionalBranch(alloc, cur, cond)
	if err != nil {
		t.Fatalf("EvalConditionalBranch: %v", err)
	}
	if cur.Jump[1] != trueBlock || cur.Jump[0] != falseBlock {
		t.Fatal("conditional branch must use Jump[1]=true, Jump[0]=false")
	}

	dest := irblock.Var{Type: arena.Int()}
	tVal := irblock.ImmediateInt(arena.Int(), 1)
	fVal := irblock.ImmediateInt(arena.Int(), 2)
	EvalConditionalJoin(next, dest, trueBlock, tVal, falseBlock, fVal)

	if trueBlock.Jump[0] != next || falseBlock.Jump[0] != next {
		t.Fatal("both branches must join into next")
	}
	if next.Expr != dest {
		t.Fatal("next.Expr must carry the joined value")
	}
}
