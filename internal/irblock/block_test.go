package irblock

import (
	"testing"

	"codeberg.org/saruga/c89front/internal/symbol"
)

func TestAllocatorAssignsIncreasingIDs(t *testing.T) {
	a := NewAllocator()
	b0 := a.NewBlock()
	b1 := a.NewBlock()
	if b0.ID != 0 || b1.ID != 1 {
		t.Fatalf("got IDs %d, %d; want 0, 1", b0.ID, b1.ID)
	}
}

func TestUnconditionalEdgeLeavesTrueNil(t *testing.T) {
	a := NewAllocator()
	b, next := a.NewBlock(), a.NewBlock()
	b.SetUnconditional(next)
	if b.Jump[0] != next || b.Jump[1] != nil {
		t.Fatal("unconditional edge must set only Jump[0]")
	}
}

func TestConditionalEdgeConvention(t *testing.T) {
	a := NewAllocator()
	b, t1, f1 := a.NewBlock(), a.NewBlock(), a.NewBlock()
	b.SetConditional(f1, t1)
	if b.Jump[1] != t1 {
		t.Fatal("Jump[1] must be the true edge")
	}
	if b.Jump[0] != f1 {
		t.Fatal("Jump[0] must be the false/fallthrough edge")
	}
}

func TestTerminalBlockHasNoEdges(t *testing.T) {
	a := NewAllocator()
	b := a.NewBlock()
	if !b.IsTerminal() {
		t.Fatal("a freshly allocated block must be terminal until wired")
	}
	b.SetUnconditional(a.NewBlock())
	if b.IsTerminal() {
		t.Fatal("a wired block must not report terminal")
	}
}

func TestCFGRegisterLocalAccumulates(t *testing.T) {
	a := NewAllocator()
	cfg := NewCFG(a)
	if cfg.Head == nil {
		t.Fatal("NewCFG must allocate a Head block")
	}
	if len(cfg.Locals) != 0 {
		t.Fatal("a fresh CFG must have no locals")
	}
	cfg.RegisterLocal(symbol.RefAt(0))
	cfg.RegisterLocal(symbol.RefAt(1))
	if len(cfg.Locals) != 2 || cfg.Locals[0] != symbol.RefAt(0) || cfg.Locals[1] != symbol.RefAt(1) {
		t.Fatalf("Locals = %v, want both registered refs in order", cfg.Locals)
	}
}

func TestSwitchContextAccumulatesCases(t *testing.T) {
	a := NewAllocator()
	ctx := &SwitchContext{}
	l1, l2 := a.NewBlock(), a.NewBlock()
	ctx.AddCase(ImmediateInt(nil, 1), l1)
	ctx.AddCase(ImmediateInt(nil, 2), l2)
	if len(ctx.Cases) != 2 {
		t.Fatalf("Cases len = %d, want 2", len(ctx.Cases))
	}
	if ctx.Cases[0].Label != l1 || ctx.Cases[1].Label != l2 {
		t.Fatal("cases must preserve registration order")
	}
}

func TestCursorsWithLoopTargetsDoesNotMutateCaller(t *testing.T) {
	a := NewAllocator()
	outer := Cursors{BreakTarget: a.NewBlock()}
	innerBreak, innerContinue := a.NewBlock(), a.NewBlock()
	inner := outer.WithLoopTargets(innerBreak, innerContinue)

	if inner.BreakTarget != innerBreak {
		t.Fatal("inner cursors must see the new break target")
	}
	if outer.BreakTarget == innerBreak {
		t.Fatal("outer cursors must be unaffected by the inner loop's targets")
	}
}

func TestCursorsWithSwitchPreservesAcrossNestedLoop(t *testing.T) {
	a := NewAllocator()
	sw := &SwitchContext{}
	switchCursors := Cursors{}.WithSwitch(sw, a.NewBlock())

	loopCursors := switchCursors.WithLoopTargets(a.NewBlock(), a.NewBlock())
	if loopCursors.Switch != sw {
		t.Fatal("a nested loop inside a switch body must still see the enclosing switch context")
	}
}
