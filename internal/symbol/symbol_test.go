package symbol

import (
	"testing"

	"codeberg.org/saruga/c89front/internal/ctype"
)

func TestInnerScopeShadowsOuter(t *testing.T) {
	tab := NewTable()
	arena := ctype.NewArena()

	outer := tab.Add(Symbol{Name: "x", Type: arena.Int(), Storage: Tentative, Linkage: LinkExtern})
	tab.Ident.Add("x", outer)

	tab.PushScope()
	inner := tab.Add(Symbol{Name: "x", Type: arena.Float32(), Storage: Definition, Linkage: LinkNone})
	tab.Ident.Add("x", inner)

	ref, ok := tab.Ident.Lookup("x")
	if !ok || ref != inner {
		t.Fatal("innermost scope should shadow outer")
	}

	tab.PopScope()
	ref, ok = tab.Ident.Lookup("x")
	if !ok || ref != outer {
		t.Fatal("after pop, lookup should resolve to the outer symbol again")
	}
}

func TestLookupLocalDetectsDuplicates(t *testing.T) {
	tab := NewTable()
	arena := ctype.NewArena()
	ref := tab.Add(Symbol{Name: "a", Type: arena.Int()})
	tab.Ident.Add("a", ref)

	if _, ok := tab.Ident.LookupLocal("a"); !ok {
		t.Fatal("expected duplicate detection to find the existing binding")
	}
	if _, ok := tab.Ident.LookupLocal("b"); ok {
		t.Fatal("LookupLocal should not find an undeclared name")
	}
}

func TestTagAndIdentNamespacesAreIndependent(t *testing.T) {
	tab := NewTable()
	arena := ctype.NewArena()

	s := arena.NewAggregate(ctype.Struct, "point")
	tagRef := tab.Add(Symbol{Name: "point", Type: s, Storage: Definition})
	tab.Tag.Add("point", tagRef)

	identRef := tab.Add(Symbol{Name: "point", Type: arena.Int(), Storage: Tentative})
	tab.Ident.Add("point", identRef)

	if _, ok := tab.Tag.Lookup("point"); !ok {
		t.Fatal("tag namespace lookup failed")
	}
	if _, ok := tab.Ident.Lookup("point"); !ok {
		t.Fatal("identifier namespace lookup failed")
	}
	if tagRef == identRef {
		t.Fatal("tag and ident symbols must be distinct table entries")
	}
}

func TestScopeDepthTracksPushPop(t *testing.T) {
	tab := NewTable()
	if tab.Ident.Depth() != 0 {
		t.Fatalf("file scope depth = %d, want 0", tab.Ident.Depth())
	}
	tab.PushScope()
	if tab.Ident.Depth() != 1 {
		t.Fatalf("depth after one push = %d, want 1", tab.Ident.Depth())
	}
	tab.PushScope()
	if tab.Ident.Depth() != 2 {
		t.Fatalf("depth after two pushes = %d, want 2", tab.Ident.Depth())
	}
	tab.PopScope()
	tab.PopScope()
	if tab.Ident.Depth() != 0 {
		t.Fatalf("depth after matching pops = %d, want 0", tab.Ident.Depth())
	}
}
