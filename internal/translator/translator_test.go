package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/symbol"
)

func translateOK(t *testing.T, source string) *TranslationUnit {
	t.Helper()
	p := New(source)
	tu, err := p.Translate()
	require.NoError(t, err, "diagnostics: %s", p.Diagnostics().Format())
	return tu
}

func TestTranslateSimpleFunction(t *testing.T) {
	tu := translateOK(t, `
		int add(int a, int b) {
			return a + b;
		}
	`)
	require.Len(t, tu.CFGs, 1)
	cfg := tu.CFGs[0]
	assert.True(t, cfg.Fun.IsValid())
	assert.NotNil(t, cfg.Body)
}

func TestTranslateFileScopeInitializerPopulatesHead(t *testing.T) {
	tu := translateOK(t, `int counter = 0;`)
	require.Len(t, tu.CFGs, 1)
	cfg := tu.CFGs[0]
	assert.False(t, cfg.Fun.IsValid())
	assert.Nil(t, cfg.Body)
	assert.NotEmpty(t, cfg.Head.Ops)
}

func TestTagOnlyDeclarationProducesNoCFG(t *testing.T) {
	tu := translateOK(t, `struct point { int x; int y; };`)
	assert.Empty(t, tu.CFGs)
}

func TestScopeDisciplineInnerDeclarationNotVisibleOutside(t *testing.T) {
	p := New(`
		void f(void) {
			{
				int inner = 1;
			}
			inner = 2;
		}
	`)
	_, err := p.Translate()
	require.Error(t, err, "a name declared in an inner block must not leak to an outer one")
}

func TestIfElseCFGJoinsBothBranches(t *testing.T) {
	tu := translateOK(t, `
		int classify(int x) {
			int r;
			if (x > 0) {
				r = 1;
			} else {
				r = -1;
			}
			return r;
		}
	`)
	cfg := tu.CFGs[0]
	entry := cfg.Body
	require.NotNil(t, entry.Jump[0])
	require.NotNil(t, entry.Jump[1])
	falseBranch, trueBranch := entry.Jump[0], entry.Jump[1]
	assert.Equal(t, falseBranch.Jump[0], trueBranch.Jump[0], "both branches must rejoin at the same block")
}

func TestWhileLoopBackEdge(t *testing.T) {
	tu := translateOK(t, `
		void f(void) {
			int i;
			i = 0;
			while (i < 10) {
				i = i + 1;
			}
		}
	`)
	cfg := tu.CFGs[0]
	header := cfg.Body.Jump[0]
	require.NotNil(t, header)
	require.NotNil(t, header.Jump[1], "the loop body edge must be wired")
	body := header.Jump[1]
	assert.Equal(t, header, body.Jump[0], "falling off the loop body must branch back to the header")
}

func TestBreakOutsideLoopIsDiagnosed(t *testing.T) {
	p := New(`
		void f(void) {
			break;
		}
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestContinueOutsideLoopIsDiagnosed(t *testing.T) {
	p := New(`
		void f(void) {
			continue;
		}
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestSwitchCasesRegisterInOrder(t *testing.T) {
	tu := translateOK(t, `
		int f(int x) {
			switch (x) {
			case 1:
				return 10;
			case 2:
				return 20;
			default:
				return 0;
			}
		}
	`)
	require.Len(t, tu.CFGs, 1)
	cmp1 := tu.CFGs[0].Body
	require.NotNil(t, cmp1.Jump[1])
	require.NotNil(t, cmp1.Jump[0])
	ret1 := findOp(cmp1.Jump[1], irblock.OpReturn)
	require.NotNil(t, ret1)
	assert.Equal(t, int64(10), ret1.Args[0].ImmInt, "the first comparison targets case 1")
	require.NotNil(t, cmp1.Jump[0].Jump[1])
	ret2 := findOp(cmp1.Jump[0].Jump[1], irblock.OpReturn)
	require.NotNil(t, ret2)
	assert.Equal(t, int64(20), ret2.Args[0].ImmInt, "the second comparison targets case 2")
}

func TestSizeofConstantFolds(t *testing.T) {
	tu := translateOK(t, `
		int f(void) {
			int a[sizeof(int) * 2];
			return 0;
		}
	`)
	require.Len(t, tu.CFGs, 1)
}

func TestNonConstantArrayDimensionIsDiagnosed(t *testing.T) {
	p := New(`
		void f(int n) {
			int a[n];
		}
	`)
	_, err := p.Translate()
	require.Error(t, err, "a variable-length array bound must not fold to a constant")
}

func TestTypedefNameUsableAsTypeSpecifier(t *testing.T) {
	tu := translateOK(t, `
		typedef unsigned long size_t;
		size_t length(void) {
			size_t n;
			n = 0;
			return n;
		}
	`)
	require.Len(t, tu.CFGs, 1)
}

func TestPreAndPostIncrementDiffer(t *testing.T) {
	tu := translateOK(t, `
		int f(void) {
			int i;
			int a;
			int b;
			i = 0;
			a = ++i;
			b = i++;
			return a + b;
		}
	`)
	require.Len(t, tu.CFGs, 1)
	body := tu.CFGs[0].Body
	storedTo := func(name string) irblock.Var {
		var v irblock.Var
		for _, op := range body.Ops {
			if op.Code == irblock.OpAssign && op.Dest.HasSymbol && tu.Symbols.Get(op.Dest.Symbol).Name == name {
				v = op.Args[0]
			}
		}
		return v
	}
	pre, post := storedTo("a"), storedTo("b")
	require.True(t, pre.HasSymbol)
	require.True(t, post.HasSymbol)
	assert.Equal(t, "i", tu.Symbols.Get(pre.Symbol).Name, "++i yields i after its store")
	assert.NotEqual(t, "i", tu.Symbols.Get(post.Symbol).Name, "i++ yields a copy taken before its store")
}

func TestRedeclarationInSameScopeIsVisibleByLookup(t *testing.T) {
	p := New(`int x; int x;`)
	tu, err := p.Translate()
	require.NoError(t, err)
	ref, ok := tu.Symbols.Ident.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "x", tu.Symbols.Get(ref).Name)
}

func TestFunctionCallArgumentCountMismatchIsDiagnosed(t *testing.T) {
	p := New(`
		int add(int a, int b);
		int f(void) {
			return add(1);
		}
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestSubscriptScalesByElementSize(t *testing.T) {
	tu := translateOK(t, `
		int f(int *p) {
			return p[2];
		}
	`)
	add := findOp(tu.CFGs[0].Body, irblock.OpAdd)
	require.NotNil(t, add)
	assert.Equal(t, int64(8), add.Args[1].ImmInt, "a constant index folds to index * sizeof(int)")
}

// findOp returns the last op with the given code in b, or nil.
func findOp(b *irblock.Block, code irblock.OpCode) *irblock.Op {
	var found *irblock.Op
	for i := range b.Ops {
		if b.Ops[i].Code == code {
			found = &b.Ops[i]
		}
	}
	return found
}

func TestPointerAdditionScalesByElementSize(t *testing.T) {
	tu := translateOK(t, `
		int *f(int *p, int n) {
			return p + n;
		}
	`)
	body := tu.CFGs[0].Body
	mul := findOp(body, irblock.OpMul)
	require.NotNil(t, mul, "a non-constant index must be scaled before the add")
	assert.Equal(t, int64(4), mul.Args[1].ImmInt, "the scale factor is sizeof(int)")
	add := findOp(body, irblock.OpAdd)
	require.NotNil(t, add)
	assert.Equal(t, mul.Dest.Symbol, add.Args[1].Symbol, "the add consumes the scaled index")
}

func TestPointerIncrementAdvancesOneElement(t *testing.T) {
	tu := translateOK(t, `
		int *f(int *p) {
			p++;
			return p;
		}
	`)
	add := findOp(tu.CFGs[0].Body, irblock.OpAdd)
	require.NotNil(t, add)
	assert.Equal(t, int64(4), add.Args[1].ImmInt, "p++ advances by sizeof(int), not by one byte")
}

func TestPointerCompoundAssignScalesByElementSize(t *testing.T) {
	tu := translateOK(t, `
		int *f(int *p) {
			p += 3;
			return p;
		}
	`)
	add := findOp(tu.CFGs[0].Body, irblock.OpAdd)
	require.NotNil(t, add)
	assert.Equal(t, int64(12), add.Args[1].ImmInt)
}

func TestPointerDifferenceDividesByElementSize(t *testing.T) {
	tu := translateOK(t, `
		int f(int *p, int *q) {
			return p - q;
		}
	`)
	body := tu.CFGs[0].Body
	sub := findOp(body, irblock.OpSub)
	require.NotNil(t, sub)
	div := findOp(body, irblock.OpDiv)
	require.NotNil(t, div, "a pointer difference is an element count, not a byte count")
	assert.Equal(t, int64(4), div.Args[1].ImmInt)
}

func TestNestedDeclaratorParenthesizedFunctionPointer(t *testing.T) {
	p := New(`
		typedef void (*callback)(int);
		void invoke(callback cb, int v) {
			cb(v);
		}
	`)
	_, err := p.Translate()
	require.NoError(t, err, "diagnostics: %s", p.Diagnostics().Format())
}

func TestIncompleteArrayCompletedByInitializer(t *testing.T) {
	tu := translateOK(t, `int buf[] = {1, 2, 3};`)
	cfg := tu.CFGs[0]
	ref, ok := tu.Symbols.Ident.Lookup("buf")
	require.True(t, ok)
	sym := tu.Symbols.Get(ref)
	assert.True(t, ctype.IsComplete(sym.Type))
	assert.Equal(t, 3*ctype.SizeOf(sym.Type.Next), sym.Type.Size)
	assert.NotEmpty(t, cfg.Head.Ops)
}

func TestStringLiteralCompletesCharArray(t *testing.T) {
	tu := translateOK(t, `char greeting[] = "hi";`)
	ref, ok := tu.Symbols.Ident.Lookup("greeting")
	require.True(t, ok)
	sym := tu.Symbols.Get(ref)
	assert.Equal(t, 3, sym.Type.Size) // "hi" + NUL
}

// countStoresTo walks every op in the CFG reachable from start and counts
// assignments whose destination is the named symbol.
func countStoresTo(tu *TranslationUnit, start *irblock.Block, name string) int {
	count := 0
	seen := map[irblock.BlockID]bool{}
	var walk func(b *irblock.Block)
	walk = func(b *irblock.Block) {
		if b == nil || seen[b.ID] {
			return
		}
		seen[b.ID] = true
		for _, op := range b.Ops {
			if op.Code == irblock.OpAssign && op.Dest.HasSymbol && tu.Symbols.Get(op.Dest.Symbol).Name == name {
				count++
			}
		}
		walk(b.Jump[0])
		walk(b.Jump[1])
	}
	walk(start)
	return count
}

func TestStructInitializerZeroFillsTrailingMembers(t *testing.T) {
	tu := translateOK(t, `
		struct pair { int a; int b; };
		struct pair p = {1};
	`)
	require.Len(t, tu.CFGs, 1)
	head := tu.CFGs[0].Head
	require.Len(t, head.Ops, 2, "one explicit store plus one zero-fill store")
	assert.Equal(t, int64(1), head.Ops[0].Args[0].ImmInt)
	assert.Equal(t, int64(0), head.Ops[1].Args[0].ImmInt)
	assert.Equal(t, 4, head.Ops[1].Dest.Offset, "the zero store lands on the second member")
}

func TestSizedArrayInitializerZeroFillsTrailingElements(t *testing.T) {
	tu := translateOK(t, `int a[4] = {1, 2};`)
	head := tu.CFGs[0].Head
	require.Len(t, head.Ops, 4)
	assert.Equal(t, 8, head.Ops[2].Dest.Offset)
	assert.Equal(t, int64(0), head.Ops[2].Args[0].ImmInt)
	assert.Equal(t, 12, head.Ops[3].Dest.Offset)
}

func TestUnionInitializerZeroFillsWhenFirstMemberIsSmaller(t *testing.T) {
	tu := translateOK(t, `
		union blob { int tag; char raw[8]; };
		union blob b = {7};
	`)
	head := tu.CFGs[0].Head
	require.NotEmpty(t, head.Ops)
	last := head.Ops[len(head.Ops)-1]
	assert.Equal(t, int64(7), last.Args[0].ImmInt, "the member value lands after the storage is zeroed")
	assert.Greater(t, len(head.Ops), 1, "zero-fill stores precede the member store")
}

func TestCommaDeclaratorsShareOneLoadTimeCFG(t *testing.T) {
	tu := translateOK(t, `int a = 1, b = 2;`)
	require.Len(t, tu.CFGs, 1, "sibling declarators must not each produce a CFG")
	assert.Len(t, tu.CFGs[0].Head.Ops, 2)
}

func TestExternWithInitializerIsDiagnosed(t *testing.T) {
	p := New(`extern int x = 1;`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestFileScopeNonConstantInitializerIsDiagnosed(t *testing.T) {
	p := New(`
		int f(void);
		int x = f();
	`)
	_, err := p.Translate()
	require.Error(t, err, "a load-time initializer must fold to an immediate")
}

func TestIncompleteTypeObjectIsDiagnosed(t *testing.T) {
	p := New(`
		struct opaque;
		struct opaque o;
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestDuplicateDefaultIsDiagnosed(t *testing.T) {
	p := New(`
		void f(int x) {
			switch (x) {
			default:
				break;
			default:
				break;
			}
		}
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestSizeofFunctionIsDiagnosed(t *testing.T) {
	p := New(`
		int f(void);
		int g(void) {
			return sizeof(f);
		}
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestConstantTrueConditionFoldsToSingleSuccessor(t *testing.T) {
	tu := translateOK(t, `
		void f(void) {
			while (1) {
				break;
			}
		}
	`)
	header := tu.CFGs[0].Body.Jump[0]
	require.NotNil(t, header)
	assert.NotNil(t, header.Jump[0], "a constant-true loop header still enters the body")
	assert.Nil(t, header.Jump[1], "a folded condition must not branch two ways")
}

func TestConstantFalseIfSkipsThenBranch(t *testing.T) {
	tu := translateOK(t, `
		void f(void) {
			if (0) {
				return;
			}
		}
	`)
	entry := tu.CFGs[0].Body
	require.NotNil(t, entry.Jump[0])
	assert.Nil(t, entry.Jump[1])
}

func TestIfWithoutElseFalseEdgeGoesDirectlyToJoin(t *testing.T) {
	tu := translateOK(t, `
		void f(int x) {
			if (x) {
				x = 1;
			}
		}
	`)
	entry := tu.CFGs[0].Body
	require.NotNil(t, entry.Jump[0])
	require.NotNil(t, entry.Jump[1])
	assert.Equal(t, entry.Jump[0], entry.Jump[1].Jump[0], "the false edge and the then branch must meet at the same join block")
}

func TestSwitchCascadeFallsThroughToDefault(t *testing.T) {
	tu := translateOK(t, `
		void f(int x) {
			switch (x) {
			case 1:
				break;
			case 2:
				break;
			default:
				break;
			}
		}
	`)
	cmp1 := tu.CFGs[0].Body
	require.NotNil(t, cmp1.Jump[1], "first comparison branches to case 1's label")
	cmp2 := cmp1.Jump[0]
	require.NotNil(t, cmp2)
	require.NotNil(t, cmp2.Jump[1], "second comparison branches to case 2's label")
	def := cmp2.Jump[0]
	require.NotNil(t, def, "after the last case the fallthrough target is the default label")
	assert.Nil(t, def.Jump[1])
}

func TestPostIncrementEmitsExactlyOneStore(t *testing.T) {
	tu := translateOK(t, `
		int f(void) {
			int i;
			i = 0;
			return i++;
		}
	`)
	stores := countStoresTo(tu, tu.CFGs[0].Body, "i")
	assert.Equal(t, 2, stores, "one store for i = 0 and exactly one for i++")
}

func TestFuncNameConstantIsPredeclared(t *testing.T) {
	tu := translateOK(t, `
		int f(void) {
			return sizeof(__func__);
		}
	`)
	require.Len(t, tu.CFGs, 1)
	found := false
	for i := 0; i < tu.Symbols.Len(); i++ {
		if tu.Symbols.Get(symbol.RefAt(i)).Name == "__func__" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConstantExpressionRejectsSideEffects(t *testing.T) {
	p := New(`
		int f(void);
		int a[f()];
	`)
	_, err := p.Translate()
	require.Error(t, err)
}

func TestEnumeratorArithmeticFolds(t *testing.T) {
	tu := translateOK(t, `
		enum sizes { small = 1 + 1, large = small * 8 };
		int f(void) {
			return large;
		}
	`)
	ref, ok := tu.Symbols.Ident.Lookup("large")
	require.True(t, ok)
	assert.Equal(t, 16, tu.Symbols.Get(ref).EnumValue)
}
