package ctype

import "testing"

func TestBasicTypeSizes(t *testing.T) {
	a := NewArena()
	tests := []struct {
		name string
		t    *Type
		size int
	}{
		{"void", a.Void(), 0},
		{"char", a.Char(), 1},
		{"int", a.Int(), 4},
		{"unsigned int", a.UnsignedInt(), 4},
		{"long", a.Long(), 8},
		{"float", a.Float32(), 4},
		{"double", a.Float64(), 8},
	}
	for _, tt := range tests {
		if got := SizeOf(tt.t); got != tt.size {
			t.Errorf("SizeOf(%s) = %d, want %d", tt.name, got, tt.size)
		}
	}
}

func TestPointerAndArray(t *testing.T) {
	a := NewArena()
	intT := a.Int()
	ptr := a.Pointer(intT)
	if !IsPointer(ptr) {
		t.Fatal("expected pointer")
	}
	if Deref(ptr) != intT {
		t.Fatal("Deref(ptr) should return pointee")
	}

	incomplete := a.IncompleteArray(intT)
	if IsComplete(incomplete) {
		t.Fatal("array with unspecified dimension should be incomplete")
	}

	arr := a.ArrayOf(intT, 3)
	if !IsComplete(arr) {
		t.Fatal("sized array of complete element should be complete")
	}
	if SizeOf(arr) != 12 {
		t.Errorf("SizeOf(int[3]) = %d, want 12", SizeOf(arr))
	}
}

func TestStructMembersAndTaggedCopy(t *testing.T) {
	a := NewArena()
	intT := a.Int()
	s := a.NewAggregate(Struct, "S")
	AddMember(s, "a", intT, 0)
	AddMember(s, "b", intT, 4)
	Complete(s, 8)

	if NMembers(s) != 2 {
		t.Fatalf("NMembers = %d, want 2", NMembers(s))
	}
	m, ok := FindTypeMember(s, "b")
	if !ok || m.Offset != 4 {
		t.Fatalf("FindTypeMember(b) = %+v, %v", m, ok)
	}

	cp := WithQual(TaggedCopy(s), Const)
	if !IsStruct(cp) {
		t.Fatal("tagged copy of a struct should still report IsStruct")
	}
	if NMembers(cp) != 2 {
		t.Fatal("tagged copy should see canonical members")
	}
	if cp.Qual&Const == 0 {
		t.Fatal("qualifier should apply to the copy, not the canonical type")
	}
	if s.Qual&Const != 0 {
		t.Fatal("qualifying a tagged copy must not mutate the canonical type")
	}
}

func TestFunctionVararg(t *testing.T) {
	a := NewArena()
	intT := a.Int()
	fn := a.FunctionOf(intT, []Member{
		{Name: "fmt", Type: a.Pointer(a.Char())},
		{Name: "...", Type: nil},
	})
	if !IsFunction(fn) {
		t.Fatal("expected function type")
	}
	if !IsVararg(fn) {
		t.Fatal("expected vararg sentinel to be detected")
	}
	if NMembers(fn) != 1 {
		t.Fatalf("NMembers should exclude vararg sentinel, got %d", NMembers(fn))
	}
}

func TestResolveBasicSpecifiers(t *testing.T) {
	a := NewArena()
	tests := []struct {
		spec SpecBits
		want string
	}{
		{SpecBits{Int: 1}, "int"},
		{SpecBits{Unsigned: 1}, "unsigned int"},
		{SpecBits{Long: 1}, "int"},
		{SpecBits{Long: 2}, "int"},
		{SpecBits{Char: 1}, "char"},
		{SpecBits{Char: 1, Signed: 1}, "int"},
		{SpecBits{Float: 1}, "float"},
		{SpecBits{Double: 1}, "double"},
		{SpecBits{Double: 1, Long: 1}, "double"},
	}
	for _, tt := range tests {
		got, err := tt.spec.Resolve(a)
		if err != nil {
			t.Errorf("Resolve(%+v) error: %v", tt.spec, err)
			continue
		}
		if got.Kind.String() != tt.want {
			t.Errorf("Resolve(%+v).Kind = %s, want %s", tt.spec, got.Kind, tt.want)
		}
	}
}

func TestResolveRejectsInvalidCombination(t *testing.T) {
	a := NewArena()
	_, err := SpecBits{Void: 1, Int: 1}.Resolve(a)
	if err == nil {
		t.Fatal("expected error for void+int")
	}
}
