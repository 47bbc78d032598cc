// Package symbol implements the translator's symbol table: two namespaces
// (ns_ident for objects/functions/typedefs/enum constants, ns_tag for
// struct/union/enum tags), nested lexical scopes keyed by depth, and the
// storage-class/linkage bookkeeping a declaration needs at the point it is
// registered.
package symbol

import "codeberg.org/saruga/c89front/internal/ctype"

// Ref identifies a Symbol by its slot in the table that owns it. Using a
// small index struct rather than a raw pointer keeps the table append-only
// and cheap to snapshot.
type Ref struct {
	Index uint32
	valid bool
}

// InvalidRef returns a Ref that IsValid reports false for.
func InvalidRef() Ref { return Ref{} }

// IsValid reports whether r refers to a real table slot.
func (r Ref) IsValid() bool { return r.valid }

func makeRef(i int) Ref { return Ref{Index: uint32(i), valid: true} }

// RefAt returns a Ref to the i'th symbol ever added to a Table, for callers
// that need to enumerate every symbol (e.g. a -dump-symbols CLI command)
// rather than resolve one by name.
func RefAt(i int) Ref { return makeRef(i) }

// Storage is the storage class a declaration resolves to.
type Storage uint8

const (
	Declaration Storage = iota // extern, or a non-defining declaration
	Tentative                  // file-scope object with no initializer yet
	Definition                 // has (or will have) a defining initializer/body
	Typedef
	EnumValue
)

// Linkage is the linkage a symbol carries.
type Linkage uint8

const (
	LinkNone Linkage = iota
	LinkIntern
	LinkExtern
)

// Symbol is one entry of the table: an object, function, typedef name, or
// enum constant (ns_ident), or a struct/union/enum tag (ns_tag).
type Symbol struct {
	Name    string
	Type    *ctype.Type
	Storage Storage
	Linkage Linkage
	Depth   int // 0 = file scope, 1 = function parameters, >=2 = inner blocks

	// EnumValue is valid when Storage == EnumValue, or (on a tag symbol) is
	// used as the "already defined" sentinel for an enum tag (spec. §4.1).
	EnumValue int

	// Defined marks whether a defining body/initializer has been seen,
	// distinguishing a tentative file-scope declaration from its definition.
	Defined bool
}

// Namespace is one of the two symbol namespaces, holding a stack of scopes.
type Namespace struct {
	scopes []*scope
}

type scope struct {
	depth   int
	symbols map[string]Ref
}

// Table owns the storage for Symbols plus both namespaces. One Table exists
// per translation unit.
type Table struct {
	symbols []Symbol
	Ident   *Namespace
	Tag     *Namespace
}

// NewTable creates a table with both namespaces opened at file scope (depth 0).
func NewTable() *Table {
	t := &Table{
		Ident: newNamespace(),
		Tag:   newNamespace(),
	}
	return t
}

func newNamespace() *Namespace {
	ns := &Namespace{}
	ns.scopes = append(ns.scopes, &scope{depth: 0, symbols: map[string]Ref{}})
	return ns
}

// PushScope opens a new inner scope one depth deeper than the current one.
func (ns *Namespace) PushScope() {
	depth := ns.scopes[len(ns.scopes)-1].depth + 1
	ns.scopes = append(ns.scopes, &scope{depth: depth, symbols: map[string]Ref{}})
}

// PopScope closes the innermost scope. Popping the file scope is a no-op.
func (ns *Namespace) PopScope() {
	if len(ns.scopes) > 1 {
		ns.scopes = ns.scopes[:len(ns.scopes)-1]
	}
}

// Depth returns the current scope depth (0 = file scope).
func (ns *Namespace) Depth() int {
	return ns.scopes[len(ns.scopes)-1].depth
}

// Add registers ref under name in the innermost active scope. A duplicate
// name in the SAME scope is the caller's responsibility to detect via
// LookupLocal before calling Add; Add itself always (re)binds.
func (ns *Namespace) Add(name string, ref Ref) {
	ns.scopes[len(ns.scopes)-1].symbols[name] = ref
}

// Lookup resolves name to the innermost active scope's binding, searching
// outward through enclosing scopes. This is the namespace invariant from
// spec §3: within a namespace, a name resolves to the innermost active
// scope's symbol.
func (ns *Namespace) Lookup(name string) (Ref, bool) {
	for i := len(ns.scopes) - 1; i >= 0; i-- {
		if ref, ok := ns.scopes[i].symbols[name]; ok {
			return ref, true
		}
	}
	return InvalidRef(), false
}

// LookupLocal resolves name only within the innermost active scope, used to
// detect duplicate declarations/redefinitions within one scope.
func (ns *Namespace) LookupLocal(name string) (Ref, bool) {
	ref, ok := ns.scopes[len(ns.scopes)-1].symbols[name]
	return ref, ok
}

// Add installs a new Symbol in the table and returns a Ref to it, without
// binding it into any namespace scope — callers bind via Ident.Add/Tag.Add.
func (t *Table) Add(sym Symbol) Ref {
	ref := makeRef(len(t.symbols))
	t.symbols = append(t.symbols, sym)
	return ref
}

// Get dereferences a Ref to its Symbol. Panics on an invalid Ref: a Ref
// obtained from this Table's own Add/Lookup is always valid by construction.
func (t *Table) Get(ref Ref) *Symbol {
	return &t.symbols[ref.Index]
}

// Len returns the number of symbols ever added to the table, the upper
// bound for RefAt when enumerating every symbol.
func (t *Table) Len() int {
	return len(t.symbols)
}

// PushScope opens a new scope in both namespaces together, as every block,
// parameter list, and member list does on entry.
func (t *Table) PushScope() {
	t.Ident.PushScope()
	t.Tag.PushScope()
}

// PopScope closes the innermost scope in both namespaces together.
func (t *Table) PopScope() {
	t.Ident.PopScope()
	t.Tag.PopScope()
}
