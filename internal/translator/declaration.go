package translator

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/lexer"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// linkageFor maps a storage-class keyword to the linkage a file-scope name
// declared with it carries.
func linkageFor(sc storageClass) symbol.Linkage {
	switch sc {
	case scStatic:
		return symbol.LinkIntern
	case scExtern, scNone:
		return symbol.LinkExtern
	default:
		return symbol.LinkNone
	}
}

// declaration parses one external-declaration: a declaration-specifier list
// followed either by a function body (a function definition), or by zero
// or more comma-separated init-declarators. A bare `struct S { ... };` with
// no declarator is legal and registers only the tag.
func (p *Parser) declaration() *irblock.CFG {
	spec := p.declarationSpecifiers(true)

	if _, ok := p.stream.Consume(lexer.Semicolon); ok {
		return nil
	}

	name, t := p.declarator(spec.Type)
	if name == "" {
		p.fail(diagnostic.Syntax, "expected a declarator name")
	}

	if spec.Storage == scTypedef {
		p.bindTypedef(name, t)
		for {
			if _, ok := p.stream.Consume(lexer.Comma); !ok {
				break
			}
			n2, t2 := p.declarator(spec.Type)
			p.bindTypedef(n2, t2)
		}
		p.expect(lexer.Semicolon)
		return nil
	}

	if ctype.IsFunction(t) && p.stream.At(lexer.LBrace) {
		return p.functionDefinition(name, t, spec)
	}

	// Every initialized declarator of the declaration shares one load-time
	// CFG, so `int a = 1, b = 2;` yields a single Head holding both stores.
	linkage := linkageFor(spec.Storage)
	cfg := p.objectDeclarator(name, t, linkage, spec.Storage, nil)

	for {
		if _, ok := p.stream.Consume(lexer.Comma); !ok {
			break
		}
		n2, t2 := p.declarator(spec.Type)
		cfg = p.objectDeclarator(n2, t2, linkage, spec.Storage, cfg)
	}
	p.expect(lexer.Semicolon)
	return cfg
}

func (p *Parser) bindTypedef(name string, t *ctype.Type) {
	ref := p.symtab.Add(symbol.Symbol{Name: name, Type: t, Storage: symbol.Typedef, Depth: p.symtab.Ident.Depth()})
	p.symtab.Ident.Add(name, ref)
}

// objectDeclarator registers one non-function, non-typedef declarator and,
// if followed by `=`, parses its initializer into cfg's Head (allocating
// cfg on the first initializer seen; the caller passes it back in for each
// sibling declarator of the same declaration). A file-scope object with no
// initializer is recorded as Tentative; a later declaration of the same
// name gets a symbol entry of its own and does not update this one. An
// `extern` declarator is never itself a definition.
func (p *Parser) objectDeclarator(name string, t *ctype.Type, linkage symbol.Linkage, sc storageClass, cfg *irblock.CFG) *irblock.CFG {
	storage := symbol.Tentative
	if sc == scExtern {
		storage = symbol.Declaration
	}
	if ctype.IsFunction(t) {
		storage = symbol.Declaration
	}

	// An object's type must be complete before it reaches the symbol table.
	// The exceptions: an extern declaration never reserves storage, and a
	// file-scope array may leave its outer dimension open for the
	// initializer (or a later definition) to fill in.
	if !ctype.IsFunction(t) && !ctype.IsComplete(t) {
		openArray := ctype.IsArray(t) && t.Size == 0
		if sc != scExtern && !openArray {
			p.fail(diagnostic.Type, "variable '%s' has incomplete type %s", name, ctype.String(t))
		}
	}

	prior, havePrior := p.symtab.Ident.LookupLocal(name)

	ref := p.symtab.Add(symbol.Symbol{Name: name, Type: t, Storage: storage, Linkage: linkage, Depth: p.symtab.Ident.Depth()})
	p.symtab.Ident.Add(name, ref)

	if _, ok := p.stream.Consume(lexer.Assign); !ok {
		return cfg
	}

	if sc == scExtern {
		p.fail(diagnostic.Semantic, "'%s' declared extern cannot be initialized", name)
	}
	if havePrior && p.symtab.Get(prior).Defined {
		p.fail(diagnostic.Symbol, "redefinition of '%s'", name)
	}

	if cfg == nil {
		cfg = irblock.NewCFG(p.alloc)
	}
	target := irblock.DirectVar(ref, t, 0, true)
	p.initializer(cfg.Head, target)
	sym := p.symtab.Get(ref)
	sym.Defined = true
	sym.Storage = symbol.Definition
	cfg.RegisterLocal(ref)
	return cfg
}

// functionDefinition parses a function body, pushing the parameter names
// into a fresh scope (depth 1, per symbol.Symbol.Depth's convention) before
// the body's own compound-statement scope opens on top of it.
func (p *Parser) functionDefinition(name string, t *ctype.Type, spec declSpec) *irblock.CFG {
	linkage := linkageFor(spec.Storage)
	ref := p.symtab.Add(symbol.Symbol{Name: name, Type: t, Storage: symbol.Definition, Linkage: linkage, Defined: true})
	p.symtab.Ident.Add(name, ref)

	cfg := irblock.NewCFG(p.alloc)
	cfg.Fun = ref

	p.symtab.PushScope()
	n := ctype.NMembers(t)
	for i := 0; i < n; i++ {
		m, _ := ctype.GetMember(t, i)
		if m.Name == "" {
			continue
		}
		pref := p.symtab.Add(symbol.Symbol{Name: m.Name, Type: m.Type, Storage: symbol.Definition, Depth: p.symtab.Ident.Depth()})
		p.symtab.Ident.Add(m.Name, pref)
		cfg.RegisterLocal(pref)
	}

	// Every function body predeclares __func__, a static const char array
	// holding the function's own name, initialized in the load-time block.
	funcNameType := p.arena.ArrayOf(p.arena.Char(), len(name)+1)
	fref := p.symtab.Add(symbol.Symbol{
		Name:    "__func__",
		Type:    ctype.WithQual(funcNameType, ctype.Const),
		Storage: symbol.Definition,
		Linkage: symbol.LinkIntern,
		Depth:   p.symtab.Ident.Depth(),
		Defined: true,
	})
	p.symtab.Ident.Add("__func__", fref)
	cfg.RegisterLocal(fref)
	cfg.Head.Emit(irblock.Op{
		Code: irblock.OpAssign,
		Dest: irblock.DirectVar(fref, funcNameType, 0, true),
		Args: []irblock.Var{irblock.ImmediateString(funcNameType, name)},
	})

	prevFn := p.fn
	p.fn = &funcContext{returnType: t.Next, labels: map[string]*irblock.Block{}, cfg: cfg}

	body := p.alloc.NewBlock()
	cfg.Head.SetUnconditional(body)
	cfg.Body = body

	end := p.block(body, irblock.Cursors{})
	if ctype.IsVoid(t.Next) && end.IsTerminal() {
		end.Emit(irblock.Op{Code: irblock.OpReturn})
	}

	p.fn = prevFn
	p.symtab.PopScope()
	return cfg
}

// localDeclaration parses a block-scope declaration (including a typedef
// local to that block), emitting any initializers into cur.
func (p *Parser) localDeclaration(cur *irblock.Block) *irblock.Block {
	spec := p.declarationSpecifiers(true)

	if _, ok := p.stream.Consume(lexer.Semicolon); ok {
		return cur
	}

	if spec.Storage == scTypedef {
		for {
			name, t := p.declarator(spec.Type)
			p.bindTypedef(name, t)
			if _, ok := p.stream.Consume(lexer.Comma); !ok {
				break
			}
		}
		p.expect(lexer.Semicolon)
		return cur
	}

	// Inner-scope names have no linkage unless a storage class grants one:
	// static keeps intern linkage, extern refers to the external object.
	linkage := symbol.LinkNone
	switch spec.Storage {
	case scStatic:
		linkage = symbol.LinkIntern
	case scExtern:
		linkage = symbol.LinkExtern
	}
	for {
		name, t := p.declarator(spec.Type)
		storage := symbol.Definition
		if spec.Storage == scExtern {
			storage = symbol.Declaration
		}
		if !ctype.IsFunction(t) && !ctype.IsComplete(t) {
			// A block-scope array may leave its dimension open only when the
			// initializer that completes it follows immediately.
			openArray := ctype.IsArray(t) && t.Size == 0 && p.stream.At(lexer.Assign)
			if spec.Storage != scExtern && !openArray {
				p.fail(diagnostic.Type, "variable '%s' has incomplete type %s", name, ctype.String(t))
			}
		}
		ref := p.symtab.Add(symbol.Symbol{Name: name, Type: t, Storage: storage, Linkage: linkage, Depth: p.symtab.Ident.Depth()})
		p.symtab.Ident.Add(name, ref)
		if p.fn != nil && p.fn.cfg != nil {
			p.fn.cfg.RegisterLocal(ref)
		}

		if _, ok := p.stream.Consume(lexer.Assign); ok {
			target := irblock.DirectVar(ref, t, 0, true)
			cur = p.initializer(cur, target)
			p.symtab.Get(ref).Defined = true
		}

		if _, ok := p.stream.Consume(lexer.Comma); !ok {
			break
		}
	}
	p.expect(lexer.Semicolon)
	return cur
}
