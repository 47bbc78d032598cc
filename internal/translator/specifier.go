package translator

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/lexer"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// storageClass is the sole storage-class keyword read by
// declarationSpecifiers, a sentinel for "none" included.
type storageClass uint8

const (
	scNone storageClass = iota
	scAuto
	scRegister
	scStatic
	scExtern
	scTypedef
)

// declSpec is the result of parsing a declaration-specifiers list: the
// resolved base type (qualifiers already applied) and the storage class
// keyword actually present, if any.
type declSpec struct {
	Type    *ctype.Type
	Storage storageClass
}

// declarationSpecifiers reads zero or more storage-class, qualifier, and
// type-specifier tokens in any order. allowStorage is false in
// specifier-qualifier-list contexts (struct members, parameters, casts),
// where a storage class is a syntax error.
func (p *Parser) declarationSpecifiers(allowStorage bool) declSpec {
	var bits ctype.SpecBits
	var qual ctype.Qual
	storage := scNone
	haveStorage := false
	var userType *ctype.Type
	haveUserType := false

specLoop:
	for {
		tok := p.stream.Peek()
		switch tok.Kind {
		case lexer.KwAuto, lexer.KwRegister, lexer.KwStatic, lexer.KwExtern, lexer.KwTypedef:
			if !allowStorage {
				p.fail(diagnostic.Syntax, "storage class not allowed here")
			}
			if haveStorage {
				p.fail(diagnostic.Type, "duplicate storage class specifier")
			}
			haveStorage = true
			storage = storageFromKeyword(tok.Kind)
			p.stream.Next()

		case lexer.KwConst:
			if qual&ctype.Const != 0 {
				p.fail(diagnostic.Type, "duplicate 'const' qualifier")
			}
			qual |= ctype.Const
			p.stream.Next()
		case lexer.KwVolatile:
			if qual&ctype.Volatile != 0 {
				p.fail(diagnostic.Type, "duplicate 'volatile' qualifier")
			}
			qual |= ctype.Volatile
			p.stream.Next()

		case lexer.KwVoid:
			bits.Void++
			p.stream.Next()
		case lexer.KwChar:
			bits.Char++
			p.stream.Next()
		case lexer.KwShort:
			bits.Short++
			p.stream.Next()
		case lexer.KwInt:
			bits.Int++
			p.stream.Next()
		case lexer.KwSigned:
			bits.Signed++
			p.stream.Next()
		case lexer.KwUnsigned:
			bits.Unsigned++
			p.stream.Next()
		case lexer.KwLong:
			bits.Long++
			p.stream.Next()
		case lexer.KwFloat:
			bits.Float++
			p.stream.Next()
		case lexer.KwDouble:
			bits.Double++
			p.stream.Next()

		case lexer.KwStruct, lexer.KwUnion:
			if haveUserType || bits.Any() {
				p.fail(diagnostic.Type, "cannot combine a type specifier with struct/union")
			}
			userType = p.structOrUnionSpecifier()
			haveUserType = true

		case lexer.KwEnum:
			if haveUserType || bits.Any() {
				p.fail(diagnostic.Type, "cannot combine a type specifier with enum")
			}
			userType = p.enumSpecifier()
			haveUserType = true

		case lexer.Ident:
			if haveUserType || bits.Any() {
				break specLoop
			}
			ref, ok := p.symtab.Ident.Lookup(tok.Value)
			if !ok {
				break specLoop
			}
			sym := p.symtab.Get(ref)
			if sym.Storage != symbol.Typedef {
				break specLoop
			}
			userType = sym.Type
			haveUserType = true
			p.stream.Next()

		default:
			break specLoop
		}
	}

	if !haveUserType && !bits.Any() {
		p.fail(diagnostic.Syntax, "expected a type specifier")
	}

	var base *ctype.Type
	if haveUserType {
		base = userType
	} else {
		t, err := bits.Resolve(p.arena)
		if err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		base = t
	}

	if qual != 0 {
		base = ctype.WithQual(base, qual)
	}

	return declSpec{Type: base, Storage: storage}
}

func storageFromKeyword(k lexer.Kind) storageClass {
	switch k {
	case lexer.KwAuto:
		return scAuto
	case lexer.KwRegister:
		return scRegister
	case lexer.KwStatic:
		return scStatic
	case lexer.KwExtern:
		return scExtern
	case lexer.KwTypedef:
		return scTypedef
	default:
		return scNone
	}
}

// structOrUnionSpecifier parses `struct|union [tag] [{ members }]` and
// returns a tagged copy of the (possibly freshly created) canonical type,
// so qualifiers the caller applies don't mutate the shared definition.
func (p *Parser) structOrUnionSpecifier() *ctype.Type {
	isUnion := p.stream.Peek().Kind == lexer.KwUnion
	p.stream.Next()
	kind := ctype.Struct
	if isUnion {
		kind = ctype.Union
	}

	tag := ""
	if p.stream.At(lexer.Ident) {
		tag = p.stream.Next().Value
	}

	var t *ctype.Type
	if tag != "" {
		if ref, ok := p.symtab.Tag.Lookup(tag); ok {
			sym := p.symtab.Get(ref)
			if sym.Type.Kind != kind {
				p.fail(diagnostic.Symbol, "'%s' was declared as a different kind of tag", tag)
			}
			t = sym.Type
			if ctype.IsComplete(t) && p.stream.At(lexer.LBrace) {
				p.fail(diagnostic.Symbol, "redefinition of '%s'", tag)
			}
		} else {
			t = p.arena.NewAggregate(kind, tag)
			ref := p.symtab.Add(symbol.Symbol{Name: tag, Type: t, Storage: symbol.Definition})
			p.symtab.Tag.Add(tag, ref)
		}
	} else {
		t = p.arena.NewAggregate(kind, "")
	}

	if p.stream.At(lexer.LBrace) {
		p.memberDeclarationList(t)
	}

	return ctype.TaggedCopy(t)
}

// memberDeclarationList parses the brace-enclosed body of a struct/union,
// pushing a temporary namespace scope to detect duplicate member names.
func (p *Parser) memberDeclarationList(agg *ctype.Type) {
	p.expect(lexer.LBrace)
	p.symtab.PushScope()

	offset := 0
	maxSize := 0
	for !p.stream.At(lexer.RBrace) {
		spec := p.declarationSpecifiers(false)
		for {
			name, memberType := p.declarator(spec.Type)
			if name == "" {
				p.fail(diagnostic.Syntax, "expected a member name")
			}
			if !ctype.IsComplete(memberType) {
				p.fail(diagnostic.Type, "member '%s' has incomplete type", name)
			}
			if _, ok := p.symtab.Ident.LookupLocal(name); ok {
				p.fail(diagnostic.Symbol, "duplicate member '%s'", name)
			}
			ref := p.symtab.Add(symbol.Symbol{Name: name, Type: memberType})
			p.symtab.Ident.Add(name, ref)

			memberOffset := offset
			size := ctype.SizeOf(memberType)
			if agg.Kind == ctype.Union {
				memberOffset = 0
				if size > maxSize {
					maxSize = size
				}
			} else {
				offset += size
			}
			ctype.AddMember(agg, name, memberType, memberOffset)

			if _, ok := p.stream.Consume(lexer.Comma); !ok {
				break
			}
		}
		p.expect(lexer.Semicolon)
	}
	p.expect(lexer.RBrace)
	p.symtab.PopScope()

	size := offset
	if agg.Kind == ctype.Union {
		size = maxSize
	}
	ctype.Complete(agg, size)
}

// enumSpecifier parses `enum [tag] [{ enumerator-list }]`; enums always
// lower to signed int, and enumerators are added to ns_ident with storage
// EnumValue, auto-incrementing from 0 unless reset by `= const-expr`.
func (p *Parser) enumSpecifier() *ctype.Type {
	p.expect(lexer.KwEnum)
	tag := ""
	if p.stream.At(lexer.Ident) {
		tag = p.stream.Next().Value
	}

	enumType := p.arena.Int()

	var tagRef symbol.Ref
	haveTagRef := false
	if tag != "" {
		if ref, ok := p.symtab.Tag.Lookup(tag); ok {
			sym := p.symtab.Get(ref)
			if sym.Type.Kind != ctype.Signed {
				p.fail(diagnostic.Symbol, "'%s' was declared as a different kind of tag", tag)
			}
			if sym.EnumValue == 1 && p.stream.At(lexer.LBrace) {
				p.fail(diagnostic.Symbol, "redefinition of enum '%s'", tag)
			}
			tagRef, haveTagRef = ref, true
		} else {
			ref := p.symtab.Add(symbol.Symbol{Name: tag, Type: enumType, Storage: symbol.Definition})
			p.symtab.Tag.Add(tag, ref)
			tagRef, haveTagRef = ref, true
		}
	}

	if p.stream.At(lexer.LBrace) {
		p.stream.Next()
		value := int64(0)
		for {
			name := p.ident()
			if _, ok := p.stream.Consume(lexer.Assign); ok {
				v := p.constantExpression()
				value = v.ImmInt
			}
			ref := p.symtab.Add(symbol.Symbol{Name: name, Type: enumType, Storage: symbol.EnumValue, EnumValue: int(value)})
			p.symtab.Ident.Add(name, ref)
			value++

			if _, ok := p.stream.Consume(lexer.Comma); !ok {
				break
			}
			if p.stream.At(lexer.RBrace) {
				break
			}
		}
		p.expect(lexer.RBrace)

		if haveTagRef {
			p.symtab.Get(tagRef).EnumValue = 1
		}
	}

	return enumType
}
