package translator

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/lexer"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// declarator parses a declarator against base and returns the declared name
// (empty for an abstract declarator) and the full declared type.
//
// Parenthesized declarators like `(*f)(int)` need the type built by the
// postfix [array]/(params) chain OUTSIDE the parens to end up wrapped by
// whatever was found INSIDE the parens, not the other way around. This is
// threaded through a placeholder node: the inner recursive call receives an
// empty *ctype.Type it doesn't yet know the contents of, and once the outer
// postfix chain has computed the real type, that node's contents are
// overwritten in place.
func (p *Parser) declarator(base *ctype.Type) (string, *ctype.Type) {
	t := p.pointerPrefix(base)

	if _, ok := p.stream.Consume(lexer.LParen); ok {
		placeholder := &ctype.Type{}
		name, inner := p.declarator(placeholder)
		p.expect(lexer.RParen)
		full := p.typeSuffix(t)
		*placeholder = *full
		return name, inner
	}

	name := ""
	if p.stream.At(lexer.Ident) {
		name = p.stream.Next().Value
	}
	return name, p.typeSuffix(t)
}

// pointerPrefix consumes a `*[const|volatile]*` chain, innermost pointer
// first, the way the grammar's left-to-right token order implies.
func (p *Parser) pointerPrefix(base *ctype.Type) *ctype.Type {
	t := base
	for {
		if _, ok := p.stream.Consume(lexer.Star); !ok {
			return t
		}
		t = p.arena.Pointer(t)
		for {
			if _, ok := p.stream.Consume(lexer.KwConst); ok {
				t = ctype.WithQual(t, ctype.Const)
				continue
			}
			if _, ok := p.stream.Consume(lexer.KwVolatile); ok {
				t = ctype.WithQual(t, ctype.Volatile)
				continue
			}
			break
		}
	}
}

// typeSuffix parses the left-to-right [expr] / ( params ) postfix chain and
// composes it onto base. Recursing before wrapping means the rightmost
// dimension of a multi-dimensional array ends up as the innermost element
// type: `int a[3][4]` is array[3] of array[4] of int.
func (p *Parser) typeSuffix(base *ctype.Type) *ctype.Type {
	if _, ok := p.stream.Consume(lexer.LBracket); ok {
		count := 0
		haveCount := false
		if !p.stream.At(lexer.RBracket) {
			v := p.constantExpression()
			count = int(v.ImmInt)
			haveCount = true
			if count <= 0 {
				p.fail(diagnostic.Type, "array dimension must be a positive integer constant")
			}
		}
		p.expect(lexer.RBracket)
		elem := p.typeSuffix(base)
		if !haveCount {
			return p.arena.IncompleteArray(elem)
		}
		if !ctype.IsComplete(elem) {
			p.fail(diagnostic.Type, "array has an incomplete element type")
		}
		return p.arena.ArrayOf(elem, count)
	}

	if _, ok := p.stream.Consume(lexer.LParen); ok {
		params := p.parameterList()
		p.expect(lexer.RParen)
		ret := p.typeSuffix(base)
		return p.arena.FunctionOf(ret, params)
	}

	return base
}

// parameterList parses a function declarator's parameter-type-list:
// `(void)` as explicitly zero parameters, empty parens likewise (K&R-style
// unspecified parameter lists are not modeled), and a trailing `...` as
// the vararg sentinel member.
func (p *Parser) parameterList() []ctype.Member {
	if p.stream.At(lexer.KwVoid) && p.stream.PeekN(1).Kind == lexer.RParen {
		p.stream.Next()
		return nil
	}
	if p.stream.At(lexer.RParen) {
		return nil
	}

	var params []ctype.Member
	for {
		if _, ok := p.stream.Consume(lexer.Ellipsis); ok {
			if len(params) == 0 {
				p.fail(diagnostic.Syntax, "expected a parameter before '...'")
			}
			params = append(params, ctype.Member{Name: "...", Type: nil})
			break
		}

		spec := p.declarationSpecifiers(false)
		name, t := p.declarator(spec.Type)
		if ctype.IsArray(t) {
			// array parameters decay to pointer-to-element, per C's parameter
			// adjustment rule.
			t = p.arena.Pointer(t.Next)
		}
		params = append(params, ctype.Member{Name: name, Type: t})

		if _, ok := p.stream.Consume(lexer.Comma); !ok {
			break
		}
		if p.stream.At(lexer.RParen) {
			p.fail(diagnostic.Syntax, "expected a parameter after ','")
		}
	}
	return params
}

// typeName parses a specifier-qualifier-list followed by an abstract
// declarator, the grammar used inside casts, sizeof(...), and va_arg(...).
func (p *Parser) typeName() *ctype.Type {
	spec := p.declarationSpecifiers(false)
	_, t := p.declarator(spec.Type)
	return t
}

// tokenStartsTypeName reports whether tok can begin a type-name: a
// type-specifier keyword, a qualifier, or an identifier bound to a typedef
// name in the current scope. Used for the cast-vs-parenthesized-expression
// and sizeof-operand disambiguations, both of which need exactly two
// tokens of lookahead to resolve.
func (p *Parser) tokenStartsTypeName(tok lexer.Token) bool {
	switch tok.Kind {
	case lexer.KwVoid, lexer.KwChar, lexer.KwShort, lexer.KwInt, lexer.KwLong,
		lexer.KwSigned, lexer.KwUnsigned, lexer.KwFloat, lexer.KwDouble,
		lexer.KwStruct, lexer.KwUnion, lexer.KwEnum,
		lexer.KwConst, lexer.KwVolatile:
		return true
	case lexer.Ident:
		ref, ok := p.symtab.Ident.Lookup(tok.Value)
		if !ok {
			return false
		}
		return p.symtab.Get(ref).Storage == symbol.Typedef
	default:
		return false
	}
}

// startsDeclarationSpecifier is tokenStartsTypeName applied to the current
// token, additionally accepting a leading storage-class keyword — the
// lookahead used to tell a declaration-statement from an
// expression-statement at the start of a block-item.
func (p *Parser) startsDeclarationSpecifier() bool {
	tok := p.stream.Peek()
	switch tok.Kind {
	case lexer.KwAuto, lexer.KwRegister, lexer.KwStatic, lexer.KwExtern, lexer.KwTypedef:
		return true
	default:
		return p.tokenStartsTypeName(tok)
	}
}
