package translator

import (
	"fmt"

	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/lexer"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// TranslationUnit is the result of translating one source file: a CFG per
// external definition (functions get a Body; file-scope initializers only
// populate Head), plus the symbol table and type arena that own everything
// referenced from those CFGs.
type TranslationUnit struct {
	CFGs    []*irblock.CFG
	Symbols *symbol.Table
	Types   *ctype.Arena
}

// Parser is the translator core: single-pass, recursive-descent, threading
// one "current block" forward through expression and statement parsing.
type Parser struct {
	stream *lexer.Stream
	source string

	arena  *ctype.Arena
	symtab *symbol.Table
	diags  *diagnostic.DiagnosticList
	alloc  *irblock.Allocator

	fn      *funcContext // non-nil while parsing a function body
	tempSeq int          // counter for newTemp's compiler-generated names
}

// New creates a translator for the given source.
func New(source string) *Parser {
	return &Parser{
		stream: lexer.NewStream(source),
		source: source,
		arena:  ctype.NewArena(),
		symtab: symbol.NewTable(),
		diags:  diagnostic.NewDiagnosticList(source),
		alloc:  irblock.NewAllocator(),
	}
}

// Translate runs parse() to completion and returns the translation unit
// together with every diagnostic raised. The returned error is nil only
// when no diagnostic reached Error severity (or Warning under -Werror).
func (p *Parser) Translate() (*TranslationUnit, error) {
	tu := &TranslationUnit{Symbols: p.symtab, Types: p.arena}

	for !p.stream.At(lexer.EOF) {
		cfg := p.parseOneExternalDeclaration()
		if cfg != nil {
			tu.CFGs = append(tu.CFGs, cfg)
		}
	}

	return tu, p.diags.Err()
}

// Diagnostics exposes the accumulated diagnostic list, e.g. for a CLI
// driver that wants to print every error rather than just the first.
func (p *Parser) Diagnostics() *diagnostic.DiagnosticList {
	return p.diags
}

// parseAbort unwinds the call stack to the top-level declaration boundary
// when a fatal diagnostic is raised, matching the "declaration is the
// fault-isolation unit" design note: no partial IR for that declaration is
// kept, and parsing resumes at the next external declaration.
type parseAbort struct {
	diag *diagnostic.Diagnostic
}

// fail records a diagnostic at the current token's position and aborts the
// current top-level declaration.
func (p *Parser) fail(cat diagnostic.Category, format string, args ...any) {
	p.failAt(p.stream.Peek().Start, cat, format, args...)
}

// failAt records a diagnostic at an explicit byte offset and aborts.
func (p *Parser) failAt(offset int, cat diagnostic.Category, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d := diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Category: cat,
		Message:  msg,
		Range:    p.diags.MakeRange(offset, offset+1),
	}
	p.diags.Add(d)
	panic(parseAbort{diag: &d})
}

// warn records a non-fatal diagnostic and continues.
func (p *Parser) warn(cat diagnostic.Category, offset int, format string, args ...any) {
	p.diags.AddWarning(cat, offset, fmt.Sprintf(format, args...))
}

func (p *Parser) parseOneExternalDeclaration() (cfg *irblock.CFG) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseAbort); ok {
				p.syncToNextDeclaration()
				cfg = nil
				return
			}
			panic(r)
		}
	}()

	return p.declaration()
}

// syncToNextDeclaration discards tokens until past the next top-level
// ';' or a balanced '}', so one bad declaration does not cascade into
// spurious errors for the rest of the file.
func (p *Parser) syncToNextDeclaration() {
	depth := 0
	for {
		tok := p.stream.Peek()
		if tok.Kind == lexer.EOF {
			return
		}
		if tok.Kind == lexer.LBrace {
			depth++
		}
		if tok.Kind == lexer.RBrace {
			if depth == 0 {
				p.stream.Next()
				return
			}
			depth--
		}
		if tok.Kind == lexer.Semicolon && depth == 0 {
			p.stream.Next()
			return
		}
		p.stream.Next()
	}
}

func (p *Parser) expect(kind lexer.Kind) lexer.Token {
	tok, ok := p.stream.Consume(kind)
	if !ok {
		p.fail(diagnostic.Syntax, "expected %s, got %s", kind, p.stream.Peek().Kind)
	}
	return tok
}

func (p *Parser) ident() string {
	tok := p.expect(lexer.Ident)
	return tok.Value
}
