package api

import (
	"fmt"
	"strings"

	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/symbol"
)

// DumpSymbols renders every resolved symbol's name, type, and storage
// class, one per line, for a -dump-symbols style CLI command.
func (r *Result) DumpSymbols() string {
	var sb strings.Builder
	for i := 0; i < r.Symbols.Len(); i++ {
		ref := symbol.RefAt(i)
		sym := r.Symbols.Get(ref)
		if sym.Name == "" {
			continue
		}
		fmt.Fprintf(&sb, "%-20s %-24s %s\n", sym.Name, ctype.String(sym.Type), storageName(sym.Storage))
	}
	return sb.String()
}

func storageName(s symbol.Storage) string {
	switch s {
	case symbol.Declaration:
		return "declaration"
	case symbol.Tentative:
		return "tentative"
	case symbol.Definition:
		return "definition"
	case symbol.Typedef:
		return "typedef"
	case symbol.EnumValue:
		return "enum-value"
	default:
		return "?"
	}
}

// DumpCFGs renders every translated CFG as a list of basic blocks and the
// edges between them, for a -dump-cfg style CLI command.
func (r *Result) DumpCFGs() string {
	var sb strings.Builder
	for i, cfg := range r.CFGs {
		name := "<file-scope init>"
		if cfg.Fun.IsValid() {
			name = r.Symbols.Get(cfg.Fun).Name
		}
		fmt.Fprintf(&sb, "CFG %d: %s\n", i, name)
		dumpBlock(&sb, cfg.Head, map[irblock.BlockID]bool{})
		sb.WriteByte('\n')
	}
	return sb.String()
}

func dumpBlock(sb *strings.Builder, b *irblock.Block, seen map[irblock.BlockID]bool) {
	if b == nil || seen[b.ID] {
		return
	}
	seen[b.ID] = true

	fmt.Fprintf(sb, "  block%d: %d op(s)\n", b.ID, len(b.Ops))
	switch {
	case b.Jump[0] != nil && b.Jump[1] != nil:
		fmt.Fprintf(sb, "    false -> block%d, true -> block%d\n", b.Jump[0].ID, b.Jump[1].ID)
	case b.Jump[0] != nil:
		fmt.Fprintf(sb, "    -> block%d\n", b.Jump[0].ID)
	default:
		sb.WriteString("    (terminal)\n")
	}

	dumpBlock(sb, b.Jump[0], seen)
	dumpBlock(sb, b.Jump[1], seen)
}
