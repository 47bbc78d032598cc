package translator

import (
	"codeberg.org/saruga/c89front/internal/ctype"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/internal/eval"
	"codeberg.org/saruga/c89front/internal/irblock"
	"codeberg.org/saruga/c89front/internal/lexer"
)

// block parses a compound-statement, pushing a nested scope for the
// declarations introduced inside it (labels are recorded per function, not
// per scope).
func (p *Parser) block(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	p.expect(lexer.LBrace)
	p.symtab.PushScope()
	for !p.stream.At(lexer.RBrace) && !p.stream.At(lexer.EOF) {
		if p.startsDeclarationSpecifier() {
			cur = p.localDeclaration(cur)
		} else {
			cur = p.statement(cur, cursors)
		}
	}
	p.expect(lexer.RBrace)
	p.symtab.PopScope()
	return cur
}

func (p *Parser) requireScalarCondition(cond irblock.Var) {
	if !ctype.IsScalar(cond.Type) {
		p.fail(diagnostic.Type, "controlling expression must have scalar type, got %s", ctype.String(cond.Type))
	}
}

// condBranch wires cur's outgoing edges for a parsed condition. An integer
// immediate condition folds to a single unconditional successor, so a
// constant-true or constant-false `if`/`while`/`do`/`for` never produces a
// two-way branch; anything else gets the uniform Jump[1]=true/Jump[0]=false
// pair.
func (p *Parser) condBranch(cur *irblock.Block, cond irblock.Var, falseTarget, trueTarget *irblock.Block) {
	cur.Expr = cond
	if cond.IsImmediate() && ctype.IsInteger(cond.Type) {
		if cond.ImmInt != 0 {
			cur.SetUnconditional(trueTarget)
		} else {
			cur.SetUnconditional(falseTarget)
		}
		return
	}
	cur.SetConditional(falseTarget, trueTarget)
}

// statement parses one statement, threading the current block forward and
// returning the block execution continues in afterward. A statement whose
// only effect is an unconditional transfer of control (break/continue/
// return/goto) ends cur (with an edge to the break or continue target, or
// as a terminal block for return and goto) and hands back a freshly
// allocated, intentionally unreferenced block for whatever source text
// follows — an orphan, legal the same way dead code after `return` is.
func (p *Parser) statement(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	tok := p.stream.Peek()

	if tok.Kind == lexer.Ident && p.stream.PeekN(1).Kind == lexer.Colon {
		name := p.stream.Next().Value
		p.stream.Next()
		if p.fn != nil {
			if p.fn.labels == nil {
				p.fn.labels = map[string]*irblock.Block{}
			}
			p.fn.labels[name] = cur
		}
		return p.statement(cur, cursors)
	}

	switch tok.Kind {
	case lexer.Semicolon:
		p.stream.Next()
		return cur

	case lexer.LBrace:
		return p.block(cur, cursors)

	case lexer.KwIf:
		return p.ifStatement(cur, cursors)

	case lexer.KwWhile:
		return p.whileStatement(cur, cursors)

	case lexer.KwDo:
		return p.doStatement(cur, cursors)

	case lexer.KwFor:
		return p.forStatement(cur, cursors)

	case lexer.KwSwitch:
		return p.switchStatement(cur, cursors)

	case lexer.KwCase:
		p.stream.Next()
		val := p.constantExpression()
		p.expect(lexer.Colon)
		if cursors.Switch == nil {
			p.fail(diagnostic.Semantic, "'case' statement not in a switch statement")
		}
		label := p.alloc.NewBlock()
		cur.SetUnconditional(label)
		cursors.Switch.AddCase(val, label)
		return label

	case lexer.KwDefault:
		p.stream.Next()
		p.expect(lexer.Colon)
		if cursors.Switch == nil {
			p.fail(diagnostic.Semantic, "'default' statement not in a switch statement")
		}
		if cursors.Switch.DefaultLabel != nil {
			p.fail(diagnostic.Semantic, "multiple 'default' labels in one switch")
		}
		label := p.alloc.NewBlock()
		cur.SetUnconditional(label)
		cursors.Switch.DefaultLabel = label
		return label

	case lexer.KwBreak:
		p.stream.Next()
		p.expect(lexer.Semicolon)
		if cursors.BreakTarget == nil {
			p.fail(diagnostic.Semantic, "'break' statement not in a loop or switch statement")
		}
		cur.SetUnconditional(cursors.BreakTarget)
		return p.alloc.NewBlock()

	case lexer.KwContinue:
		p.stream.Next()
		p.expect(lexer.Semicolon)
		if cursors.ContinueTarget == nil {
			p.fail(diagnostic.Semantic, "'continue' statement not in a loop")
		}
		cur.SetUnconditional(cursors.ContinueTarget)
		return p.alloc.NewBlock()

	case lexer.KwReturn:
		p.stream.Next()
		var retVal *irblock.Var
		if !p.stream.At(lexer.Semicolon) {
			v, newCur := p.expression(cur)
			cur = newCur
			retVal = &v
		}
		p.expect(lexer.Semicolon)
		declared := p.arena.Void()
		if p.fn != nil {
			declared = p.fn.returnType
		}
		if err := eval.EvalReturn(cur, declared, retVal); err != nil {
			p.fail(diagnostic.Type, "%s", err.Error())
		}
		return p.alloc.NewBlock()

	case lexer.KwGoto:
		p.stream.Next()
		name := p.ident()
		p.expect(lexer.Semicolon)
		if p.fn != nil {
			if p.fn.labels == nil {
				p.fn.labels = map[string]*irblock.Block{}
			}
			if _, ok := p.fn.labels[name]; !ok {
				p.fn.labels[name] = p.alloc.NewBlock()
			}
		}
		return p.alloc.NewBlock()

	default:
		_, newCur := p.expression(cur)
		p.expect(lexer.Semicolon)
		return newCur
	}
}

func (p *Parser) ifStatement(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	p.stream.Next()
	p.expect(lexer.LParen)
	cond, cur2 := p.expression(cur)
	cur = cur2
	p.expect(lexer.RParen)
	p.requireScalarCondition(cond)

	trueBlock := p.alloc.NewBlock()
	next := p.alloc.NewBlock()

	trueEnd := p.statement(trueBlock, cursors)
	trueEnd.SetUnconditional(next)

	// Without an else the false edge goes straight to next; cur's edges are
	// wired only now that the else's presence is known.
	falseTarget := next
	if _, ok := p.stream.Consume(lexer.KwElse); ok {
		falseTarget = p.alloc.NewBlock()
		falseEnd := p.statement(falseTarget, cursors)
		falseEnd.SetUnconditional(next)
	}
	p.condBranch(cur, cond, falseTarget, trueBlock)

	return next
}

func (p *Parser) whileStatement(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	p.stream.Next()
	p.expect(lexer.LParen)
	header := p.alloc.NewBlock()
	cur.SetUnconditional(header)
	cond, condEnd := p.expression(header)
	p.expect(lexer.RParen)
	p.requireScalarCondition(cond)

	bodyBlock := p.alloc.NewBlock()
	next := p.alloc.NewBlock()
	p.condBranch(condEnd, cond, next, bodyBlock)

	loopCursors := pushLoopTargets(cursors, next, header)
	bodyEnd := p.statement(bodyBlock, loopCursors)
	bodyEnd.SetUnconditional(header)

	return next
}

func (p *Parser) doStatement(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	p.stream.Next()
	bodyBlock := p.alloc.NewBlock()
	cur.SetUnconditional(bodyBlock)

	condCheck := p.alloc.NewBlock()
	next := p.alloc.NewBlock()

	loopCursors := pushLoopTargets(cursors, next, condCheck)
	bodyEnd := p.statement(bodyBlock, loopCursors)
	bodyEnd.SetUnconditional(condCheck)

	p.expect(lexer.KwWhile)
	p.expect(lexer.LParen)
	cond, condEnd := p.expression(condCheck)
	p.expect(lexer.RParen)
	p.expect(lexer.Semicolon)
	p.requireScalarCondition(cond)

	p.condBranch(condEnd, cond, next, bodyBlock)

	return next
}

func (p *Parser) forStatement(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	p.stream.Next()
	p.expect(lexer.LParen)

	p.symtab.PushScope()
	if _, ok := p.stream.Consume(lexer.Semicolon); !ok {
		if p.startsDeclarationSpecifier() {
			cur = p.localDeclaration(cur)
		} else {
			_, newCur := p.expression(cur)
			cur = newCur
			p.expect(lexer.Semicolon)
		}
	}

	header := p.alloc.NewBlock()
	cur.SetUnconditional(header)

	bodyBlock := p.alloc.NewBlock()
	postBlock := p.alloc.NewBlock()
	next := p.alloc.NewBlock()

	if p.stream.At(lexer.Semicolon) {
		header.SetUnconditional(bodyBlock)
	} else {
		cond, condEnd := p.expression(header)
		p.requireScalarCondition(cond)
		p.condBranch(condEnd, cond, next, bodyBlock)
	}
	p.expect(lexer.Semicolon)

	if p.stream.At(lexer.RParen) {
		postBlock.SetUnconditional(header)
	} else {
		_, postEnd := p.expression(postBlock)
		postEnd.SetUnconditional(header)
	}
	p.expect(lexer.RParen)

	loopCursors := pushLoopTargets(cursors, next, postBlock)
	bodyEnd := p.statement(bodyBlock, loopCursors)
	bodyEnd.SetUnconditional(postBlock)

	p.symtab.PopScope()
	return next
}

// switchStatement parses the body first, which as a side effect of its
// `case`/`default` labels populates switchCtx, and only then emits the
// cascade of equality comparisons the switch value is tested against —
// the cascade cannot be built until every case in the body is known.
func (p *Parser) switchStatement(cur *irblock.Block, cursors irblock.Cursors) *irblock.Block {
	p.stream.Next()
	p.expect(lexer.LParen)
	val, cur2 := p.expression(cur)
	cur = cur2
	p.expect(lexer.RParen)

	switchCtx := &irblock.SwitchContext{}
	breakTarget := p.alloc.NewBlock()
	bodyCursors := pushSwitch(cursors, switchCtx, breakTarget)

	bodyEntry := p.alloc.NewBlock()
	bodyEnd := p.statement(bodyEntry, bodyCursors)
	bodyEnd.SetUnconditional(breakTarget)

	fallthroughTarget := breakTarget
	if switchCtx.DefaultLabel != nil {
		fallthroughTarget = switchCtx.DefaultLabel
	}

	cascadeCur := cur
	for i, c := range switchCtx.Cases {
		eq := p.binOp(cascadeCur, irblock.OpEq, val, c.Value)
		cascadeCur.Expr = eq
		if i == len(switchCtx.Cases)-1 {
			// The last comparison's false edge is the fallthrough target itself.
			cascadeCur.SetConditional(fallthroughTarget, c.Label)
			return breakTarget
		}
		next := p.alloc.NewBlock()
		cascadeCur.SetConditional(next, c.Label)
		cascadeCur = next
	}
	cascadeCur.SetUnconditional(fallthroughTarget)

	return breakTarget
}
