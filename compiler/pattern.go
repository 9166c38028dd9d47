package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
	"github.com/skx/mylang-compiler/value"
)

// assertTypeAtOffset checks the tag of the value sitting at
// [rsp+8*offset], jumping to mismatch rather than the shared error
// trap when it doesn't match — a failed pattern is not a runtime
// type error, just the next arm's turn.
func assertTypeAtOffset(offset int, t value.UnaryType, mismatch string) []Stmt {
	return []Stmt{
		mov(reg(asm.R9), mem(asm.RSP, int64(8*offset))),
		and(reg(asm.R9), immHex(value.MaskOf(t))),
		cmp(reg(asm.R9), immHex(value.TagOf(t))),
		jne(mismatch),
	}
}

// compilePattern lowers one pattern against the value at
// [rsp+8*valueOffset]. On success it falls through having pushed the
// pattern's variable bindings plus a scratch slot for each
// destructured cons/box component, all recorded in the returned
// extension of env; on failure it jumps to mismatch with the stack restored to
// exactly its state on entry to this call — callers may rely on that
// invariant without knowing anything about this pattern's internals.
func compilePattern(pat ast.Pattern, c *Compiler, env Env, valueOffset int, mismatch string) ([]Stmt, Env) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return nil, env

	case *ast.VariablePattern:
		out := []Stmt{
			mov(reg(asm.RAX), mem(asm.RSP, int64(8*valueOffset))),
			push(reg(asm.RAX)),
		}
		return out, env.Push(p.Name)

	case *ast.LitPattern:
		return compileLitPattern(c, p.Value, valueOffset, mismatch), env

	case *ast.ConsPattern:
		return compileConsPattern(p, c, env, valueOffset, mismatch)

	case *ast.BoxPattern:
		return compileBoxPattern(p, c, env, valueOffset, mismatch)

	case *ast.AndPattern:
		return compileAndPattern(p, c, env, valueOffset, mismatch)
	}
	return nil, env
}

// compileLitPattern compares the value at valueOffset against a
// literal. Strings compare structurally; everything else is a single
// encoded-bits comparison.
func compileLitPattern(c *Compiler, lit *ast.Lit, valueOffset int, mismatch string) []Stmt {
	if lit.Kind == ast.LitString {
		out := []Stmt{mov(reg(asm.RAX), mem(asm.RSP, int64(8*valueOffset)))}
		if lit.Str == "" {
			out = append(out, cmp(reg(asm.RAX), immHex(value.EmptyStringTag)), jne(mismatch))
			return out
		}
		out = append(out, asm.Lea{Dst: asm.RCX, Label: c.stringLiteralLabel(lit.Str), Tag: value.StringType.Tag})
		return append(out, c.compileStringEqual(asm.RAX, asm.RCX, mismatch)...)
	}
	return []Stmt{
		mov(reg(asm.R9), mem(asm.RSP, int64(8*valueOffset))),
		cmp(reg(asm.R9), immHex(encodeLit(lit))),
		jne(mismatch),
	}
}

// compileConsPattern asserts a cons, loads car and cdr into fresh
// stack slots, and matches each sub-pattern against its own slot.
// Each sub-match gets a private failure trampoline that unwinds only
// what this call has pushed so far before forwarding to mismatch.
func compileConsPattern(p *ast.ConsPattern, c *Compiler, env Env, valueOffset int, mismatch string) ([]Stmt, Env) {
	out := assertTypeAtOffset(valueOffset, value.ConsType, mismatch)

	out = append(out,
		mov(reg(asm.R9), mem(asm.RSP, int64(8*valueOffset))),
		xorOp(reg(asm.R9), immHex(value.ConsType.Tag)),
		mov(reg(asm.RAX), mem(asm.R9, 8)), // car
		push(reg(asm.RAX)),
	)
	carEnv := env.PushScratch()
	carFail := c.freshLabel("match_cons_car_fail")
	carStmts, afterCar := compilePattern(p.Car, c, carEnv, 0, carFail)
	out = append(out, carStmts...)

	out = append(out,
		mov(reg(asm.R9), mem(asm.RSP, int64(8*(valueOffset+afterCar.Len()-env.Len())))),
		xorOp(reg(asm.R9), immHex(value.ConsType.Tag)),
		mov(reg(asm.RAX), mem(asm.R9, 0)), // cdr
		push(reg(asm.RAX)),
	)
	cdrEnv := afterCar.PushScratch()
	cdrFail := c.freshLabel("match_cons_cdr_fail")
	cdrStmts, afterCdr := compilePattern(p.Cdr, c, cdrEnv, 0, cdrFail)
	out = append(out, cdrStmts...)

	cont := c.freshLabel("match_cons_ok")
	out = append(out, jmp(cont))
	out = append(out, label(carFail), add(reg(asm.RSP), imm(8)), jmp(mismatch))
	out = append(out, label(cdrFail), add(reg(asm.RSP), imm(int64(8*(afterCar.Len()-env.Len()+1)))), jmp(mismatch))
	out = append(out, label(cont))

	return out, afterCdr
}

// compileBoxPattern asserts a box, loads its contents into a fresh
// slot, and matches the sub-pattern against it.
func compileBoxPattern(p *ast.BoxPattern, c *Compiler, env Env, valueOffset int, mismatch string) ([]Stmt, Env) {
	out := assertTypeAtOffset(valueOffset, value.BoxType, mismatch)

	out = append(out,
		mov(reg(asm.RAX), mem(asm.RSP, int64(8*valueOffset))),
		xorOp(reg(asm.RAX), immHex(value.BoxType.Tag)),
		mov(reg(asm.RAX), mem(asm.RAX, 0)),
		push(reg(asm.RAX)),
	)
	subEnv := env.PushScratch()
	subFail := c.freshLabel("match_box_fail")
	subStmts, after := compilePattern(p.Sub, c, subEnv, 0, subFail)
	out = append(out, subStmts...)

	cont := c.freshLabel("match_box_ok")
	out = append(out, jmp(cont))
	out = append(out, label(subFail), add(reg(asm.RSP), imm(8)), jmp(mismatch))
	out = append(out, label(cont))

	return out, after
}

// compileAndPattern matches Left and Right against the same value.
// Left forwards directly to mismatch since nothing has been pushed
// yet; Right gets a trampoline that unwinds whatever Left pushed, or
// forwards directly to mismatch too when Left pushed nothing.
func compileAndPattern(p *ast.AndPattern, c *Compiler, env Env, valueOffset int, mismatch string) ([]Stmt, Env) {
	leftStmts, afterLeft := compilePattern(p.Left, c, env, valueOffset, mismatch)
	delta := afterLeft.Len() - env.Len()

	rightFail := mismatch
	if delta != 0 {
		rightFail = c.freshLabel("match_and_fail")
	}
	rightStmts, afterRight := compilePattern(p.Right, c, afterLeft, valueOffset+delta, rightFail)

	out := append(leftStmts, rightStmts...)
	if delta == 0 {
		return out, afterRight
	}

	cont := c.freshLabel("match_and_ok")
	out = append(out, jmp(cont))
	out = append(out, label(rightFail), add(reg(asm.RSP), imm(int64(8*delta))), jmp(mismatch))
	out = append(out, label(cont))
	return out, afterRight
}

// compileMatch lowers a match expression: the scrutinee is evaluated
// once and pushed, then each arm's pattern is tried in turn against
// that slot. The first arm whose pattern matches runs its body (in
// the match's own tail position) and the rest are skipped; if no arm
// matches, the generated code falls into the shared error trap.
func compileMatch(m *ast.Match, c *Compiler, env Env, tail bool) []Stmt {
	out := compileExpr(m.Scrutinee, c, env, false)
	out = append(out, push(reg(asm.RAX)))
	env = env.PushScratch()

	doneLabel := c.freshLabel("match_done")
	for _, arm := range m.Arms {
		nextLabel := c.freshLabel("match_arm")
		patStmts, armEnv := compilePattern(arm.Pattern, c, env, 0, nextLabel)
		out = append(out, patStmts...)
		out = append(out, compileExpr(arm.Body, c, armEnv, tail)...)

		bound := armEnv.Len() - env.Len()
		out = append(out, add(reg(asm.RSP), imm(int64(8*bound))))
		out = append(out, jmp(doneLabel))
		out = append(out, label(nextLabel))
	}
	out = append(out, jmp(errLabel)) // no arm matched

	out = append(out, label(doneLabel))
	out = append(out, add(reg(asm.RSP), imm(8))) // drop the scrutinee slot
	return out
}
