package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
)

func TestCompileLambdaCreateReadsCapturesFromEnv(t *testing.T) {
	lam := &ast.Lambda{ID: 3, Params: []string{"x"}, Body: &ast.Variable{Name: "y"}}
	env := Env{}.Push("y")

	stmts := compileLambdaCreate(lam, env)

	lea, ok := stmts[0].(asm.Lea)
	require.True(t, ok, "expected a leading lea, got %#v", stmts[0])
	assert.Equal(t, asm.R9, lea.Dst)
	assert.Equal(t, lambdaLabel(3), lea.Label)

	var sawCaptureLoad bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok && instr.Op == "mov" {
			if mem, ok := instr.Operands[1].(asm.Mem); ok && mem.Base == asm.RSP {
				sawCaptureLoad = true
			}
		}
	}
	assert.True(t, sawCaptureLoad, "expected the captured variable to be read off the stack, got %#v", stmts)

	last, ok := stmts[len(stmts)-1].(asm.Instr)
	require.True(t, ok, "expected a trailing instruction, got %#v", stmts[len(stmts)-1])
	assert.Equal(t, "add", last.Op, "expected a trailing add advancing rbx past the record")
}

func TestCompileAppNonTailSynthesizesReturnAddressAndAssertsClosure(t *testing.T) {
	c := NewCompiler()
	app := &ast.App{Callee: &ast.Variable{Name: "f"}, Args: []ast.Expr{&ast.Lit{Kind: ast.LitInt, Int: 1}}}
	env := Env{}.Push("f")

	stmts := compileApp(app, c, env, false)

	lea, ok := stmts[0].(asm.Lea)
	require.True(t, ok, "expected a leading lea synthesizing the return address, got %#v", stmts[0])
	assert.Equal(t, asm.RAX, lea.Dst)

	pushInstr, ok := stmts[1].(asm.Instr)
	require.True(t, ok, "expected the synthesized address to be pushed immediately, got %#v", stmts[1])
	assert.Equal(t, "push", pushInstr.Op)

	var sawJne, sawIndirectJump, sawReturnLabel bool
	for _, s := range stmts {
		switch v := s.(type) {
		case asm.Jne:
			if v.Target == errLabel {
				sawJne = true
			}
		case asm.JmpIndirect:
			sawIndirectJump = true
		case asm.Label:
			if v.Name == lea.Label {
				sawReturnLabel = true
			}
		}
	}
	assert.True(t, sawJne, "expected the callee to be type-asserted as a closure")
	assert.True(t, sawIndirectJump, "expected an indirect jump through the closure's code pointer")
	assert.True(t, sawReturnLabel, "expected the return label to be defined at the call's continuation")
}

func TestCompileTailAppSlidesFrameDownByBase(t *testing.T) {
	c := NewCompiler()
	app := &ast.App{Callee: &ast.Variable{Name: "f"}, Args: []ast.Expr{
		&ast.Lit{Kind: ast.LitInt, Int: 1},
		&ast.Lit{Kind: ast.LitInt, Int: 2},
	}}
	// The function's own env already carries the closure scratch slot
	// (see compileFunctionBody), so base = 2 here models a frame with
	// one bound local (acc) sitting above that slot.
	env := Env{}.PushScratch().Push("acc")

	stmts := compileTailApp(app, c, env)

	// No new return address: a tail call never synthesizes one.
	for _, s := range stmts {
		if lea, ok := s.(asm.Lea); ok {
			t.Fatalf("tail call must not synthesize a new return address, found %#v", lea)
		}
	}

	var sawSlide bool
	for _, s := range stmts {
		instr, ok := s.(asm.Instr)
		if !ok || instr.Op != "mov" {
			continue
		}
		dst, ok := instr.Operands[0].(asm.Mem)
		if !ok || dst.Base != asm.RSP {
			continue
		}
		if dst.Disp == 8*int64(env.Len()) {
			sawSlide = true
		}
	}
	assert.True(t, sawSlide, "expected a slide write landing at rsp+8*base, got %#v", stmts)

	var sawFrameCollapse bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok && instr.Op == "add" {
			if dst, ok := instr.Operands[0].(asm.Reg); ok && dst.Name == asm.RSP {
				if i, ok := instr.Operands[1].(asm.Imm); ok && i.Value == uint64(8*env.Len()) {
					sawFrameCollapse = true
				}
			}
		}
	}
	assert.True(t, sawFrameCollapse, "expected rsp to collapse by 8*base after the slide, got %#v", stmts)

	var sawIndirectJump bool
	for _, s := range stmts {
		if _, ok := s.(asm.JmpIndirect); ok {
			sawIndirectJump = true
		}
	}
	assert.True(t, sawIndirectJump, "expected a trailing indirect jump through the slid closure's code pointer")
}

func TestCompileFunctionBodyFrameWordsCoverClosureParamsAndCaptures(t *testing.T) {
	c := NewCompiler()
	body := &ast.Variable{Name: "x"}
	stmts := compileFunctionBody("fn_f", []string{"x", "y"}, []string{"z"}, body, c)

	lbl, ok := stmts[0].(asm.Label)
	require.True(t, ok, "expected a leading function label, got %#v", stmts[0])
	assert.Equal(t, "fn_f", lbl.Name)

	_, ok = stmts[len(stmts)-1].(asm.Ret)
	assert.True(t, ok, "expected a trailing ret, got %#v", stmts[len(stmts)-1])

	// frameWords must cover the closure's own scratch slot (1) plus
	// params (2) plus captures (1): the closure slot is what the
	// tail-call slide in compileTailApp relies on env.Len() including.
	const wantFrameWords = 1 + 2 + 1
	var sawFrameAdd bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok && instr.Op == "add" {
			if dst, ok := instr.Operands[0].(asm.Reg); ok && dst.Name == asm.RSP {
				if i, ok := instr.Operands[1].(asm.Imm); ok && i.Value == uint64(8*wantFrameWords) {
					sawFrameAdd = true
				}
			}
		}
	}
	assert.True(t, sawFrameAdd, "expected the epilogue to discard closure+params+captures words, got %#v", stmts)
}
