package compiler

import (
	"fmt"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
	"github.com/skx/mylang-compiler/value"
)

// definitionLabel and lambdaLabel name a function's code block: one
// per top-level (define ...) form and one per anonymous lambda,
// keyed by the unique ID the ast package assigns at build time.
func definitionLabel(name string) string { return "fn_" + name }
func lambdaLabel(id int) string          { return fmt.Sprintf("lambda_%d", id) }

// compileFunctionBody lowers one function's code block: load the
// closure from [rsp+8*nargs], copy each capture into a fresh stack
// slot extending env, lower the body in tail position, then discard
// every word this call pushed (args, closure, captures) and return.
func compileFunctionBody(label string, params []string, captures []string, body ast.Expr, c *Compiler) []Stmt {
	out := []Stmt{asm.Label{Name: label}}

	// The closure pointer occupies its own stack slot below the args
	// (see compileApp/compileTailApp), so it gets a scratch slot in env
	// too, pushed first — otherwise a tail call's base := env.Len()
	// under-counts by one and the slide overwrites the wrong word.
	env := Env{}.PushScratch()
	for _, p := range params {
		env = env.Push(p)
	}
	nargs := len(params)

	out = append(out,
		mov(reg(asm.R10), mem(asm.RSP, int64(8*nargs))),
		xorOp(reg(asm.R10), immHex(value.ClosureType.Tag)),
	)
	for i, name := range captures {
		out = append(out,
			mov(reg(asm.RAX), mem(asm.R10, int64(8+8*i))),
			push(reg(asm.RAX)),
		)
		env = env.Push(name)
	}

	out = append(out, compileExpr(body, c, env, true)...)

	out = append(out, add(reg(asm.RSP), imm(int64(8*env.Len()))), ret())
	return out
}

// compileLambdaCreate implements a lambda literal's evaluation site:
// allocate a heap closure record (code address, then one word per
// captured free variable, read from the current env) and return its
// tagged pointer in rax.
func compileLambdaCreate(lam *ast.Lambda, env Env) []Stmt {
	lbl := lambdaLabel(lam.ID)
	captures := ast.FreeVariables(lam)

	out := []Stmt{
		asm.Lea{Dst: asm.R9, Label: lbl},
		mov(mem(asm.RBX, 0), reg(asm.R9)),
	}
	for i, name := range captures {
		off, ok := env.Lookup(name)
		if !ok {
			continue // unreachable: name is free in lam, so some enclosing scope binds it
		}
		out = append(out,
			mov(reg(asm.R9), mem(asm.RSP, int64(8*off))),
			mov(mem(asm.RBX, int64(8+8*i)), reg(asm.R9)),
		)
	}
	out = append(out,
		mov(reg(asm.RAX), reg(asm.RBX)),
		or(reg(asm.RAX), immHex(value.ClosureType.Tag)),
		add(reg(asm.RBX), imm(int64(8+8*len(captures)))),
	)
	return out
}

// compileApp lowers a function application, dispatching to the
// tail-call stack-slide when the call sits in tail position.
func compileApp(app *ast.App, c *Compiler, env Env, tail bool) []Stmt {
	if tail {
		return compileTailApp(app, c, env)
	}

	retLabel := c.freshLabel("return_to")
	out := []Stmt{
		asm.Lea{Dst: asm.RAX, Label: retLabel},
		push(reg(asm.RAX)),
	}
	env = env.PushScratch()

	out = append(out, compileExpr(app.Callee, c, env, false)...)
	out = append(out, assertType(value.ClosureType)...)
	out = append(out, push(reg(asm.RAX)))
	env = env.PushScratch()

	for _, a := range app.Args {
		out = append(out, compileExpr(a, c, env, false)...)
		out = append(out, push(reg(asm.RAX)))
		env = env.PushScratch()
	}

	out = append(out,
		mov(reg(asm.R9), mem(asm.RSP, int64(8*len(app.Args)))),
		xorOp(reg(asm.R9), immHex(value.ClosureType.Tag)),
		mov(reg(asm.R9), mem(asm.R9, 0)),
		jmpIndirect(asm.R9),
		label(retLabel),
	)
	return out
}

// compileTailApp lowers a tail call: the new closure-and-args block
// is pushed above the current frame, then slid down over it so it
// lands directly on top of the already-live return address, and the
// current function's own frame never grows.
func compileTailApp(app *ast.App, c *Compiler, env Env) []Stmt {
	base := env.Len()
	var out []Stmt

	out = append(out, compileExpr(app.Callee, c, env, false)...)
	out = append(out, assertType(value.ClosureType)...)
	out = append(out, push(reg(asm.RAX)))
	env = env.PushScratch()

	for _, a := range app.Args {
		out = append(out, compileExpr(a, c, env, false)...)
		out = append(out, push(reg(asm.RAX)))
		env = env.PushScratch()
	}

	total := len(app.Args) + 1 // closure + args
	for i := total - 1; i >= 0; i-- {
		out = append(out,
			mov(reg(asm.R9), mem(asm.RSP, int64(8*i))),
			mov(mem(asm.RSP, int64(8*(i+base))), reg(asm.R9)),
		)
	}
	out = append(out, add(reg(asm.RSP), imm(int64(8*base))))

	out = append(out,
		mov(reg(asm.R9), mem(asm.RSP, int64(8*len(app.Args)))),
		xorOp(reg(asm.R9), immHex(value.ClosureType.Tag)),
		mov(reg(asm.R9), mem(asm.R9, 0)),
		jmpIndirect(asm.R9),
	)
	return out
}
