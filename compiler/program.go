package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
	"github.com/skx/mylang-compiler/value"
)

// Compile lowers a complete program to the full pseudo-instruction
// stream: declarations, the entry point, every function's code block,
// the shared error trap, and the interned string-literal data.
func Compile(prog *ast.Program) ([]Stmt, error) {
	if err := checkProgram(prog); err != nil {
		return nil, err
	}

	c := NewCompiler()

	out := []Stmt{
		asm.Global{Name: entryLabel},
		asm.Extern{Name: "read_byte"},
		asm.Extern{Name: "peek_byte"},
		asm.Extern{Name: "write_byte"},
		asm.Extern{Name: "raise_error"},
		asm.Section{Name: "text"},

		label(entryLabel),
		push(reg(asm.RBX)),
		push(reg(asm.R15)),
		mov(reg(asm.RBX), reg(asm.RDI)),
	}

	closureStmts, topEnv := compileTopLevelClosures(prog, c)
	out = append(out, closureStmts...)

	out = append(out, compileExpr(prog.Main, c, topEnv, false)...)

	out = append(out,
		add(reg(asm.RSP), imm(int64(8*len(prog.Defines)))),
		pop(asm.R15),
		pop(asm.RBX),
		ret(),
	)

	for _, def := range prog.Defines {
		out = append(out, compileFunctionBody(definitionLabel(def.Name), def.Params, defCaptures(def), def.Body, c)...)
	}
	for _, lam := range ast.AllLambdas(prog) {
		out = append(out, compileFunctionBody(lambdaLabel(lam.ID), lam.Params, ast.FreeVariables(lam), lam.Body, c)...)
	}

	out = append(out, emitErrorTrap()...)
	out = append(out, c.compileDataSection()...)

	return out, nil
}

// defCaptures computes a top-level definition's free variables as if
// it were a lambda with no enclosing scope: every name it references
// besides its own parameters must be a sibling top-level definition.
func defCaptures(def *ast.FunctionDefinition) []string {
	return ast.FreeVariables(&ast.Lambda{Params: def.Params, Body: def.Body})
}

// compileTopLevelClosures allocates one heap closure record per
// top-level definition, in two phases so mutually recursive
// definitions can capture each other: phase one allocates every
// record (code address fixed, capture slots reserved) and pushes its
// tagged pointer, so every definition's address is known; phase two
// revisits each record and fills its captures by reading the
// now-complete set of sibling pointers off the stack.
func compileTopLevelClosures(prog *ast.Program, c *Compiler) ([]Stmt, Env) {
	env := Env{}
	var out []Stmt
	captureSets := make([][]string, len(prog.Defines))

	for i, def := range prog.Defines {
		caps := defCaptures(def)
		captureSets[i] = caps

		out = append(out,
			asm.Lea{Dst: asm.R9, Label: definitionLabel(def.Name)},
			mov(mem(asm.RBX, 0), reg(asm.R9)),
			mov(reg(asm.R10), reg(asm.RBX)),
			or(reg(asm.R10), immHex(value.ClosureType.Tag)),
			push(reg(asm.R10)),
			add(reg(asm.RBX), imm(int64(8+8*len(caps)))),
		)
		env = env.Push(def.Name)
	}

	for i, def := range prog.Defines {
		off, _ := env.Lookup(def.Name)
		out = append(out,
			mov(reg(asm.R10), mem(asm.RSP, int64(8*off))),
			xorOp(reg(asm.R10), immHex(value.ClosureType.Tag)),
		)
		for j, name := range captureSets[i] {
			capOff, ok := env.Lookup(name)
			if !ok {
				continue // free in a top-level define but not a sibling: checkProgram already rejected this
			}
			out = append(out,
				mov(reg(asm.R9), mem(asm.RSP, int64(8*capOff))),
				mov(mem(asm.R10, int64(8+8*j)), reg(asm.R9)),
			)
		}
	}

	return out, env
}

// compileDataSection emits the .data section holding every interned
// string literal: an 8-byte length word followed by one 4-byte cell
// per character, padded to an even cell count.
func (c *Compiler) compileDataSection() []Stmt {
	if len(c.stringOrder) == 0 {
		return nil
	}

	out := []Stmt{asm.Section{Name: "data"}}
	for _, s := range c.stringOrder {
		runes := []rune(s)
		codepoints := make([]uint32, len(runes))
		for i, r := range runes {
			codepoints[i] = uint32(r)
		}

		out = append(out,
			label(c.stringLabels[s]),
			asm.Dq{Values: []uint64{uint64(len(runes))}},
			asm.Dd{Values: codepoints},
		)
		if len(runes)%2 != 0 {
			out = append(out, asm.Dd{Values: []uint32{0}})
		}
	}
	return out
}
