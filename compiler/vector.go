package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

// compileMakeVector implements make-vector(n, v). The first operand
// (n) arrives in r8, the second (v) in rax, per the binary-primitive
// evaluation protocol.
func (c *Compiler) compileMakeVector() []Stmt {
	empty := c.freshLabel("make_vector_empty")
	loop := c.freshLabel("make_vector_loop")
	doneLoop := c.freshLabel("make_vector_loop_done")
	end := c.freshLabel("make_vector_end")

	out := assertTypeReg(asm.R8, value.IntType)
	out = append(out,
		mov(reg(asm.R9), reg(asm.R8)),
		sar(reg(asm.R9), imm(4)), // r9 = raw n
		cmp(reg(asm.R9), imm(0)),
		jl(errLabel),
		je(empty),
		mov(reg(asm.R10), reg(asm.RBX)),
		or(reg(asm.R10), immHex(value.VectorType.Tag)),
		mov(mem(asm.RBX, 0), reg(asm.R9)),
		add(reg(asm.RBX), imm(8)),

		label(loop),
		cmp(reg(asm.R9), imm(0)),
		jle(doneLoop),
		mov(mem(asm.RBX, 0), reg(asm.RAX)),
		add(reg(asm.RBX), imm(8)),
		sub(reg(asm.R9), imm(1)),
		jmp(loop),

		label(doneLoop),
		mov(reg(asm.RAX), reg(asm.R10)),
		jmp(end),

		label(empty),
		mov(reg(asm.RAX), immHex(value.EmptyVectorTag)),

		label(end),
	)
	return out
}

// compileVectorRef implements vector-ref(v, i): v in r8, i in rax.
func compileVectorRef() []Stmt {
	out := assertTypeReg(asm.R8, value.VectorType)
	out = append(out, cmp(reg(asm.R8), immHex(value.VectorType.Tag)), je(errLabel))
	out = append(out, assertType(value.IntType)...)
	out = append(out,
		mov(reg(asm.R9), reg(asm.RAX)),
		sar(reg(asm.R9), imm(4)), // r9 = raw i
		cmp(reg(asm.R9), imm(0)),
		jl(errLabel),

		mov(reg(asm.R10), reg(asm.R8)),
		xorOp(reg(asm.R10), immHex(value.VectorType.Tag)), // untagged vector address

		mov(reg(asm.R11), mem(asm.R10, 0)), // length
		sub(reg(asm.R11), imm(1)),
		cmp(reg(asm.R11), reg(asm.R9)),
		jl(errLabel), // length-1 < i

		mov(reg(asm.R11), reg(asm.R9)),
		sal(reg(asm.R11), imm(3)),
		add(reg(asm.R11), reg(asm.R10)),
		mov(reg(asm.RAX), mem(asm.R11, 8)),
	)
	return out
}

// compileVectorSet implements vector-set!(v, i, x): v in r8, i in r9,
// x in rax, per the ternary-primitive evaluation protocol.
func compileVectorSet() []Stmt {
	out := assertTypeReg(asm.R8, value.VectorType)
	out = append(out, cmp(reg(asm.R8), immHex(value.VectorType.Tag)), je(errLabel))
	out = append(out, assertTypeReg(asm.R9, value.IntType)...)
	out = append(out,
		mov(reg(asm.R10), reg(asm.R9)),
		sar(reg(asm.R10), imm(4)), // r10 = raw i
		cmp(reg(asm.R10), imm(0)),
		jl(errLabel),

		mov(reg(asm.R11), reg(asm.R8)),
		xorOp(reg(asm.R11), immHex(value.VectorType.Tag)), // untagged vector address

		mov(reg(asm.R9), mem(asm.R11, 0)), // length
		sub(reg(asm.R9), imm(1)),
		cmp(reg(asm.R9), reg(asm.R10)),
		jl(errLabel),

		mov(reg(asm.R9), reg(asm.R10)),
		sal(reg(asm.R9), imm(3)),
		add(reg(asm.R9), reg(asm.R11)),
		mov(mem(asm.R9, 8), reg(asm.RAX)),
		mov(reg(asm.RAX), immHex(value.VoidValue)),
	)
	return out
}
