package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

// compileMakeString implements make-string(n, c). The first operand
// (n) arrives in r8, the second (c) in rax. Characters are stored as
// 32-bit cells; an odd character count gets one padding cell so the
// record's total size stays a multiple of 8 bytes.
func (c *Compiler) compileMakeString() []Stmt {
	empty := c.freshLabel("make_string_empty")
	loop := c.freshLabel("make_string_loop")
	doneLoop := c.freshLabel("make_string_loop_done")
	noPad := c.freshLabel("make_string_no_pad")
	end := c.freshLabel("make_string_end")

	out := assertTypeReg(asm.R8, value.IntType)
	out = append(out, assertType(value.CharType)...)
	out = append(out,
		mov(reg(asm.R9), reg(asm.R8)),
		sar(reg(asm.R9), imm(4)), // r9 = raw n, loop counter
		cmp(reg(asm.R9), imm(0)),
		jl(errLabel),
		je(empty),

		mov(reg(asm.R10), reg(asm.RBX)),
		or(reg(asm.R10), immHex(value.StringType.Tag)),
		mov(mem(asm.RBX, 0), reg(asm.R9)),

		mov(reg(asm.R11), reg(asm.R9)), // saved for the trailing parity check

		mov(reg(asm.R8), reg(asm.RAX)),
		sar(reg(asm.R8), imm(5)), // r8/r8d = raw codepoint

		add(reg(asm.RBX), imm(8)),

		label(loop),
		cmp(reg(asm.R9), imm(0)),
		jle(doneLoop),
		mov(memSized(asm.RBX, 0, asm.Dword), reg(asm.R8D)),
		add(reg(asm.RBX), imm(4)),
		sub(reg(asm.R9), imm(1)),
		jmp(loop),

		label(doneLoop),
		and(reg(asm.R11), imm(1)),
		cmp(reg(asm.R11), imm(0)),
		je(noPad),
		add(reg(asm.RBX), imm(4)),

		label(noPad),
		mov(reg(asm.RAX), reg(asm.R10)),
		jmp(end),

		label(empty),
		mov(reg(asm.RAX), immHex(value.EmptyStringTag)),

		label(end),
	)
	return out
}

// compileStringRef implements string-ref(s, i): s in r8, i in rax.
func compileStringRef() []Stmt {
	out := assertTypeReg(asm.R8, value.StringType)
	out = append(out, cmp(reg(asm.R8), immHex(value.StringType.Tag)), je(errLabel))
	out = append(out, assertType(value.IntType)...)
	out = append(out,
		mov(reg(asm.R9), reg(asm.RAX)),
		sar(reg(asm.R9), imm(4)), // r9 = raw i
		cmp(reg(asm.R9), imm(0)),
		jl(errLabel),

		mov(reg(asm.R10), reg(asm.R8)),
		xorOp(reg(asm.R10), immHex(value.StringType.Tag)),

		mov(reg(asm.R11), mem(asm.R10, 0)), // length
		sub(reg(asm.R11), imm(1)),
		cmp(reg(asm.R11), reg(asm.R9)),
		jl(errLabel),

		mov(reg(asm.R11), reg(asm.R9)),
		sal(reg(asm.R11), imm(2)), // i*4
		add(reg(asm.R11), reg(asm.R10)),

		mov(reg(asm.R9D), memSized(asm.R11, 8, asm.Dword)),
		sal(reg(asm.R9), imm(5)),
		or(reg(asm.R9), immHex(value.CharType.Tag)),
		mov(reg(asm.RAX), reg(asm.R9)),
	)
	return out
}

// compileStringEqual emits a structural comparison between the two
// tagged string values held in registers a and b, used by the match
// compiler for a string literal pattern. Execution falls through when
// the strings are equal and jumps to mismatch otherwise. a and b must
// not alias r8, r9, r10 or r11.
func (c *Compiler) compileStringEqual(a, b asm.Register, mismatch string) []Stmt {
	loop := c.freshLabel("string_eq_loop")
	done := c.freshLabel("string_eq_done")

	out := []Stmt{
		cmp(reg(a), reg(b)),
		je(done), // identical bits: same pointer, or both the bare empty-string tag

		mov(reg(asm.R9), reg(a)),
		and(reg(asm.R9), immHex(value.MaskOf(value.StringType))),
		cmp(reg(asm.R9), immHex(value.TagOf(value.StringType))),
		jne(mismatch),
		mov(reg(asm.R9), reg(b)),
		and(reg(asm.R9), immHex(value.MaskOf(value.StringType))),
		cmp(reg(asm.R9), immHex(value.TagOf(value.StringType))),
		jne(mismatch),

		cmp(reg(a), immHex(value.EmptyStringTag)),
		je(mismatch),
		cmp(reg(b), immHex(value.EmptyStringTag)),
		je(mismatch),

		mov(reg(asm.R10), reg(a)),
		xorOp(reg(asm.R10), immHex(value.StringType.Tag)),
		mov(reg(asm.R11), reg(b)),
		xorOp(reg(asm.R11), immHex(value.StringType.Tag)),

		mov(reg(asm.R9), mem(asm.R10, 0)),
		cmp(reg(asm.R9), mem(asm.R11, 0)),
		jne(mismatch),

		add(reg(asm.R10), imm(8)),
		add(reg(asm.R11), imm(8)),

		label(loop),
		cmp(reg(asm.R9), imm(0)),
		jle(done),
		mov(reg(asm.R8D), memSized(asm.R10, 0, asm.Dword)),
		cmp(reg(asm.R8D), memSized(asm.R11, 0, asm.Dword)),
		jne(mismatch),
		add(reg(asm.R10), imm(4)),
		add(reg(asm.R11), imm(4)),
		sub(reg(asm.R9), imm(1)),
		jmp(loop),

		label(done),
	}
	return out
}
