package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

// assertTypeReg emits the type-check macro from SPEC_FULL.md §4.7:
// mov r9, r; and r9, mask(t); cmp r9, tag(t); jne err.
func assertTypeReg(r asm.Register, t value.UnaryType) []Stmt {
	return []Stmt{
		mov(reg(asm.R9), reg(r)),
		and(reg(asm.R9), immHex(value.MaskOf(t))),
		cmp(reg(asm.R9), immHex(value.TagOf(t))),
		jne(errLabel),
	}
}

// assertType is assertTypeReg specialised to rax, the common case.
func assertType(t value.UnaryType) []Stmt {
	return assertTypeReg(asm.RAX, t)
}

// materializeEqual and materializeLessThan turn the flags set by a
// preceding cmp into an encoded boolean in rax, without branching.
func materializeEqual() []Stmt {
	return []Stmt{
		mov(reg(asm.RAX), immHex(value.False)),
		mov(reg(asm.R9), immHex(value.True)),
		cmove(asm.RAX, asm.R9),
	}
}

func materializeLessThan() []Stmt {
	return []Stmt{
		mov(reg(asm.RAX), immHex(value.False)),
		mov(reg(asm.R9), immHex(value.True)),
		cmovl(asm.RAX, asm.R9),
	}
}

// compileTypePredicate implements char?, box?, cons?, vector?,
// string?: mask-and-compare, then materialise the boolean. A bare
// empty-vector/empty-string singleton satisfies the same mask/tag
// test as a real pointer of that type, which is correct: the
// predicate only cares about the value's kind, not its emptiness.
func compileTypePredicate(t value.UnaryType) []Stmt {
	out := []Stmt{
		mov(reg(asm.R9), reg(asm.RAX)),
		and(reg(asm.R9), immHex(value.MaskOf(t))),
		cmp(reg(asm.R9), immHex(value.TagOf(t))),
	}
	return append(out, materializeEqual()...)
}

// compileIsEofObject implements eof-object?: direct comparison
// against the encoded Eof singleton.
func compileIsEofObject() []Stmt {
	out := []Stmt{cmp(reg(asm.RAX), immHex(value.EofValue))}
	return append(out, materializeEqual()...)
}

// compileIntegerToChar implements integer->char: assert integer,
// check the codepoint range 0..0x10FFFF excluding the surrogate
// range 0xD800..0xDFFF, then re-shift to the char tag.
func (c *Compiler) compileIntegerToChar() []Stmt {
	ok := c.freshLabel("codepoint_ok")
	out := assertType(value.IntType)
	out = append(out,
		mov(reg(asm.R9), reg(asm.RAX)),
		sar(reg(asm.R9), imm(4)),
		cmp(reg(asm.R9), imm(0)),
		jl(errLabel),
		cmp(reg(asm.R9), immHex(0x10FFFF)),
		jg(errLabel),
		cmp(reg(asm.R9), immHex(0xD800)),
		jl(ok),
		cmp(reg(asm.R9), immHex(0xDFFF)),
		jg(ok),
		jmp(errLabel),
		label(ok),
		sal(reg(asm.R9), imm(5)),
		or(reg(asm.R9), immHex(value.CharType.Tag)),
		mov(reg(asm.RAX), reg(asm.R9)),
	)
	return out
}

// compileCharToInteger implements char->integer: assert char, then
// re-shift from the char tag/shift to the integer tag/shift.
func compileCharToInteger() []Stmt {
	out := assertType(value.CharType)
	out = append(out,
		mov(reg(asm.R9), reg(asm.RAX)),
		sar(reg(asm.R9), imm(5)),
		sal(reg(asm.R9), imm(4)),
		mov(reg(asm.RAX), reg(asm.R9)),
	)
	return out
}

// compileWriteByte implements write-byte: assert the operand is an
// integer in 0..255, move its raw value to rdi, and call the
// runtime's write_byte across a stack-alignment pad. The expression's
// own value is the void singleton.
func compileWriteByte() []Stmt {
	out := assertType(value.IntType)
	out = append(out,
		mov(reg(asm.R9), reg(asm.RAX)),
		sar(reg(asm.R9), imm(4)),
		cmp(reg(asm.R9), imm(0)),
		jl(errLabel),
		cmp(reg(asm.R9), imm(255)),
		jg(errLabel),
		mov(reg(asm.RDI), reg(asm.R9)),
	)
	out = append(out, padStack()...)
	out = append(out, call("write_byte"))
	out = append(out, unpadStack()...)
	out = append(out, mov(reg(asm.RAX), immHex(value.VoidValue)))
	return out
}

// compileReadByte and compilePeekByte call the runtime's
// byte-source primitives, which already return an encoded value
// (an integer 0..255 or the Eof singleton) in rax.
func compileReadByte() []Stmt {
	out := padStack()
	out = append(out, call("read_byte"))
	return append(out, unpadStack()...)
}

func compilePeekByte() []Stmt {
	out := padStack()
	out = append(out, call("peek_byte"))
	return append(out, unpadStack()...)
}
