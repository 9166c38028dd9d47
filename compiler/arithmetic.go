package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

// compileAdd1 and compileSub1 add/subtract the encoded representation
// of 1 directly: since the integer tag is 0, encoded integers are
// n<<4, and ordinary add/sub on the encoded bits yields a correctly
// encoded result.
func compileAdd1() []Stmt {
	out := assertType(value.IntType)
	return append(out, add(reg(asm.RAX), immHex(value.EncodeInt(1))))
}

func compileSub1() []Stmt {
	out := assertType(value.IntType)
	return append(out, sub(reg(asm.RAX), immHex(value.EncodeInt(1))))
}

// compileIsZero implements zero?.
func compileIsZero() []Stmt {
	out := assertType(value.IntType)
	out = append(out, cmp(reg(asm.RAX), immHex(value.EncodeInt(0))))
	return append(out, materializeEqual()...)
}

// compileAdd implements +. Operands arrive with the first (left) in
// r8 and the second (right) in rax, per the binary-primitive
// evaluation protocol in expr.go.
func compileAdd() []Stmt {
	out := assertTypeReg(asm.R8, value.IntType)
	out = append(out, assertType(value.IntType)...)
	return append(out, add(reg(asm.RAX), reg(asm.R8)))
}

// compileSub implements -, which returns r8 - rax (left - right).
func compileSub() []Stmt {
	out := assertTypeReg(asm.R8, value.IntType)
	out = append(out, assertType(value.IntType)...)
	out = append(out,
		sub(reg(asm.R8), reg(asm.RAX)),
		mov(reg(asm.RAX), reg(asm.R8)),
	)
	return out
}

// compileLessThan implements <: left < right.
func compileLessThan() []Stmt {
	out := assertTypeReg(asm.R8, value.IntType)
	out = append(out, assertType(value.IntType)...)
	out = append(out, cmp(reg(asm.R8), reg(asm.RAX)))
	return append(out, materializeLessThan()...)
}

// compileNumEqual implements =.
func compileNumEqual() []Stmt {
	out := assertTypeReg(asm.R8, value.IntType)
	out = append(out, assertType(value.IntType)...)
	out = append(out, cmp(reg(asm.R8), reg(asm.RAX)))
	return append(out, materializeEqual()...)
}
