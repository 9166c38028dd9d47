package compiler

import (
	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

// compileBox implements box: write rax to [rbx], return the tagged
// pointer, and advance the heap pointer by its one word.
func compileBox() []Stmt {
	return []Stmt{
		mov(mem(asm.RBX, 0), reg(asm.RAX)),
		mov(reg(asm.RAX), reg(asm.RBX)),
		or(reg(asm.RAX), immHex(value.BoxType.Tag)),
		add(reg(asm.RBX), imm(8)),
	}
}

// compileUnbox implements unbox: assert box, strip the tag, load the
// contained value.
func compileUnbox() []Stmt {
	out := assertType(value.BoxType)
	return append(out,
		xorOp(reg(asm.RAX), immHex(value.BoxType.Tag)),
		mov(reg(asm.RAX), mem(asm.RAX, 0)),
	)
}

// compileCons implements cons. The first operand (the car) arrives
// in r8, the second (the cdr) in rax: cdr is stored at offset 0, car
// at offset 8, matching the r8/rax evaluation-order convention.
func compileCons() []Stmt {
	return []Stmt{
		mov(mem(asm.RBX, 0), reg(asm.RAX)),
		mov(mem(asm.RBX, 8), reg(asm.R8)),
		mov(reg(asm.RAX), reg(asm.RBX)),
		or(reg(asm.RAX), immHex(value.ConsType.Tag)),
		add(reg(asm.RBX), imm(16)),
	}
}

// compileCar implements car: assert cons, strip the tag, load the
// car slot at offset 8.
func compileCar() []Stmt {
	out := assertType(value.ConsType)
	return append(out,
		xorOp(reg(asm.RAX), immHex(value.ConsType.Tag)),
		mov(reg(asm.RAX), mem(asm.RAX, 8)),
	)
}

// compileCdr implements cdr: assert cons, strip the tag, load the
// cdr slot at offset 0.
func compileCdr() []Stmt {
	out := assertType(value.ConsType)
	return append(out,
		xorOp(reg(asm.RAX), immHex(value.ConsType.Tag)),
		mov(reg(asm.RAX), mem(asm.RAX, 0)),
	)
}
