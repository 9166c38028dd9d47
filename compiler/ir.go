package compiler

import "github.com/skx/mylang-compiler/asm"

// Stmt is a shorthand alias used throughout this package; every
// lowering function builds and concatenates []Stmt slices.
type Stmt = asm.Statement

func label(name string) Stmt           { return asm.Label{Name: name} }
func jmp(target string) Stmt           { return asm.Jmp{Target: target} }
func jmpIndirect(r asm.Register) Stmt  { return asm.JmpIndirect{Reg: r} }
func je(target string) Stmt            { return asm.Je{Target: target} }
func jne(target string) Stmt           { return asm.Jne{Target: target} }
func jl(target string) Stmt            { return asm.Jl{Target: target} }
func jg(target string) Stmt            { return asm.Jg{Target: target} }
func jle(target string) Stmt           { return asm.Jle{Target: target} }
func jge(target string) Stmt           { return asm.Jge{Target: target} }
func call(target string) Stmt          { return asm.Call{Target: target} }
func ret() Stmt                        { return asm.Ret{} }
func cmove(dst, src asm.Register) Stmt { return asm.Cmove{Dst: dst, Src: src} }
func cmovl(dst, src asm.Register) Stmt { return asm.Cmovl{Dst: dst, Src: src} }

func reg(r asm.Register) asm.Operand { return asm.Reg{Name: r} }
func imm(n int64) asm.Operand        { return asm.ImmInt(n) }
func immHex(v uint64) asm.Operand    { return asm.ImmHex(v) }
func mem(base asm.Register, disp int64) asm.Operand {
	return asm.Mem{Base: base, Disp: disp}
}
func memSized(base asm.Register, disp int64, size asm.Size) asm.Operand {
	return asm.Mem{Base: base, Disp: disp, Size: size}
}

func mov(dst, src asm.Operand) Stmt { return asm.Mov(dst, src) }
func add(dst, src asm.Operand) Stmt { return asm.Add(dst, src) }
func sub(dst, src asm.Operand) Stmt { return asm.Sub(dst, src) }
func and(dst, src asm.Operand) Stmt { return asm.And(dst, src) }
func or(dst, src asm.Operand) Stmt  { return asm.Or(dst, src) }
func xorOp(dst, src asm.Operand) Stmt { return asm.Xor(dst, src) }
func sar(dst, src asm.Operand) Stmt { return asm.Sar(dst, src) }
func sal(dst, src asm.Operand) Stmt { return asm.Sal(dst, src) }
func cmp(a, b asm.Operand) Stmt     { return asm.Cmp(a, b) }
func push(op asm.Operand) Stmt      { return asm.Push(op) }
func pop(r asm.Register) Stmt       { return asm.Pop(r) }

// padStack and unpadStack bracket every call to a runtime function
// with the System V stack-alignment adjustment (see SPEC_FULL.md
// §4.8): mov r15, rsp; and r15, 0b1000; sub rsp, r15 — then, after
// the call, add rsp, r15 to undo it. r15 is callee-saved across the
// whole program so nested uses never clobber an outer one; the
// generator never nests foreign calls within the padded window, so
// this is safe without a stack of deltas.
func padStack() []Stmt {
	return []Stmt{
		mov(reg(asm.R15), reg(asm.RSP)),
		and(reg(asm.R15), imm(0b1000)),
		sub(reg(asm.RSP), reg(asm.R15)),
	}
}

func unpadStack() []Stmt {
	return []Stmt{add(reg(asm.RSP), reg(asm.R15))}
}
