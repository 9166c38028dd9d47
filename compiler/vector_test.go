package compiler

import (
	"testing"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

func labelNames(stmts []Stmt) []string {
	var out []string
	for _, s := range stmts {
		if l, ok := s.(asm.Label); ok {
			out = append(out, l.Name)
		}
	}
	return out
}

func TestCompileMakeVectorHandlesEmptyCaseAndLoop(t *testing.T) {
	c := NewCompiler()
	stmts := c.compileMakeVector()

	var sawEmptyConst, sawLoopJump bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok && instr.Op == "mov" {
			if imm, ok := instr.Operands[1].(asm.Imm); ok && imm.Value == value.EmptyVectorTag {
				sawEmptyConst = true
			}
		}
		if _, ok := s.(asm.Jle); ok {
			sawLoopJump = true
		}
	}
	if !sawEmptyConst {
		t.Fatalf("expected the n=0 case to produce the empty-vector singleton, got %#v", stmts)
	}
	if !sawLoopJump {
		t.Fatalf("expected a jle terminating the fill loop, got %#v", stmts)
	}

	labels := labelNames(stmts)
	if len(labels) != 4 {
		t.Fatalf("expected 4 distinct labels (empty/loop/done/end), got %v", labels)
	}
}

func TestCompileVectorRefBoundsChecksBeforeLoad(t *testing.T) {
	stmts := compileVectorRef()

	var lastJl int = -1
	var load int = -1
	for i, s := range stmts {
		if j, ok := s.(asm.Jl); ok && j.Target == errLabel {
			lastJl = i
		}
		if instr, ok := s.(asm.Instr); ok && instr.Op == "mov" {
			if mem, ok := instr.Operands[1].(asm.Mem); ok && mem.Disp == 8 {
				load = i
			}
		}
	}
	if lastJl == -1 || load == -1 || lastJl > load {
		t.Fatalf("expected the bounds-check jump before the element load, stmts=%#v", stmts)
	}
}

func TestCompileVectorSetReturnsVoid(t *testing.T) {
	stmts := compileVectorSet()
	last, ok := stmts[len(stmts)-1].(asm.Instr)
	if !ok || last.Op != "mov" {
		t.Fatalf("expected a trailing mov, got %#v", stmts[len(stmts)-1])
	}
	imm, ok := last.Operands[1].(asm.Imm)
	if !ok || imm.Value != value.VoidValue {
		t.Fatalf("expected vector-set! to yield the void singleton, got %#v", last.Operands[1])
	}
}
