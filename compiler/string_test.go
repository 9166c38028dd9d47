package compiler

import (
	"testing"

	"github.com/skx/mylang-compiler/asm"
)

func TestCompileMakeStringPadsOddCountForAlignment(t *testing.T) {
	c := NewCompiler()
	stmts := c.compileMakeString()

	var sawParityCheck bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok && instr.Op == "and" {
			if imm, ok := instr.Operands[1].(asm.Imm); ok && imm.Value == 1 {
				sawParityCheck = true
			}
		}
	}
	if !sawParityCheck {
		t.Fatalf("expected an `and reg, 1` parity check for the trailing pad cell, got %#v", stmts)
	}
}

func TestCompileStringRefReshiftsToCharTag(t *testing.T) {
	stmts := compileStringRef()
	var sawDwordLoad, sawFinalShift bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok {
			if instr.Op == "mov" {
				if mem, ok := instr.Operands[1].(asm.Mem); ok && mem.Size == asm.Dword {
					sawDwordLoad = true
				}
			}
			if instr.Op == "sal" {
				sawFinalShift = true
			}
		}
	}
	if !sawDwordLoad {
		t.Fatalf("expected a dword-sized character load, got %#v", stmts)
	}
	if !sawFinalShift {
		t.Fatalf("expected a shift back into char encoding, got %#v", stmts)
	}
}

func TestCompileStringEqualShortCircuitsOnIdenticalBits(t *testing.T) {
	c := NewCompiler()
	stmts := c.compileStringEqual(asm.RAX, asm.RCX, "mismatch")

	first, ok := stmts[0].(asm.Instr)
	if !ok || first.Op != "cmp" {
		t.Fatalf("expected a leading cmp of the two operands, got %#v", stmts[0])
	}
	je, ok := stmts[1].(asm.Je)
	if !ok {
		t.Fatalf("expected an immediate je on equal bits, got %#v", stmts[1])
	}
	_ = je
}
