package compiler

import (
	"testing"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/value"
)

func TestAssertTypeRegEmitsMaskCompareAndJump(t *testing.T) {
	stmts := assertTypeReg(asm.R8, value.ConsType)
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	jne, ok := stmts[3].(asm.Jne)
	if !ok || jne.Target != errLabel {
		t.Fatalf("expected a trailing jne to %q, got %#v", errLabel, stmts[3])
	}
}

func TestMaterializeEqualUsesCmove(t *testing.T) {
	stmts := materializeEqual()
	found := false
	for _, s := range stmts {
		if cm, ok := s.(asm.Cmove); ok && cm.Dst == asm.RAX && cm.Src == asm.R9 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cmove rax, r9 among %#v", stmts)
	}
}

func TestCompileIsEofObjectComparesSingleton(t *testing.T) {
	stmts := compileIsEofObject()
	cmp, ok := stmts[0].(asm.Instr)
	if !ok || cmp.Op != "cmp" {
		t.Fatalf("expected a leading cmp, got %#v", stmts[0])
	}
	imm, ok := cmp.Operands[1].(asm.Imm)
	if !ok || imm.Value != value.EofValue {
		t.Fatalf("expected comparison against EofValue, got %#v", cmp.Operands[1])
	}
}

func TestCompileIntegerToCharRejectsSurrogateRange(t *testing.T) {
	c := NewCompiler()
	stmts := c.compileIntegerToChar()

	var jumpsToErr int
	var sawSurrogateLow, sawSurrogateHigh, sawSurrogateErr bool
	for _, s := range stmts {
		switch j := s.(type) {
		case asm.Jl:
			if j.Target == errLabel {
				jumpsToErr++
			}
		case asm.Jg:
			if j.Target == errLabel {
				jumpsToErr++
			}
		case asm.Jmp:
			if j.Target == errLabel {
				sawSurrogateErr = true
			}
		case asm.Instr:
			if j.Op == "cmp" {
				if imm, ok := j.Operands[1].(asm.Imm); ok {
					switch imm.Value {
					case 0xD800:
						sawSurrogateLow = true
					case 0xDFFF:
						sawSurrogateHigh = true
					}
				}
			}
		}
	}
	if jumpsToErr < 2 {
		t.Fatalf("expected at least two range-check failures to jump to %q, found %d", errLabel, jumpsToErr)
	}
	if !sawSurrogateLow || !sawSurrogateHigh || !sawSurrogateErr {
		t.Fatalf("expected the 0xD800..0xDFFF surrogate range to be compared and routed to %q, got %#v", errLabel, stmts)
	}
}

func TestCompileCharToIntegerReshiftsTagAndShift(t *testing.T) {
	stmts := compileCharToInteger()
	var sawSar, sawSal bool
	for _, s := range stmts {
		if instr, ok := s.(asm.Instr); ok {
			switch instr.Op {
			case "sar":
				sawSar = true
			case "sal":
				sawSal = true
			}
		}
	}
	if !sawSar || !sawSal {
		t.Fatalf("expected both a sar (drop char shift) and sal (apply int shift), got %#v", stmts)
	}
}
