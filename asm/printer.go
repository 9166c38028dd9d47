package asm

import (
	"fmt"
	"strings"
)

// Platform selects the target object-file/label convention.
type Platform int

// Supported platforms.
const (
	PlatformLinux Platform = iota
	PlatformMacOS
)

// CompilationContext carries everything the printer needs that is
// not itself part of the instruction stream — currently just the
// target platform, which governs label mangling.
type CompilationContext struct {
	Platform Platform
}

// mangle applies the platform's public-symbol convention: on macOS
// every label reference is prefixed with an underscore; on Linux
// labels are emitted unchanged.
func (c CompilationContext) mangle(name string) string {
	if c.Platform == PlatformMacOS {
		return "_" + name
	}
	return name
}

// Print renders a complete program as NASM source text.
func Print(program []Statement, ctx CompilationContext) string {
	var b strings.Builder
	b.WriteString("default rel\n")
	for _, s := range program {
		printStatement(&b, s, ctx)
	}
	return b.String()
}

func printStatement(b *strings.Builder, s Statement, ctx CompilationContext) {
	switch st := s.(type) {
	case Global:
		fmt.Fprintf(b, "global %s\n", ctx.mangle(st.Name))
	case Extern:
		fmt.Fprintf(b, "extern %s\n", ctx.mangle(st.Name))
	case Section:
		fmt.Fprintf(b, "section .%s\n", st.Name)
	case Label:
		fmt.Fprintf(b, "%s:\n", ctx.mangle(st.Name))
	case Comment:
		fmt.Fprintf(b, "\t; %s\n", st.Text)
	case Instr:
		ops := make([]string, len(st.Operands))
		for i, op := range st.Operands {
			ops[i] = printOperand(op, ctx)
		}
		fmt.Fprintf(b, "\t%s %s\n", st.Op, strings.Join(ops, ", "))
	case Lea:
		label := ctx.mangle(st.Label)
		if st.Tag != 0 {
			fmt.Fprintf(b, "\tlea %s, [%s+%d]\n", st.Dst, label, st.Tag)
		} else {
			fmt.Fprintf(b, "\tlea %s, [%s]\n", st.Dst, label)
		}
	case Jmp:
		fmt.Fprintf(b, "\tjmp %s\n", ctx.mangle(st.Target))
	case JmpIndirect:
		fmt.Fprintf(b, "\tjmp %s\n", st.Reg)
	case Je:
		fmt.Fprintf(b, "\tje %s\n", ctx.mangle(st.Target))
	case Jne:
		fmt.Fprintf(b, "\tjne %s\n", ctx.mangle(st.Target))
	case Jl:
		fmt.Fprintf(b, "\tjl %s\n", ctx.mangle(st.Target))
	case Jg:
		fmt.Fprintf(b, "\tjg %s\n", ctx.mangle(st.Target))
	case Jle:
		fmt.Fprintf(b, "\tjle %s\n", ctx.mangle(st.Target))
	case Jge:
		fmt.Fprintf(b, "\tjge %s\n", ctx.mangle(st.Target))
	case Call:
		fmt.Fprintf(b, "\tcall %s\n", ctx.mangle(st.Target))
	case Ret:
		b.WriteString("\tret\n")
	case Cmove:
		fmt.Fprintf(b, "\tcmove %s, %s\n", st.Dst, st.Src)
	case Cmovl:
		fmt.Fprintf(b, "\tcmovl %s, %s\n", st.Dst, st.Src)
	case Dq:
		fmt.Fprintf(b, "\tdq %s\n", joinUint64(st.Values))
	case Dd:
		fmt.Fprintf(b, "\tdd %s\n", joinUint32(st.Values))
	default:
		panic(fmt.Sprintf("asm: unhandled statement type %T", s))
	}
}

func printOperand(op Operand, ctx CompilationContext) string {
	switch o := op.(type) {
	case Reg:
		return string(o.Name)
	case Imm:
		if o.Hex {
			return fmt.Sprintf("0x%x", o.Value)
		}
		return fmt.Sprintf("%d", int64(o.Value))
	case Mem:
		return memString(string(o.Base), o.Disp, o.Size)
	case LabelMem:
		name := ctx.mangle(o.Name)
		if o.Disp != 0 {
			name = fmt.Sprintf("%s+%d", name, o.Disp)
		}
		return memString(name, 0, o.Size)
	default:
		panic(fmt.Sprintf("asm: unhandled operand type %T", op))
	}
}

func memString(base string, disp int64, size Size) string {
	var inner string
	switch {
	case disp > 0:
		inner = fmt.Sprintf("%s+%d", base, disp)
	case disp < 0:
		inner = fmt.Sprintf("%s-%d", base, -disp)
	default:
		inner = base
	}
	if size != NoSize {
		return fmt.Sprintf("%s [%s]", size, inner)
	}
	return fmt.Sprintf("[%s]", inner)
}

func joinUint64(values []uint64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

func joinUint32(values []uint32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
