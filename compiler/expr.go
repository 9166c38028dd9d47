package compiler

import (
	"fmt"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
	"github.com/skx/mylang-compiler/value"
)

// encodeLit returns the runtime-encoded representation of a
// non-string literal. String literals are handled separately at their
// use sites, since a non-empty string is a heap reference rather than
// an immediate bit pattern.
func encodeLit(lit *ast.Lit) uint64 {
	switch lit.Kind {
	case ast.LitInt:
		return value.EncodeInt(lit.Int)
	case ast.LitBool:
		return value.EncodeBool(lit.Bool)
	case ast.LitChar:
		return value.EncodeChar(lit.Char)
	case ast.LitEmptyList:
		return value.EmptyList
	default:
		return 0
	}
}

// compileExpr lowers one expression node to a sequence of
// pseudo-instructions that leave its value in rax. env describes what
// the live stack slots below rsp currently hold; tail reports whether
// expr sits in tail position, which only changes how an App at the
// bottom of this tree is lowered.
func compileExpr(expr ast.Expr, c *Compiler, env Env, tail bool) []Stmt {
	switch e := expr.(type) {
	case *ast.Lit:
		if e.Kind == ast.LitString {
			if e.Str == "" {
				return []Stmt{mov(reg(asm.RAX), immHex(value.EmptyStringTag))}
			}
			return []Stmt{asm.Lea{Dst: asm.RAX, Label: c.stringLiteralLabel(e.Str), Tag: value.StringType.Tag}}
		}
		return []Stmt{mov(reg(asm.RAX), immHex(encodeLit(e)))}

	case *ast.Eof:
		return []Stmt{mov(reg(asm.RAX), immHex(value.EofValue))}

	case *ast.Prim0:
		switch e.Op {
		case ast.ReadByte:
			return compileReadByte()
		case ast.PeekByte:
			return compilePeekByte()
		}

	case *ast.Prim1:
		out := compileExpr(e.Arg, c, env, false)
		switch e.Op {
		case ast.Add1:
			return append(out, compileAdd1()...)
		case ast.Sub1:
			return append(out, compileSub1()...)
		case ast.IsZero:
			return append(out, compileIsZero()...)
		case ast.IsChar:
			return append(out, compileTypePredicate(value.CharType)...)
		case ast.IsEofObject:
			return append(out, compileIsEofObject()...)
		case ast.IsBox:
			return append(out, compileTypePredicate(value.BoxType)...)
		case ast.IsCons:
			return append(out, compileTypePredicate(value.ConsType)...)
		case ast.IsVector:
			return append(out, compileTypePredicate(value.VectorType)...)
		case ast.IsString:
			return append(out, compileTypePredicate(value.StringType)...)
		case ast.IntegerToChar:
			return append(out, c.compileIntegerToChar()...)
		case ast.CharToInteger:
			return append(out, compileCharToInteger()...)
		case ast.WriteByte:
			return append(out, compileWriteByte()...)
		case ast.MakeBox:
			return append(out, compileBox()...)
		case ast.Unbox:
			return append(out, compileUnbox()...)
		case ast.Car:
			return append(out, compileCar()...)
		case ast.Cdr:
			return append(out, compileCdr()...)
		}

	case *ast.Prim2:
		out := compileExpr(e.Left, c, env, false)
		out = append(out, push(reg(asm.RAX)))
		out = append(out, compileExpr(e.Right, c, env.PushScratch(), false)...)
		out = append(out, pop(asm.R8))
		switch e.Op {
		case ast.Add:
			return append(out, compileAdd()...)
		case ast.Sub:
			return append(out, compileSub()...)
		case ast.LessThan:
			return append(out, compileLessThan()...)
		case ast.NumEqual:
			return append(out, compileNumEqual()...)
		case ast.Cons:
			return append(out, compileCons()...)
		case ast.MakeVector:
			return append(out, c.compileMakeVector()...)
		case ast.MakeString:
			return append(out, c.compileMakeString()...)
		case ast.VectorRef:
			return append(out, compileVectorRef()...)
		case ast.StringRef:
			return append(out, compileStringRef()...)
		}

	case *ast.Prim3:
		out := compileExpr(e.First, c, env, false)
		out = append(out, push(reg(asm.RAX)))
		env1 := env.PushScratch()
		out = append(out, compileExpr(e.Second, c, env1, false)...)
		out = append(out, push(reg(asm.RAX)))
		env2 := env1.PushScratch()
		out = append(out, compileExpr(e.Third, c, env2, false)...)
		out = append(out, pop(asm.R9), pop(asm.R8))
		switch e.Op {
		case ast.VectorSet:
			return append(out, compileVectorSet()...)
		}

	case *ast.Begin:
		out := compileExpr(e.First, c, env, false)
		return append(out, compileExpr(e.Second, c, env, tail)...)

	case *ast.If:
		elseLbl := c.freshLabel("if_else")
		endLbl := c.freshLabel("if_end")
		out := compileExpr(e.Cond, c, env, false)
		out = append(out, cmp(reg(asm.RAX), immHex(value.False)), je(elseLbl))
		out = append(out, compileExpr(e.Then, c, env, tail)...)
		out = append(out, jmp(endLbl), label(elseLbl))
		out = append(out, compileExpr(e.Else, c, env, tail)...)
		out = append(out, label(endLbl))
		return out

	case *ast.Let:
		out := compileExpr(e.Rhs, c, env, false)
		out = append(out, push(reg(asm.RAX)))
		out = append(out, compileExpr(e.Body, c, env.Push(e.Name), tail)...)
		return append(out, add(reg(asm.RSP), imm(8)))

	case *ast.Variable:
		// checkProgram has already rejected any unresolved identifier
		// before lowering begins, so this always succeeds.
		off, _ := env.Lookup(e.Name)
		return []Stmt{mov(reg(asm.RAX), mem(asm.RSP, int64(8*off)))}

	case *ast.App:
		return compileApp(e, c, env, tail)

	case *ast.Lambda:
		return compileLambdaCreate(e, env)

	case *ast.Match:
		return compileMatch(e, c, env, tail)
	}

	panic(fmt.Sprintf("compiler: unhandled expression node %T", expr))
}
