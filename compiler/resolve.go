package compiler

import "github.com/skx/mylang-compiler/ast"

// checkProgram performs the compile-time consistency pass spec §7
// calls out: every top-level definition name is distinct, and every
// variable reference resolves to some enclosing binding (a parameter,
// a let, a lambda parameter, a match-arm pattern binding, or a
// sibling top-level definition). It runs before any lowering, so a
// *CompileError always carries the offending construct's source
// offset rather than surfacing as a codegen-time panic.
func checkProgram(prog *ast.Program) error {
	topEnv := Env{}
	seen := make(map[string]bool, len(prog.Defines))
	for _, def := range prog.Defines {
		if seen[def.Name] {
			return compileErr(def.Offset, "duplicate top-level definition: %q", def.Name)
		}
		seen[def.Name] = true
		topEnv = topEnv.Push(def.Name)
	}

	for _, def := range prog.Defines {
		env := topEnv
		for _, p := range def.Params {
			env = env.Push(p)
		}
		if err := checkExpr(def.Body, env); err != nil {
			return err
		}
	}

	return checkExpr(prog.Main, topEnv)
}

// checkExpr walks expr verifying every *ast.Variable it contains
// resolves against env, threading env through let/lambda/match the
// same way compileExpr's lexical scoping does.
func checkExpr(expr ast.Expr, env Env) error {
	switch e := expr.(type) {
	case *ast.Lit, *ast.Eof, *ast.Prim0:
		return nil

	case *ast.Prim1:
		return checkExpr(e.Arg, env)

	case *ast.Prim2:
		if err := checkExpr(e.Left, env); err != nil {
			return err
		}
		return checkExpr(e.Right, env)

	case *ast.Prim3:
		if err := checkExpr(e.First, env); err != nil {
			return err
		}
		if err := checkExpr(e.Second, env); err != nil {
			return err
		}
		return checkExpr(e.Third, env)

	case *ast.Begin:
		if err := checkExpr(e.First, env); err != nil {
			return err
		}
		return checkExpr(e.Second, env)

	case *ast.If:
		if err := checkExpr(e.Cond, env); err != nil {
			return err
		}
		if err := checkExpr(e.Then, env); err != nil {
			return err
		}
		return checkExpr(e.Else, env)

	case *ast.Let:
		if err := checkExpr(e.Rhs, env); err != nil {
			return err
		}
		return checkExpr(e.Body, env.Push(e.Name))

	case *ast.Variable:
		if _, ok := env.Lookup(e.Name); !ok {
			return compileErr(e.Pos(), "unresolved identifier %q", e.Name)
		}
		return nil

	case *ast.App:
		if err := checkExpr(e.Callee, env); err != nil {
			return err
		}
		for _, a := range e.Args {
			if err := checkExpr(a, env); err != nil {
				return err
			}
		}
		return nil

	case *ast.Lambda:
		lamEnv := env
		for _, p := range e.Params {
			lamEnv = lamEnv.Push(p)
		}
		return checkExpr(e.Body, lamEnv)

	case *ast.Match:
		if err := checkExpr(e.Scrutinee, env); err != nil {
			return err
		}
		for _, arm := range e.Arms {
			if err := checkExpr(arm.Body, bindPatternNames(arm.Pattern, env)); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// bindPatternNames extends env with every name a pattern binds,
// mirroring compilePattern's structural recursion without any of its
// codegen.
func bindPatternNames(pat ast.Pattern, env Env) Env {
	switch p := pat.(type) {
	case *ast.VariablePattern:
		return env.Push(p.Name)
	case *ast.ConsPattern:
		return bindPatternNames(p.Cdr, bindPatternNames(p.Car, env))
	case *ast.BoxPattern:
		return bindPatternNames(p.Sub, env)
	case *ast.AndPattern:
		return bindPatternNames(p.Right, bindPatternNames(p.Left, env))
	default: // *ast.WildcardPattern, *ast.LitPattern: bind nothing
		return env
	}
}
