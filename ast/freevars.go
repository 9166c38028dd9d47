package ast

// FreeVariables returns the free identifiers of e, in stable
// first-occurrence order, with no duplicates. It is what the
// compiler uses to decide a lambda's capture list: the free variables
// of its body, minus its own parameters.
func FreeVariables(e Expr) []string {
	seen := map[string]bool{}
	var order []string
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}
	}

	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Lit, *Eof, *Prim0:
			// no subexpressions
		case *Prim1:
			walk(n.Arg)
		case *Prim2:
			walk(n.Left)
			walk(n.Right)
		case *Prim3:
			walk(n.First)
			walk(n.Second)
			walk(n.Third)
		case *Begin:
			walk(n.First)
			walk(n.Second)
		case *If:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *Let:
			walk(n.Rhs)
			for _, v := range FreeVariables(n.Body) {
				if v != n.Name {
					add(v)
				}
			}
		case *Variable:
			add(n.Name)
		case *App:
			walk(n.Callee)
			for _, a := range n.Args {
				walk(a)
			}
		case *Lambda:
			bound := map[string]bool{}
			for _, p := range n.Params {
				bound[p] = true
			}
			for _, v := range FreeVariables(n.Body) {
				if !bound[v] {
					add(v)
				}
			}
		case *Match:
			walk(n.Scrutinee)
			for _, arm := range n.Arms {
				bound := patternBindings(arm.Pattern)
				for _, v := range FreeVariables(arm.Body) {
					if !bound[v] {
						add(v)
					}
				}
			}
		}
	}
	walk(e)
	return order
}

// patternBindings returns the set of identifiers a pattern binds.
func patternBindings(p Pattern) map[string]bool {
	out := map[string]bool{}
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch n := p.(type) {
		case *WildcardPattern, *LitPattern:
			// no bindings
		case *VariablePattern:
			out[n.Name] = true
		case *ConsPattern:
			walk(n.Car)
			walk(n.Cdr)
		case *BoxPattern:
			walk(n.Sub)
		case *AndPattern:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(p)
	return out
}

// AllLambdas collects every Lambda node reachable from the program,
// in left-to-right, depth-first pre-order (an enclosing lambda before
// the lambdas in its body) — the order the compiler uses to lay out
// code blocks. This differs from ID order for nested lambdas, since
// the builder assigns an enclosing lambda's ID after its body's.
func AllLambdas(prog *Program) []*Lambda {
	var out []*Lambda
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Prim1:
			walk(n.Arg)
		case *Prim2:
			walk(n.Left)
			walk(n.Right)
		case *Prim3:
			walk(n.First)
			walk(n.Second)
			walk(n.Third)
		case *Begin:
			walk(n.First)
			walk(n.Second)
		case *If:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *Let:
			walk(n.Rhs)
			walk(n.Body)
		case *App:
			walk(n.Callee)
			for _, a := range n.Args {
				walk(a)
			}
		case *Lambda:
			out = append(out, n)
			walk(n.Body)
		case *Match:
			walk(n.Scrutinee)
			for _, arm := range n.Arms {
				walk(arm.Body)
			}
		}
	}
	for _, def := range prog.Defines {
		walk(def.Body)
	}
	walk(prog.Main)
	return out
}
