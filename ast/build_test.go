package ast

import (
	"testing"

	"github.com/skx/mylang-compiler/lexer"
	"github.com/skx/mylang-compiler/sexpr"
)

func build(t *testing.T, src string) *Program {
	t.Helper()
	top, err := sexpr.Parse(lexer.New(src))
	if err != nil {
		t.Fatalf("sexpr.Parse failed: %v", err)
	}
	prog, err := Build(top)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return prog
}

func TestBuildLiteralMain(t *testing.T) {
	prog := build(t, `(add1 (sub1 (add1 42)))`)
	if len(prog.Defines) != 0 {
		t.Fatalf("expected no defines, got %d", len(prog.Defines))
	}
	outer, ok := prog.Main.(*Prim1)
	if !ok || outer.Op != Add1 {
		t.Fatalf("expected outer add1, got %#v", prog.Main)
	}
	mid, ok := outer.Arg.(*Prim1)
	if !ok || mid.Op != Sub1 {
		t.Fatalf("expected middle sub1, got %#v", outer.Arg)
	}
}

func TestBuildDefineAndMainApplication(t *testing.T) {
	prog := build(t, `(define (tri x) (if (zero? x) 0 (+ x (tri (sub1 x))))) (tri 10)`)
	if len(prog.Defines) != 1 {
		t.Fatalf("expected one define, got %d", len(prog.Defines))
	}
	def := prog.Defines[0]
	if def.Name != "tri" || len(def.Params) != 1 || def.Params[0] != "x" {
		t.Fatalf("unexpected define signature: %+v", def)
	}
	ifExpr, ok := def.Body.(*If)
	if !ok {
		t.Fatalf("expected if body, got %#v", def.Body)
	}
	if _, ok := ifExpr.Cond.(*Prim1); !ok {
		t.Fatalf("expected zero? condition")
	}
	app, ok := prog.Main.(*App)
	if !ok {
		t.Fatalf("expected application main, got %#v", prog.Main)
	}
	callee, ok := app.Callee.(*Variable)
	if !ok || callee.Name != "tri" {
		t.Fatalf("expected callee variable tri, got %#v", app.Callee)
	}
}

func TestBuildLambdaIDsAreSequential(t *testing.T) {
	prog := build(t, `(let ((f (lambda (x) x))) (let ((g (lambda (y) y))) (f (g 1))))`)
	lambdas := AllLambdas(prog)
	if len(lambdas) != 2 {
		t.Fatalf("expected 2 lambdas, got %d", len(lambdas))
	}
	if lambdas[0].ID != 0 || lambdas[1].ID != 1 {
		t.Fatalf("expected sequential ids 0,1 got %d,%d", lambdas[0].ID, lambdas[1].ID)
	}
}

func TestBuildMatchPatterns(t *testing.T) {
	prog := build(t, `(match (cons 1 2) ((cons a b) a) (_ 0))`)
	m, ok := prog.Main.(*Match)
	if !ok {
		t.Fatalf("expected match expression, got %#v", prog.Main)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(m.Arms))
	}
	cons, ok := m.Arms[0].Pattern.(*ConsPattern)
	if !ok {
		t.Fatalf("expected cons pattern, got %#v", m.Arms[0].Pattern)
	}
	if _, ok := cons.Car.(*VariablePattern); !ok {
		t.Fatalf("expected variable pattern for car")
	}
	if _, ok := m.Arms[1].Pattern.(*WildcardPattern); !ok {
		t.Fatalf("expected wildcard pattern for second arm")
	}
}

func TestFreeVariablesOfLambda(t *testing.T) {
	prog := build(t, `(let ((x 1)) (lambda (y) (+ x y)))`)
	let, ok := prog.Main.(*Let)
	if !ok {
		t.Fatalf("expected let, got %#v", prog.Main)
	}
	lambda, ok := let.Body.(*Lambda)
	if !ok {
		t.Fatalf("expected lambda body, got %#v", let.Body)
	}
	free := FreeVariables(lambda.Body)
	if len(free) != 2 || free[0] != "x" || free[1] != "y" {
		t.Fatalf("unexpected free variables: %v", free)
	}
	// y is a parameter of the lambda itself, so only x should be free
	// with respect to the lambda as a whole.
	bound := map[string]bool{}
	for _, p := range lambda.Params {
		bound[p] = true
	}
	var outerFree []string
	for _, v := range free {
		if !bound[v] {
			outerFree = append(outerFree, v)
		}
	}
	if len(outerFree) != 1 || outerFree[0] != "x" {
		t.Fatalf("expected only x captured, got %v", outerFree)
	}
}

func TestBuildEmptyProgramFails(t *testing.T) {
	_, err := Build(nil)
	if err == nil {
		t.Fatalf("expected an error for an empty program")
	}
}

func TestBuildDuplicateParamFails(t *testing.T) {
	top, err := sexpr.Parse(lexer.New(`(lambda (x x) x)`))
	if err != nil {
		t.Fatalf("sexpr.Parse failed: %v", err)
	}
	_, err = Build(top)
	if err == nil {
		t.Fatalf("expected an error for a duplicate parameter")
	}
}
