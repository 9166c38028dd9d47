package compiler

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/mylang-compiler/asm"
	"github.com/skx/mylang-compiler/ast"
	"github.com/skx/mylang-compiler/lexer"
	"github.com/skx/mylang-compiler/sexpr"
)

// buildProgram runs the source through the lexer, the s-expression
// parser and the AST builder, the same way the driver does.
func buildProgram(t *testing.T, source string) *ast.Program {
	t.Helper()
	l := lexer.New(source)
	exprs, err := sexpr.Parse(l)
	require.NoError(t, err)
	prog, err := ast.Build(exprs)
	require.NoError(t, err)
	return prog
}

func TestCompileProgramEmitsEntryAndErrorTrapExactlyOnce(t *testing.T) {
	prog := buildProgram(t, `(+ 1 2)`)
	stmts, err := Compile(prog)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, s := range stmts {
		if l, ok := s.(asm.Label); ok {
			counts[l.Name]++
		}
	}
	assert.Equal(t, 1, counts[entryLabel], "expected exactly one entry label")
	assert.Equal(t, 1, counts[errLabel], "expected exactly one shared error-trap label")
}

func TestCompileProgramEmitsOneLabelPerDefineAndLambda(t *testing.T) {
	prog := buildProgram(t, `
		(define (inc x) (+ x 1))
		(define (id x) x)
		((lambda (y) (inc y)) 5)
	`)

	stmts, err := Compile(prog)
	require.NoError(t, err)

	var names []string
	for _, s := range stmts {
		if l, ok := s.(asm.Label); ok {
			names = append(names, l.Name)
		}
	}

	assert.Contains(t, names, definitionLabel("inc"))
	assert.Contains(t, names, definitionLabel("id"))

	var sawLambdaLabel bool
	for _, n := range names {
		if strings.HasPrefix(n, "lambda_") {
			sawLambdaLabel = true
		}
	}
	assert.True(t, sawLambdaLabel, "expected a lambda_<id> label for the anonymous lambda, got %v", names)
}

func TestCompileProgramMutuallyRecursiveDefinesShareCaptures(t *testing.T) {
	prog := buildProgram(t, `
		(define (even? n) (if (zero? n) #t (odd? (sub1 n))))
		(define (odd? n) (if (zero? n) #f (even? (sub1 n))))
		(even? 4)
	`)
	stmts, err := Compile(prog)
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)

	var names []string
	for _, s := range stmts {
		if l, ok := s.(asm.Label); ok {
			names = append(names, l.Name)
		}
	}
	assert.Contains(t, names, definitionLabel("even?"))
	assert.Contains(t, names, definitionLabel("odd?"))

	assert.Equal(t, []string{"odd?"}, defCaptures(prog.Defines[0]), "expected even? to capture odd?")
	assert.Equal(t, []string{"even?"}, defCaptures(prog.Defines[1]), "expected odd? to capture even?")
}

func TestCompileProgramInternsIdenticalStringLiteralsOnce(t *testing.T) {
	prog := buildProgram(t, `(cons "hi" "hi")`)
	stmts, err := Compile(prog)
	require.NoError(t, err)

	var dataLabels int
	for _, s := range stmts {
		if l, ok := s.(asm.Label); ok && strings.HasPrefix(l.Name, "str_") {
			dataLabels++
		}
	}
	assert.Equal(t, 1, dataLabels, "expected the two identical string literals to share one data label")
}

func TestCompileProgramRejectsUnresolvedIdentifierWithOffset(t *testing.T) {
	prog := buildProgram(t, `nowhere`)
	_, err := Compile(prog)
	require.Error(t, err)
	compileErr, ok := errors.Cause(err).(*CompileError)
	require.True(t, ok, "expected a *CompileError, got %T", err)
	assert.Equal(t, 0, compileErr.Offset)
}

func TestCompileProgramRejectsDuplicateTopLevelDefine(t *testing.T) {
	prog := buildProgram(t, `
		(define (f x) x)
		(define (f x) (+ x 1))
		(f 1)
	`)
	_, err := Compile(prog)
	require.Error(t, err)
	_, ok := errors.Cause(err).(*CompileError)
	require.True(t, ok, "expected a *CompileError, got %T", err)
}
