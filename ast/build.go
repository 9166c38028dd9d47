package ast

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/skx/mylang-compiler/sexpr"
)

// BuildError is a failure to build the typed AST out of an
// s-expression tree: an ill-formed define, an unknown special form,
// wrong arity, and the like.
type BuildError struct {
	Offset  int
	Message string
}

func (e *BuildError) Error() string {
	return e.Message
}

func buildErr(offset int, format string, args ...interface{}) error {
	return errors.WithStack(&BuildError{Offset: offset, Message: fmt.Sprintf(format, args...)})
}

var op0Names = map[string]Op0{
	"read-byte": ReadByte,
	"peek-byte": PeekByte,
}

var op1Names = map[string]Op1{
	"add1":           Add1,
	"sub1":           Sub1,
	"zero?":          IsZero,
	"char?":          IsChar,
	"eof-object?":    IsEofObject,
	"box?":           IsBox,
	"cons?":          IsCons,
	"vector?":        IsVector,
	"string?":        IsString,
	"integer->char":  IntegerToChar,
	"char->integer":  CharToInteger,
	"write-byte":     WriteByte,
	"box":            MakeBox,
	"unbox":          Unbox,
	"car":            Car,
	"cdr":             Cdr,
}

var op2Names = map[string]Op2{
	"+":           Add,
	"-":           Sub,
	"<":           LessThan,
	"=":           NumEqual,
	"cons":        Cons,
	"make-vector": MakeVector,
	"make-string": MakeString,
	"vector-ref":  VectorRef,
	"string-ref":  StringRef,
}

var op3Names = map[string]Op3{
	"vector-set!": VectorSet,
}

// keywords names every special form the builder recognises; a list
// headed by one of these is never treated as a primitive call or an
// application.
var keywords = map[string]bool{
	"define": true,
	"lambda": true,
	"let":    true,
	"if":     true,
	"begin":  true,
	"match":  true,
}

// Build converts a sequence of top-level s-expressions into a
// Program: zero or more function definitions followed by exactly one
// main expression.
func Build(top []sexpr.Expr) (*Program, error) {
	if len(top) == 0 {
		return nil, buildErr(0, "empty program")
	}

	lambdaID := 0
	var defines []*FunctionDefinition
	for _, e := range top[:len(top)-1] {
		def, err := buildDefine(e, &lambdaID)
		if err != nil {
			return nil, err
		}
		defines = append(defines, def)
	}

	main, err := buildExpr(top[len(top)-1], &lambdaID)
	if err != nil {
		return nil, err
	}

	return &Program{Defines: defines, Main: main}, nil
}

// buildDefine parses (define (name params...) body).
func buildDefine(e sexpr.Expr, lambdaID *int) (*FunctionDefinition, error) {
	if e.Kind != sexpr.List || len(e.Children) != 3 {
		return nil, buildErr(e.Offset, "expected (define (name params...) body)")
	}
	head := e.Children[0]
	if head.Kind != sexpr.Symbol || head.Sym != "define" {
		return nil, buildErr(e.Offset, "only define forms may appear before the main expression")
	}
	signature := e.Children[1]
	if signature.Kind != sexpr.List || len(signature.Children) == 0 {
		return nil, buildErr(signature.Offset, "expected (name params...) in define signature")
	}
	nameExpr := signature.Children[0]
	if nameExpr.Kind != sexpr.Symbol {
		return nil, buildErr(nameExpr.Offset, "function name must be a symbol")
	}
	params := make([]string, 0, len(signature.Children)-1)
	seen := map[string]bool{}
	for _, p := range signature.Children[1:] {
		if p.Kind != sexpr.Symbol {
			return nil, buildErr(p.Offset, "parameter name must be a symbol")
		}
		if seen[p.Sym] {
			return nil, buildErr(p.Offset, "duplicate parameter name: "+p.Sym)
		}
		seen[p.Sym] = true
		params = append(params, p.Sym)
	}
	body, err := buildExpr(e.Children[2], lambdaID)
	if err != nil {
		return nil, err
	}
	return &FunctionDefinition{
		Offset: e.Offset,
		Name:   nameExpr.Sym,
		Params: params,
		Body:   body,
	}, nil
}

// buildExpr converts one s-expression into a typed Expr node.
func buildExpr(e sexpr.Expr, lambdaID *int) (Expr, error) {
	switch e.Kind {
	case sexpr.Integer:
		return &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitInt, Int: e.Int}, nil
	case sexpr.Boolean:
		return &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitBool, Bool: e.Bool}, nil
	case sexpr.Character:
		return &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitChar, Char: e.Char}, nil
	case sexpr.String:
		return &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitString, Str: e.Str}, nil
	case sexpr.Symbol:
		switch e.Sym {
		case "eof":
			return &Eof{baseExpr{e.Offset}}, nil
		case "empty":
			return &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitEmptyList}, nil
		default:
			return &Variable{baseExpr: baseExpr{e.Offset}, Name: e.Sym}, nil
		}
	case sexpr.List:
		return buildList(e, lambdaID)
	default:
		return nil, buildErr(e.Offset, "unrecognised s-expression")
	}
}

func buildList(e sexpr.Expr, lambdaID *int) (Expr, error) {
	if len(e.Children) == 0 {
		return nil, buildErr(e.Offset, "empty list is not a valid expression (did you mean the symbol empty?)")
	}
	head := e.Children[0]
	if head.Kind == sexpr.Symbol && keywords[head.Sym] {
		switch head.Sym {
		case "define":
			return nil, buildErr(e.Offset, "define is only valid as a top-level form")
		case "lambda":
			return buildLambda(e, lambdaID)
		case "let":
			return buildLet(e, lambdaID)
		case "if":
			return buildIf(e, lambdaID)
		case "begin":
			return buildBegin(e, lambdaID)
		case "match":
			return buildMatch(e, lambdaID)
		}
	}

	if head.Kind == sexpr.Symbol {
		arity := len(e.Children) - 1
		if op, ok := op0Names[head.Sym]; ok && arity == 0 {
			return &Prim0{baseExpr: baseExpr{e.Offset}, Op: op}, nil
		}
		if op, ok := op1Names[head.Sym]; ok && arity == 1 {
			arg, err := buildExpr(e.Children[1], lambdaID)
			if err != nil {
				return nil, err
			}
			return &Prim1{baseExpr: baseExpr{e.Offset}, Op: op, Arg: arg}, nil
		}
		if op, ok := op2Names[head.Sym]; ok && arity == 2 {
			left, err := buildExpr(e.Children[1], lambdaID)
			if err != nil {
				return nil, err
			}
			right, err := buildExpr(e.Children[2], lambdaID)
			if err != nil {
				return nil, err
			}
			return &Prim2{baseExpr: baseExpr{e.Offset}, Op: op, Left: left, Right: right}, nil
		}
		if op, ok := op3Names[head.Sym]; ok && arity == 3 {
			first, err := buildExpr(e.Children[1], lambdaID)
			if err != nil {
				return nil, err
			}
			second, err := buildExpr(e.Children[2], lambdaID)
			if err != nil {
				return nil, err
			}
			third, err := buildExpr(e.Children[3], lambdaID)
			if err != nil {
				return nil, err
			}
			return &Prim3{baseExpr: baseExpr{e.Offset}, Op: op, First: first, Second: second, Third: third}, nil
		}
	}

	return buildApp(e, lambdaID)
}

func buildLambda(e sexpr.Expr, lambdaID *int) (Expr, error) {
	if len(e.Children) != 3 {
		return nil, buildErr(e.Offset, "expected (lambda (params...) body)")
	}
	paramList := e.Children[1]
	if paramList.Kind != sexpr.List {
		return nil, buildErr(paramList.Offset, "expected a parameter list")
	}
	params := make([]string, 0, len(paramList.Children))
	seen := map[string]bool{}
	for _, p := range paramList.Children {
		if p.Kind != sexpr.Symbol {
			return nil, buildErr(p.Offset, "parameter name must be a symbol")
		}
		if seen[p.Sym] {
			return nil, buildErr(p.Offset, "duplicate parameter name: "+p.Sym)
		}
		seen[p.Sym] = true
		params = append(params, p.Sym)
	}
	body, err := buildExpr(e.Children[2], lambdaID)
	if err != nil {
		return nil, err
	}
	id := *lambdaID
	*lambdaID++
	return &Lambda{baseExpr: baseExpr{e.Offset}, ID: id, Params: params, Body: body}, nil
}

func buildLet(e sexpr.Expr, lambdaID *int) (Expr, error) {
	if len(e.Children) != 3 {
		return nil, buildErr(e.Offset, "expected (let ((name rhs)) body)")
	}
	bindings := e.Children[1]
	if bindings.Kind != sexpr.List || len(bindings.Children) != 1 {
		return nil, buildErr(bindings.Offset, "let takes exactly one binding")
	}
	binding := bindings.Children[0]
	if binding.Kind != sexpr.List || len(binding.Children) != 2 {
		return nil, buildErr(binding.Offset, "expected (name rhs) binding")
	}
	nameExpr := binding.Children[0]
	if nameExpr.Kind != sexpr.Symbol {
		return nil, buildErr(nameExpr.Offset, "bound name must be a symbol")
	}
	rhs, err := buildExpr(binding.Children[1], lambdaID)
	if err != nil {
		return nil, err
	}
	body, err := buildExpr(e.Children[2], lambdaID)
	if err != nil {
		return nil, err
	}
	return &Let{baseExpr: baseExpr{e.Offset}, Name: nameExpr.Sym, Rhs: rhs, Body: body}, nil
}

func buildIf(e sexpr.Expr, lambdaID *int) (Expr, error) {
	if len(e.Children) != 4 {
		return nil, buildErr(e.Offset, "expected (if cond then else)")
	}
	cond, err := buildExpr(e.Children[1], lambdaID)
	if err != nil {
		return nil, err
	}
	then, err := buildExpr(e.Children[2], lambdaID)
	if err != nil {
		return nil, err
	}
	els, err := buildExpr(e.Children[3], lambdaID)
	if err != nil {
		return nil, err
	}
	return &If{baseExpr: baseExpr{e.Offset}, Cond: cond, Then: then, Else: els}, nil
}

func buildBegin(e sexpr.Expr, lambdaID *int) (Expr, error) {
	if len(e.Children) != 3 {
		return nil, buildErr(e.Offset, "expected (begin first second)")
	}
	first, err := buildExpr(e.Children[1], lambdaID)
	if err != nil {
		return nil, err
	}
	second, err := buildExpr(e.Children[2], lambdaID)
	if err != nil {
		return nil, err
	}
	return &Begin{baseExpr: baseExpr{e.Offset}, First: first, Second: second}, nil
}

func buildMatch(e sexpr.Expr, lambdaID *int) (Expr, error) {
	if len(e.Children) < 2 {
		return nil, buildErr(e.Offset, "expected (match scrutinee arm...)")
	}
	scrutinee, err := buildExpr(e.Children[1], lambdaID)
	if err != nil {
		return nil, err
	}
	arms := make([]Arm, 0, len(e.Children)-2)
	for _, a := range e.Children[2:] {
		if a.Kind != sexpr.List || len(a.Children) != 2 {
			return nil, buildErr(a.Offset, "expected (pattern body) match arm")
		}
		pattern, err := buildPattern(a.Children[0])
		if err != nil {
			return nil, err
		}
		body, err := buildExpr(a.Children[1], lambdaID)
		if err != nil {
			return nil, err
		}
		arms = append(arms, Arm{Pattern: pattern, Body: body})
	}
	return &Match{baseExpr: baseExpr{e.Offset}, Scrutinee: scrutinee, Arms: arms}, nil
}

func buildApp(e sexpr.Expr, lambdaID *int) (Expr, error) {
	callee, err := buildExpr(e.Children[0], lambdaID)
	if err != nil {
		return nil, err
	}
	args := make([]Expr, 0, len(e.Children)-1)
	for _, a := range e.Children[1:] {
		arg, err := buildExpr(a, lambdaID)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &App{baseExpr: baseExpr{e.Offset}, Callee: callee, Args: args}, nil
}

// buildPattern converts one s-expression into a Pattern node.
func buildPattern(e sexpr.Expr) (Pattern, error) {
	switch e.Kind {
	case sexpr.Symbol:
		switch {
		case e.Sym == "_":
			return &WildcardPattern{basePattern{e.Offset}}, nil
		case e.Sym == "empty":
			return &LitPattern{basePattern{e.Offset}, &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitEmptyList}}, nil
		default:
			return &VariablePattern{basePattern{e.Offset}, e.Sym}, nil
		}
	case sexpr.Integer:
		return &LitPattern{basePattern{e.Offset}, &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitInt, Int: e.Int}}, nil
	case sexpr.Boolean:
		return &LitPattern{basePattern{e.Offset}, &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitBool, Bool: e.Bool}}, nil
	case sexpr.Character:
		return &LitPattern{basePattern{e.Offset}, &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitChar, Char: e.Char}}, nil
	case sexpr.String:
		return &LitPattern{basePattern{e.Offset}, &Lit{baseExpr: baseExpr{e.Offset}, Kind: LitString, Str: e.Str}}, nil
	case sexpr.List:
		if len(e.Children) == 0 {
			return nil, buildErr(e.Offset, "empty list is not a valid pattern")
		}
		head := e.Children[0]
		if head.Kind != sexpr.Symbol {
			return nil, buildErr(e.Offset, "expected cons/box/and pattern form")
		}
		switch head.Sym {
		case "cons":
			if len(e.Children) != 3 {
				return nil, buildErr(e.Offset, "expected (cons car-pattern cdr-pattern)")
			}
			car, err := buildPattern(e.Children[1])
			if err != nil {
				return nil, err
			}
			cdr, err := buildPattern(e.Children[2])
			if err != nil {
				return nil, err
			}
			return &ConsPattern{basePattern{e.Offset}, car, cdr}, nil
		case "box":
			if len(e.Children) != 2 {
				return nil, buildErr(e.Offset, "expected (box pattern)")
			}
			sub, err := buildPattern(e.Children[1])
			if err != nil {
				return nil, err
			}
			return &BoxPattern{basePattern{e.Offset}, sub}, nil
		case "and":
			if len(e.Children) != 3 {
				return nil, buildErr(e.Offset, "expected (and left-pattern right-pattern)")
			}
			left, err := buildPattern(e.Children[1])
			if err != nil {
				return nil, err
			}
			right, err := buildPattern(e.Children[2])
			if err != nil {
				return nil, err
			}
			return &AndPattern{basePattern{e.Offset}, left, right}, nil
		default:
			return nil, buildErr(e.Offset, "unrecognised pattern form: "+head.Sym)
		}
	default:
		return nil, buildErr(e.Offset, "unrecognised pattern")
	}
}
