// Package ast defines the typed program tree the code generator
// consumes, and the logic that builds it from an s-expression tree.
package ast

// Program is an ordered sequence of top-level function definitions
// followed by exactly one main expression.
type Program struct {
	Defines []*FunctionDefinition
	Main    Expr
}

// FunctionDefinition is a top-level (define (name params...) body)
// form. It is compiled as a lambda bound in the top-level closure
// environment (see the compiler package's closure conversion).
type FunctionDefinition struct {
	Offset int
	Name   string
	Params []string
	Body   Expr
}

// Expr is implemented by every expression node. It carries no
// behaviour beyond identifying itself to a type switch and reporting
// its source offset for error messages.
type Expr interface {
	exprNode()
	Pos() int
}

type baseExpr struct{ Offset int }

func (baseExpr) exprNode()    {}
func (b baseExpr) Pos() int { return b.Offset }

// LitKind distinguishes the literal-value shapes a Lit node can hold.
type LitKind int

// Literal kinds.
const (
	LitInt LitKind = iota
	LitBool
	LitChar
	LitString
	LitEmptyList
)

// Lit is a literal value: int, bool, char, string, or the empty-list
// constant. Exactly one of the typed fields is meaningful, selected
// by Kind.
type Lit struct {
	baseExpr
	Kind LitKind
	Int  int64
	Bool bool
	Char rune
	Str  string
}

// Eof is the end-of-file sentinel literal.
type Eof struct{ baseExpr }

// Op0 enumerates the nullary primitives.
type Op0 int

// Op0 values.
const (
	ReadByte Op0 = iota
	PeekByte
)

// Op1 enumerates the unary primitives.
type Op1 int

// Op1 values.
const (
	Add1 Op1 = iota
	Sub1
	IsZero
	IsChar
	IsEofObject
	IsBox
	IsCons
	IsVector
	IsString
	IntegerToChar
	CharToInteger
	WriteByte
	MakeBox
	Unbox
	Car
	Cdr
)

// Op2 enumerates the binary primitives.
type Op2 int

// Op2 values.
const (
	Add Op2 = iota
	Sub
	LessThan
	NumEqual
	Cons
	MakeVector
	MakeString
	VectorRef
	StringRef
)

// Op3 enumerates the ternary primitives.
type Op3 int

// Op3 values.
const (
	VectorSet Op3 = iota
)

// Prim0 applies a nullary primitive.
type Prim0 struct {
	baseExpr
	Op Op0
}

// Prim1 applies a unary primitive to one evaluated operand.
type Prim1 struct {
	baseExpr
	Op  Op1
	Arg Expr
}

// Prim2 applies a binary primitive to two evaluated operands,
// evaluated left to right.
type Prim2 struct {
	baseExpr
	Op          Op2
	Left, Right Expr
}

// Prim3 applies a ternary primitive (only vector-set!) to three
// evaluated operands, evaluated left to right.
type Prim3 struct {
	baseExpr
	Op                  Op3
	First, Second, Third Expr
}

// Begin evaluates First, discards its value, then evaluates and
// returns Second.
type Begin struct {
	baseExpr
	First, Second Expr
}

// If evaluates Cond; any value other than the literal #f takes Then,
// otherwise Else.
type If struct {
	baseExpr
	Cond, Then, Else Expr
}

// Let binds the value of Rhs to Name for the evaluation of Body.
type Let struct {
	baseExpr
	Name string
	Rhs  Expr
	Body Expr
}

// Variable is a reference to a lexically bound identifier.
type Variable struct {
	baseExpr
	Name string
}

// App applies Callee, a closure-valued expression, to Args in order.
type App struct {
	baseExpr
	Callee Expr
	Args   []Expr
}

// Lambda is a function literal. ID is assigned uniquely, in
// left-to-right build order, across the whole program, and is what
// the compiler uses to name the lambda's code block.
type Lambda struct {
	baseExpr
	ID     int
	Params []string
	Body   Expr
}

// Match dispatches on Scrutinee against each Arm's pattern in order,
// taking the first arm whose pattern matches.
type Match struct {
	baseExpr
	Scrutinee Expr
	Arms      []Arm
}

// Arm pairs a pattern with the expression to evaluate when it
// matches.
type Arm struct {
	Pattern Pattern
	Body    Expr
}

// Pattern is implemented by every pattern node.
type Pattern interface {
	patternNode()
	Pos() int
}

type basePattern struct{ Offset int }

func (basePattern) patternNode() {}
func (b basePattern) Pos() int  { return b.Offset }

// WildcardPattern matches anything and binds nothing.
type WildcardPattern struct{ basePattern }

// VariablePattern matches anything and binds it to Name.
type VariablePattern struct {
	basePattern
	Name string
}

// LitPattern matches a value structurally equal to Value.
type LitPattern struct {
	basePattern
	Value *Lit
}

// ConsPattern matches a cons cell whose car matches Car and whose cdr
// matches Cdr.
type ConsPattern struct {
	basePattern
	Car, Cdr Pattern
}

// BoxPattern matches a box whose contents match Sub.
type BoxPattern struct {
	basePattern
	Sub Pattern
}

// AndPattern matches a value that matches both Left and Right; used
// to bind a name to an entire subtree while also destructuring it,
// e.g. (and x (cons _ _)).
type AndPattern struct {
	basePattern
	Left, Right Pattern
}
