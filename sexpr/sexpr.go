// Package sexpr builds an untyped tree of atoms and lists out of a
// token stream. It is the layer between the lexer and the AST
// builder: it knows about parenthesis nesting but nothing about the
// meaning of any particular form.
package sexpr

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/skx/mylang-compiler/lexer"
	"github.com/skx/mylang-compiler/token"
)

// Kind identifies the shape of an Expr node.
type Kind int

// Node kinds.
const (
	Symbol Kind = iota
	Integer
	Boolean
	Character
	String
	List
)

// Expr is one node of the s-expression tree: either an atom carrying
// exactly one of the typed payload fields matching its Kind, or a
// List carrying an ordered slice of child Exprs.
type Expr struct {
	Kind     Kind
	Offset   int
	Sym      string
	Int      int64
	Bool     bool
	Char     rune
	Str      string
	Children []Expr
}

// ParseError is a parse failure tied to a byte offset in the source.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func parseErr(offset int, message string) error {
	return errors.WithStack(&ParseError{Offset: offset, Message: message})
}

// Parse tokenizes nothing itself; it consumes a lexer and returns the
// ordered sequence of top-level s-expressions in the program.
func Parse(l *lexer.Lexer) ([]Expr, error) {
	var top []Expr
	tok := l.NextToken()
	for tok.Type != token.EOF {
		expr, next, err := parseExpr(l, tok)
		if err != nil {
			return nil, err
		}
		top = append(top, expr)
		tok = next
	}
	if len(top) == 0 {
		return nil, parseErr(0, "empty program")
	}
	return top, nil
}

// parseExpr parses a single expression starting at tok, and returns
// the token immediately following it so the caller can continue
// without re-lexing.
func parseExpr(l *lexer.Lexer, tok token.Token) (Expr, token.Token, error) {
	switch tok.Type {
	case token.LPAREN:
		return parseList(l, tok.Offset)
	case token.RPAREN:
		return Expr{}, token.Token{}, parseErr(tok.Offset, "unexpected ')'")
	case token.INT:
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return Expr{}, token.Token{}, parseErr(tok.Offset, "invalid integer literal: "+tok.Literal)
		}
		return Expr{Kind: Integer, Offset: tok.Offset, Int: n}, l.NextToken(), nil
	case token.BOOL:
		return Expr{Kind: Boolean, Offset: tok.Offset, Bool: tok.Literal == "#t"}, l.NextToken(), nil
	case token.CHAR:
		r := []rune(tok.Literal)[0]
		return Expr{Kind: Character, Offset: tok.Offset, Char: r}, l.NextToken(), nil
	case token.STRING:
		return Expr{Kind: String, Offset: tok.Offset, Str: tok.Literal}, l.NextToken(), nil
	case token.SYMBOL:
		return Expr{Kind: Symbol, Offset: tok.Offset, Sym: tok.Literal}, l.NextToken(), nil
	case token.ILLEGAL:
		return Expr{}, token.Token{}, parseErr(tok.Offset, "illegal token: "+tok.Literal)
	default:
		return Expr{}, token.Token{}, parseErr(tok.Offset, "unexpected token: "+tok.Literal)
	}
}

// parseList parses the children of a list up to its closing paren,
// having already consumed the opening one.
func parseList(l *lexer.Lexer, offset int) (Expr, token.Token, error) {
	var children []Expr
	tok := l.NextToken()
	for tok.Type != token.RPAREN {
		if tok.Type == token.EOF {
			return Expr{}, token.Token{}, parseErr(offset, "unterminated list")
		}
		child, next, err := parseExpr(l, tok)
		if err != nil {
			return Expr{}, token.Token{}, err
		}
		children = append(children, child)
		tok = next
	}
	return Expr{Kind: List, Offset: offset, Children: children}, l.NextToken(), nil
}
