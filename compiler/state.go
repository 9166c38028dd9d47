// Package compiler is the code generator CORE: it lowers a typed
// program AST to a sequence of asm.Statement pseudo-instructions
// implementing the tagged-value representation, the calling
// convention (with tail-call elimination and closure conversion), and
// the pattern-matching compiler.
package compiler

import "fmt"

// errLabel is the single label every runtime type or range error, and
// a match with no matching arm, jumps to. Argument counts are not
// checked at runtime.
const errLabel = "err"

// entryLabel is the program's public entry point.
const entryLabel = "entry"

// Compiler is the compilation-scoped state object: a monotonically
// increasing label counter and a string-literal interning table. It
// has a single owner for the duration of one Compile call and is
// never shared across goroutines (see the concurrency model in
// SPEC_FULL.md §5).
type Compiler struct {
	labelCount int

	// stringLabels interns each distinct literal string to one label;
	// stringOrder preserves first-occurrence order so output is
	// deterministic.
	stringLabels map[string]string
	stringOrder  []string
}

// NewCompiler returns a freshly initialised compilation state.
func NewCompiler() *Compiler {
	return &Compiler{
		stringLabels: make(map[string]string),
	}
}

// freshLabel returns a new label built from prefix, guaranteed unique
// within this compilation.
func (c *Compiler) freshLabel(prefix string) string {
	label := fmt.Sprintf("%s_%d", prefix, c.labelCount)
	c.labelCount++
	return label
}

// stringLiteralLabel interns s, returning the (possibly
// newly-created) static-data label all occurrences of this exact
// string literal share.
func (c *Compiler) stringLiteralLabel(s string) string {
	if label, ok := c.stringLabels[s]; ok {
		return label
	}
	label := fmt.Sprintf("str_%d", len(c.stringOrder))
	c.stringLabels[s] = label
	c.stringOrder = append(c.stringOrder, s)
	return label
}
