package compiler

import (
	"fmt"

	"github.com/pkg/errors"
)

// CompileError is a compile-time consistency violation: an
// unresolved identifier or a duplicate top-level definition. It
// always carries the source byte offset of the offending construct.
// Ill-formed defines and duplicate parameter names are rejected
// earlier, as ast.BuildError.
type CompileError struct {
	Offset  int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s (at byte %d)", e.Message, e.Offset)
}

func compileErr(offset int, format string, args ...interface{}) error {
	return errors.WithStack(&CompileError{Offset: offset, Message: fmt.Sprintf(format, args...)})
}

// emitErrorTrap appends the shared runtime-error trap: align the
// stack and call the external raise_error, which never returns.
func emitErrorTrap() []Stmt {
	var out []Stmt
	out = append(out, label(errLabel))
	out = append(out, padStack()...)
	out = append(out, call("raise_error"))
	return out
}
