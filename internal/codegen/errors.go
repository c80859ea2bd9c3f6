package codegen

import (
	"fmt"
	"letc/internal/ast"
)

// InternalError is the single failure kind of the code generator: an
// invariant the earlier stages guarantee did not hold. Compilation stops at
// the first one and no output is produced.
type InternalError struct {
	Invariant string       // which assumption broke, e.g. "unique slot names"
	Pos       ast.Position // zero when no source position applies
	Detail    string
}

func (e *InternalError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("internal error at %s: %s: %s", e.Pos, e.Invariant, e.Detail)
	}
	return fmt.Sprintf("internal error: %s: %s", e.Invariant, e.Detail)
}

func internalErrorf(invariant, format string, args ...any) *InternalError {
	return &InternalError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}

func internalErrorAt(pos ast.Position, invariant, format string, args ...any) *InternalError {
	return &InternalError{Invariant: invariant, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}
