package sass

import (
	"fmt"
	"strings"
)

// ParseError represents an error that occurred during parsing.
type ParseError struct {
	Message string
	File    string
	Line    int
	Column  int
	Context string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s at %s:%d:%d", e.Message, e.File, e.Line, e.Column))
	if e.Context != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Context)
	}
	return sb.String()
}

// ImportCycleError is returned when an @import re-enters a file that is
// still being resolved. Chain lists the files on the resolution stack,
// outermost first, ending with the re-entered path.
type ImportCycleError struct {
	Chain []string
}

func (e *ImportCycleError) Error() string {
	return fmt.Sprintf("import cycle: %s", strings.Join(e.Chain, " -> "))
}

// ImportNotFoundError is returned when the import loader cannot locate a
// source for the requested logical path.
type ImportNotFoundError struct {
	Path string
}

func (e *ImportNotFoundError) Error() string {
	return fmt.Sprintf("import not found: %q", e.Path)
}

// NameError is returned when a variable or mixin reference cannot be
// resolved in the scope chain visible at its position.
type NameError struct {
	Kind string // "variable" or "mixin"
	Name string
	Line int
	Col  int
}

func (e *NameError) Error() string {
	return fmt.Sprintf("undefined %s %s at %d:%d", e.Kind, e.Name, e.Line, e.Col)
}

// ArityError is returned when an @include leaves a required mixin
// parameter unbound.
type ArityError struct {
	Mixin    string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("mixin %s expects %d argument(s), got %d", e.Mixin, e.Expected, e.Got)
}

// UnitMismatchError is returned when arithmetic combines dimensions that
// are neither identical nor convertible.
type UnitMismatchError struct {
	Left  string
	Right string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("incompatible units %q and %q", e.Left, e.Right)
}

// EvalError represents an error that occurred during evaluation.
type EvalError struct {
	Message string
	Cause   error
}

func (e *EvalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}

// MultiError represents multiple errors.
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}
