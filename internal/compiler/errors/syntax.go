package errors

import (
	"fmt"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
)

// Syntax error codes (SYN001-099)
const (
	// ErrLexical indicates a lexical error in the source
	ErrLexical ErrorCode = "SYN001"
	// ErrParse indicates a parse error in the source
	ErrParse ErrorCode = "SYN002"
)

// NewLexicalError creates a SYN001 error from a scanner failure
func NewLexicalError(loc ast.SourceLocation, message, lexeme string) *CompilerError {
	err := newError(
		ErrLexical,
		"lexical_error",
		SeverityError,
		message,
		loc,
	)
	if lexeme != "" {
		err = err.WithActual(fmt.Sprintf("'%s'", lexeme))
	}
	return err
}

// NewParseError creates a SYN002 error from a parser failure
func NewParseError(loc ast.SourceLocation, message, found string) *CompilerError {
	err := newError(
		ErrParse,
		"parse_error",
		SeverityError,
		message,
		loc,
	)
	if found != "" {
		err = err.WithActual(fmt.Sprintf("'%s'", found))
	}
	return err
}
