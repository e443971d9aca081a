// Package parser implements the Beacon declaration parser, transforming token
// streams into declaration trees. It uses recursive descent with panic mode
// error recovery so a single malformed model does not hide later ones.
package parser

import (
	"fmt"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/lexer"
)

// ParseError is a raw parse failure. The parser collects these instead of
// stopping; tooling later converts them into coded diagnostics, which is
// why the type keeps only the message, the location, and the lexeme the
// parser was looking at.
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Near     string
}

func (e *ParseError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("parse error at %d:%d: %s",
			e.Location.Line, e.Location.Column, e.Message)
	}
	return fmt.Sprintf("parse error at %d:%d: %s (near '%s')",
		e.Location.Line, e.Location.Column, e.Message, e.Near)
}

// NewParseError builds a ParseError pointing at the given token.
func NewParseError(message string, token lexer.Token) ParseError {
	return ParseError{
		Message:  message,
		Location: ast.SourceLocation{Line: token.Line, Column: token.Column},
		Near:     token.Lexeme,
	}
}
