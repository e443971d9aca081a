// Package errors defines the diagnostics the Beacon compiler reports:
// coded, located errors and warnings with optional source context and fix
// suggestions, renderable as terminal text or machine-readable JSON.
package errors

import (
	"fmt"
	"strings"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
)

// ErrorSeverity indicates how a diagnostic affects generation
type ErrorSeverity string

const (
	// SeverityError blocks generation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning is reported but generation proceeds
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo carries hints only
	SeverityInfo ErrorSeverity = "info"
)

// ErrorCode is a stable diagnostic identifier such as "SYN001" or "DCL104"
type ErrorCode string

// ErrorCategory groups codes by compiler stage
type ErrorCategory string

const (
	// CategorySyntax covers scanner and parser failures (SYN001-099)
	CategorySyntax ErrorCategory = "syntax"
	// CategoryDeclaration covers declaration analysis (DCL100-199)
	CategoryDeclaration ErrorCategory = "declaration"
)

// categoryOf derives the category from the code prefix. The taxonomy has
// exactly two families: SYN from the scanner and parser, DCL from
// declaration analysis.
func categoryOf(code ErrorCode) ErrorCategory {
	if strings.HasPrefix(string(code), "SYN") {
		return CategorySyntax
	}
	return CategoryDeclaration
}

// ErrorContext carries the source window around a diagnostic. SourceLines
// holds up to one line before and after the offending line.
type ErrorContext struct {
	Current     string   `json:"current"`
	SourceLines []string `json:"source_lines"`
	// StartLine is the 1-based file line of SourceLines[0]. Zero means the
	// window position is unknown; renderers then assume the offending line
	// sits at index 1.
	StartLine int `json:"start_line,omitempty"`
}

// CompilerError is one diagnostic. Everything the terminal renderer shows
// is also present in the JSON form, so --json consumers lose nothing.
type CompilerError struct {
	Code     ErrorCode     `json:"code"`
	Type     string        `json:"type"`
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	// Location points at the offending token in the declaration file
	Location ast.SourceLocation `json:"location"`
	File     string             `json:"file,omitempty"`
	Context  *ErrorContext      `json:"context,omitempty"`
	// Actual is the offending lexeme or token, when one exists
	Actual     string   `json:"actual,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Examples   []string `json:"examples,omitempty"`
	// Documentation links the code's reference page
	Documentation string `json:"documentation,omitempty"`
}

// newError builds a diagnostic; the category and documentation link follow
// from the code.
func newError(code ErrorCode, typ string, severity ErrorSeverity, message string, loc ast.SourceLocation) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      categoryOf(code),
		Severity:      severity,
		Message:       message,
		Location:      loc,
		Documentation: documentationURL(code),
	}
}

// documentationURL returns the reference page for an error code
func documentationURL(code ErrorCode) string {
	return fmt.Sprintf("https://docs.beacon-lang.org/errors/%s", code)
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format renders the diagnostic for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// WithFile records the declaration file the diagnostic came from
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithActual records the offending lexeme or token
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion attaches a fix hint
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples attaches example fixes
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList collects the diagnostics of one compilation pass
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

func (el ErrorList) count(severity ErrorSeverity) int {
	n := 0
	for _, err := range el {
		if err.Severity == severity {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic blocks generation
func (el ErrorList) HasErrors() bool {
	return el.count(SeverityError) > 0
}

// HasWarnings reports whether the list carries warnings
func (el ErrorList) HasWarnings() bool {
	return el.count(SeverityWarning) > 0
}

// ErrorCount tallies the list by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	return el.count(SeverityError), el.count(SeverityWarning), el.count(SeverityInfo)
}
