package errors

import (
	"fmt"
	"strings"
)

const listRuleWidth = 72

// FormatError renders one diagnostic for terminal output: a header naming
// the category, code, and file, the source window with a caret under the
// offending column, then the optional suggestion, examples, and docs link.
func FormatError(e *CompilerError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s [%s] in %s\n",
		severityIcon(e.Severity), categoryDisplayName(e.Category), e.Code, displayFile(e.File))
	fmt.Fprintf(&b, "Line %d, Column %d:\n", e.Location.Line, e.Location.Column)

	if e.Context != nil && len(e.Context.SourceLines) > 0 {
		writeSourceWindow(&b, e)
	} else {
		fmt.Fprintf(&b, "  %s\n", e.Message)
	}

	if e.Actual != "" {
		fmt.Fprintf(&b, "\n  Found: %s\n", e.Actual)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}
	if len(e.Examples) > 0 {
		b.WriteString("\nQuick Fixes:\n")
		for i, example := range e.Examples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, example)
		}
	}
	if e.Documentation != "" {
		fmt.Fprintf(&b, "\nLearn more: %s\n", e.Documentation)
	}

	return b.String()
}

// writeSourceWindow prints the context lines with a numbered gutter and a
// caret line pointing at the error column, carrying the message.
func writeSourceWindow(b *strings.Builder, e *CompilerError) {
	lines := e.Context.SourceLines

	// Without a recorded start the offending line is taken to sit at
	// index 1, the middle of a full three-line window.
	first := e.Context.StartLine
	if first <= 0 {
		first = e.Location.Line - 1
		if len(lines) == 1 {
			first = e.Location.Line
		}
	}
	errorIndex := e.Location.Line - first
	if errorIndex < 0 || errorIndex >= len(lines) {
		errorIndex = 0
	}

	for i, line := range lines {
		fmt.Fprintf(b, "%4d | %s\n", first+i, line)
		if i == errorIndex {
			fmt.Fprintf(b, "     | %s^ %s\n", strings.Repeat(" ", max(e.Location.Column-1, 0)), e.Message)
		}
	}
}

// FormatErrorList renders every diagnostic under a one-line tally,
// separated by rules.
func FormatErrorList(list ErrorList) string {
	if len(list) == 0 {
		return "no errors"
	}

	var b strings.Builder
	errCount, warnCount, infoCount := list.ErrorCount()
	fmt.Fprintf(&b, "Found %d error(s), %d warning(s)", errCount, warnCount)
	if infoCount > 0 {
		fmt.Fprintf(&b, ", %d info", infoCount)
	}
	b.WriteString("\n\n")

	entries := make([]string, len(list))
	for i, err := range list {
		entries[i] = err.Format()
	}
	rule := "\n" + strings.Repeat("-", listRuleWidth) + "\n\n"
	b.WriteString(strings.Join(entries, rule))

	return b.String()
}

// FormatCompact returns the one-line file:line:col form used by check
// --compact and the watch loop.
func FormatCompact(e *CompilerError) string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		displayFile(e.File), e.Location.Line, e.Location.Column,
		e.Severity, e.Message, e.Code)
}

func displayFile(file string) string {
	if file == "" {
		return "<source>"
	}
	return file
}

func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityWarning:
		return "⚠️ "
	case SeverityInfo:
		return "ℹ️ "
	case SeverityError:
		return "❌"
	default:
		return "❓"
	}
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategorySyntax:
		return "Syntax Error"
	case CategoryDeclaration:
		return "Declaration Error"
	default:
		return "Compiler Error"
	}
}
