// Package ui provides terminal output helpers shared by the CLI commands:
// message formatting, fuzzy suggestions, tables, and build progress.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// MessageLevel represents the severity of a message
type MessageLevel int

const (
	MessageLevelError MessageLevel = iota
	MessageLevelWarning
	MessageLevelInfo
)

// MessageOptions configures the message formatting
type MessageOptions struct {
	Level        MessageLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatMessage creates a standardized message with suggestions and help commands
//
// Example output:
//
//	❌ MODEL NOT FOUND
//	   Cannot find model 'Prson'.
//
//	   Did you mean: Person?
//
//	   → See all models: beacon introspect models
//	   → Get help: beacon introspect --help
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder
	symbol, header, body := levelStyle(opts.Level, opts.NoColor)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		if opts.Problem != "" {
			body.Fprintf(&b, "   %s\n", opts.Problem)
		}
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		hint := color.New(color.FgYellow)
		if opts.NoColor {
			hint.DisableColor()
		}
		b.WriteString("\n")
		hint.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		followup := color.New(color.FgCyan)
		if opts.NoColor {
			followup.DisableColor()
		}
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			followup.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// levelStyle maps a message level to its symbol and paints. Unknown levels
// render as errors.
func levelStyle(level MessageLevel, noColor bool) (string, *color.Color, *color.Color) {
	var symbol string
	var header, body *color.Color
	switch level {
	case MessageLevelWarning:
		symbol = "⚠️"
		header = color.New(color.FgYellow, color.Bold)
		body = color.New(color.FgYellow)
	case MessageLevelInfo:
		symbol = "ℹ️"
		header = color.New(color.FgCyan, color.Bold)
		body = color.New(color.FgCyan)
	default:
		symbol = "❌"
		header = color.New(color.FgRed, color.Bold)
		body = color.New(color.FgRed)
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return symbol, header, body
}

// WriteMessage writes a formatted message to the writer
func WriteMessage(w io.Writer, opts MessageOptions) {
	fmt.Fprint(w, FormatMessage(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ModelNotFoundError creates a standardized model not found error
func ModelNotFoundError(modelName string, suggestions []string, noColor bool) string {
	opts := MessageOptions{
		Level:       MessageLevelError,
		Context:     "MODEL NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find model '%s'.", modelName),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all models: beacon introspect models",
			"Get help: beacon introspect --help",
		},
		NoColor: noColor,
	}
	return FormatMessage(opts)
}

// GenerateError creates a standardized generation error
func GenerateError(message string, suggestions []string, noColor bool) string {
	opts := MessageOptions{
		Level:       MessageLevelError,
		Context:     "GENERATION FAILED",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"Validate declarations: beacon check",
			"Get help: beacon generate --help",
		},
		NoColor: noColor,
	}
	return FormatMessage(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	opts := MessageOptions{
		Level:       MessageLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat beacon.yml",
			"Get help: beacon --help",
		},
		NoColor: noColor,
	}
	return FormatMessage(opts)
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	opts := MessageOptions{
		Level:       MessageLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	}
	return FormatMessage(opts)
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	opts := MessageOptions{
		Level:   MessageLevelInfo,
		Problem: message,
		NoColor: noColor,
	}
	return FormatMessage(opts)
}
