package ui

import (
	"io"

	"github.com/fatih/color"
)

// PhaseProgress prints generation phases as appended step lines. The build
// pipeline reports a handful of coarse phases (loading, analyzing, emitting),
// so plain lines read better than a redrawing spinner and survive being
// piped into a file.
type PhaseProgress struct {
	writer io.Writer
	paint  *color.Color
}

// NewPhaseProgress creates a reporter that writes step lines to w.
func NewPhaseProgress(w io.Writer, noColor bool) *PhaseProgress {
	paint := color.New(color.FgCyan)
	if noColor {
		paint.DisableColor()
	}
	return &PhaseProgress{writer: w, paint: paint}
}

// Update writes one step line. Its signature matches the build system's
// progress callback, so a *PhaseProgress wires in as a method value.
func (p *PhaseProgress) Update(current, total int, message string) {
	p.paint.Fprintf(p.writer, "  [%d/%d] %s\n", current, total, message)
}
