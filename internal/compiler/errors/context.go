package errors

import "strings"

// AttachContext fills in the source window for every diagnostic in the list
// that lacks one, quoting up to one line on each side of the offending line.
// Diagnostics without a usable location are left alone.
func AttachContext(list ErrorList, source string) {
	if source == "" {
		return
	}
	lines := strings.Split(source, "\n")
	for _, err := range list {
		if err.Context != nil {
			continue
		}
		idx := err.Location.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		first := max(idx-1, 0)
		last := min(idx+1, len(lines)-1)
		err.Context = &ErrorContext{
			Current:     lines[idx],
			SourceLines: append([]string(nil), lines[first:last+1]...),
			StartLine:   first + 1,
		}
	}
}
