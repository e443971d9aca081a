package plan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beacon-lang/beacon/internal/compiler/lexer"
)

// PropertyName derives the exposed property name from a field identifier:
// one leading underscore is stripped and the first remaining rune is
// upper-cased, the rest is untouched (_firstName -> FirstName,
// _myCounter -> MyCounter, counter -> Counter). Returns "" when nothing
// remains after stripping.
func PropertyName(fieldName string) string {
	name := stripUnderscore(fieldName)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// BackingName derives the unexported struct slot name for a field: one
// leading underscore stripped, first rune lower-cased (_FirstName ->
// firstName). Generated structs store field values under this name.
func BackingName(fieldName string) string {
	name := stripUnderscore(fieldName)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// ProxyPropertyName resolves the exposed name of a proxy property: the
// custom name when supplied, otherwise the rightmost dot-free segment of
// the source path, unchanged. Proxy paths name properties on the nested
// object, so no case transformation applies.
func ProxyPropertyName(source, customName string) string {
	if customName != "" {
		return customName
	}
	if idx := strings.LastIndex(source, "."); idx >= 0 {
		return source[idx+1:]
	}
	return source
}

// ValidPropertyPath reports whether source is a non-empty dotted-or-simple
// identifier path ("City", "engine.Serial").
func ValidPropertyPath(source string) bool {
	if source == "" {
		return false
	}
	for _, segment := range strings.Split(source, ".") {
		if !lexer.IsValidIdentifier(segment) {
			return false
		}
	}
	return true
}

func stripUnderscore(name string) string {
	if strings.HasPrefix(name, "_") {
		return name[1:]
	}
	return name
}
