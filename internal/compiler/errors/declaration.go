package errors

import (
	"fmt"
	"strings"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
)

// Declaration error codes (DCL100-199)
const (
	// ErrTypeNotExtensible indicates observable fields on a sealed model
	ErrTypeNotExtensible ErrorCode = "DCL100"
	// ErrMissingNotifyingCapability indicates the model lacks the Observable base
	ErrMissingNotifyingCapability ErrorCode = "DCL101"
	// ErrDuplicateGeneratedName indicates two fields produce the same property name
	ErrDuplicateGeneratedName ErrorCode = "DCL102"
	// ErrInvalidProxyTarget indicates a malformed @proxy property path
	ErrInvalidProxyTarget ErrorCode = "DCL103"
	// ErrOrphanAlsoNotify indicates @also_notify without @notify or @proxy
	ErrOrphanAlsoNotify ErrorCode = "DCL104"
	// ErrInvalidIdentifier indicates a field name that yields no valid property name
	ErrInvalidIdentifier ErrorCode = "DCL105"
	// ErrDuplicateAnnotation indicates a repeated single-use annotation on a field
	ErrDuplicateAnnotation ErrorCode = "DCL106"
	// ErrInheritanceCycle indicates a cycle in the declared base chain
	ErrInheritanceCycle ErrorCode = "DCL107"
	// ErrDuplicateModel indicates the same model name declared more than once
	ErrDuplicateModel ErrorCode = "DCL108"
	// ErrRedundantAlsoNotify indicates @also_notify repeating the property's own name
	ErrRedundantAlsoNotify ErrorCode = "DCL110"
)

// NewTypeNotExtensible creates a DCL100 error
func NewTypeNotExtensible(loc ast.SourceLocation, modelName string) *CompilerError {
	return newError(
		ErrTypeNotExtensible,
		"type_not_extensible",
		SeverityError,
		fmt.Sprintf("Sealed model '%s' cannot declare observable fields", modelName),
		loc,
	).WithSuggestion("Remove the 'sealed' modifier, or remove the @notify/@proxy annotations")
}

// NewMissingNotifyingCapability creates a DCL101 error. The message names the
// missing Observable base directly so authors are not left with a generic
// missing-member failure.
func NewMissingNotifyingCapability(loc ast.SourceLocation, modelName string) *CompilerError {
	return newError(
		ErrMissingNotifyingCapability,
		"missing_notifying_capability",
		SeverityError,
		fmt.Sprintf("Model '%s' declares observable fields but does not extend Observable", modelName),
		loc,
	).WithSuggestion("Add Observable to the model's base list so generated setters can call Notify").
		WithExamples(fmt.Sprintf("model %s: Observable { ... }", modelName))
}

// NewDuplicateGeneratedName creates a DCL102 error naming both origins
func NewDuplicateGeneratedName(loc ast.SourceLocation, name, firstOrigin, secondOrigin string) *CompilerError {
	return newError(
		ErrDuplicateGeneratedName,
		"duplicate_generated_name",
		SeverityError,
		fmt.Sprintf("Generated property name '%s' collides: produced by both %s and %s",
			name, firstOrigin, secondOrigin),
		loc,
	).WithSuggestion("Rename one of the fields, or give the proxy a distinct name with as:")
}

// NewInvalidProxyTarget creates a DCL103 error
func NewInvalidProxyTarget(loc ast.SourceLocation, source, fieldName string) *CompilerError {
	return newError(
		ErrInvalidProxyTarget,
		"invalid_proxy_target",
		SeverityError,
		fmt.Sprintf("Invalid proxy target '%s' on field '%s'", source, fieldName),
		loc,
	).WithSuggestion("Proxy targets are dot-separated identifier paths").
		WithExamples("@proxy(address.city)", "@proxy(engine.serial: string)")
}

// NewOrphanAlsoNotify creates a DCL104 error
func NewOrphanAlsoNotify(loc ast.SourceLocation, fieldName string) *CompilerError {
	return newError(
		ErrOrphanAlsoNotify,
		"orphan_also_notify",
		SeverityError,
		fmt.Sprintf("Field '%s' has @also_notify but no @notify or @proxy annotation", fieldName),
		loc,
	).WithSuggestion("Add @notify or @proxy to the field, or remove the @also_notify annotation")
}

// NewInvalidIdentifier creates a DCL105 error
func NewInvalidIdentifier(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrInvalidIdentifier,
		"invalid_identifier",
		SeverityError,
		fmt.Sprintf("'%s' does not resolve to a valid property name", name),
		loc,
	).WithSuggestion("Property names are derived by dropping one leading underscore and capitalizing; the remainder must be a valid identifier").
		WithExamples("_firstName", "counter")
}

// NewDuplicateAnnotation creates a DCL106 error
func NewDuplicateAnnotation(loc ast.SourceLocation, annotation, fieldName string) *CompilerError {
	return newError(
		ErrDuplicateAnnotation,
		"duplicate_annotation",
		SeverityError,
		fmt.Sprintf("Duplicate @%s annotation on field '%s'", annotation, fieldName),
		loc,
	).WithSuggestion(fmt.Sprintf("A field may carry at most one @%s annotation", annotation))
}

// NewInheritanceCycle creates a DCL107 error
func NewInheritanceCycle(loc ast.SourceLocation, chain []string) *CompilerError {
	return newError(
		ErrInheritanceCycle,
		"inheritance_cycle",
		SeverityError,
		fmt.Sprintf("Inheritance cycle detected: %s", strings.Join(chain, " -> ")),
		loc,
	).WithSuggestion("Break the cycle by removing one of the base declarations")
}

// NewDuplicateModel creates a DCL108 error pointing at the later declaration
func NewDuplicateModel(loc ast.SourceLocation, modelName, firstFile string) *CompilerError {
	message := fmt.Sprintf("Model '%s' is declared more than once", modelName)
	if firstFile != "" {
		message = fmt.Sprintf("Model '%s' is declared more than once (first declared in %s)", modelName, firstFile)
	}
	return newError(
		ErrDuplicateModel,
		"duplicate_model",
		SeverityError,
		message,
		loc,
	).WithSuggestion("Rename one of the declarations; model names are program-wide")
}

// NewRedundantAlsoNotify creates a DCL110 warning
func NewRedundantAlsoNotify(loc ast.SourceLocation, target, fieldName string) *CompilerError {
	return newError(
		ErrRedundantAlsoNotify,
		"redundant_also_notify",
		SeverityWarning,
		fmt.Sprintf("@also_notify(%s) on field '%s' repeats the property's own name", target, fieldName),
		loc,
	).WithSuggestion("Setters always notify the property's own name first; the extra target can be removed")
}
