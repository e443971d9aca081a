// Package ast defines the declaration nodes for the Beacon modeling language.
// It provides structures for representing models, fields, types, and the
// observable annotations attached to fields. Nodes are pure data: the parser
// builds them once and every later stage treats them as read-only.
package ast

import "github.com/beacon-lang/beacon/internal/compiler/lexer"

// SourceLocation tracks the position of a declaration in source code
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// Node is the base interface for all declaration nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Program is the root node of a parsed declaration set
type Program struct {
	Models []*ModelNode
}

func (p *Program) node() {}

// Location returns the source location of the program node.
func (p *Program) Location() SourceLocation {
	if len(p.Models) > 0 {
		return p.Models[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// ModelNode represents a model declaration
type ModelNode struct {
	Name          string
	Documentation string
	Sealed        bool     // sealed models refuse member augmentation
	Bases         []string // declared base/capability names, in order
	Fields        []*FieldNode
	Loc           SourceLocation
}

func (m *ModelNode) node() {}

// Location returns the source location of the model node.
func (m *ModelNode) Location() SourceLocation {
	return m.Loc
}

// FieldNode represents a field declaration in a model
type FieldNode struct {
	Name        string // Raw identifier as written, e.g. "_firstName"
	Type        *TypeNode
	Annotations []*Annotation // Ordered as declared; order drives emission
	Loc         SourceLocation
}

func (f *FieldNode) node() {}

// Location returns the source location of the field node.
func (f *FieldNode) Location() SourceLocation {
	return f.Loc
}

// TypeKind represents the kind of type
type TypeKind int

const (
	// TypePrimitive represents primitive types (string, int, bool, etc.)
	TypePrimitive TypeKind = iota
	// TypeModel represents a reference to another declared model
	TypeModel
)

// TypeNode represents a type specification
type TypeNode struct {
	Kind TypeKind
	Name string // Name of the type (e.g., "string", "Address")
	Loc  SourceLocation
}

func (t *TypeNode) node() {}

// Location returns the source location of the type node.
func (t *TypeNode) Location() SourceLocation {
	return t.Loc
}

// AnnotationTag identifies which observable annotation a field carries
type AnnotationTag int

const (
	// AnnotationNotify marks a plain change-notifying property (@notify)
	AnnotationNotify AnnotationTag = iota
	// AnnotationProxy marks a property forwarded to a nested model (@proxy)
	AnnotationProxy
	// AnnotationAlsoNotify marks a dependent notification (@also_notify)
	AnnotationAlsoNotify
)

// Annotation represents one observable annotation on a field.
// Source, CustomName, and Type are populated for AnnotationProxy;
// Target is populated for AnnotationAlsoNotify.
type Annotation struct {
	Tag        AnnotationTag
	Source     string    // Proxy: dotted-or-simple property path on the nested model
	CustomName string    // Proxy: optional exposed-name override
	Type       *TypeNode // Proxy: declared type of the forwarded property
	Target     string    // AlsoNotify: dependent property name, opaque to the engine
	Loc        SourceLocation
}

func (a *Annotation) node() {}

// Location returns the source location of the annotation.
func (a *Annotation) Location() SourceLocation {
	return a.Loc
}

// TokenLocation creates a SourceLocation from a lexer token
func TokenLocation(token lexer.Token) SourceLocation {
	return SourceLocation{
		Line:   token.Line,
		Column: token.Column,
	}
}
