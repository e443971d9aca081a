// Package plan derives synthesis plans from model declarations. For each
// model it resolves property names, builds the per-field notification sets,
// and validates the structural preconditions generation depends on. The
// result is either a NotificationPlan the code generator can render, or a
// list of diagnostics and no plan. Building is a pure function of the model
// and its resolved capability set; nothing survives between passes.
package plan

import (
	"fmt"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
)

// PropertyKind distinguishes how a generated property reaches its value
type PropertyKind int

const (
	// KindDirect reads and writes the backing field itself
	KindDirect PropertyKind = iota
	// KindProxy forwards to a property on the object held by the backing field
	KindProxy
)

// String returns the kind's display name
func (k PropertyKind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

// PropertySpec describes one property to generate
type PropertySpec struct {
	// Name is the exposed property name, unique within the model
	Name string
	// Kind selects direct or proxy access
	Kind PropertyKind
	// Field is the backing field the property was synthesized from
	Field *ast.FieldNode
	// Source is the dotted property path a proxy forwards to ("" for direct)
	Source string
	// Type is the property's value type
	Type *ast.TypeNode
	// NotifySet lists the names the setter notifies on change: the
	// property's own name first, then @also_notify targets in declared
	// order, duplicates dropped keeping the first occurrence
	NotifySet []string
	// Loc points at the declaration the property came from
	Loc ast.SourceLocation
}

// NotificationPlan is the validated synthesis plan for one model
type NotificationPlan struct {
	Model *ast.ModelNode
	// Specs in emission order: field declaration order, then annotation
	// declaration order within a field
	Specs []*PropertySpec
}

// SpecsFor returns the specs synthesized from the given backing field,
// in emission order
func (p *NotificationPlan) SpecsFor(field *ast.FieldNode) []*PropertySpec {
	specs := make([]*PropertySpec, 0)
	for _, spec := range p.Specs {
		if spec.Field == field {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Build derives and validates the notification plan for one model against
// its resolved capability set. When any error-severity diagnostic is found
// the plan is withheld entirely; warnings may accompany a usable plan. A
// model with no annotated fields yields an empty plan and no diagnostics.
func Build(model *ast.ModelNode, caps CapabilitySet) (*NotificationPlan, errors.ErrorList) {
	specs, diags := buildSpecs(model)
	diags = append(diags, validate(model, specs, caps)...)

	if diags.HasErrors() {
		return nil, diags
	}

	return &NotificationPlan{Model: model, Specs: specs}, diags
}

// specOrigin names where a spec came from, for collision diagnostics
func specOrigin(spec *PropertySpec) string {
	if spec.Kind == KindProxy {
		return fmt.Sprintf("proxy '%s' on field '%s'", spec.Source, spec.Field.Name)
	}
	return fmt.Sprintf("field '%s'", spec.Field.Name)
}
