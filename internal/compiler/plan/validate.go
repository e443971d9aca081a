package plan

import (
	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
)

// validate runs the structural precondition checks for one model. All
// violations are collected; nothing stops at the first finding, and the
// outcome does not depend on checking order. The sealed and capability
// checks bind only when the model actually declares observable fields; a
// model without annotations needs neither.
func validate(model *ast.ModelNode, specs []*PropertySpec, caps CapabilitySet) errors.ErrorList {
	var diags errors.ErrorList

	if !hasObservableFields(model) {
		return diags
	}

	if model.Sealed {
		diags = append(diags, errors.NewTypeNotExtensible(model.Loc, model.Name))
	}

	if !caps.Has(CapabilityObservable) {
		diags = append(diags, errors.NewMissingNotifyingCapability(model.Loc, model.Name))
	}

	seen := make(map[string]*PropertySpec)
	for _, spec := range specs {
		if first, ok := seen[spec.Name]; ok {
			diags = append(diags, errors.NewDuplicateGeneratedName(
				spec.Loc, spec.Name, specOrigin(first), specOrigin(spec)))
			continue
		}
		seen[spec.Name] = spec
	}

	for _, field := range model.Fields {
		for _, annotation := range field.Annotations {
			if annotation.Tag != ast.AnnotationProxy {
				continue
			}
			if !ValidPropertyPath(annotation.Source) {
				diags = append(diags, errors.NewInvalidProxyTarget(
					annotation.Loc, annotation.Source, field.Name))
			}
		}
	}

	return diags
}

// hasObservableFields reports whether any field carries an annotation
func hasObservableFields(model *ast.ModelNode) bool {
	for _, field := range model.Fields {
		if len(field.Annotations) > 0 {
			return true
		}
	}
	return false
}
