package plan

import (
	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/compiler/lexer"
)

// buildSpecs walks the model's fields in declaration order and synthesizes
// the property specs their annotations call for
func buildSpecs(model *ast.ModelNode) ([]*PropertySpec, errors.ErrorList) {
	specs := make([]*PropertySpec, 0)
	var diags errors.ErrorList

	for _, field := range model.Fields {
		fieldSpecs, fieldDiags := buildFieldSpecs(field)
		specs = append(specs, fieldSpecs...)
		diags = append(diags, fieldDiags...)
	}

	return specs, diags
}

// buildFieldSpecs synthesizes the specs for one field: one direct spec if
// @notify is present, one proxy spec per @proxy, in annotation order.
// @also_notify targets attach to the field, so every spec the field
// produces shares them.
func buildFieldSpecs(field *ast.FieldNode) ([]*PropertySpec, errors.ErrorList) {
	var diags errors.ErrorList

	alsoTargets := make([]string, 0)
	anchored := false
	for _, annotation := range field.Annotations {
		switch annotation.Tag {
		case ast.AnnotationNotify, ast.AnnotationProxy:
			anchored = true
		case ast.AnnotationAlsoNotify:
			alsoTargets = append(alsoTargets, annotation.Target)
		}
	}

	if !anchored {
		if len(alsoTargets) > 0 {
			diags = append(diags, errors.NewOrphanAlsoNotify(field.Loc, field.Name))
		}
		return nil, diags
	}

	specs := make([]*PropertySpec, 0)
	notifySeen := false

	for _, annotation := range field.Annotations {
		switch annotation.Tag {
		case ast.AnnotationNotify:
			if notifySeen {
				diags = append(diags, errors.NewDuplicateAnnotation(annotation.Loc, "notify", field.Name))
				continue
			}
			notifySeen = true

			name := PropertyName(field.Name)
			if !lexer.IsValidIdentifier(name) {
				diags = append(diags, errors.NewInvalidIdentifier(field.Loc, field.Name))
				continue
			}

			specs = append(specs, &PropertySpec{
				Name:      name,
				Kind:      KindDirect,
				Field:     field,
				Type:      field.Type,
				NotifySet: notifySet(name, alsoTargets),
				Loc:       field.Loc,
			})

		case ast.AnnotationProxy:
			name := ProxyPropertyName(annotation.Source, annotation.CustomName)
			if !lexer.IsValidIdentifier(name) {
				diags = append(diags, errors.NewInvalidIdentifier(annotation.Loc, name))
				continue
			}

			specs = append(specs, &PropertySpec{
				Name:      name,
				Kind:      KindProxy,
				Field:     field,
				Source:    annotation.Source,
				Type:      proxyType(annotation),
				NotifySet: notifySet(name, alsoTargets),
				Loc:       annotation.Loc,
			})
		}
	}

	diags = append(diags, redundantAlsoNotifyWarnings(field, specs, alsoTargets)...)

	return specs, diags
}

// notifySet builds a spec's notification list: own name first, then the
// field's @also_notify targets in declared order, duplicates dropped
// keeping the first occurrence
func notifySet(ownName string, alsoTargets []string) []string {
	set := make([]string, 0, 1+len(alsoTargets))
	set = append(set, ownName)
	for _, target := range alsoTargets {
		if !containsName(set, target) {
			set = append(set, target)
		}
	}
	return set
}

// proxyType returns the author-declared forwarded type, defaulting to
// string when the annotation omits it
func proxyType(annotation *ast.Annotation) *ast.TypeNode {
	if annotation.Type != nil {
		return annotation.Type
	}
	return &ast.TypeNode{
		Kind: ast.TypePrimitive,
		Name: "string",
		Loc:  annotation.Loc,
	}
}

// redundantAlsoNotifyWarnings flags @also_notify targets that repeat a
// generated property's own name; the setter already notifies that first
func redundantAlsoNotifyWarnings(field *ast.FieldNode, specs []*PropertySpec, alsoTargets []string) errors.ErrorList {
	var diags errors.ErrorList
	warned := make(map[string]bool)

	for _, spec := range specs {
		for _, target := range alsoTargets {
			if target == spec.Name && !warned[target] {
				warned[target] = true
				diags = append(diags, errors.NewRedundantAlsoNotify(field.Loc, target, field.Name))
			}
		}
	}

	return diags
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
