package codegen

import (
	"fmt"
	"strings"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

// generateStruct generates the Go struct definition for a model. Bases that
// name Observable embed the runtime type; bases that name another declared
// model embed that model by value so Notify stays promoted through the
// chain. External base names carry no structure and are not embedded.
func (g *Generator) generateStruct(model *ast.ModelNode, opts Options) {
	if model.Documentation != "" {
		for _, line := range strings.Split(model.Documentation, "\n") {
			g.writeLine("// %s", line)
		}
	}

	g.writeLine("type %s struct {", model.Name)
	g.indent++

	for _, base := range model.Bases {
		switch {
		case base == plan.CapabilityObservable:
			g.writeLine("%s.Observable", runtimePackage(opts.RuntimeImport))
		case g.declared[base]:
			g.writeLine("%s", base)
		}
	}

	// Collect all slot information for alignment
	type slotInfo struct {
		name string
		typ  string
	}
	var slots []slotInfo
	for _, field := range model.Fields {
		slots = append(slots, slotInfo{
			name: slotName(field),
			typ:  toGoType(field.Type),
		})
	}

	maxNameLen := 0
	for _, s := range slots {
		if len(s.name) > maxNameLen {
			maxNameLen = len(s.name)
		}
	}

	for _, s := range slots {
		padding := maxNameLen - len(s.name)
		g.writeLine("%s%s %s", s.name, strings.Repeat(" ", padding), s.typ)
	}

	g.indent--
	g.writeLine("}")
}

// generateConstructor generates the New constructor for a model
func (g *Generator) generateConstructor(model *ast.ModelNode) {
	g.writeLine("// New%s creates a new %s", model.Name, model.Name)
	g.writeLine("func New%s() *%s {", model.Name, model.Name)
	g.indent++
	g.writeLine("return &%s{}", model.Name)
	g.indent--
	g.writeLine("}")
}

// generateGetter generates the read accessor for one property
func (g *Generator) generateGetter(model *ast.ModelNode, spec *plan.PropertySpec) {
	recv := receiverName(model.Name)
	slot := slotName(spec.Field)

	if spec.Kind == plan.KindProxy {
		g.writeLine("// %s returns the %s property of %s", spec.Name, spec.Source, slot)
	} else {
		g.writeLine("// %s returns the %s field", spec.Name, slot)
	}
	g.writeLine("func (%s *%s) %s() %s {", recv, model.Name, spec.Name, toGoType(spec.Type))
	g.indent++

	if spec.Kind == plan.KindProxy {
		g.writeLine("return %s", proxyRead(recv, slot, spec.Source))
	} else {
		g.writeLine("return %s.%s", recv, slot)
	}

	g.indent--
	g.writeLine("}")
}

// generateSetter generates the write accessor for one property. The write
// always lands; change detection only gates the notifications that follow.
func (g *Generator) generateSetter(model *ast.ModelNode, spec *plan.PropertySpec) {
	recv := receiverName(model.Name)
	slot := slotName(spec.Field)

	if spec.Kind == plan.KindProxy {
		g.writeLine("// Set%s updates the %s property of %s and notifies observers on change", spec.Name, spec.Source, slot)
	} else {
		g.writeLine("// Set%s updates the %s field and notifies observers on change", spec.Name, slot)
	}
	g.writeLine("func (%s *%s) Set%s(value %s) {", recv, model.Name, spec.Name, toGoType(spec.Type))
	g.indent++

	current := fmt.Sprintf("%s.%s", recv, slot)
	if spec.Kind == plan.KindProxy {
		current = proxyRead(recv, slot, spec.Source)
	}
	g.writeLine("changed := %s", changeTest(spec.Type, current))

	if spec.Kind == plan.KindProxy {
		g.writeLine("%s", proxyWrite(recv, slot, spec.Source))
	} else {
		g.writeLine("%s.%s = value", recv, slot)
	}

	g.writeLine("if !changed {")
	g.indent++
	g.writeLine("return")
	g.indent--
	g.writeLine("}")

	for _, name := range spec.NotifySet {
		g.writeLine("%s.Notify(%q)", recv, name)
	}

	g.indent--
	g.writeLine("}")
}

// changeTest returns the boolean expression comparing the current value
// against the incoming one, using the equality the type supports
func changeTest(typ *ast.TypeNode, current string) string {
	if typ.Kind == ast.TypePrimitive {
		switch typ.Name {
		case "timestamp":
			return fmt.Sprintf("!%s.Equal(value)", current)
		case "bytes":
			return fmt.Sprintf("!bytes.Equal(%s, value)", current)
		}
	}
	return fmt.Sprintf("%s != value", current)
}

// proxyRead builds the chained getter expression for a proxy source path,
// e.g. p.car.Engine().Serial() for source "Engine.Serial" on field _car
func proxyRead(recv, slot, source string) string {
	expr := recv + "." + slot
	for _, segment := range strings.Split(source, ".") {
		expr += "." + segment + "()"
	}
	return expr
}

// proxyWrite builds the chained setter call for a proxy source path: every
// segment but the last is a getter hop, the last becomes a Set call
func proxyWrite(recv, slot, source string) string {
	segments := strings.Split(source, ".")
	expr := recv + "." + slot
	for _, segment := range segments[:len(segments)-1] {
		expr += "." + segment + "()"
	}
	return expr + ".Set" + segments[len(segments)-1] + "(value)"
}

// slotName returns the unexported backing slot for a field. Fields whose
// resolved name strips to nothing keep their raw identifier, which Go
// accepts as a blank struct field.
func slotName(field *ast.FieldNode) string {
	name := plan.BackingName(field.Name)
	if name == "" {
		return field.Name
	}
	return name
}

// runtimePackage returns the package identifier for a runtime import path
func runtimePackage(importPath string) string {
	if idx := strings.LastIndex(importPath, "/"); idx >= 0 {
		return importPath[idx+1:]
	}
	return importPath
}
